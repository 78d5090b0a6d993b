// Package report classifies harvested headlines and builds the end-of-scan
// summary.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emadprograms/News-Fetcher-CLI/internal/config"
	"github.com/emadprograms/News-Fetcher-CLI/internal/domain"
)

type Level string

const (
	LevelNone     Level = ""
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Classifier assigns severity to headlines from a configurable keyword
// table. First matching rule wins, so critical rules should come first in
// config.
type Classifier struct {
	rules []config.SeverityRule
}

func NewClassifier(rules []config.SeverityRule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the severity of a headline, matching case-insensitively
// on whole keywords as substrings.
func (c *Classifier) Classify(title string) Level {
	lower := strings.ToLower(title)
	for _, r := range c.rules {
		for _, kw := range r.Any {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return Level(strings.ToLower(r.Level))
			}
		}
	}
	return LevelNone
}

// Summary aggregates one scan run for the closing log line.
type Summary struct {
	Inserted   int
	Duplicates int
	Hidden     int
	Errors     int

	byCategory map[string]int
	critical   []string
	warning    []string
}

func NewSummary() *Summary {
	return &Summary{byCategory: make(map[string]int)}
}

// Add folds one accepted article into the summary.
func (s *Summary) Add(a domain.Article, cls *Classifier) {
	if a.Hidden() {
		s.Hidden++
		return
	}
	s.byCategory[a.Category]++
	if cls == nil {
		return
	}
	switch cls.Classify(a.Title) {
	case LevelCritical:
		s.critical = append(s.critical, a.Title)
	case LevelWarning:
		s.warning = append(s.warning, a.Title)
	}
}

// CriticalHeadlines returns headlines flagged critical, in arrival order.
func (s *Summary) CriticalHeadlines() []string { return s.critical }

// WarningHeadlines returns headlines flagged warning, in arrival order.
func (s *Summary) WarningHeadlines() []string { return s.warning }

// Render formats the summary for the console.
func (s *Summary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scan complete: %d new, %d duplicate, %d hidden, %d errors\n",
		s.Inserted, s.Duplicates, s.Hidden, s.Errors)

	cats := make([]string, 0, len(s.byCategory))
	for c := range s.byCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Fprintf(&b, "  %-22s %d\n", c, s.byCategory[c])
	}

	if len(s.critical) > 0 {
		b.WriteString("critical headlines:\n")
		for _, t := range s.critical {
			fmt.Fprintf(&b, "  !! %s\n", t)
		}
	}
	if len(s.warning) > 0 {
		b.WriteString("warning headlines:\n")
		for _, t := range s.warning {
			fmt.Fprintf(&b, "  !  %s\n", t)
		}
	}
	return b.String()
}
