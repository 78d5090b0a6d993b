package scan

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emadprograms/News-Fetcher-CLI/internal/config"
	"github.com/emadprograms/News-Fetcher-CLI/internal/domain"
	"github.com/emadprograms/News-Fetcher-CLI/internal/store"
)

const categoryEventWatch = "EVENT_WATCH"

// RunMacro scans the macro feed targets, with calendar events for today and
// tomorrow injected as extra temporary feeds.
func (e *Engine) RunMacro(ctx context.Context, p Params) Result {
	targets := targetsFromConfig(e.cfg.Targets.Macro)
	targets = append(targets, e.eventFeeds()...)

	return e.runFeedScan(ctx, "MACRO", targets, p, feedScanOpts{
		allowPublishers: func(t domain.ScanTarget) []string {
			// Zacks often carries the only preview/recap of a calendar
			// event, so the event hunt tolerates it.
			if t.Category == categoryEventWatch {
				return []string{"ZACKS"}
			}
			return nil
		},
	})
}

// eventFeeds turns upcoming calendar events into temporary feed targets.
func (e *Engine) eventFeeds() []domain.ScanTarget {
	if e.db == nil {
		return nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	events, err := store.UpcomingEvents(e.db, today, today.AddDate(0, 0, 1))
	if err != nil {
		e.log.Warn("event feed lookup failed", zap.Error(err))
		return nil
	}
	if len(events) == 0 {
		return nil
	}
	e.log.Info("calendar events injected into hunt", zap.Int("count", len(events)))
	return BuildEventFeeds(events)
}

// BuildEventFeeds converts calendar events into search-feed targets, keyed
// on a cleaned event name.
func BuildEventFeeds(events []store.Event) []domain.ScanTarget {
	var targets []domain.ScanTarget
	for _, ev := range events {
		search := cleanEventName(ev.Name)
		if search == "" {
			continue
		}
		q := url.QueryEscape(`intitle:"` + search + `" OR "` + search + ` Results" site:finance.yahoo.com`)
		targets = append(targets, domain.ScanTarget{
			Name:     "EVENT: " + ev.Name,
			Category: categoryEventWatch,
			FeedURL:  "https://news.google.com/rss/search?q=" + q + "&hl=en-US&gl=US&ceid=US:en",
		})
	}
	return targets
}

// cleanEventName strips the frequency suffixes and parentheticals that make
// search queries miss, e.g. "CPI (MoM)" becomes "CPI".
func cleanEventName(name string) string {
	search := name
	for _, suffix := range []string{" Mm", " Yy", " M/m", " Y/y", " Qq", " Q/q"} {
		search = strings.ReplaceAll(search, suffix, "")
		search = strings.ReplaceAll(search, strings.ToUpper(suffix), "")
	}
	if i := strings.Index(search, "("); i >= 0 {
		search = search[:i]
	}
	return strings.TrimSpace(search)
}

func targetsFromConfig(feeds []config.FeedTarget) []domain.ScanTarget {
	targets := make([]domain.ScanTarget, len(feeds))
	for i, f := range feeds {
		targets[i] = domain.ScanTarget{Name: f.Name, Category: f.Category, FeedURL: f.URL}
	}
	return targets
}
