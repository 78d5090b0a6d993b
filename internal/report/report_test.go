package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/emadprograms/News-Fetcher-CLI/internal/config"
	"github.com/emadprograms/News-Fetcher-CLI/internal/domain"
)

func testRules() []config.SeverityRule {
	return []config.SeverityRule{
		{Level: "critical", Any: []string{"crash", "bankruptcy", "fraud"}},
		{Level: "warning", Any: []string{"downgrade", "miss", "layoff"}},
	}
}

func TestClassify(t *testing.T) {
	cls := NewClassifier(testRules())

	assert.Equal(t, LevelCritical, cls.Classify("Shares Crash After Earnings"))
	assert.Equal(t, LevelCritical, cls.Classify("Company files for BANKRUPTCY protection"))
	assert.Equal(t, LevelWarning, cls.Classify("Analyst downgrade hits the stock"))
	assert.Equal(t, LevelNone, cls.Classify("Quiet day on Wall Street"))

	// First matching rule wins when keywords from both levels appear.
	assert.Equal(t, LevelCritical, cls.Classify("Fraud probe triggers downgrade"))
}

func TestClassifyEmptyRules(t *testing.T) {
	cls := NewClassifier(nil)
	assert.Equal(t, LevelNone, cls.Classify("Shares Crash"))
}

func TestSummaryAdd(t *testing.T) {
	cls := NewClassifier(testRules())
	s := NewSummary()

	s.Add(domain.Article{Title: "Markets Rally", Category: "EQUITIES"}, cls)
	s.Add(domain.Article{Title: "Bank Fraud Uncovered", Category: "EQUITIES"}, cls)
	s.Add(domain.Article{Title: "Chipmaker Layoff Round", Category: "SECTOR_NEWS"}, cls)
	s.Add(domain.HiddenArticle("Spam", "https://x", "blocked source", "", time.Time{}), cls)

	assert.Equal(t, 1, s.Hidden)
	assert.Equal(t, []string{"Bank Fraud Uncovered"}, s.CriticalHeadlines())
	assert.Equal(t, []string{"Chipmaker Layoff Round"}, s.WarningHeadlines())

	out := s.Render()
	assert.Contains(t, out, "EQUITIES")
	assert.Contains(t, out, "!! Bank Fraud Uncovered")
	assert.Contains(t, out, "!  Chipmaker Layoff Round")
}
