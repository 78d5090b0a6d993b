package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestFilters() *filterSet {
	return newFilterSet(testConfig())
}

func TestTitleBlocked(t *testing.T) {
	f := newTestFilters()
	assert.True(t, f.titleBlocked("Why the Motley Fool Likes This Stock"))
	assert.True(t, f.titleBlocked("ZACKS Rank Upgrade"))
	assert.False(t, f.titleBlocked("Fed Holds Rates Steady"))
}

func TestURLBlocked(t *testing.T) {
	f := newTestFilters()
	assert.True(t, f.urlBlocked("https://finance.yahoo.com/m/motley-fool/pick.html"))
	assert.True(t, f.urlBlocked("https://finance.yahoo.com/news/ZACKS-rank.html"))
	assert.False(t, f.urlBlocked("https://finance.yahoo.com/news/fed.html"))
}

func TestForeignMarker(t *testing.T) {
	f := newTestFilters()
	assert.True(t, f.foreign("FTSE Gains - Yahoo Finance UK"))
	assert.True(t, f.foreign("TSX Update - yahoo! finance canada"))
	assert.False(t, f.foreign("S&P 500 Gains - Yahoo Finance"))
}

func TestBlockedSourceWithAllowlist(t *testing.T) {
	f := newTestFilters()

	src, bad := f.blockedSource("Earnings Recap - Benzinga", nil)
	assert.True(t, bad)
	assert.Equal(t, "BENZINGA", src)

	// The per-run allowlist exempts one source without touching the rest.
	_, bad = f.blockedSource("CPI Preview - Zacks", []string{"ZACKS"})
	assert.False(t, bad)
	_, bad = f.blockedSource("CPI Preview - Benzinga", []string{"ZACKS"})
	assert.True(t, bad)

	_, bad = f.blockedSource("Fed Holds Rates Steady", nil)
	assert.False(t, bad)
}

func TestForeignMirror(t *testing.T) {
	f := newTestFilters()
	assert.True(t, f.foreignMirror("https://uk.finance.yahoo.com/news/ftse.html"))
	assert.True(t, f.foreignMirror("https://sg.finance.yahoo.com/news/sti.html"))
	assert.False(t, f.foreignMirror("https://finance.yahoo.com/news/fed.html"))
	assert.False(t, f.foreignMirror("https://www.finance.yahoo.com/news/fed.html"))
	// Non-yahoo hosts are someone else's problem.
	assert.False(t, f.foreignMirror("https://news.google.com/articles/abc"))
}

func TestPremiumHeuristic(t *testing.T) {
	f := newTestFilters()
	assert.True(t, f.premium("Exclusive: Fed Prepares Cut - Bloomberg", "https://finance.yahoo.com/news/fed.html"))
	assert.True(t, f.premium("Market Wrap", "https://finance.yahoo.com/m/reuters/wrap.html"))
	assert.False(t, f.premium("Market Wrap", "https://finance.yahoo.com/news/wrap.html"))
}
