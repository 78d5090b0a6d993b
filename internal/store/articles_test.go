package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emadprograms/News-Fetcher-CLI/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "news.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func sampleArticle(url string) domain.Article {
	return domain.Article{
		Title:        "Fed Holds Rates Steady - Yahoo Finance",
		URL:          url,
		Content:      []string{"The Federal Reserve held rates steady on Wednesday."},
		Publisher:    "Reuters",
		Category:     "FED",
		SourceDomain: "finance.yahoo.com",
		PublishedAt:  time.Date(2026, time.August, 28, 14, 0, 0, 0, time.UTC),
	}
}

func TestInsertArticleIdempotent(t *testing.T) {
	db := openTestDB(t)

	added, err := InsertArticle(db.Pool, sampleArticle("https://finance.yahoo.com/news/fed.html"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = InsertArticle(db.Pool, sampleArticle("https://finance.yahoo.com/news/fed.html"))
	require.NoError(t, err)
	assert.False(t, added)

	inserted, dups, err := InsertArticles(db.Pool, []domain.Article{
		sampleArticle("https://finance.yahoo.com/news/fed.html"),
		sampleArticle("https://finance.yahoo.com/news/other.html"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 1, dups)
}

func TestArticleExistsStripsQuery(t *testing.T) {
	db := openTestDB(t)

	_, err := InsertArticle(db.Pool, sampleArticle("https://finance.yahoo.com/news/fed.html"))
	require.NoError(t, err)

	id, err := ArticleExists(db.Pool, "https://finance.yahoo.com/news/fed.html")
	require.NoError(t, err)
	assert.NotZero(t, id)

	// Tracking params on the lookup URL still match the stored row.
	id, err = ArticleExists(db.Pool, "https://finance.yahoo.com/news/fed.html?guccounter=1")
	require.NoError(t, err)
	assert.NotZero(t, id)

	id, err = ArticleExists(db.Pool, "https://finance.yahoo.com/news/missing.html")
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestExistingTitleKeysNormalizes(t *testing.T) {
	db := openTestDB(t)

	a := sampleArticle("https://finance.yahoo.com/news/fed.html")
	_, err := InsertArticle(db.Pool, a)
	require.NoError(t, err)

	start := time.Date(2026, time.August, 28, 1, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.August, 31, 1, 0, 0, 0, time.UTC)
	keys, err := ExistingTitleKeys(db.Pool, start, end)
	require.NoError(t, err)

	// The stored suffix form and the bare form share one key.
	assert.Contains(t, keys, domain.TitleKey("Fed Holds Rates Steady"))
	assert.Contains(t, keys, domain.TitleKey("Fed Holds Rates Steady - Yahoo Finance"))
	assert.Len(t, keys, 1)

	// Outside the window nothing comes back.
	keys, err = ExistingTitleKeys(db.Pool, end, end.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCacheMapRoundTrip(t *testing.T) {
	db := openTestDB(t)

	a := sampleArticle("https://finance.yahoo.com/news/fed.html")
	_, err := InsertArticle(db.Pool, a)
	require.NoError(t, err)

	start := time.Date(2026, time.August, 28, 1, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.August, 31, 1, 0, 0, 0, time.UTC)
	cache, err := CacheMap(db.Pool, start, end)
	require.NoError(t, err)
	require.Contains(t, cache, a.URL)

	got := cache[a.URL]
	assert.Equal(t, a.Title, got.Title)
	assert.Equal(t, a.Content, got.Content)
	assert.Equal(t, a.Publisher, got.Publisher)
	assert.True(t, a.PublishedAt.Equal(got.PublishedAt))
}

func TestCountInRange(t *testing.T) {
	db := openTestDB(t)

	a := sampleArticle("https://finance.yahoo.com/news/fed.html")
	b := sampleArticle("https://finance.yahoo.com/news/oil.html")
	b.Category = "ENERGY"
	_, _, err := InsertArticles(db.Pool, []domain.Article{a, b})
	require.NoError(t, err)

	start := time.Date(2026, time.August, 28, 1, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.August, 31, 1, 0, 0, 0, time.UTC)

	n, err := CountInRange(db.Pool, start, end, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = CountInRange(db.Pool, start, end, "ENERGY")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestScanRunLog(t *testing.T) {
	db := openTestDB(t)

	target := time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)
	wStart := time.Date(2026, time.August, 27, 1, 0, 0, 0, time.UTC)
	wEnd := time.Date(2026, time.August, 28, 16, 0, 0, 0, time.UTC)

	id, err := LogScanStart(db.Pool, "MACRO", target, wStart, wEnd)
	require.NoError(t, err)
	require.NotZero(t, id)

	// A run that never ended stays RUNNING, so a crash is visible.
	var status, windowStart, windowEnd string
	err = db.Pool.QueryRow(`SELECT status, window_start, window_end FROM scan_runs WHERE id = ?;`, id).
		Scan(&status, &windowStart, &windowEnd)
	require.NoError(t, err)
	assert.Equal(t, ScanStatusRunning, status)
	assert.Equal(t, wStart.Format(time.RFC3339), windowStart)
	assert.Equal(t, wEnd.Format(time.RFC3339), windowEnd)

	require.NoError(t, LogScanEnd(db.Pool, id, ScanStatusCompleted, 5, 2, 1))

	var finished string
	var inserted, dups, errs int
	err = db.Pool.QueryRow(`SELECT finished_at, status, inserted, duplicates, errors FROM scan_runs WHERE id = ?;`, id).
		Scan(&finished, &status, &inserted, &dups, &errs)
	require.NoError(t, err)
	assert.NotEmpty(t, finished)
	assert.Equal(t, ScanStatusCompleted, status)
	assert.Equal(t, 5, inserted)
	assert.Equal(t, 2, dups)
	assert.Equal(t, 1, errs)
}

func TestTickersAndEvents(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AddTicker(db.Pool, " nvda ", "NVIDIA"))
	require.NoError(t, AddTicker(db.Pool, "NVDA", "NVIDIA"))
	require.NoError(t, AddTicker(db.Pool, "AAPL", "Apple"))

	tickers, err := MonitoredTickers(db.Pool)
	require.NoError(t, err)
	require.Len(t, tickers, 2)
	assert.Equal(t, "AAPL", tickers[0].Symbol)
	assert.Equal(t, "NVDA", tickers[1].Symbol)

	require.NoError(t, AddEvent(db.Pool, "FOMC Meeting", time.Date(2026, time.September, 16, 0, 0, 0, 0, time.UTC)))
	events, err := UpcomingEvents(db.Pool,
		time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.September, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "FOMC Meeting", events[0].Name)
}
