package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/emadprograms/News-Fetcher-CLI/internal/domain"
)

func TestIndexTitleNormalization(t *testing.T) {
	idx := NewIndex()
	idx.MarkSeen(domain.Article{
		Title:       "Oil Prices Surge - Yahoo Finance",
		URL:         "https://finance.yahoo.com/news/oil.html",
		PublishedAt: time.Now(),
	})

	assert.True(t, idx.HasTitle("Oil Prices Surge"))
	assert.True(t, idx.HasTitle("Oil Prices Surge - Reuters"))
	assert.True(t, idx.HasTitle("oil prices surge"))
	assert.False(t, idx.HasTitle("Gas Prices Surge"))
}

func TestIndexURLForms(t *testing.T) {
	idx := NewIndex()
	idx.MarkSeen(domain.Article{
		Title: "Fed Decision",
		URL:   "https://finance.yahoo.com/news/fed.html",
	})

	assert.True(t, idx.HasURL("https://finance.yahoo.com/news/fed.html"))
	assert.True(t, idx.HasURL("https://finance.yahoo.com/news/fed.html?guccounter=1"))
	assert.False(t, idx.HasURL("https://finance.yahoo.com/news/other.html"))
}

func TestIndexCache(t *testing.T) {
	idx := NewIndex()
	a := domain.Article{
		Title:   "Fed Decision",
		URL:     "https://finance.yahoo.com/news/fed.html",
		Content: []string{"body"},
	}
	idx.MarkSeen(a)

	got, ok := idx.Cached("https://finance.yahoo.com/news/fed.html?src=rss")
	assert.True(t, ok)
	assert.Equal(t, a.Content, got.Content)

	_, ok = idx.Cached("https://finance.yahoo.com/news/none.html")
	assert.False(t, ok)
}

func TestMarkTitleOnly(t *testing.T) {
	idx := NewIndex()
	idx.MarkTitle("Blocked Story - Yahoo Finance")
	assert.True(t, idx.HasTitle("Blocked Story"))
	assert.False(t, idx.HasURL("https://finance.yahoo.com/news/blocked.html"))
}
