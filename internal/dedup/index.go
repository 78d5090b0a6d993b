// Package dedup keeps the in-memory seen-set a scan consults before doing
// any expensive fetch work.
package dedup

import (
	"database/sql"
	"time"

	"github.com/emadprograms/News-Fetcher-CLI/internal/domain"
	"github.com/emadprograms/News-Fetcher-CLI/internal/store"
)

// Index tracks titles and URLs seen so far in a session window. Titles are
// matched on their normalized key so mirror copies of the same story
// collapse regardless of the " - Yahoo Finance" style suffix.
type Index struct {
	titles map[string]int64
	urls   map[string]bool
	cache  map[string]domain.Article
}

func NewIndex() *Index {
	return &Index{
		titles: make(map[string]int64),
		urls:   make(map[string]bool),
		cache:  make(map[string]domain.Article),
	}
}

// Seed loads everything already persisted inside [start, end) so a rescan
// of the same window skips known stories and reuses fetched content.
func Seed(db *sql.DB, start, end time.Time) (*Index, error) {
	idx := NewIndex()

	titles, err := store.ExistingTitleKeys(db, start, end)
	if err != nil {
		return nil, err
	}
	idx.titles = titles

	cache, err := store.CacheMap(db, start, end)
	if err != nil {
		return nil, err
	}
	idx.cache = cache
	for u := range cache {
		idx.urls[u] = true
	}
	return idx, nil
}

// HasTitle reports whether a story with this title (in any suffix form) has
// been seen.
func (x *Index) HasTitle(title string) bool {
	_, ok := x.titles[domain.TitleKey(title)]
	return ok
}

// HasURL reports whether this exact URL, or its query-stripped form, has
// been seen.
func (x *Index) HasURL(url string) bool {
	if x.urls[url] {
		return true
	}
	return x.urls[store.StripQuery(url)]
}

// Cached returns previously fetched content for a URL, if any.
func (x *Index) Cached(url string) (domain.Article, bool) {
	if a, ok := x.cache[url]; ok {
		return a, true
	}
	a, ok := x.cache[store.StripQuery(url)]
	return a, ok
}

// MarkSeen records an accepted article under its normalized title key and
// both URL forms.
func (x *Index) MarkSeen(a domain.Article) {
	x.titles[domain.TitleKey(a.Title)] = 0
	x.urls[a.URL] = true
	x.urls[store.StripQuery(a.URL)] = true
	x.cache[a.URL] = a
}

// MarkTitle records a title without content, for stories persisted as
// hidden placeholders.
func (x *Index) MarkTitle(title string) {
	x.titles[domain.TitleKey(title)] = 0
}
