package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/emadprograms/News-Fetcher-CLI/internal/domain"
)

// InsertArticle writes one article, treating a URL collision as a duplicate.
// Relies on the unique index on articles(url).
func InsertArticle(db *sql.DB, a domain.Article) (added bool, err error) {
	contentB, _ := json.Marshal(a.Content)
	if a.Content == nil {
		contentB = []byte("[]")
	}
	_, err = db.Exec(`
INSERT OR IGNORE INTO articles (title, title_key, url, content, publisher, category, source_domain, published_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		a.Title,
		domain.TitleKey(a.Title),
		a.URL,
		string(contentB),
		a.Publisher,
		a.Category,
		a.SourceDomain,
		a.PublishedAt.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert article: %w", err)
	}

	var changes int
	if e := db.QueryRow(`SELECT changes();`).Scan(&changes); e == nil {
		return changes > 0, nil
	}
	return true, nil
}

// InsertArticles writes a batch and reports how many rows were new versus
// already present.
func InsertArticles(db *sql.DB, batch []domain.Article) (inserted, dups int, err error) {
	for _, a := range batch {
		added, e := InsertArticle(db, a)
		if e != nil {
			return inserted, dups, e
		}
		if added {
			inserted++
		} else {
			dups++
		}
	}
	return inserted, dups, nil
}

// StripQuery drops everything from the first '?' of a URL.
func StripQuery(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}

// ArticleExists looks an article up by URL, retrying with the query string
// stripped, and returns its row id or 0.
func ArticleExists(db *sql.DB, url string) (int64, error) {
	var id int64
	err := db.QueryRow(`SELECT id FROM articles WHERE url = ? LIMIT 1;`, url).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	stripped := StripQuery(url)
	if stripped == url {
		return 0, nil
	}
	err = db.QueryRow(`SELECT id FROM articles WHERE url = ? LIMIT 1;`, stripped).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ExistingTitleKeys returns normalized title key -> row id for every article
// published inside [start, end).
func ExistingTitleKeys(db *sql.DB, start, end time.Time) (map[string]int64, error) {
	rows, err := db.Query(`
SELECT id, title_key FROM articles
WHERE published_at >= ? AND published_at < ?;`,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var id int64
		var key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, err
		}
		out[key] = id
	}
	return out, rows.Err()
}

// CacheMap returns url -> article for every visible article published
// inside [start, end), letting a rescan reuse already-fetched content.
// Hidden placeholder rows are excluded; their titles still dedup via
// ExistingTitleKeys.
func CacheMap(db *sql.DB, start, end time.Time) (map[string]domain.Article, error) {
	rows, err := db.Query(`
SELECT title, url, content, publisher, category, source_domain, published_at
FROM articles
WHERE published_at >= ? AND published_at < ? AND category != 'HIDDEN';`,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]domain.Article{}
	for rows.Next() {
		var a domain.Article
		var contentJSON, published string
		if err := rows.Scan(&a.Title, &a.URL, &contentJSON, &a.Publisher, &a.Category, &a.SourceDomain, &published); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(contentJSON), &a.Content)
		a.PublishedAt, _ = time.Parse(time.RFC3339, published)
		out[a.URL] = a
	}
	return out, rows.Err()
}

// CountInRange counts articles published inside [start, end), optionally
// restricted to one category.
func CountInRange(db *sql.DB, start, end time.Time, category string) (int, error) {
	q := `SELECT COUNT(*) FROM articles WHERE published_at >= ? AND published_at < ?`
	args := []any{start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339)}
	if category != "" {
		q += ` AND category = ?`
		args = append(args, category)
	}
	var n int
	if err := db.QueryRow(q+`;`, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
