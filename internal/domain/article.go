package domain

import "time"

// CategoryHidden marks a permanently suppressed candidate. A HIDDEN row keeps
// the URL/title in the store so the candidate is never re-evaluated on later
// runs.
const CategoryHidden = "HIDDEN"

// Article is the persisted unit. URL is the primary dedup key; the normalized
// title is the secondary one.
type Article struct {
	Title        string
	URL          string
	Content      []string // ordered text blocks
	Publisher    string
	Category     string
	PublishedAt  time.Time
	SourceDomain string
}

// Hidden reports whether the article is a suppression placeholder.
func (a Article) Hidden() bool { return a.Category == CategoryHidden }

// HiddenArticle builds the placeholder row persisted for a blocked candidate.
func HiddenArticle(title, url, reason, sourceDomain string, publishedAt time.Time) Article {
	return Article{
		Title:        title,
		URL:          url,
		Content:      []string{reason},
		Publisher:    "BLOCKED",
		Category:     CategoryHidden,
		PublishedAt:  publishedAt,
		SourceDomain: sourceDomain,
	}
}

// Candidate is a raw feed entry prior to filtering/dedup/extraction. Never
// persisted directly.
type Candidate struct {
	Title       string
	URL         string
	Description string
	PublishedAt time.Time
	Source      string // feed-reported source name, e.g. "Reuters"
}

// ScanTarget is one entry of an engine's ordered target list. Name is the
// identity within a scan type and must be unique there.
type ScanTarget struct {
	Name     string
	Category string
	FeedURL  string
}
