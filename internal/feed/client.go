// Package feed pulls RSS discovery feeds and turns their items into scan
// candidates.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/emadprograms/News-Fetcher-CLI/internal/domain"
)

const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Client struct {
	http    *http.Client
	parser  *gofeed.Parser
	limiter *HostLimiter
}

func NewClient(limiter *HostLimiter) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		parser:  gofeed.NewParser(),
		limiter: limiter,
	}
}

// Fetch downloads and parses one RSS feed into candidates, newest first as
// the feed orders them. Items without a link are dropped.
func (c *Client) Fetch(ctx context.Context, feedURL string) ([]domain.Candidate, error) {
	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, feedURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUA)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed get: unexpected status %s", resp.Status)
	}

	parsed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("feed parse: %w", err)
	}

	var out []domain.Candidate
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}
		cand := domain.Candidate{
			Title:       item.Title,
			URL:         item.Link,
			Description: item.Description,
		}
		if item.PublishedParsed != nil {
			cand.PublishedAt = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			cand.PublishedAt = item.UpdatedParsed.UTC()
		}
		cand.Source = sourceFromTitle(item.Title)
		out = append(out, cand)
	}
	return out, nil
}

// sourceFromTitle pulls the publisher out of a Google News style headline,
// which ends with " - Publisher".
func sourceFromTitle(title string) string {
	if i := strings.LastIndex(title, " - "); i >= 0 {
		return strings.TrimSpace(title[i+3:])
	}
	return ""
}
