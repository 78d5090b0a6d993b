// Package marketaux is a thin client for the MarketAux news API, used as
// the paid backup layer of company discovery.
package marketaux

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const baseURL = "https://api.marketaux.com/v1/news/all"

// ErrNoKeys means the client was built without any API key.
var ErrNoKeys = errors.New("marketaux: no api keys configured")

// NewsItem is one article the API returned.
type NewsItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

type apiResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Data []NewsItem `json:"data"`
}

// Client rotates through a pool of API keys, moving on when one hits its
// daily usage limit.
type Client struct {
	http    *http.Client
	keys    []string
	keyIdx  int
	baseURL string
}

func NewClient(keys []string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		keys:    keys,
		baseURL: baseURL,
	}
}

func (c *Client) rotateKey() {
	c.keyIdx = (c.keyIdx + 1) % len(c.keys)
}

// CompanyNews fetches up to two pages of news for one ticker on one day.
// A key reporting usage_limit_reached rotates to the next key, with at most
// three attempts per page; other API errors stop the page loop.
func (c *Client) CompanyNews(ctx context.Context, ticker string, date time.Time) ([]NewsItem, error) {
	if len(c.keys) == 0 {
		return nil, ErrNoKeys
	}

	var items []NewsItem
	for page := 1; page <= 2; page++ {
		pageItems, err := c.fetchPage(ctx, ticker, date, page)
		if err != nil {
			return items, err
		}
		items = append(items, pageItems...)

		// An empty first page means there is nothing deeper.
		if page == 1 && len(items) == 0 {
			break
		}
		if page < 2 {
			select {
			case <-time.After(500 * time.Millisecond):
			case <-ctx.Done():
				return items, ctx.Err()
			}
		}
	}
	return items, nil
}

func (c *Client) fetchPage(ctx context.Context, ticker string, date time.Time, page int) ([]NewsItem, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		q := url.Values{}
		q.Set("symbols", ticker)
		q.Set("published_on", date.UTC().Format("2006-01-02"))
		q.Set("language", "en")
		q.Set("filter_entities", "true")
		q.Set("limit", "3")
		q.Set("page", strconv.Itoa(page))
		q.Set("api_token", c.keys[c.keyIdx])

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		var parsed apiResponse
		err = json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("marketaux decode: %w", err)
			continue
		}

		if parsed.Error != nil {
			if parsed.Error.Code == "usage_limit_reached" {
				c.rotateKey()
				lastErr = fmt.Errorf("marketaux: %s", parsed.Error.Code)
				continue
			}
			return nil, fmt.Errorf("marketaux: %s: %s", parsed.Error.Code, parsed.Error.Message)
		}
		return parsed.Data, nil
	}
	return nil, fmt.Errorf("marketaux: page %d failed after retries: %w", page, lastErr)
}
