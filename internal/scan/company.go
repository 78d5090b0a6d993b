package scan

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/emadprograms/News-Fetcher-CLI/internal/domain"
	"github.com/emadprograms/News-Fetcher-CLI/internal/marketaux"
	"github.com/emadprograms/News-Fetcher-CLI/internal/store"
)

// CompanyNewsAPI is the paid discovery layer. *marketaux.Client satisfies
// it.
type CompanyNewsAPI interface {
	CompanyNews(ctx context.Context, ticker string, date time.Time) ([]marketaux.NewsItem, error)
}

// RunCompany scans the watchlist one ticker at a time. Discovery runs two
// layers concurrently, free Google RSS and the MarketAux API, then the
// merged candidates go through the shared pipeline. Failed extractions keep
// the headline with the feed description.
func (e *Engine) RunCompany(ctx context.Context, p Params, tickers []store.Ticker, api CompanyNewsAPI) Result {
	var res Result

	targets := make([]domain.ScanTarget, len(tickers))
	for i, t := range tickers {
		targets[i] = domain.ScanTarget{Name: t.Symbol, Category: t.Symbol}
	}
	targets, owned := e.applyResume("COMPANY", targets, p, &res)
	if len(targets) == 0 {
		return res
	}

	byName := map[string]store.Ticker{}
	for _, t := range tickers {
		byName[t.Symbol] = t
	}

	for _, target := range targets {
		if ctx.Err() != nil {
			res.addErr(ctx.Err())
			return res
		}
		ticker := byName[target.Name]
		if owned {
			if err := e.pm.MarkTargetStart(ticker.Symbol); err != nil {
				res.addErr(err)
			}
		}
		e.log.Info("starting hunt", zap.String("ticker", ticker.Symbol))

		candidates := e.discoverCompany(ctx, ticker.Symbol, p, api, &res)
		if len(candidates) == 0 {
			e.log.Info("no leads found", zap.String("ticker", ticker.Symbol))
			e.completeTarget(ticker.Symbol, owned, &res)
			continue
		}

		copts := candidateOpts{
			category: ticker.Symbol,
			fallback: fallbackDescription,
		}
		if e.cfg.Company.StrictTickerMatch {
			// Relevance gate: in strict mode a story must actually
			// mention the company before it may be persisted.
			tk := ticker
			copts.accept = func(a domain.Article) bool {
				if mentionsCompany(a, tk) {
					return true
				}
				e.log.Debug("dropped irrelevant story",
					zap.String("ticker", tk.Symbol),
					zap.String("title", a.Title))
				return false
			}
		}

		processed := 0
		for _, cand := range candidates {
			if processed >= p.Depth {
				break
			}
			processed++

			copts.description = cand.Description
			if e.handleCandidate(ctx, cand, p, copts, &res) {
				e.log.Warn("browser unrecoverable, abandoning ticker", zap.String("ticker", ticker.Symbol))
				break
			}
		}

		e.completeTarget(ticker.Symbol, owned, &res)
	}

	if owned {
		if err := e.pm.FinishScan(); err != nil {
			res.addErr(err)
		}
	}
	return res
}

// discoverCompany merges the RSS and API discovery layers for one ticker,
// deduplicating by normalized title.
func (e *Engine) discoverCompany(ctx context.Context, ticker string, p Params, api CompanyNewsAPI, res *Result) []domain.Candidate {
	var rssItems []domain.Candidate
	var apiItems []marketaux.NewsItem

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := e.feeds.Fetch(gctx, companyFeedURL(ticker, e.cfg.Company.ScanDays))
		if err != nil {
			return fmt.Errorf("rss layer: %w", err)
		}
		rssItems = items
		return nil
	})
	if api != nil {
		g.Go(func() error {
			items, err := api.CompanyNews(gctx, ticker, p.Session.TargetDate)
			if err != nil {
				return fmt.Errorf("marketaux layer: %w", err)
			}
			apiItems = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// One layer failing still leaves the other's finds usable.
		e.log.Warn("discovery layer failed", zap.String("ticker", ticker), zap.Error(err))
		res.addErr(err)
	}

	seen := map[string]bool{}
	var out []domain.Candidate
	add := func(c domain.Candidate) {
		key := domain.TitleKey(c.Title)
		if c.URL == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, c)
	}

	const rssLimit = 10
	for i, c := range rssItems {
		if i >= rssLimit {
			break
		}
		add(c)
	}
	for _, item := range apiItems {
		add(domain.Candidate{
			Title:       item.Title,
			URL:         item.URL,
			Description: item.Description,
			PublishedAt: item.PublishedAt,
			Source:      item.Source,
		})
	}
	return out
}

// companyFeedURL builds the Google News search feed for one ticker over the
// configured scan window.
func companyFeedURL(ticker string, scanDays int) string {
	q := url.QueryEscape(fmt.Sprintf("%s stock news when:%dd", ticker, scanDays))
	return "https://news.google.com/rss/search?q=" + q + "&hl=en-US&gl=US&ceid=US:en"
}

// mentionsCompany checks the headline and the first lines of content for
// the ticker or the company name.
func mentionsCompany(a domain.Article, t store.Ticker) bool {
	needles := []string{strings.ToUpper(t.Symbol)}
	if t.CompanyName != "" {
		needles = append(needles, strings.ToUpper(t.CompanyName))
	}

	haystack := strings.ToUpper(a.Title)
	for i, line := range a.Content {
		if i >= 5 {
			break
		}
		haystack += "\n" + strings.ToUpper(line)
	}

	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
