// Package scan runs the harvesting engines: macro and sector feed scans
// plus the per-ticker company scan, all sharing one candidate pipeline.
package scan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/emadprograms/News-Fetcher-CLI/internal/browser"
	"github.com/emadprograms/News-Fetcher-CLI/internal/config"
	"github.com/emadprograms/News-Fetcher-CLI/internal/dedup"
	"github.com/emadprograms/News-Fetcher-CLI/internal/domain"
	"github.com/emadprograms/News-Fetcher-CLI/internal/marketcal"
	"github.com/emadprograms/News-Fetcher-CLI/internal/progress"
	"github.com/emadprograms/News-Fetcher-CLI/internal/store"
)

// FeedSource pulls discovery feeds.
type FeedSource interface {
	Fetch(ctx context.Context, feedURL string) ([]domain.Candidate, error)
}

// ContentFetcher renders and extracts one article page. *browser.Session
// satisfies it; tests stub it.
type ContentFetcher interface {
	Fetch(url string, opts browser.FetchOptions) (browser.Extraction, error)
	Restart(ctx context.Context) error
	Reset() error
}

// Result is what every scan returns: everything harvested (hidden rows
// included) plus the non-fatal errors hit along the way.
type Result struct {
	Articles []domain.Article
	// Hidden holds the suppression placeholders persisted during the run.
	// They never appear in Articles.
	Hidden []domain.Article
	Errors []error
}

func (r *Result) addErr(err error) {
	r.Errors = append(r.Errors, err)
}

// Params bound one scan run.
type Params struct {
	Session marketcal.Session
	// Depth is the per-target candidate limit.
	Depth int
}

// Engine shares its db handle, browser session, dedup index and progress
// tracker across the scan phases of a run.
type Engine struct {
	db      *sql.DB
	fetcher ContentFetcher
	feeds   FeedSource
	index   *dedup.Index
	pm      *progress.Manager
	log     *zap.Logger
	cfg     config.Config
	filters *filterSet
}

func NewEngine(db *sql.DB, fetcher ContentFetcher, feeds FeedSource, index *dedup.Index, pm *progress.Manager, log *zap.Logger, cfg config.Config) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if index == nil {
		index = dedup.NewIndex()
	}
	return &Engine{
		db:      db,
		fetcher: fetcher,
		feeds:   feeds,
		index:   index,
		pm:      pm,
		log:     log,
		cfg:     cfg,
		filters: newFilterSet(cfg),
	}
}

// fallbackMode is what happens when extraction yields nothing usable.
type fallbackMode int

const (
	fallbackNone fallbackMode = iota
	// fallbackManualRead keeps the headline with a read-it-yourself note.
	fallbackManualRead
	// fallbackDescription keeps the headline with the feed description.
	fallbackDescription
)

// candidateOpts tune the shared pipeline per scan type.
type candidateOpts struct {
	category        string
	allowPublishers []string
	fallback        fallbackMode
	description     string
	// accept vets a fetched article before anything is persisted or
	// marked seen. A rejected story leaves no trace in the store or the
	// dedup index.
	accept func(domain.Article) bool
}

// feedScanOpts tune runFeedScan per scan type.
type feedScanOpts struct {
	manualRead      bool
	allowPublishers func(target domain.ScanTarget) []string
}

// runFeedScan is the shared macro/sector loop: resume or start progress
// tracking, then walk each feed target through the candidate pipeline.
func (e *Engine) runFeedScan(ctx context.Context, scanType string, targets []domain.ScanTarget, p Params, opts feedScanOpts) Result {
	var res Result

	targets, owned := e.applyResume(scanType, targets, p, &res)
	if len(targets) == 0 {
		return res
	}

	for _, target := range targets {
		if ctx.Err() != nil {
			res.addErr(ctx.Err())
			return res
		}
		if owned {
			if err := e.pm.MarkTargetStart(target.Name); err != nil {
				res.addErr(err)
			}
		}

		e.log.Info("connecting to feed", zap.String("target", target.Name))
		candidates, err := e.feeds.Fetch(ctx, target.FeedURL)
		if err != nil {
			e.log.Warn("feed fetch failed", zap.String("target", target.Name), zap.Error(err))
			res.addErr(fmt.Errorf("%s: %w", target.Name, err))
			e.completeTarget(target.Name, owned, &res)
			continue
		}
		e.log.Info("feed received", zap.String("target", target.Name), zap.Int("entries", len(candidates)))

		copts := candidateOpts{category: target.Category}
		if opts.manualRead {
			copts.fallback = fallbackManualRead
		}
		if opts.allowPublishers != nil {
			copts.allowPublishers = opts.allowPublishers(target)
		}

		processed := 0
		for _, cand := range candidates {
			if processed >= p.Depth {
				break
			}
			processed++
			copts.description = cand.Description
			if e.handleCandidate(ctx, cand, p, copts, &res) {
				e.log.Warn("browser unrecoverable, abandoning target", zap.String("target", target.Name))
				break
			}
		}

		e.completeTarget(target.Name, owned, &res)
		time.Sleep(time.Second)
	}

	if owned {
		if err := e.pm.FinishScan(); err != nil {
			res.addErr(err)
		}
	}
	return res
}

// applyResume picks up an interrupted scan of the same type, otherwise
// registers a fresh one. A live checkpoint of a different scan type is left
// alone so its owner can still resume; owned reports false in that case and
// the caller must not touch the progress tracker at all.
func (e *Engine) applyResume(scanType string, targets []domain.ScanTarget, p Params, res *Result) (kept []domain.ScanTarget, owned bool) {
	if e.pm == nil {
		return targets, false
	}

	ri, err := e.pm.GetResumeInfo()
	if err != nil {
		res.addErr(err)
		return targets, false
	}

	if ri != nil && ri.ScanType != scanType {
		e.log.Info("leaving foreign checkpoint untouched",
			zap.String("checkpoint", ri.ScanType),
			zap.String("type", scanType))
		return targets, false
	}

	if ri != nil {
		remaining := map[string]bool{}
		for _, name := range ri.Remaining {
			remaining[name] = true
		}
		for _, t := range targets {
			if remaining[t.Name] {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			// Remaining targets no longer exist in config; a stuck
			// checkpoint would otherwise never clear.
			e.log.Warn("resume targets missing from config, finishing scan",
				zap.String("type", scanType))
			if err := e.pm.FinishScan(); err != nil {
				res.addErr(err)
			}
			return nil, false
		}
		e.log.Info("resuming scan",
			zap.String("type", scanType),
			zap.Int("remaining", len(kept)),
			zap.Int("total", ri.TotalCount))
		return kept, true
	}

	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	if err := e.pm.StartNewScan(scanType, names, p.Session.TargetDate.Format("2006-01-02")); err != nil {
		res.addErr(err)
	}
	return targets, true
}

// completeTarget records a finished target, but only for the engine that
// owns the live checkpoint.
func (e *Engine) completeTarget(name string, owned bool, res *Result) {
	if !owned {
		return
	}
	if err := e.pm.MarkTargetComplete(name); err != nil {
		res.addErr(err)
	}
}

// handleCandidate walks one feed item through the rejection cascade and, if
// it survives, fetches and persists it. Appended articles include hidden
// placeholder rows. A true return means the browser is gone for good and
// the caller should abandon the current target's remaining candidates.
func (e *Engine) handleCandidate(ctx context.Context, cand domain.Candidate, p Params, opts candidateOpts, res *Result) (halt bool) {
	title := cand.Title
	short := truncate(title, 60)

	// 1. Session window.
	if !p.Session.Contains(cand.PublishedAt) {
		return false
	}

	// 2. Fast title blocklist: persist as hidden so the story is never
	// re-evaluated.
	if e.filters.titleBlocked(title) {
		e.log.Debug("blocked title keyword", zap.String("title", short))
		e.persistHidden(cand, "BLOCKED TITLE KEYWORD", res)
		return false
	}

	// 3. Regional editions.
	if e.filters.foreign(title) {
		e.log.Debug("skipped foreign edition", zap.String("title", short))
		return false
	}

	// 4. Blocklisted source named in the headline.
	if src, bad := e.filters.blockedSource(title, opts.allowPublishers); bad {
		e.log.Debug("blocked source in title", zap.String("title", short), zap.String("source", src))
		e.persistHidden(cand, "BLOCKED SOURCE", res)
		return false
	}

	// 5. Regional mirror hosts.
	if e.filters.foreignMirror(cand.URL) {
		e.log.Debug("skipped non-US mirror", zap.String("url", cand.URL))
		return false
	}

	// 6. Fast URL blocklist.
	if e.filters.urlBlocked(cand.URL) {
		e.log.Debug("blocked url keyword", zap.String("url", cand.URL))
		e.persistHidden(cand, "BLOCKED URL KEYWORD", res)
		return false
	}

	// 7. Session dedup index. A URL whose content is already cached
	// counts as accepted again, without a fetch; a bare URL or title hit
	// is a plain skip.
	if e.index.HasTitle(title) {
		e.log.Debug("skipped duplicate title", zap.String("title", short))
		return false
	}
	if cached, ok := e.index.Cached(cand.URL); ok {
		e.log.Debug("cache hit", zap.String("title", short))
		if opts.accept == nil || opts.accept(cached) {
			res.Articles = append(res.Articles, cached)
		}
		return false
	}
	if e.index.HasURL(cand.URL) {
		e.log.Debug("skipped duplicate url", zap.String("url", cand.URL))
		return false
	}

	// 8. Store, raw URL then query-stripped.
	if e.db != nil {
		id, err := store.ArticleExists(e.db, cand.URL)
		if err != nil {
			res.addErr(err)
		} else if id != 0 {
			e.log.Debug("already in store", zap.String("title", short), zap.Int64("row", id))
			e.index.MarkTitle(title)
			return false
		}
	}

	// 9. Fetch and extract.
	article, ok, halt := e.fetchCandidate(ctx, cand, opts, res)
	if halt {
		return true
	}

	// Park the browser between candidates so a wedged page cannot leak
	// into the next fetch.
	if e.fetcher != nil {
		_ = e.fetcher.Reset()
	}

	if !ok {
		return false
	}
	if opts.accept != nil && !opts.accept(article) {
		e.log.Debug("dropped irrelevant story", zap.String("title", short))
		return false
	}
	e.persist(article, res)
	e.index.MarkSeen(article)
	res.Articles = append(res.Articles, article)
	e.log.Info("report secured", zap.String("title", short), zap.String("publisher", article.Publisher))
	return false
}

// fetchCandidate runs the tiered-retry fetch and maps its outcome to an
// article, a hidden row, a fallback, or nothing.
func (e *Engine) fetchCandidate(ctx context.Context, cand domain.Candidate, opts candidateOpts, res *Result) (article domain.Article, ok, halt bool) {
	if e.fetcher == nil {
		a, kept := e.fallbackArticle(cand, opts)
		return a, kept, false
	}

	fopts := browser.FetchOptions{
		AllowedHosts:      e.cfg.Filters.AllowedMirrorHosts,
		BlockedPublishers: e.cfg.Filters.BlockedSources,
		AllowPublishers:   opts.allowPublishers,
		PrioritySources:   e.cfg.Filters.PrioritySources,
	}

	ext, err := e.fetchWithRetry(ctx, cand.URL, fopts, e.filters.premium(cand.Title, cand.URL))
	if err != nil {
		var blocked *browser.BlockedContentError
		if errors.As(err, &blocked) {
			e.log.Debug("blocked content", zap.String("reason", blocked.Reason))
			e.persistHidden(cand, "BLOCKED SOURCE", res)
			return domain.Article{}, false, false
		}
		if errors.Is(err, errSessionLost) {
			res.addErr(fmt.Errorf("fetch %s: %w", cand.URL, err))
			return domain.Article{}, false, true
		}
		if !errors.Is(err, browser.ErrNoContent) {
			res.addErr(fmt.Errorf("fetch %s: %w", cand.URL, err))
		}
		a, kept := e.fallbackArticle(cand, opts)
		return a, kept, false
	}

	return domain.Article{
		Title:        cand.Title,
		URL:          cand.URL,
		Content:      ext.Content,
		Publisher:    e.pickPublisher(ext, cand),
		Category:     opts.category,
		PublishedAt:  cand.PublishedAt,
		SourceDomain: "finance.yahoo.com",
	}, true, false
}

// pickPublisher prefers what extraction found over the feed's source name,
// unless extraction only produced the default.
func (e *Engine) pickPublisher(ext browser.Extraction, cand domain.Candidate) string {
	if ext.Publisher != "" && ext.Publisher != browser.DefaultPublisher {
		return ext.Publisher
	}
	if cand.Source != "" {
		return cand.Source
	}
	return ext.Publisher
}

// fallbackArticle converts a failed extraction into whatever the scan type
// keeps instead: nothing, a manual-read stub, or the feed description.
func (e *Engine) fallbackArticle(cand domain.Candidate, opts candidateOpts) (domain.Article, bool) {
	switch opts.fallback {
	case fallbackManualRead:
		return domain.Article{
			Title: "[MANUAL READ] " + cand.Title,
			URL:   cand.URL,
			Content: []string{
				"Automated extraction failed (video or protected content).",
				"Open the link to read the story on Yahoo Finance.",
			},
			Publisher:    cand.Source,
			Category:     opts.category,
			PublishedAt:  cand.PublishedAt,
			SourceDomain: "finance.yahoo.com",
		}, true
	case fallbackDescription:
		content := []string{"(Content unavailable)"}
		if opts.description != "" {
			content = []string{opts.description}
		}
		return domain.Article{
			Title:        cand.Title,
			URL:          cand.URL,
			Content:      content,
			Publisher:    cand.Source,
			Category:     opts.category,
			PublishedAt:  cand.PublishedAt,
			SourceDomain: "finance.yahoo.com",
		}, true
	default:
		return domain.Article{}, false
	}
}

// persistHidden stores the suppression placeholder and marks the title seen
// so later runs skip it without a fetch.
// truncate shortens s to at most n runes for log lines.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (e *Engine) persistHidden(cand domain.Candidate, reason string, res *Result) {
	hidden := domain.HiddenArticle(cand.Title, store.StripQuery(cand.URL), reason, "finance.yahoo.com", cand.PublishedAt)
	e.persist(hidden, res)
	e.index.MarkTitle(cand.Title)
	res.Hidden = append(res.Hidden, hidden)
}

func (e *Engine) persist(a domain.Article, res *Result) {
	if e.db == nil {
		return
	}
	added, err := store.InsertArticle(e.db, a)
	if err != nil {
		res.addErr(err)
		return
	}
	if !added {
		e.log.Debug("already exists, ignored by store", zap.String("url", a.URL))
	}
}
