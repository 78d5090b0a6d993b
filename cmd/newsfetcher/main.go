// Command newsfetcher harvests the trading session's financial news into a
// local sqlite store: macro feeds, sector feeds, then the per-ticker
// watchlist, resuming any scan interrupted mid-run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/emadprograms/News-Fetcher-CLI/internal/browser"
	"github.com/emadprograms/News-Fetcher-CLI/internal/config"
	"github.com/emadprograms/News-Fetcher-CLI/internal/dedup"
	"github.com/emadprograms/News-Fetcher-CLI/internal/feed"
	"github.com/emadprograms/News-Fetcher-CLI/internal/logging"
	"github.com/emadprograms/News-Fetcher-CLI/internal/marketaux"
	"github.com/emadprograms/News-Fetcher-CLI/internal/marketcal"
	"github.com/emadprograms/News-Fetcher-CLI/internal/progress"
	"github.com/emadprograms/News-Fetcher-CLI/internal/report"
	"github.com/emadprograms/News-Fetcher-CLI/internal/scan"
	"github.com/emadprograms/News-Fetcher-CLI/internal/secrets"
	"github.com/emadprograms/News-Fetcher-CLI/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "newsfetcher:", err)
		os.Exit(1)
	}
}

func run() error {
	defaultData := os.Getenv("NEWSFETCHER_DATA_DIR")
	if defaultData == "" {
		defaultData = "."
	}

	var (
		dataDir     = flag.String("data-dir", defaultData, "directory for the database, logs and state")
		cfgDefault  = flag.String("config", filepath.Join("config", "config.yml"), "shipped default config, copied to the data dir on first run")
		dateStr     = flag.String("date", "", "scan as of this trading day (YYYY-MM-DD) instead of now")
		check       = flag.Bool("check", false, "resolve the session, report stored counts and resume state, run nothing")
		depth       = flag.Int("depth", 0, "override per-target candidate depth")
		showBrowser = flag.Bool("show-browser", false, "run Chrome with a visible window")
		debug       = flag.Bool("debug", false, "verbose console logging")
		setKeys     = flag.String("set-keys", "", "store comma-separated MarketAux API keys in the keychain and exit")
		addTicker   = flag.String("add-ticker", "", `add "SYM:Company Name" to the watchlist and exit`)
		addEvent    = flag.String("add-event", "", `add "Event Name=YYYY-MM-DD" to the calendar and exit`)
	)
	flag.Parse()

	if *setKeys != "" {
		if err := secrets.SetMarketAuxKeys(*setKeys); err != nil {
			return fmt.Errorf("store keys: %w", err)
		}
		fmt.Println("MarketAux keys stored")
		return nil
	}

	userCfgPath, err := config.EnsureUserConfig(*dataDir, *cfgDefault)
	if err != nil {
		return fmt.Errorf("config bootstrap: %w", err)
	}
	cfg, err := config.Load(userCfgPath)
	if err != nil {
		return fmt.Errorf("config load (%s): %w", userCfgPath, err)
	}
	cfg, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		fmt.Fprintln(os.Stderr, "config warning:", w)
	}
	if !v.OK() {
		return fmt.Errorf("config invalid: %s", strings.Join(v.Errors, "; "))
	}
	if *depth > 0 {
		cfg.App.Depth = *depth
	}

	log := logging.New(*dataDir, *debug)
	defer func() { _ = log.Sync() }()

	db, err := store.Open(filepath.Join(*dataDir, "news.db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	if *addTicker != "" {
		return addWatchlistTicker(db, *addTicker)
	}
	if *addEvent != "" {
		return addCalendarEvent(db, *addEvent)
	}

	now := time.Now().UTC()
	var session marketcal.Session
	if *dateStr != "" {
		d, err := time.Parse("2006-01-02", *dateStr)
		if err != nil {
			return fmt.Errorf("bad -date %q: %w", *dateStr, err)
		}
		session = marketcal.ResolveSessionForDate(d, now)
	} else {
		session = marketcal.ResolveTradingSession(now)
	}
	log.Info("session resolved",
		zap.String("target_date", session.TargetDate.Format("2006-01-02")),
		zap.Time("lookback_start", session.LookbackStart),
		zap.Time("lookback_end", session.LookbackEnd))

	pm := progress.NewManager(progress.NewFileStore(filepath.Join(*dataDir, "scan_state.json")))

	if *check {
		return printCheck(db, pm, session)
	}

	keys, err := secrets.MarketAuxKeys()
	if err != nil {
		return fmt.Errorf("company scan needs MarketAux keys (use -set-keys or %s): %w",
			"MARKETAUX_API_KEYS", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScans(ctx, log, cfg, db, pm, session, keys, !*showBrowser && cfg.App.Headless)
}

// runScans owns the browser for the whole run and walks the three phases in
// order, skipping phases already finished when resuming.
func runScans(ctx context.Context, log *zap.Logger, cfg config.Config, db *store.DB, pm *progress.Manager, session marketcal.Session, keys []string, headless bool) error {
	index, err := dedup.Seed(db.Pool, session.LookbackStart, session.LookbackEnd)
	if err != nil {
		return fmt.Errorf("seed dedup index: %w", err)
	}

	before, err := store.CountInRange(db.Pool, session.LookbackStart, session.LookbackEnd, "")
	if err != nil {
		return fmt.Errorf("count window: %w", err)
	}

	runID, err := store.LogScanStart(db.Pool, "FULL", session.TargetDate, session.LookbackStart, session.LookbackEnd)
	if err != nil {
		return fmt.Errorf("log scan start: %w", err)
	}
	started := time.Now()

	bs, err := browser.Acquire(ctx, headless)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer bs.Close()

	feeds := feed.NewClient(feed.NewHostLimiter(1, 2))
	engine := scan.NewEngine(db.Pool, bs, feeds, index, pm, log.Named("scan"), cfg)
	params := scan.Params{Session: session, Depth: cfg.App.Depth}

	phases := phasesToRun(pm, log)
	var results []scan.Result

	if phases["MACRO"] {
		results = append(results, engine.RunMacro(ctx, params))
	}
	if phases["SECTOR"] && ctx.Err() == nil {
		results = append(results, engine.RunSector(ctx, params))
	}
	if phases["COMPANY"] && ctx.Err() == nil {
		tickers, err := store.MonitoredTickers(db.Pool)
		if err != nil {
			return fmt.Errorf("load watchlist: %w", err)
		}
		if len(tickers) == 0 {
			log.Info("watchlist empty, skipping company scan")
			// A live COMPANY checkpoint would otherwise pin every
			// later run to the company phase forever.
			if err := clearCompanyCheckpoint(pm); err != nil {
				log.Warn("stale checkpoint not cleared", zap.Error(err))
			}
		} else {
			api := marketaux.NewClient(keys)
			results = append(results, engine.RunCompany(ctx, params, tickers, api))
		}
	}

	summary := buildSummary(cfg, results)
	after, err := store.CountInRange(db.Pool, session.LookbackStart, session.LookbackEnd, "")
	if err == nil {
		summary.Inserted = after - before
		collected := 0
		for _, r := range results {
			collected += len(r.Articles) + len(r.Hidden)
		}
		if d := collected - summary.Hidden - summary.Inserted; d > 0 {
			summary.Duplicates = d
		}
	}

	status := store.ScanStatusCompleted
	if ctx.Err() != nil {
		status = store.ScanStatusAborted
	}
	if err := store.LogScanEnd(db.Pool, runID, status, summary.Inserted, summary.Duplicates, summary.Errors); err != nil {
		log.Warn("scan log close failed", zap.Error(err))
	}

	fmt.Print(summary.Render())
	log.Info("run finished",
		zap.Int("new", summary.Inserted),
		zap.Int("hidden", summary.Hidden),
		zap.Int("errors", summary.Errors),
		zap.Duration("took", time.Since(started)))

	return ctx.Err()
}

// clearCompanyCheckpoint finishes a live COMPANY checkpoint whose tickers
// are gone from the watchlist, so it stops masking the macro and sector
// phases on later runs. Checkpoints of other scan types are left alone.
func clearCompanyCheckpoint(pm *progress.Manager) error {
	ri, err := pm.GetResumeInfo()
	if err != nil {
		return err
	}
	if ri == nil || ri.ScanType != "COMPANY" {
		return nil
	}
	return pm.FinishScan()
}

// phasesToRun skips phases that were already completed before an
// interrupted run's checkpoint.
func phasesToRun(pm *progress.Manager, log *zap.Logger) map[string]bool {
	phases := map[string]bool{"MACRO": true, "SECTOR": true, "COMPANY": true}
	ri, err := pm.GetResumeInfo()
	if err != nil || ri == nil {
		return phases
	}

	log.Info("resuming interrupted run",
		zap.String("type", ri.ScanType),
		zap.Int("remaining", len(ri.Remaining)),
		zap.String("last_target", ri.LastTarget))

	switch ri.ScanType {
	case "SECTOR":
		phases["MACRO"] = false
	case "COMPANY":
		phases["MACRO"] = false
		phases["SECTOR"] = false
	}
	return phases
}

func buildSummary(cfg config.Config, results []scan.Result) *report.Summary {
	cls := report.NewClassifier(cfg.Report.SeverityRules)
	summary := report.NewSummary()
	for _, r := range results {
		for _, a := range r.Articles {
			summary.Add(a, cls)
		}
		for _, a := range r.Hidden {
			summary.Add(a, cls)
		}
		summary.Errors += len(r.Errors)
	}
	return summary
}

// printCheck reports on the resolved session without scanning.
func printCheck(db *store.DB, pm *progress.Manager, session marketcal.Session) error {
	total, err := store.CountInRange(db.Pool, session.LookbackStart, session.LookbackEnd, "")
	if err != nil {
		return err
	}
	fmt.Printf("target trading day: %s\n", session.TargetDate.Format("2006-01-02"))
	fmt.Printf("lookback window:    %s .. %s\n",
		session.LookbackStart.Format(time.RFC3339), session.LookbackEnd.Format(time.RFC3339))
	fmt.Printf("stored in window:   %d articles\n", total)

	ri, err := pm.GetResumeInfo()
	if err != nil {
		return err
	}
	if ri == nil {
		fmt.Println("resume state:       none")
	} else {
		fmt.Printf("resume state:       %s scan, %d/%d targets done, next %v\n",
			ri.ScanType, ri.CompletedCount, ri.TotalCount, ri.Remaining)
	}
	return nil
}

func addWatchlistTicker(db *store.DB, arg string) error {
	sym, name, _ := strings.Cut(arg, ":")
	if strings.TrimSpace(sym) == "" {
		return errors.New(`-add-ticker wants "SYM:Company Name"`)
	}
	if err := store.AddTicker(db.Pool, sym, strings.TrimSpace(name)); err != nil {
		return err
	}
	fmt.Printf("watching %s\n", strings.ToUpper(strings.TrimSpace(sym)))
	return nil
}

func addCalendarEvent(db *store.DB, arg string) error {
	name, dateStr, ok := strings.Cut(arg, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return errors.New(`-add-event wants "Event Name=YYYY-MM-DD"`)
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(dateStr))
	if err != nil {
		return fmt.Errorf("bad event date %q: %w", dateStr, err)
	}
	if err := store.AddEvent(db.Pool, strings.TrimSpace(name), d); err != nil {
		return err
	}
	fmt.Printf("event %q on %s\n", strings.TrimSpace(name), d.Format("2006-01-02"))
	return nil
}
