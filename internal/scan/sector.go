package scan

import "context"

// RunSector scans the stock/sector feed targets. Unlike the macro scan, a
// failed extraction still keeps the headline as a manual-read stub, since
// sector stories are often video or paywalled.
func (e *Engine) RunSector(ctx context.Context, p Params) Result {
	targets := targetsFromConfig(e.cfg.Targets.Sector)
	return e.runFeedScan(ctx, "SECTOR", targets, p, feedScanOpts{manualRead: true})
}
