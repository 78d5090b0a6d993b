package scan

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/emadprograms/News-Fetcher-CLI/internal/browser"
)

// errSessionLost marks a browser that died and could not be relaunched.
// The engine abandons the current target's remaining candidates on it.
var errSessionLost = errors.New("browser session lost")

// fetchWithRetry fetches one page with the tiered attempt budget: one try
// for ordinary sources, two for premium ones. A dead browser is restarted
// between attempts; blocked content is never retried.
func (e *Engine) fetchWithRetry(ctx context.Context, url string, opts browser.FetchOptions, premium bool) (browser.Extraction, error) {
	attempts := 1
	if premium {
		attempts = 2
		e.log.Debug("premium source, retries enabled", zap.String("url", url))
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return browser.Extraction{}, ctx.Err()
		}

		ext, err := e.fetcher.Fetch(url, opts)
		if err == nil {
			return ext, nil
		}
		lastErr = err

		var blocked *browser.BlockedContentError
		if errors.As(err, &blocked) {
			return browser.Extraction{}, err
		}

		var dead *browser.DeadSessionError
		if errors.As(err, &dead) {
			e.log.Warn("browser died, restarting",
				zap.Int("attempt", attempt+1),
				zap.Int("attempts", attempts))
			if rerr := e.fetcher.Restart(ctx); rerr != nil {
				return browser.Extraction{}, fmt.Errorf("%w: restart failed: %v", errSessionLost, rerr)
			}
			continue
		}

		e.log.Debug("fetch attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return browser.Extraction{}, lastErr
}
