package feed

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter spaces requests per hostname. Nearly every feed in a run
// lives on news.google.com, so without this a scan of a dozen targets
// fires a burst that trips throttling.
type HostLimiter struct {
	reqPerSec rate.Limit
	burst     int

	mu      sync.Mutex
	perHost map[string]*rate.Limiter
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		reqPerSec: rate.Limit(reqPerSec),
		burst:     burst,
		perHost:   make(map[string]*rate.Limiter),
	}
}

// WaitURL blocks until the URL's host is allowed another request, or the
// ctx ends. Unparseable URLs share one bucket so they still can't stampede.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	host := "unknown"
	if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
		host = strings.ToLower(u.Hostname())
	}

	hl.mu.Lock()
	lim, ok := hl.perHost[host]
	if !ok {
		lim = rate.NewLimiter(hl.reqPerSec, hl.burst)
		hl.perHost[host] = lim
	}
	hl.mu.Unlock()

	return lim.Wait(ctx)
}
