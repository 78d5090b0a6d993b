package scan

import (
	"net/url"
	"strings"

	"github.com/emadprograms/News-Fetcher-CLI/internal/config"
)

// filterSet is the candidate-rejection cascade, precomputed from config so
// the per-item checks are plain scans.
type filterSet struct {
	blockedSources []string // upper
	premiumSources []string // upper
	foreignMarkers []string // upper
	titleKeywords  []string // lower
	urlKeywords    []string // lower
	allowedHosts   []string // lower
}

func newFilterSet(cfg config.Config) *filterSet {
	upper := func(xs []string) []string {
		out := make([]string, len(xs))
		for i, x := range xs {
			out[i] = strings.ToUpper(x)
		}
		return out
	}
	lower := func(xs []string) []string {
		out := make([]string, len(xs))
		for i, x := range xs {
			out[i] = strings.ToLower(x)
		}
		return out
	}
	return &filterSet{
		blockedSources: upper(cfg.Filters.BlockedSources),
		premiumSources: upper(cfg.Filters.PremiumSources),
		foreignMarkers: upper(cfg.Filters.ForeignMarkers),
		titleKeywords:  lower(cfg.Filters.TitleBlockKeywords),
		urlKeywords:    lower(cfg.Filters.URLBlockKeywords),
		allowedHosts:   lower(cfg.Filters.AllowedMirrorHosts),
	}
}

// titleBlocked reports a fast-blocklist keyword hit in the headline.
func (f *filterSet) titleBlocked(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range f.titleKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// urlBlocked reports a fast-blocklist keyword hit in the URL.
func (f *filterSet) urlBlocked(u string) bool {
	lower := strings.ToLower(u)
	for _, kw := range f.urlKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// foreign reports a regional-edition marker in the headline.
func (f *filterSet) foreign(title string) bool {
	upper := strings.ToUpper(title)
	for _, m := range f.foreignMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}

// blockedSource returns the blocklisted source named in the headline, if
// any. Sources in allow are exempt for this run.
func (f *filterSet) blockedSource(title string, allow []string) (string, bool) {
	upper := strings.ToUpper(title)
	for _, src := range f.blockedSources {
		if !strings.Contains(upper, src) {
			continue
		}
		exempt := false
		for _, a := range allow {
			if strings.EqualFold(a, src) {
				exempt = true
				break
			}
		}
		if exempt {
			continue
		}
		return src, true
	}
	return "", false
}

// foreignMirror reports a yahoo.com hostname outside the allowlist.
func (f *filterSet) foreignMirror(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	if !strings.Contains(host, "yahoo.com") {
		return false
	}
	for _, a := range f.allowedHosts {
		if host == a {
			return false
		}
	}
	return true
}

// premium reports whether the candidate comes from a source worth an extra
// fetch attempt.
func (f *filterSet) premium(title, u string) bool {
	text := strings.ToUpper(title + " " + u)
	for _, src := range f.premiumSources {
		if strings.Contains(text, src) {
			return true
		}
	}
	return false
}
