package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	pageLoadTimeout = 5 * time.Second
	redirectPolls   = 10
	redirectPause   = 500 * time.Millisecond
)

// FetchOptions carries the per-fetch content policy.
type FetchOptions struct {
	// AllowedHosts is the set of acceptable yahoo.com hostnames. Any other
	// yahoo.com host is treated as a regional mirror and blocked.
	AllowedHosts []string
	// BlockedPublishers are uppercase publisher names rejected after
	// extraction.
	BlockedPublishers []string
	// AllowPublishers are uppercase names exempted from the blocklist for
	// this run.
	AllowPublishers []string
	// PrioritySources are uppercase names tagged with a star when matched.
	PrioritySources []string
}

// Fetch renders one article page in the session's browser and extracts it.
// Timeouts and redirect dead-ends degrade to a headline-only placeholder;
// a dead browser surfaces as DeadSessionError and rejected content as
// BlockedContentError.
func (s *Session) Fetch(rawURL string, opts FetchOptions) (Extraction, error) {
	if s.ctx == nil {
		return Extraction{}, &DeadSessionError{}
	}

	if host := hostOf(rawURL); isForeignYahoo(host, opts.AllowedHosts) {
		return Extraction{}, &BlockedContentError{Reason: "non-US domain: " + host}
	}

	if err := s.navigate(rawURL); err != nil {
		var ext Extraction
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			ext = Extraction{
				Content:   []string{fmt.Sprintf("[Content Timeout] Link: %s", rawURL)},
				Publisher: "Unknown (Timeout)",
			}
			return ext, nil
		default:
			if !s.Alive() {
				return Extraction{}, &DeadSessionError{Cause: err}
			}
			ext = Extraction{
				Content:   []string{fmt.Sprintf("[Fetch Failed: %v] Link: %s", err, rawURL)},
				Publisher: "Unknown (Error)",
			}
			return ext, nil
		}
	}

	s.dismissConsent()

	finalHost, err := s.followRedirect(opts.AllowedHosts)
	if err != nil {
		return Extraction{}, err
	}
	if strings.Contains(finalHost, "google.com") {
		// Redirect never left Google; the article page was never reached.
		return Extraction{
			Content:   []string{fmt.Sprintf("[Stuck on Google] Link: %s", rawURL)},
			Publisher: "Google RSS",
		}, nil
	}

	var html string
	htmlCtx, cancel := context.WithTimeout(s.ctx, pageLoadTimeout)
	err = chromedp.Run(htmlCtx, chromedp.OuterHTML("html", &html))
	cancel()
	if err != nil {
		if !s.Alive() {
			return Extraction{}, &DeadSessionError{Cause: err}
		}
		return Extraction{}, err
	}

	ext, err := ParseArticle(html)
	if err != nil {
		return Extraction{}, err
	}
	if len(ext.Content) == 0 {
		return Extraction{}, ErrNoContent
	}

	pub, blocked := applyPublisherPolicy(ext.Publisher, opts)
	if blocked {
		return Extraction{}, &BlockedContentError{Reason: "blocked source: " + ext.Publisher}
	}
	ext.Publisher = pub
	return ext, nil
}

func (s *Session) navigate(rawURL string) error {
	navCtx, cancel := context.WithTimeout(s.ctx, pageLoadTimeout)
	defer cancel()
	return chromedp.Run(navCtx, chromedp.Navigate(rawURL))
}

// dismissConsent tries to close a cookie or consent overlay. Best effort.
func (s *Session) dismissConsent() {
	clickCtx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()
	_ = chromedp.Run(clickCtx, chromedp.Evaluate(`(() => {
		const btns = Array.from(document.querySelectorAll('button'));
		for (const b of btns) {
			const t = (b.textContent || '').toLowerCase();
			if (t.includes('maybe later') || t.includes('reject')) { b.click(); return true; }
		}
		return false;
	})()`, nil))
}

// followRedirect polls the current location while Google resolves its
// article redirect, nudging it along when it stalls, and returns the final
// hostname. A regional Yahoo mirror anywhere along the way aborts.
func (s *Session) followRedirect(allowedHosts []string) (string, error) {
	var host string
	for i := 0; i < redirectPolls; i++ {
		time.Sleep(redirectPause)

		loc, err := s.location()
		if err != nil {
			if !s.Alive() {
				return "", &DeadSessionError{Cause: err}
			}
			continue
		}
		host = hostOf(loc)

		if strings.Contains(host, "yahoo.com") {
			if isForeignYahoo(host, allowedHosts) {
				return "", &BlockedContentError{Reason: "redirected to non-US domain: " + host}
			}
			return host, nil
		}

		if strings.Contains(host, "google.com") && i > 2 {
			s.clickThroughGoogle()
		}
	}

	if strings.Contains(host, "yahoo.com") && isForeignYahoo(host, allowedHosts) {
		return "", &BlockedContentError{Reason: "final URL is non-US domain: " + host}
	}
	return host, nil
}

func (s *Session) location() (string, error) {
	locCtx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()
	var loc string
	err := chromedp.Run(locCtx, chromedp.Location(&loc))
	return loc, err
}

// clickThroughGoogle pushes past Google's redirect-notice and consent
// interstitials. Best effort.
func (s *Session) clickThroughGoogle() {
	clickCtx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()
	_ = chromedp.Run(clickCtx, chromedp.Evaluate(`(() => {
		const links = Array.from(document.querySelectorAll('a'));
		for (const l of links) {
			const t = l.textContent || '';
			if (t.includes('yahoo.com') || t.includes('https://')) { l.click(); return true; }
		}
		const btns = Array.from(document.querySelectorAll('button'));
		for (const b of btns) {
			const t = (b.textContent || '').toLowerCase();
			if (t.includes('accept') || t.includes('agree') || t.includes('consent')) { b.click(); return true; }
		}
		return false;
	})()`, nil))
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// isForeignYahoo reports whether host is a yahoo.com hostname outside the
// allowlist.
func isForeignYahoo(host string, allowed []string) bool {
	if !strings.Contains(host, "yahoo.com") {
		return false
	}
	for _, a := range allowed {
		if host == strings.ToLower(a) {
			return false
		}
	}
	return true
}

// applyPublisherPolicy enforces the source blocklist and tags priority
// sources with a star.
func applyPublisherPolicy(publisher string, opts FetchOptions) (string, bool) {
	upper := strings.ToUpper(publisher)

	allowed := false
	for _, a := range opts.AllowPublishers {
		if upper == strings.ToUpper(a) {
			allowed = true
			break
		}
	}
	if !allowed {
		for _, b := range opts.BlockedPublishers {
			if upper == strings.ToUpper(b) {
				return publisher, true
			}
		}
	}

	for _, p := range opts.PrioritySources {
		if strings.Contains(upper, strings.ToUpper(p)) {
			return "⭐ " + publisher, false
		}
	}
	return publisher, false
}
