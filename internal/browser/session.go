// Package browser drives a long-lived headless Chrome used to render
// article pages, with liveness probing and restart on crash.
package browser

import (
	"context"
	"os"
	"syscall"
	"time"

	"github.com/chromedp/chromedp"
)

const sessionUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Session owns one Chrome process, reused across every article of a scan.
type Session struct {
	headless bool

	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

// Acquire launches Chrome and returns a live session. The parent ctx bounds
// the whole session lifetime.
func Acquire(parent context.Context, headless bool) (*Session, error) {
	s := &Session{headless: headless}
	if err := s.start(parent); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) start(parent context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-first-run", true),
		chromedp.UserAgent(sessionUA),
	)

	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(parent, opts...)
	s.ctx, s.cancel = chromedp.NewContext(s.allocCtx)

	// Force the browser process up now so launch failures surface here, not
	// on the first article.
	startCtx, cancel := context.WithTimeout(s.ctx, 20*time.Second)
	defer cancel()
	if err := chromedp.Run(startCtx); err != nil {
		s.teardown()
		return &DeadSessionError{Cause: err}
	}
	return nil
}

// Alive probes the browser with a cheap command under a short deadline.
func (s *Session) Alive() bool {
	if s.ctx == nil {
		return false
	}
	probeCtx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()
	var loc string
	return chromedp.Run(probeCtx, chromedp.Location(&loc)) == nil
}

// Restart tears the current Chrome down and launches a fresh one.
func (s *Session) Restart(parent context.Context) error {
	s.teardown()
	return s.start(parent)
}

// Reset navigates to about:blank so state from the previous article cannot
// leak into the next fetch.
func (s *Session) Reset() error {
	if s.ctx == nil {
		return &DeadSessionError{}
	}
	resetCtx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	return chromedp.Run(resetCtx, chromedp.Navigate("about:blank"))
}

// Close shuts the session down. If the devtools connection is wedged and a
// graceful cancel hangs, the OS process gets a SIGTERM and then a Kill.
func (s *Session) Close() {
	if s.ctx == nil {
		s.teardown()
		return
	}

	var proc *os.Process
	if c := chromedp.FromContext(s.ctx); c != nil && c.Browser != nil {
		proc = c.Browser.Process()
	}

	done := make(chan struct{})
	go func() {
		_ = chromedp.Cancel(s.ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		if proc != nil {
			_ = proc.Signal(syscall.SIGTERM)
			time.Sleep(2 * time.Second)
			_ = proc.Kill()
		}
	}
	s.teardown()
}

func (s *Session) teardown() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	s.ctx, s.cancel = nil, nil
	s.allocCtx, s.allocCancel = nil, nil
}
