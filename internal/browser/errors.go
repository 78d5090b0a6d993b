package browser

import (
	"errors"
	"fmt"
)

// ErrNoContent means the page rendered but held no readable article text.
var ErrNoContent = errors.New("no readable content")

// DeadSessionError means the browser process is gone or unresponsive and
// the session must be restarted before any further fetch.
type DeadSessionError struct {
	Cause error
}

func (e *DeadSessionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("browser session dead: %v", e.Cause)
	}
	return "browser session dead"
}

func (e *DeadSessionError) Unwrap() error { return e.Cause }

// BlockedContentError means the page resolved to content we refuse to keep,
// like a non-US mirror or a blocklisted publisher. The session itself is
// fine.
type BlockedContentError struct {
	Reason string
}

func (e *BlockedContentError) Error() string {
	return "blocked content: " + e.Reason
}
