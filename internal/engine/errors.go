package engine

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyStarted is returned when a loop is started twice on one
	// engine. Two producers would still be correct; two observers would
	// double-count every wrap.
	ErrAlreadyStarted = errors.New("engine: loop already started")

	// ErrNilRegion is returned by New without a region.
	ErrNilRegion = errors.New("engine: nil region")
)

// isCancel reports whether err is a context cancellation, which is how
// every loop normally ends.
func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
