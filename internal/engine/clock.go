package engine

import "sync/atomic"

// Clock is the monotonic logical sequence stamped on monitor samples.
//
// Samples are ordered by seq, never by wall time, so a stored run reads back
// in the order it was taken even if the host clock steps.
//
// Thread-safety: Clock is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock at start, for resuming a stored run.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments and returns the sequence.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
