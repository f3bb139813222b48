package radix

import (
	"sync/atomic"

	"github.com/roach88/radixrunner/internal/memory"
)

// Counter is the primary radix clock.
//
// All operations are single atomic steps on one word and cannot fail. The
// word sits alone on its cache line inside the region (the reserved head and
// the gap before the slot table pad it), so the producer's increments do not
// false-share with the slot records the observer writes.
//
// Thread-safety: Counter is safe for concurrent use.
type Counter struct {
	word *atomic.Uint64
}

// Attach returns the counter stored in region r.
func Attach(r *memory.Region) *Counter {
	return &Counter{word: r.Uint64At(memory.RadixOffset)}
}

// NewCounter creates a counter backed by private memory, starting at 0.
func NewCounter() *Counter {
	return &Counter{word: new(atomic.Uint64)}
}

// NewCounterAt creates a private counter starting at v.
func NewCounterAt(v uint64) *Counter {
	c := NewCounter()
	c.word.Store(v)
	return c
}

// Tick adds one, wrapping silently modulo 2^64.
func (c *Counter) Tick() {
	c.word.Add(1)
}

// Read atomically loads the raw value.
func (c *Counter) Read() uint64 {
	return c.word.Load()
}

// Store overwrites the raw value. Only the bootstrap boundary uses this.
func (c *Counter) Store(v uint64) {
	c.word.Store(v)
}

// Digits decodes one sample of the counter.
func (c *Counter) Digits() Digits {
	return DecodeAll(c.Read())
}
