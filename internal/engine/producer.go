package engine

import (
	"context"

	"github.com/roach88/radixrunner/internal/radix"
)

// producerBatch is how many ticks run between context checks. One P0 period.
const producerBatch = 1 << radix.P0Bits

// TickProducer increments the counter in an unconditional loop.
type TickProducer struct {
	counter *radix.Counter
}

// NewTickProducer returns a producer for c.
func NewTickProducer(c *radix.Counter) *TickProducer {
	return &TickProducer{counter: c}
}

// Run ticks until ctx is done and returns ctx.Err(). With a context that can
// never be cancelled it runs forever with no checks at all.
func (p *TickProducer) Run(ctx context.Context) error {
	done := ctx.Done()
	if done == nil {
		for {
			p.counter.Tick()
		}
	}
	for {
		for i := 0; i < producerBatch; i++ {
			p.counter.Tick()
		}
		select {
		case <-done:
			return ctx.Err()
		default:
		}
	}
}

// RunN ticks exactly n times and returns. Used for deterministic drives.
func (p *TickProducer) RunN(n uint64) {
	for ; n > 0; n-- {
		p.counter.Tick()
	}
}
