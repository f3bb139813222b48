package engine

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/roach88/radixrunner/internal/memory"
	"github.com/roach88/radixrunner/internal/radix"
	"github.com/roach88/radixrunner/internal/shadow"
)

// observerCheckEvery is how many polls run between context checks.
const observerCheckEvery = 1024

// Policy selects when the observer reads the shadow configuration.
type Policy int

const (
	// PolicyLive resolves the table on each declared wrap.
	PolicyLive Policy = iota

	// PolicySnapshot resolves the table once, when the observer is created,
	// and keeps that reference. Slot fields are still read from shared
	// memory on each declared wrap, so controller edits stay visible.
	PolicySnapshot
)

// String returns "live" or "snapshot".
func (p Policy) String() string {
	switch p {
	case PolicyLive:
		return "live"
	case PolicySnapshot:
		return "snapshot"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses a policy name. The empty string is PolicyLive.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "live":
		return PolicyLive, nil
	case "snapshot":
		return PolicySnapshot, nil
	default:
		return 0, fmt.Errorf("unknown observer policy %q (want live or snapshot)", s)
	}
}

// Observer polls the counter, declares digit wraps and applies them to the
// shadow table.
//
// Thread-safety: Step and Run must be called from one goroutine. Samples and
// Wraps may be read from any goroutine while it runs.
type Observer struct {
	region  *memory.Region
	counter *radix.Counter
	policy  Policy
	yield   bool

	table shadow.Table
	last  radix.Digits

	samples atomic.Uint64
	wraps   [radix.DigitCount]atomic.Uint64
}

// ObserverOption configures an Observer.
type ObserverOption func(*Observer)

// WithPolicy sets the table resolution policy. Default: PolicyLive.
func WithPolicy(p Policy) ObserverOption {
	return func(o *Observer) {
		o.policy = p
	}
}

// WithYield makes Run call runtime.Gosched after every poll. Off by default;
// yielding lowers the sampling rate and with it detection accuracy.
func WithYield(on bool) ObserverOption {
	return func(o *Observer) {
		o.yield = on
	}
}

// NewObserver creates an observer of the counter and table in region r.
func NewObserver(r *memory.Region, opts ...ObserverOption) *Observer {
	o := &Observer{
		region:  r,
		counter: radix.Attach(r),
		table:   shadow.View(r),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Policy returns the table resolution policy.
func (o *Observer) Policy() Policy { return o.policy }

// Step processes one sample of the counter and returns the digits declared
// wrapped. Every digit is decoded from the same sample.
func (o *Observer) Step(sample uint64) radix.WrapSet {
	o.samples.Add(1)
	cur := radix.DecodeAll(sample)

	var wrapped radix.WrapSet
	for d := radix.P0; d <= radix.P5; d++ {
		if cur[d] < o.last[d] {
			wrapped = wrapped.Add(d)
		}
	}

	if !wrapped.Empty() {
		o.apply(wrapped)
	}
	o.last = cur
	return wrapped
}

func (o *Observer) apply(wrapped radix.WrapSet) {
	var tbl shadow.Table
	if o.policy == PolicyLive {
		tbl = shadow.View(o.region)
	} else {
		tbl = o.table
	}
	for d := radix.P0; d <= radix.P5; d++ {
		if !wrapped.Has(d) {
			continue
		}
		o.wraps[d].Add(1)
		tbl.RecordWrap(d)
	}
}

// Poll reads the counter once and steps it.
func (o *Observer) Poll() radix.WrapSet {
	return o.Step(o.counter.Read())
}

// Run polls until ctx is done and returns ctx.Err(). With a context that can
// never be cancelled it never returns.
func (o *Observer) Run(ctx context.Context) error {
	done := ctx.Done()
	for n := uint64(1); ; n++ {
		o.Poll()
		if o.yield {
			runtime.Gosched()
		}
		if done != nil && n%observerCheckEvery == 0 {
			select {
			case <-done:
				return ctx.Err()
			default:
			}
		}
	}
}

// Samples returns how many samples have been taken.
func (o *Observer) Samples() uint64 { return o.samples.Load() }

// Wraps returns the wraps declared so far, per digit.
func (o *Observer) Wraps() [radix.DigitCount]uint64 {
	var out [radix.DigitCount]uint64
	for i := range o.wraps {
		out[i] = o.wraps[i].Load()
	}
	return out
}

// Last returns the digits of the previous sample. Not safe while Run is
// active.
func (o *Observer) Last() radix.Digits { return o.last }
