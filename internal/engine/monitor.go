package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/roach88/radixrunner/internal/ir"
	"github.com/roach88/radixrunner/internal/radix"
	"github.com/roach88/radixrunner/internal/shadow"
)

// DefaultMonitorInterval is the sampling interval when none is given.
const DefaultMonitorInterval = time.Second

// Sink receives each monitor sample. A sink error stops the monitor.
type Sink func(ir.Sample) error

// Monitor samples a running engine at a wall-clock interval and reports the
// raw value, decoded digits, tick rate, observer statistics and shadow slots.
//
// The monitor only reads the region; it takes no part in wrap detection.
type Monitor struct {
	engine   *Engine
	runID    string
	sink     Sink
	interval time.Duration
	clock    *Clock
	now      func() time.Time
	logger   *slog.Logger

	prevRaw uint64
	prevAt  time.Time
	hasPrev bool
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithInterval sets the sampling interval. Default: DefaultMonitorInterval.
func WithInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.interval = d
	}
}

// WithClock sets the sequence clock, e.g. NewClockAt to continue a run.
func WithClock(c *Clock) MonitorOption {
	return func(m *Monitor) {
		m.clock = c
	}
}

// WithNow replaces time.Now for rate computation.
func WithNow(now func() time.Time) MonitorOption {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithMonitorLogger sets the logger. Default: slog.Default().
func WithMonitorLogger(l *slog.Logger) MonitorOption {
	return func(m *Monitor) {
		m.logger = l
	}
}

// NewMonitor creates a monitor of e whose samples carry runID.
func NewMonitor(e *Engine, runID string, sink Sink, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		engine:   e,
		runID:    runID,
		sink:     sink,
		interval: DefaultMonitorInterval,
		clock:    NewClock(),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// tickRate is the ticks per second from prev to cur. Unsigned subtraction
// stays correct across a 2^64 wrap. A delta of 2^63 or more is read as the
// counter moving backwards, which only a controller write can do, and gives 0.
func tickRate(prev, cur uint64, elapsed time.Duration) int64 {
	delta := cur - prev
	if elapsed <= 0 || delta > math.MaxInt64 {
		return 0
	}
	perSec := float64(delta) / elapsed.Seconds()
	if perSec >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(perSec)
}

// Sample takes one sample now and hands it to the sink.
func (m *Monitor) Sample() (ir.Sample, error) {
	raw := m.engine.ReadRaw()
	at := m.now()

	var rate int64
	if m.hasPrev {
		rate = tickRate(m.prevRaw, raw, at.Sub(m.prevAt))
	}
	m.prevRaw, m.prevAt, m.hasPrev = raw, at, true

	obs := m.engine.Observer()
	s := ir.Sample{
		RunID:           m.runID,
		Seq:             m.clock.Next(),
		Raw:             raw,
		Digits:          radix.DecodeAll(raw),
		TicksPerSecond:  rate,
		ObserverSamples: obs.Samples(),
		Wraps:           obs.Wraps(),
		Shadows:         ShadowRecords(m.engine.Table().States()),
	}
	id, err := ir.SampleID(s)
	if err != nil {
		return ir.Sample{}, fmt.Errorf("sample %d: %w", s.Seq, err)
	}
	s.ID = id

	m.logger.Debug("monitor sample",
		"run", m.runID,
		"seq", s.Seq,
		"raw", ir.FormatRaw(raw),
		"ticks_per_second", rate)

	if m.sink != nil {
		if err := m.sink(s); err != nil {
			return s, fmt.Errorf("sink sample %d: %w", s.Seq, err)
		}
	}
	return s, nil
}

// Run samples once per interval until ctx is done. Cancellation returns nil;
// a sink error is returned as is.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := m.Sample(); err != nil {
				return err
			}
		}
	}
}

// ShadowRecords converts slot states to their stored form.
func ShadowRecords(states []shadow.State) []ir.ShadowState {
	out := make([]ir.ShadowState, len(states))
	for i, st := range states {
		out[i] = ir.ShadowState{
			Slot:          st.Slot,
			Enabled:       st.Config.Enabled,
			SourceDigit:   int(st.Config.SourceDigit),
			Divisor:       st.Config.Divisor,
			OverflowCount: st.OverflowCount,
			Count:         st.Count,
		}
	}
	return out
}
