package shadow

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"

	"github.com/roach88/radixrunner/internal/memory"
	"github.com/roach88/radixrunner/internal/radix"
)

// record overlays one 16-byte slot in the region.
type record struct {
	head     atomic.Uint32 // enabled, source digit, 2 reserved bytes
	divisor  atomic.Uint32
	overflow atomic.Uint32
	_        uint32
}

var _ [memory.ShadowRecordSize - unsafe.Sizeof(record{})]byte
var _ [unsafe.Sizeof(record{}) - memory.ShadowRecordSize]byte

func packHead(enabled bool, d radix.Digit) uint32 {
	var b [4]byte
	if enabled {
		b[0] = 1
	}
	b[1] = byte(d)
	return binary.NativeEndian.Uint32(b[:])
}

func unpackHead(w uint32) (enabled bool, d radix.Digit) {
	var b [4]byte
	binary.NativeEndian.PutUint32(b[:], w)
	return b[0] != 0, radix.Digit(b[1])
}

// Config is the controller-visible part of a slot.
type Config struct {
	Enabled     bool        `json:"enabled" yaml:"enabled"`
	SourceDigit radix.Digit `json:"source_digit" yaml:"source_digit"`
	Divisor     uint32      `json:"divisor" yaml:"divisor"`
}

// Validate checks the digit and divisor.
func (c Config) Validate() error {
	return c.validate(-1)
}

func (c Config) validate(slot int) error {
	if !c.SourceDigit.Valid() {
		return newConfigError(ErrCodeInvalidDigit, slot, "source digit %d outside P0..P5", c.SourceDigit)
	}
	if c.Divisor == 0 {
		return newConfigError(ErrCodeInvalidDivisor, slot, "divisor must be positive")
	}
	return nil
}

// State is a point-in-time view of one slot.
type State struct {
	Slot          int    `json:"slot"`
	Config        Config `json:"config"`
	OverflowCount uint32 `json:"overflow_count"`
	Count         uint64 `json:"count"`
}

// Slot is a handle on one record and its shadow counter.
type Slot struct {
	id      int
	rec     *record
	counter *atomic.Uint64
}

// ID returns the slot index.
func (s *Slot) ID() int { return s.id }

// Config loads the current configuration. Enabled and source digit come from
// one atomic load; the divisor from a second.
func (s *Slot) Config() Config {
	enabled, d := unpackHead(s.rec.head.Load())
	return Config{Enabled: enabled, SourceDigit: d, Divisor: s.rec.divisor.Load()}
}

// OverflowCount returns the wraps tallied since the last advance.
func (s *Slot) OverflowCount() uint32 { return s.rec.overflow.Load() }

// Count returns the shadow counter.
func (s *Slot) Count() uint64 { return s.counter.Load() }

// State snapshots the slot. Fields are loaded one at a time.
func (s *Slot) State() State {
	return State{
		Slot:          s.id,
		Config:        s.Config(),
		OverflowCount: s.OverflowCount(),
		Count:         s.Count(),
	}
}

// Configure replaces the slot configuration and clears its tally.
//
// The divisor is published before the enabled/digit word, so a slot being
// enabled never counts against a stale divisor. Rebinding an already enabled
// slot can still be observed half-applied; see the package documentation.
func (s *Slot) Configure(c Config) error {
	if err := c.validate(s.id); err != nil {
		return err
	}
	s.rec.divisor.Store(c.Divisor)
	s.rec.overflow.Store(0)
	s.rec.head.Store(packHead(c.Enabled, c.SourceDigit))
	return nil
}

// Enable turns the slot on, keeping its binding and divisor.
func (s *Slot) Enable() { s.setEnabled(true) }

// Disable turns the slot off. Its tally and counter are kept.
func (s *Slot) Disable() { s.setEnabled(false) }

func (s *Slot) setEnabled(on bool) {
	for {
		old := s.rec.head.Load()
		_, d := unpackHead(old)
		if s.rec.head.CompareAndSwap(old, packHead(on, d)) {
			return
		}
	}
}

// Bind rebinds the slot to digit d.
func (s *Slot) Bind(d radix.Digit) error {
	if !d.Valid() {
		return newConfigError(ErrCodeInvalidDigit, s.id, "source digit %d outside P0..P5", d)
	}
	for {
		old := s.rec.head.Load()
		enabled, _ := unpackHead(old)
		if s.rec.head.CompareAndSwap(old, packHead(enabled, d)) {
			return nil
		}
	}
}

// SetDivisor changes the divisor. The tally is left alone; if it already
// exceeds the new divisor the next wrap advances the counter.
func (s *Slot) SetDivisor(k uint32) error {
	if k == 0 {
		return newConfigError(ErrCodeInvalidDivisor, s.id, "divisor must be positive")
	}
	s.rec.divisor.Store(k)
	return nil
}

// ResetTally clears the overflow count.
func (s *Slot) ResetTally() {
	s.rec.overflow.Store(0)
}

// RecordWrap applies one declared wrap of digit d to the slot and reports
// whether the shadow counter advanced. Disabled slots and slots bound to
// another digit are untouched. The configuration is loaded from the record
// on every call, so controller edits apply to the next wrap.
func (s *Slot) RecordWrap(d radix.Digit) bool {
	c := s.Config()
	if !c.Enabled || c.SourceDigit != d {
		return false
	}

	for {
		old := s.rec.overflow.Load()
		next := old + 1
		advance := next >= c.Divisor
		if advance {
			next = 0
		}
		if s.rec.overflow.CompareAndSwap(old, next) {
			if advance {
				s.counter.Add(1)
			}
			return advance
		}
	}
}

func (s *Slot) reset() {
	s.rec.head.Store(0)
	s.rec.divisor.Store(0)
	s.rec.overflow.Store(0)
	s.counter.Store(0)
}
