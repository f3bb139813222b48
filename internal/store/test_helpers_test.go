package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/radixrunner/internal/ir"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// createTestRun creates a run with one enabled slot.
func createTestRun(id string) ir.Run {
	return ir.Run{
		ID:         id,
		Label:      "test",
		Policy:     "live",
		RegionSize: 16 << 20,
		Shadows: []ir.ShadowState{
			{Slot: 0, Enabled: true, SourceDigit: 0, Divisor: 3},
			{Slot: 1},
		},
		StartedAt: testStart,
	}
}

// createTestSample creates a sample of runID at seq with the given raw value.
func createTestSample(runID string, seq int64, raw uint64) ir.Sample {
	s := ir.Sample{
		RunID:           runID,
		Seq:             seq,
		Raw:             raw,
		TicksPerSecond:  seq * 1000,
		ObserverSamples: uint64(seq) * 10,
		Wraps:           [ir.DigitCount]uint64{uint64(seq), 0, 0, 0, 0, 0},
		Shadows: []ir.ShadowState{
			{Slot: 0, Enabled: true, SourceDigit: 0, Divisor: 3, OverflowCount: 1, Count: uint64(seq)},
		},
	}
	s.ID = ir.MustSampleID(s)
	return s
}
