package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/radixrunner/internal/memory"
	"github.com/roach88/radixrunner/internal/radix"
	"github.com/roach88/radixrunner/internal/shadow"
)

func newTestRegion(t *testing.T) *memory.Region {
	t.Helper()
	r, err := memory.New(memory.MinSize)
	require.NoError(t, err)
	return r
}

func configure(t *testing.T, r *memory.Region, slot int, d radix.Digit, divisor uint32) {
	t.Helper()
	require.NoError(t, shadow.Attach(r).Configure(slot, shadow.Config{
		Enabled:     true,
		SourceDigit: d,
		Divisor:     divisor,
	}))
}

func slotState(t *testing.T, r *memory.Region, slot int) shadow.State {
	t.Helper()
	s, err := shadow.Attach(r).Slot(slot)
	require.NoError(t, err)
	return s.State()
}

// p5Max is the counter with P5 at its maximum and every other digit zero.
const p5Max = uint64(radix.P5Mask) << radix.P5Shift
