package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/radixrunner/internal/radix"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_NilRegion(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilRegion)
}

func TestNew_ZeroesCounterKeepsTable(t *testing.T) {
	r := newTestRegion(t)
	radix.Attach(r).Store(77)
	configure(t, r, 2, radix.P3, 5)

	e, err := New(r, WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Zero(t, e.ReadRaw())
	st := slotState(t, r, 2)
	assert.True(t, st.Config.Enabled)
	assert.Equal(t, radix.P3, st.Config.SourceDigit)
	assert.Equal(t, uint32(5), st.Config.Divisor)
	assert.Same(t, r, e.Region())
}

func TestEngine_RawBoundary(t *testing.T) {
	e, err := New(newTestRegion(t), WithLogger(quietLogger()))
	require.NoError(t, err)

	e.WriteRaw(0x0123456789abcdef)
	assert.Equal(t, uint64(0x0123456789abcdef), e.ReadRaw())
	assert.Equal(t, e.ReadRaw(), e.Counter().Read())
}

func TestEngine_StartTwice(t *testing.T) {
	e, err := New(newTestRegion(t), WithLogger(quietLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, e.Start(ctx))
	assert.ErrorIs(t, e.StartProducer(ctx), ErrAlreadyStarted)
	assert.ErrorIs(t, e.StartObserver(ctx), ErrAlreadyStarted)
	assert.ErrorIs(t, e.Start(ctx), ErrAlreadyStarted)

	cancel()
	assert.NoError(t, e.Wait())
}

func TestEngine_LiveRunAdvancesShadow(t *testing.T) {
	r := newTestRegion(t)
	configure(t, r, 0, radix.P0, 1)

	e, err := New(r,
		WithLogger(quietLogger()),
		WithObserverOptions(WithPolicy(PolicyLive)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, e.Start(ctx))

	require.Eventually(t, func() bool {
		return slotState(t, r, 0).Count > 0
	}, 10*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, e.Wait())

	// Each shadow advance needs a declared P0 wrap, and each declared wrap
	// needs at least one real one.
	wraps := e.Observer().Wraps()[radix.P0]
	assert.GreaterOrEqual(t, wraps, slotState(t, r, 0).Count)
	assert.GreaterOrEqual(t, e.ReadRaw()>>radix.P1Shift, wraps)
}

func TestEngine_WaitWithoutStart(t *testing.T) {
	e, err := New(newTestRegion(t), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.NoError(t, e.Wait())
}
