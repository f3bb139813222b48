package radix

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigit_Geometry(t *testing.T) {
	tests := []struct {
		digit Digit
		bits  uint
		shift uint
		mask  uint64
	}{
		{P0, 12, 0, 0xFFF},
		{P1, 10, 12, 0x3FF},
		{P2, 10, 22, 0x3FF},
		{P3, 10, 32, 0x3FF},
		{P4, 10, 42, 0x3FF},
		{P5, 12, 52, 0xFFF},
	}

	for _, tt := range tests {
		t.Run(tt.digit.String(), func(t *testing.T) {
			assert.Equal(t, tt.bits, tt.digit.Bits())
			assert.Equal(t, tt.shift, tt.digit.Shift())
			assert.Equal(t, tt.mask, tt.digit.Mask())
			assert.Equal(t, tt.mask+1, tt.digit.Modulus())
		})
	}
}

func TestDigit_Period(t *testing.T) {
	assert.Equal(t, uint64(4096), P0.Period())
	assert.Equal(t, uint64(1)<<22, P1.Period())
	assert.Equal(t, uint64(1)<<52, P4.Period())
	assert.Equal(t, uint64(0), P5.Period(), "P5 period is the full 2^64 range")
}

func TestDigit_FieldsAreDisjointAndCoverWord(t *testing.T) {
	var seen uint64
	for d := P0; d < DigitCount; d++ {
		placed := d.Mask() << d.Shift()
		assert.Zero(t, seen&placed, "%s overlaps a lower field", d)
		seen |= placed
	}
	assert.Equal(t, uint64(math.MaxUint64), seen)
}

func TestParseDigit(t *testing.T) {
	for in, want := range map[string]Digit{"P0": P0, "p3": P3, "5": P5, " P1 ": P1} {
		got, err := ParseDigit(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "P6", "-1", "Q2", "P"} {
		_, err := ParseDigit(in)
		assert.Error(t, err, in)
	}
}

func TestDecode_KnownValues(t *testing.T) {
	v := uint64(0xABC)<<P5Shift |
		uint64(0x1FF)<<P4Shift |
		uint64(0x2AA)<<P3Shift |
		uint64(0x155)<<P2Shift |
		uint64(0x3FF)<<P1Shift |
		uint64(0x123)

	assert.Equal(t, uint32(0x123), Decode(v, P0))
	assert.Equal(t, uint32(0x3FF), Decode(v, P1))
	assert.Equal(t, uint32(0x155), Decode(v, P2))
	assert.Equal(t, uint32(0x2AA), Decode(v, P3))
	assert.Equal(t, uint32(0x1FF), Decode(v, P4))
	assert.Equal(t, uint32(0xABC), Decode(v, P5))

	assert.Equal(t, Digits{0x123, 0x3FF, 0x155, 0x2AA, 0x1FF, 0xABC}, DecodeAll(v))
}

func TestDecode_CarryIsBinary(t *testing.T) {
	// 4095 -> 4096 wraps P0 and carries into P1.
	assert.Equal(t, Digits{4095, 0, 0, 0, 0, 0}, DecodeAll(4095))
	assert.Equal(t, Digits{0, 1, 0, 0, 0, 0}, DecodeAll(4096))
}

func TestPack_Property_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	values := []uint64{0, 1, 4095, 4096, math.MaxUint64, 1 << 63, 0x0123456789abcdef}
	for i := 0; i < 10000; i++ {
		values = append(values, rng.Uint64())
	}

	for _, v := range values {
		require.Equal(t, v, Pack(DecodeAll(v)), "round trip of %#x", v)
	}
}

func TestPack_TruncatesWideFields(t *testing.T) {
	v := Pack(Digits{0x1FFF, 0, 0, 0, 0, 0})
	assert.Equal(t, uint64(0xFFF), v, "bits beyond P0 width are dropped")
}

func TestDigits_String(t *testing.T) {
	ds := Digits{1, 2, 3, 4, 5, 6}
	assert.Equal(t, "P5=6 P4=5 P3=4 P2=3 P1=2 P0=1", ds.String())
}

func TestWrapSet(t *testing.T) {
	var s WrapSet
	assert.True(t, s.Empty())

	s = s.Add(P0).Add(P5)
	assert.False(t, s.Empty())
	assert.True(t, s.Has(P0))
	assert.True(t, s.Has(P5))
	assert.False(t, s.Has(P3))
	assert.Equal(t, []Digit{P0, P5}, s.Digits())
	assert.Equal(t, "{P0,P5}", s.String())
}
