package radix

import (
	"fmt"
	"strconv"
	"strings"
)

// Digit indexes one field of the radix counter, P0 being least significant.
type Digit uint8

const (
	P0 Digit = iota
	P1
	P2
	P3
	P4
	P5
)

// DigitCount is the number of packed fields.
const DigitCount = 6

// Bit widths and offsets of each field.
const (
	P0Bits, P0Shift = 12, 0
	P1Bits, P1Shift = 10, 12
	P2Bits, P2Shift = 10, 22
	P3Bits, P3Shift = 10, 32
	P4Bits, P4Shift = 10, 42
	P5Bits, P5Shift = 12, 52
)

// Field masks, applied after shifting.
const (
	P0Mask = 1<<P0Bits - 1 // 0xFFF
	P1Mask = 1<<P1Bits - 1 // 0x3FF
	P2Mask = 1<<P2Bits - 1
	P3Mask = 1<<P3Bits - 1
	P4Mask = 1<<P4Bits - 1
	P5Mask = 1<<P5Bits - 1 // 0xFFF
)

type field struct {
	bits  uint
	shift uint
	mask  uint64
}

var fields = [DigitCount]field{
	{P0Bits, P0Shift, P0Mask},
	{P1Bits, P1Shift, P1Mask},
	{P2Bits, P2Shift, P2Mask},
	{P3Bits, P3Shift, P3Mask},
	{P4Bits, P4Shift, P4Mask},
	{P5Bits, P5Shift, P5Mask},
}

// Fields must tile the word exactly.
var _ [64 - (P5Shift + P5Bits)]byte
var _ [(P5Shift + P5Bits) - 64]byte

// Valid reports whether d names one of the six fields.
func (d Digit) Valid() bool {
	return d < DigitCount
}

// Bits returns the field width.
func (d Digit) Bits() uint { return fields[d].bits }

// Shift returns the field's bit offset.
func (d Digit) Shift() uint { return fields[d].shift }

// Mask returns the field mask, aligned to bit 0.
func (d Digit) Mask() uint64 { return fields[d].mask }

// Modulus returns the number of distinct values the field takes.
func (d Digit) Modulus() uint64 {
	return 1 << fields[d].bits
}

// Period returns the number of ticks between two wraps of the field.
// P5 wraps only when the whole word does, once every 2^64 ticks, which does
// not fit in a uint64; Period returns 0 for it.
func (d Digit) Period() uint64 {
	n := fields[d].shift + fields[d].bits
	if n >= 64 {
		return 0
	}
	return 1 << n
}

func (d Digit) String() string {
	if !d.Valid() {
		return "P?" + strconv.Itoa(int(d))
	}
	return "P" + strconv.Itoa(int(d))
}

// ParseDigit accepts "P3", "p3" or "3".
func ParseDigit(s string) (Digit, error) {
	t := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "P"), "p")
	n, err := strconv.Atoi(t)
	if err != nil || n < 0 || n >= DigitCount {
		return 0, fmt.Errorf("invalid digit %q: want P0..P5", s)
	}
	return Digit(n), nil
}

// Decode extracts field d from a sampled counter value.
func Decode(v uint64, d Digit) uint32 {
	f := fields[d]
	return uint32((v >> f.shift) & f.mask)
}

// Digits holds all six fields of one sample, indexed by Digit.
type Digits [DigitCount]uint32

// DecodeAll decodes every field from the same sample.
func DecodeAll(v uint64) Digits {
	var ds Digits
	for d := range fields {
		ds[d] = uint32((v >> fields[d].shift) & fields[d].mask)
	}
	return ds
}

// Pack reassembles a counter value from its fields. Values wider than their
// field are truncated. Pack(DecodeAll(v)) == v for every v.
func Pack(ds Digits) uint64 {
	var v uint64
	for d, f := range fields {
		v |= (uint64(ds[d]) & f.mask) << f.shift
	}
	return v
}

// String renders the fields most significant first.
func (ds Digits) String() string {
	var b strings.Builder
	for d := DigitCount - 1; d >= 0; d-- {
		if d != DigitCount-1 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "P%d=%d", d, ds[d])
	}
	return b.String()
}

// WrapSet is a set of digits that wrapped in one sample.
type WrapSet uint8

// Add returns s with d included.
func (s WrapSet) Add(d Digit) WrapSet { return s | 1<<d }

// Has reports whether d is in s.
func (s WrapSet) Has(d Digit) bool { return s&(1<<d) != 0 }

// Empty reports whether no digit wrapped.
func (s WrapSet) Empty() bool { return s == 0 }

// Digits lists the members of s in ascending order.
func (s WrapSet) Digits() []Digit {
	var out []Digit
	for d := P0; d < DigitCount; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s WrapSet) String() string {
	ds := s.Digits()
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
