// Package shadow implements the shadow configuration table and the shadow
// counters derived from digit wraps of the radix clock.
//
// # Slot Record
//
// Each of the six slots is a 16-byte record in the shared region:
//
//	byte  0     enabled (0 or 1)
//	byte  1     source digit (0-5)
//	bytes 2-3   reserved
//	bytes 4-7   divisor, uint32
//	bytes 8-11  overflow count, uint32
//	bytes 12-15 reserved
//
// Multi-byte fields use host byte order. Bytes 0-3 are read and written as one
// 32-bit word, so enabled and source digit are always observed together.
//
// # Downsampling
//
// When the observer declares a wrap of digit d, every enabled slot bound to d
// adds one to its overflow count. When the new count reaches the divisor the
// count returns to zero and the slot's shadow counter advances by one. The
// increment, the threshold check and the reset are a single compare-and-swap.
// A divisor of 0 behaves like 1.
//
// # Races
//
// The table is written by two actors with no lock: an external controller
// (Configure, Enable, Disable, Bind, SetDivisor, ResetTally) and the observer
// (RecordWrap). Every field access is atomic, so no read is torn, but:
//
//   - A controller update touching several fields is not a transaction. The
//     observer can see a new source digit paired with the old divisor, or a
//     new divisor while the slot is still bound to its old digit.
//   - ResetTally racing with RecordWrap is last-writer-wins: either the reset
//     or the observer's increment may be lost.
//   - Nothing orders shadow counter increments of different slots.
//
// These are accepted; the clock is a sampling design, not an event log.
package shadow
