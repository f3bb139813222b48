// Package engine runs the radix clock: a tick producer that increments the
// counter as fast as it can, and an observer that polls it, declares digit
// wraps and drives the shadow table.
//
// # Loops
//
// TickProducer.Run and Observer.Run are busy loops. They never block, sleep
// or log. Each checks its context only every few thousand iterations; passed
// context.Background() neither ever returns.
//
// # Wrap Detection
//
// The observer keeps the last decoded value of each digit. A digit whose
// current value is below its last value has wrapped. This is a sampling
// rule, so several wraps between two polls collapse into one, and a
// controller that lowers the counter through Engine.WriteRaw produces wraps
// for every digit it lowered.
//
// The last values start at zero. No decoded digit is below zero, so the
// first sample never declares a wrap whatever the counter holds.
//
// # Configuration Policy
//
// PolicyLive resolves the shadow table from the region on each declared wrap.
// PolicySnapshot resolves it once, in NewObserver, and keeps the reference.
// Either way slot fields are loaded from shared memory when a wrap is
// applied, so a controller edit takes effect on the next wrap. With the fixed
// six-slot table the two policies behave the same.
//
// # Engine
//
// Engine is the boundary the bootstrap layer talks to: New zeroes the
// counter, StartProducer and StartObserver launch the loops, ReadRaw and
// WriteRaw expose the raw word. Monitor samples a running engine on a
// wall-clock interval for display and persistence.
package engine
