// Package ir defines the records radixrunner persists and prints: monitor
// samples, shadow slot states and runs, together with their canonical JSON
// encoding and content-addressed identities.
//
// ir imports nothing internal; radix, shadow and engine convert into these
// records at their boundaries.
//
// Key design constraints:
//   - No floats; rates are whole ticks per second
//   - All JSON tags use snake_case
//   - Samples are ordered by a logical seq, never by wall time
//   - Raw counter values are rendered as 0x-prefixed 16-digit hex in
//     canonical form, since they do not fit a signed JSON integer
package ir
