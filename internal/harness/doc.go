// Package harness runs scenario files against the radix clock
// deterministically.
//
// A scenario drives one region with no goroutines: the harness ticks the
// counter itself and polls the observer exactly when the scenario says, so
// every run of a scenario produces the same wrap trace.
//
// # Scenario Format
//
//	name: p0_divisor_three
//	description: "P0 wraps three times; divisor 3 advances once"
//	start: 0
//	policy: live
//	shadows:
//	  - slot: 0
//	    digit: P0
//	    divisor: 3
//	steps:
//	  - sample: true
//	  - run: { ticks: 12288, every: 1 }
//	assertions:
//	  - type: shadow_counter
//	    slot: 0
//	    equals: 1
//
// # Steps
//
//   - tick: N            advance the counter N times without polling
//   - sample: true       poll the observer once
//   - set: VALUE         overwrite the raw counter
//   - configure: SHADOW  rewrite one slot, as a controller would
//   - run: {ticks, every} advance N times, polling after every K ticks
//
// Values may be decimal or 0x hex.
//
// # Assertion Types
//
//   - shadow_counter: a slot's shadow counter equals a value
//   - overflow_count: a slot's tally equals a value
//   - wraps: the wraps declared for a digit equal a value
//   - raw: the final counter equals a value
//
// # Golden Traces
//
// RunWithGolden compares the canonical JSON trace against
// testdata/golden/{name}.golden. To regenerate:
//
//	go test ./internal/harness -update
package harness
