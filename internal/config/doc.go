// Package config loads radixrunner run configuration.
//
// A configuration names the region to run in, the observer policy, the
// monitor interval, an optional sample database and up to six shadow slots.
// Files are YAML (.yaml, .yml) decoded strictly, or CUE (.cue, .json)
// unified with the embedded #Config schema before decoding. Either way the
// result is checked by Validate.
//
// Example:
//
//	label: p0-thirds
//	observer:
//	  policy: live
//	monitor:
//	  interval: 500ms
//	shadows:
//	  - slot: 0
//	    digit: P0
//	    divisor: 3
package config
