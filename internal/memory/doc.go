// Package memory provides the flat shared region the radix clock lives in.
//
// The region is a single contiguous byte buffer partitioned by fixed offsets:
//
//	0x0000  head (reserved)
//	0x0100  primary radix counter      8 bytes, atomic
//	0x0200  shadow configuration table 16 bytes x 6 slots
//	0x0400  shadow counters            8 bytes x 6 slots, atomic
//	0x1000  application sections       0x1000 bytes each, opaque
//
// A Region is either heap-backed (New) or a MAP_SHARED file mapping (Map), in
// which case any process mapping the same file observes the same clock.
//
// Components never reach for a package-level base pointer. A *Region is created
// once by the bootstrap code and handed to radix.Attach, shadow.Attach and
// engine.New. Creating the handle is the only place the base is validated;
// every offset used afterwards is a compile-time constant inside it.
package memory
