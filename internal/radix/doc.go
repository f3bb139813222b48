// Package radix implements the primary clock: one 64-bit word incremented
// atomically and read as six packed digits.
//
// Layout, most significant first:
//
//	[P5:12][P4:10][P3:10][P2:10][P1:10][P0:12]
//
// No digit is stored on its own. Decoding is a pure shift-and-mask of a sampled
// word, so every digit of one sample is consistent with the others. Carry from
// one digit into the next is plain binary carry of the whole word.
package radix
