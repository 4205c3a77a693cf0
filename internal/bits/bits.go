// Package bits provides low-level bit manipulation primitives.
package bits

import "math/bits"

// Mask returns a bitmask with the low width bits set.
// width >= 64 returns all ones.
func Mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// Extract returns width bits of hash starting at bit position offset.
// Bits at or above position 64 read as zero.
func Extract(hash uint64, offset, width uint) uint64 {
	if offset >= 64 {
		return 0
	}
	return (hash >> offset) & Mask(width)
}

// FastRange32 maps a 64-bit hash uniformly to [0, n) returning uint32.
// Uses the "fastrange" technique: multiply and take high bits.
// This is the standard way to map hashes to ranges without modulo bias.
func FastRange32(hash uint64, n uint32) uint32 {
	if n == 0 {
		return 0
	}
	hi, _ := bits.Mul64(hash, uint64(n))
	return uint32(hi)
}
