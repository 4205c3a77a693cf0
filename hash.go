package minicheck

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// Built-in hash functions for common key and value types. Any func(K) uint64
// works as a Config hash; these cover the usual cases. Widths narrower than
// 64 bits (CRC32) must be declared via WithHashBits.

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// XXHash64 hashes a byte slice with xxHash64. Full 64-bit width.
func XXHash64(b []byte) uint64 { return xxhash.Sum64(b) }

// HashBytes hashes a byte slice with xxHash3. Full 64-bit width.
// Prefer this for arbitrary, possibly non-uniform keys (strings, URLs,
// sequential integers): it turns them into uniformly random 64-bit values.
func HashBytes(b []byte) uint64 { return xxh3.Hash(b) }

// HashString hashes a string with xxHash3 without copying.
func HashString(s string) uint64 { return xxh3.HashString(s) }

// HashUint64 hashes a uint64 with xxHash64 over its little-endian bytes.
func HashUint64(v uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return xxhash.Sum64(b[:])
}

// HashUint32 hashes a uint32 with xxHash64 over its little-endian bytes.
func HashUint32(v uint32) uint64 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return xxhash.Sum64(b[:])
}

// CRC32Uint32 hashes a uint32 with CRC-32C (Castagnoli). 32-bit width:
// pair it with WithHashBits(32).
func CRC32Uint32(v uint32) uint64 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return uint64(crc32.Checksum(b[:], castagnoli))
}

// CRC32Bytes hashes a byte slice with CRC-32C (Castagnoli). 32-bit width:
// pair it with WithHashBits(32).
func CRC32Bytes(b []byte) uint64 {
	return uint64(crc32.Checksum(b, castagnoli))
}

// Murmur3Seeded returns a seeded murmur3 byte-slice hash. Distinct seeds give
// independent hash functions, useful when running several checks over the
// same keys.
func Murmur3Seeded(seed uint32) func([]byte) uint64 {
	return func(b []byte) uint64 {
		h, _ := murmur3.Sum128WithSeed(b, seed)
		return h
	}
}
