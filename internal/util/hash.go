// Package util holds internal helpers shared by the cache packages:
// key hashing, power-of-two math, shard sizing, and cache-line padding
// for hot counters.
package util

import "fmt"

const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

// HashKey maps a cache key to a 64-bit FNV-1a hash used for shard
// routing. Strings hash over their bytes; integer keys hash over their
// eight little-endian bytes without allocating; [16]byte and [32]byte
// cover digest-shaped keys. Other types fall back to fmt.Stringer.
//
// Unsupported key types panic: a silently constant hash would route every
// key into a single shard, which is much harder to notice than a failure
// at first use.
func HashKey[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return hashBytes(v)
	case int:
		return hashUint64(uint64(v))
	case int8:
		return hashUint64(uint64(uint8(v)))
	case int16:
		return hashUint64(uint64(uint16(v)))
	case int32:
		return hashUint64(uint64(uint32(v)))
	case int64:
		return hashUint64(uint64(v))
	case uint:
		return hashUint64(uint64(v))
	case uint8:
		return hashUint64(uint64(v))
	case uint16:
		return hashUint64(uint64(v))
	case uint32:
		return hashUint64(uint64(v))
	case uint64:
		return hashUint64(v)
	case uintptr:
		return hashUint64(uint64(v))
	case [16]byte:
		return hashBytes(v[:])
	case [32]byte:
		return hashBytes(v[:])
	case fmt.Stringer:
		return hashBytes(v.String())
	default:
		panic(fmt.Sprintf("util.HashKey: unsupported key type %T; use string, integer, or fmt.Stringer keys with sharded caches", k))
	}
}

func hashBytes[B ~[]byte | ~string](b B) uint64 {
	h := fnvOffset64
	for i := 0; i < len(b); i++ {
		h ^= uint64(b[i])
		h *= fnvPrime64
	}
	return h
}

func hashUint64(u uint64) uint64 {
	h := fnvOffset64
	for i := 0; i < 8; i++ {
		h ^= u & 0xff
		h *= fnvPrime64
		u >>= 8
	}
	return h
}
