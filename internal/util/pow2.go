package util

import "math/bits"

// IsPowerOfTwo reports whether x is a positive power of two.
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && x&(x-1) == 0
}

// NextPowerOfTwo returns the smallest power of two greater than or equal
// to x. Zero and one both map to one; inputs above 1<<63 clamp there.
func NextPowerOfTwo(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	if x > 1<<63 {
		return 1 << 63
	}
	return 1 << bits.Len64(x-1)
}
