package util

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is assumed to be 64 bytes, which holds for amd64 and
// arm64. On platforms with longer lines the padding is merely less
// effective, never incorrect.
const CacheLineSize = 64

// CacheLinePad occupies one full cache line. Embed it between fields that
// are written by different goroutines to keep them out of each other's
// lines.
type CacheLinePad struct {
	_ [CacheLineSize]byte
}

// PaddedAtomicUint64 is an atomic.Uint64 padded out to a full cache line
// so that adjacent counters updated from different goroutines do not
// false-share.
type PaddedAtomicUint64 struct {
	atomic.Uint64
	_ [CacheLineSize - 8]byte
}

// PaddedAtomicInt64 is the signed counterpart of PaddedAtomicUint64.
type PaddedAtomicInt64 struct {
	atomic.Int64
	_ [CacheLineSize - 8]byte
}

// Compile-time size checks: a padded counter must fill its line exactly.
var (
	_ [CacheLineSize]byte = [unsafe.Sizeof(PaddedAtomicUint64{})]byte{}
	_ [CacheLineSize]byte = [unsafe.Sizeof(PaddedAtomicInt64{})]byte{}
)
