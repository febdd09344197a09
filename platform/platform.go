// Package platform isolates the handful of OS-specific primitives this
// module needs: a positional pread-style read, a page-size query, and a
// size check that decides whether memory-mapping a snapshot file is safe
// (the check uses fixed size limits, not the page size). It mirrors the
// teacher's stub package build-tag split (stub/unix_stub.go,
// stub/windows_stub.go), repurposed from cpio device-node handling to
// positional I/O.
package platform

import "math/bits"

const (
	maxMmapBytes64 = 1 << 40 // 1 TiB — generous, just guards against overflow
	maxMmapBytes32 = 1 << 30 // 1 GiB
)

// CanMMap reports whether a file of the given size is safe to memory-map on
// this platform.
func CanMMap(size int64) bool {
	if size <= 0 {
		return false
	}
	if bits.UintSize == 32 {
		return size <= maxMmapBytes32
	}
	return size <= maxMmapBytes64
}
