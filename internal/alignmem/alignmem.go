// Package alignmem provides the 64-byte alignment arithmetic and aligned
// scratch buffers used throughout the on-disk row and header layout.
package alignmem

import "unsafe"

// Alignment is the byte boundary every row, header, and data blob offset
// is padded to.
const Alignment = 64

// AlignUp rounds n up to the next multiple of Alignment. n must be >= 0.
func AlignUp(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// AllocAligned allocates a byte slice of the given size starting at an
// address divisible by Alignment. The underlying oversized array is kept
// alive by the returned slice.
func AllocAligned(size int) []byte {
	if size == 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // required for alignment arithmetic
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}
