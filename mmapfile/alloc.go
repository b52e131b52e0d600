package mmapfile

import (
	"errors"

	"github.com/caian-org/s1o/internal/alignmem"
)

// ErrAllocFailed is returned by Allocator.Alloc when the requested size
// would advance the cursor past the end of the mapped region. Create's
// resize-retry loop treats this, and only this, as grounds for retrying
// with a larger file.
var ErrAllocFailed = errors.New("mmapfile: allocation failed")

// Allocator is a single bump allocator over a mapped byte region: a
// cursor starting right after a fixed-size root-object reservation,
// advancing by each 64-byte-aligned allocation request. It never grows
// the mapping itself — that is the resize-retry loop's job, one level up.
type Allocator struct {
	data   []byte
	cursor int64
}

// NewAllocator wraps data, reserving the first rootReserve bytes (rounded
// up to the alignment boundary) for the caller's root object.
func NewAllocator(data []byte, rootReserve int64) *Allocator {
	return &Allocator{data: data, cursor: alignmem.AlignUp(rootReserve)}
}

// Alloc reserves size bytes (aligned up to the 64-byte boundary) and
// returns their offset within the mapping. Returns ErrAllocFailed, never
// growing the mapping, when the cursor would exceed its length.
func (a *Allocator) Alloc(size int64) (int64, error) {
	aligned := alignmem.AlignUp(size)
	if a.cursor+aligned > int64(len(a.data)) {
		return 0, ErrAllocFailed
	}
	off := a.cursor
	a.cursor += aligned
	return off, nil
}

// Bytes returns the byte range [off, off+size) of the underlying mapping.
func (a *Allocator) Bytes(off, size int64) []byte {
	return a.data[off : off+size]
}

// Root returns the reserved root-object region at offset 0.
func (a *Allocator) Root(size int64) []byte {
	return a.data[0:size]
}

// Used returns the number of bytes claimed so far, including the root
// reservation.
func (a *Allocator) Used() int64 { return a.cursor }

// Cap returns the mapping's total size.
func (a *Allocator) Cap() int64 { return int64(len(a.data)) }
