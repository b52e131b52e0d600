// Package mmapfile implements the resize-and-retry loader used to
// bulk-build a spatial index inside a managed memory-mapped file: a
// loop that grows the file on each allocation failure until the
// caller's build callback succeeds or a maximum number of attempts is
// exhausted.
package mmapfile

import (
	"errors"
	"os"

	"github.com/caian-org/s1o/internal/checked"
	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/internal/mmap"
)

// CreateParams controls the resize-retry loop.
type CreateParams struct {
	Path string

	// StartingFileSize is the size tried on attempt 0.
	StartingFileSize int64

	// FileIncrement is added, multiplied by the attempt number, to each
	// subsequent try.
	FileIncrement int64

	// MaxResizeAttempts is the last attempt index tried (inclusive);
	// exceeding it without success fails IndexSizeTooBig.
	MaxResizeAttempts int

	// RootReserve is the number of bytes at the start of the mapping
	// reserved for the caller's root object.
	RootReserve int64
}

// BuildFunc attempts to construct the caller's object inside alloc. It
// must return ErrAllocFailed (wrapped or bare, checked with errors.Is)
// when it runs out of space, and nil on success.
type BuildFunc func(alloc *Allocator) error

// InitializationInfo records how a Create call succeeded, for
// observability: the raw file size that worked, how much of it the build
// callback actually used, and how many attempts it took.
type InitializationInfo struct {
	RawBytes  int64
	UsedBytes int64
	Attempts  int
}

// Create implements §4.8's algorithm: for attempt in
// 0..=MaxResizeAttempts, remove and recreate the file at an increasing
// size, map it read-write, and run build. An ErrAllocFailed return
// unmaps, discards the file, and retries at the next size; any other
// error aborts immediately; success records InitializationInfo and
// leaves the file in place (unmapped — callers remap read-only via Open
// or keep using the return value's side effects on disk).
func Create(p CreateParams, build BuildFunc) (*InitializationInfo, error) {
	for attempt := 0; attempt <= p.MaxResizeAttempts; attempt++ {
		size := p.StartingFileSize + int64(attempt)*p.FileIncrement

		if err := checked.Unlink(p.Path); err != nil {
			return nil, err
		}

		f, err := checked.Open(p.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, err
		}
		if err := checked.PreSize(f, p.Path, size); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, &errs.IOError{Kind: errs.KindIO, Op: "close", Path: p.Path, Errno: err}
		}

		mapping, err := mmap.OpenWritable(p.Path)
		if err != nil {
			return nil, err
		}

		alloc := NewAllocator(mapping.Bytes(), p.RootReserve)
		buildErr := build(alloc)

		if buildErr == nil {
			info := &InitializationInfo{RawBytes: size, UsedBytes: alloc.Used(), Attempts: attempt + 1}
			if err := mapping.Flush(); err != nil {
				mapping.Close()
				return nil, err
			}
			if err := mapping.Close(); err != nil {
				return nil, err
			}
			return info, nil
		}

		mapping.Close()

		if !errors.Is(buildErr, ErrAllocFailed) {
			return nil, buildErr
		}
		if attempt == p.MaxResizeAttempts {
			checked.Unlink(p.Path)
			return nil, &errs.FormatError{
				Kind: errs.KindIndexSizeTooBig, Basepath: p.Path,
				Expected: size, Actual: size,
			}
		}
	}

	return nil, &errs.FormatError{Kind: errs.KindIndexSizeTooBig, Basepath: p.Path}
}

// LookupFunc inspects a read-only mapped region and either succeeds or
// returns an error (typically inconsistent_index, for a missing or
// mismatched root object).
type LookupFunc func(data []byte) error

// Open maps path read-only and hands its bytes to lookup, unmapping
// afterward regardless of outcome.
func Open(path string, lookup LookupFunc) error {
	mapping, err := mmap.Open(path)
	if err != nil {
		return err
	}
	defer mapping.Close()

	return lookup(mapping.Bytes())
}
