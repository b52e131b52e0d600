// Package checked wraps the small set of syscalls the file-pair storage
// engine depends on (open, read, write, seek, fsync, msync, unlink) so
// every failure surfaces with the operation name and path attached,
// instead of a bare *os.PathError the caller has to re-annotate.
package checked

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Failure is the uniform shape every function in this package returns on
// error. Op and Path identify what was attempted; Err is the underlying
// os/syscall error, reachable via errors.Unwrap.
type Failure struct {
	Op   string
	Path string
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("checked: %s %q: %v", f.Op, f.Path, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

func fail(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Failure{Op: op, Path: path, Err: err}
}

// Open opens path with the given flags, wrapping any failure.
func Open(path string, flag int, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, fail("open", path, err)
	}
	return f, nil
}

// PreSize allocates a sparse file of exactly size bytes: seek to
// size-1, write one zero byte, seek back to 0. size==0 is a no-op.
func PreSize(f *os.File, path string, size int64) error {
	if size <= 0 {
		return nil
	}
	if _, err := f.Seek(size-1, io.SeekStart); err != nil {
		return fail("seek", path, err)
	}
	if _, err := f.Write([]byte{0}); err != nil {
		return fail("write", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fail("seek", path, err)
	}
	return nil
}

// ReadFullAt reads exactly len(buf) bytes at off, failing with a short
// Failure (not an incomplete-read classification — that distinction is
// made by the caller, which knows whether EOF there is expected) when
// fewer are available.
func ReadFullAt(f *os.File, path string, buf []byte, off int64) error {
	n, err := f.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return fail("read", path, err)
	}
	if n != len(buf) {
		return fail("read", path, fmt.Errorf("short read: wanted %d bytes, got %d", len(buf), n))
	}
	return nil
}

// WriteFullAt writes all of buf at off, failing if fewer bytes than
// requested were accepted.
func WriteFullAt(f *os.File, path string, buf []byte, off int64) error {
	n, err := f.WriteAt(buf, off)
	if err != nil {
		return fail("write", path, err)
	}
	if n != len(buf) {
		return fail("write", path, fmt.Errorf("short write: wanted %d bytes, wrote %d", len(buf), n))
	}
	return nil
}

// Fsync flushes f's data and metadata to stable storage.
func Fsync(f *os.File, path string) error {
	if err := f.Sync(); err != nil {
		return fail("fsync", path, err)
	}
	return nil
}

// Msync flushes a memory-mapped region's dirty pages to stable storage.
func Msync(data []byte, path string) error {
	if len(data) == 0 {
		return nil
	}
	if err := unix.Msync(data, unix.MS_SYNC); err != nil {
		return fail("msync", path, err)
	}
	return nil
}

// Unlink removes path, treating "already gone" as success.
func Unlink(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fail("unlink", path, err)
	}
	return nil
}

// Size returns the current size in bytes of the file at path.
func Size(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, fail("stat", path, err)
	}
	return fi.Size(), nil
}
