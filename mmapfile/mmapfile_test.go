package mmapfile

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caian-org/s1o/internal/errs"
)

func TestAllocator_BasicAllocation(t *testing.T) {
	data := make([]byte, 256)
	a := NewAllocator(data, 16)

	assert.EqualValues(t, 64, a.Used()) // root reserve rounds up to 64

	off, err := a.Alloc(10)
	require.NoError(t, err)
	assert.EqualValues(t, 64, off)
	assert.EqualValues(t, 128, a.Used())
}

func TestAllocator_FailsPastCapacity(t *testing.T) {
	data := make([]byte, 128)
	a := NewAllocator(data, 0)

	_, err := a.Alloc(64)
	require.NoError(t, err)

	_, err = a.Alloc(128)
	assert.ErrorIs(t, err, ErrAllocFailed)
}

func TestCreate_SucceedsFirstTry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.ridx")

	info, err := Create(CreateParams{
		Path: path, StartingFileSize: 4096, FileIncrement: 4096, MaxResizeAttempts: 3,
	}, func(alloc *Allocator) error {
		_, err := alloc.Alloc(100)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 1, info.Attempts)
	assert.EqualValues(t, 4096, info.RawBytes)
}

func TestCreate_RetriesOnAllocFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.ridx")

	needed := int64(10000)
	info, err := Create(CreateParams{
		Path: path, StartingFileSize: 1024, FileIncrement: 4096, MaxResizeAttempts: 5,
	}, func(alloc *Allocator) error {
		_, err := alloc.Alloc(needed)
		return err
	})

	require.NoError(t, err)
	assert.Greater(t, info.Attempts, 1)
}

func TestCreate_FailsIndexSizeTooBig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.ridx")

	_, err := Create(CreateParams{
		Path: path, StartingFileSize: 64, FileIncrement: 64, MaxResizeAttempts: 2,
	}, func(alloc *Allocator) error {
		_, err := alloc.Alloc(1 << 30)
		return err
	})

	require.Error(t, err)
	var fe *errs.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, errs.KindIndexSizeTooBig, fe.Kind)
}

func TestCreate_NonAllocErrorAbortsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.ridx")
	sentinel := fmt.Errorf("boom")

	_, err := Create(CreateParams{
		Path: path, StartingFileSize: 64, FileIncrement: 64, MaxResizeAttempts: 5,
	}, func(alloc *Allocator) error {
		return sentinel
	})

	require.ErrorIs(t, err, sentinel)
}

func TestOpen_RoundTripsBuiltData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.ridx")

	_, err := Create(CreateParams{
		Path: path, StartingFileSize: 4096, FileIncrement: 4096, MaxResizeAttempts: 1,
	}, func(alloc *Allocator) error {
		off, err := alloc.Alloc(8)
		if err != nil {
			return err
		}
		copy(alloc.Bytes(off, 8), []byte("deadbeef"))
		return nil
	})
	require.NoError(t, err)

	var got string
	err = Open(path, func(data []byte) error {
		got = string(data[0:8])
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", got)
}
