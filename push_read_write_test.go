package s1o

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caian-org/s1o/internal/errs"
)

func TestPushElement_AcrossTwoSessions(t *testing.T) {
	bp := basepath(t)

	ds, err := Create[pointMeta](bp, pointAdapter{}, nil, nil, RWP|AllowUnsorted, 1)
	require.NoError(t, err)

	for i := range 50 {
		uid, err := ds.PushElement(pointMeta{X: float64(i), Y: 0, DataSize: 4}, []byte{1, 2, 3, 4})
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), uid)
	}
	require.NoError(t, ds.Close())

	reopened, err := Open[pointMeta](bp, pointAdapter{}, nil, Write, RWP|AllowUnsorted, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(50), reopened.NumElements())

	for uid := uint64(1); uid <= 50; uid++ {
		meta, data, ok, err := reopened.ReadElement(uid, 0)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, uid, meta.UID)
		assert.Equal(t, []byte{1, 2, 3, 4}, data)
	}

	for i := range 50 {
		uid, err := reopened.PushElement(pointMeta{X: float64(i), Y: 1, DataSize: 4}, []byte{5, 6, 7, 8})
		require.NoError(t, err)
		assert.Equal(t, uint64(50+i+1), uid)
	}
	require.Equal(t, uint64(100), reopened.NumElements())
	require.NoError(t, reopened.Close())
}

func TestPushElement_MultiSlotForbidden(t *testing.T) {
	ds, err := Create[pointMeta](basepath(t), pointAdapter{}, nil, nil, RWP|AllowUnsorted, 1)
	require.NoError(t, err)
	defer ds.Close()
	ds.numSlots = 2 // simulate a dataset that somehow ended up multi-slot

	_, err = ds.PushElement(pointMeta{DataSize: 1}, []byte{0})
	require.Error(t, err)

	var accessErr *errs.AccessError
	require.ErrorAs(t, err, &accessErr)
	assert.Equal(t, errs.KindPushMultiSlot, accessErr.Kind)
}

func TestWriteElement_RefusesDataSizeChange(t *testing.T) {
	ds, err := Create[pointMeta](basepath(t), pointAdapter{}, nil, nil, RWP|AllowUnsorted, 1)
	require.NoError(t, err)
	defer ds.Close()

	uid, err := ds.PushElement(pointMeta{X: 1, Y: 1, DataSize: 4}, []byte{1, 2, 3, 4})
	require.NoError(t, err)

	err = ds.WriteElement(uid, pointMeta{X: 2, Y: 2, DataSize: 8}, []byte{1, 2, 3, 4, 5, 6, 7, 8}, 0)
	require.Error(t, err)

	var accessErr *errs.AccessError
	require.ErrorAs(t, err, &accessErr)
	assert.Equal(t, errs.KindInvalidDataSize, accessErr.Kind)

	err = ds.WriteElement(uid, pointMeta{X: 9, Y: 9, DataSize: 4}, []byte{9, 9, 9, 9}, 0)
	require.NoError(t, err)

	meta, data, ok, err := ds.ReadElement(uid, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9.0, meta.X)
	assert.Equal(t, []byte{9, 9, 9, 9}, data)
}

func TestReadElement_EOFBeyondElementCount(t *testing.T) {
	ds, err := Create[pointMeta](basepath(t), pointAdapter{}, nil, nil, RWP|AllowUnsorted, 1)
	require.NoError(t, err)
	defer ds.Close()

	_, _, ok, err := ds.ReadElement(1, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChecksums_DetectCorruption(t *testing.T) {
	bp := basepath(t)

	ds, err := Create[pointMeta](bp, pointAdapter{}, nil, nil, RWP|AllowUnsorted, 1, WithChecksums(true))
	require.NoError(t, err)
	defer ds.Close()

	uid, err := ds.PushElement(pointMeta{X: 1, Y: 1, DataSize: 4}, []byte{1, 2, 3, 4})
	require.NoError(t, err)

	corrupt := []byte{9, 9, 9, 9}
	require.NoError(t, ds.pair.WriteDataAt(corrupt, 0))

	_, _, _, err = ds.ReadElement(uid, 0)
	require.Error(t, err)

	var formatErr *errs.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, errs.KindCheckDataMismatch, formatErr.Kind)
}
