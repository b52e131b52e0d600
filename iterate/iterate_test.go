package iterate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caian-org/s1o/spatial"
)

type fakeMeta struct {
	UID uint64
}

type fakeResolver struct {
	fail uint64
}

func (r fakeResolver) Metadata(uid uint64) (fakeMeta, error) {
	if uid == r.fail {
		return fakeMeta{}, errors.New("boom")
	}
	return fakeMeta{UID: uid}, nil
}

func (r fakeResolver) Data(uid uint64, slot int) ([]byte, error) {
	if uid == r.fail {
		return nil, errors.New("boom")
	}
	return []byte{byte(uid), byte(slot)}, nil
}

func TestUIDRange(t *testing.T) {
	var got []uint64
	for uid := range UIDRange(5, 9) {
		got = append(got, uid)
	}
	assert.Equal(t, []uint64{5, 6, 7, 8}, got)
}

func TestFromUIDs_ResolvesEachPair(t *testing.T) {
	pairs, err := Collect(FromUIDs(UIDRange(1, 4), 0, fakeResolver{}))
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	assert.EqualValues(t, 1, pairs[0].UID)
	assert.Equal(t, fakeMeta{UID: 1}, pairs[0].Meta)
}

func TestFromUIDs_StopsOnFirstError(t *testing.T) {
	_, err := Collect(FromUIDs(UIDRange(1, 5), 0, fakeResolver{fail: 3}))
	require.Error(t, err)
}

func TestMetadata_ProjectsOutData(t *testing.T) {
	var got []fakeMeta
	for m, err := range Metadata(FromUIDs(UIDRange(1, 4), 0, fakeResolver{})) {
		require.NoError(t, err)
		got = append(got, m)
	}
	assert.Len(t, got, 3)
}

func TestAtSlot_RebindsDataToNewSlot(t *testing.T) {
	base := FromUIDs(UIDRange(1, 2), 0, fakeResolver{})
	rebound, err := Collect(AtSlot(base, 2, fakeResolver{}))
	require.NoError(t, err)
	require.Len(t, rebound, 1)
	assert.Equal(t, byte(2), rebound[0].Data[1])
}

func TestFromResults_DerivesUIDsFromSpatialResults(t *testing.T) {
	results := func(yield func(spatial.Result) bool) {
		yield(spatial.Result{UID: 1})
		yield(spatial.Result{UID: 2})
	}

	pairs, err := Collect(FromResults[fakeMeta](results, 0, fakeResolver{}))
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.EqualValues(t, 2, pairs[1].UID)
}

func TestEarlyTermination_StopsPipeline(t *testing.T) {
	count := 0
	for p, err := range Metadata(FromUIDs(UIDRange(1, 100), 0, fakeResolver{})) {
		_, _ = p, err
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}
