package s1o

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMultiSlot_IndependentSlotsPerElement exercises a dataset with more
// than one data slot per row: each slot is a fully independent data blob
// addressed by the same metadata row, written directly through the
// memory-mapped slice GetData returns.
func TestMultiSlot_IndependentSlotsPerElement(t *testing.T) {
	metas, _ := gridPoints(4, 8)
	idx := RTree(2).MustBuild()

	const numSlots = 3
	ds, err := Create(basepath(t), pointAdapter{}, metas, idx, 0, numSlots)
	require.NoError(t, err)
	defer ds.Close()

	require.Equal(t, numSlots, ds.NumSlots())

	for uid := uint64(1); uid <= uint64(len(metas)); uid++ {
		for slot := range numSlots {
			data, err := ds.GetData(uid, slot)
			require.NoError(t, err)
			for i := range data {
				data[i] = byte(uid)*10 + byte(slot)
			}
		}
	}

	for uid := uint64(1); uid <= uint64(len(metas)); uid++ {
		for slot := range numSlots {
			data, err := ds.GetData(uid, slot)
			require.NoError(t, err)
			want := byte(uid)*10 + byte(slot)
			for _, b := range data {
				assert.Equal(t, want, b)
			}
		}
	}

	_, err = ds.GetData(1, numSlots)
	require.Error(t, err)
}
