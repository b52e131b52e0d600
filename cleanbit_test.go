package s1o

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caian-org/s1o/layout"
)

func TestCleanBitIndex_BitmapMatchesLinearScan(t *testing.T) {
	metas, _ := gridPoints(30, 8)
	idx := RTree(2).MustBuild()

	withIdx, err := Create(basepath(t), pointAdapter{}, metas, idx, 0, 1, WithCleanBitIndex(true))
	require.NoError(t, err)
	defer withIdx.Close()

	withoutIdx, err := Create(basepath(t), pointAdapter{}, metas, RTree(2).MustBuild(), 0, 1, WithCleanBitIndex(false))
	require.NoError(t, err)
	defer withoutIdx.Close()

	require.NotNil(t, withIdx.cleanIdx)
	require.Nil(t, withoutIdx.cleanIdx)

	require.NoError(t, withIdx.SetElementDirty(5))
	require.NoError(t, withoutIdx.SetElementDirty(5))

	for uid := uint64(1); uid <= 30; uid++ {
		cleanA, err := withIdx.IsElementClean(uid)
		require.NoError(t, err)
		cleanB, err := withoutIdx.IsElementClean(uid)
		require.NoError(t, err)
		assert.Equal(t, cleanB, cleanA)
	}

	dirty, err := withIdx.GetDirtyUIDs()
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, dirty)
}

func TestSetCleanBit_RoundTrip(t *testing.T) {
	metas, _ := gridPoints(5, 4)
	ds, err := Create(basepath(t), pointAdapter{}, metas, RTree(2).MustBuild(), 0, 1)
	require.NoError(t, err)
	defer ds.Close()

	clean, err := ds.IsElementClean(3)
	require.NoError(t, err)
	assert.True(t, clean)

	require.NoError(t, ds.SetElementDirty(3))
	dirty, err := ds.IsElementDirty(3)
	require.NoError(t, err)
	assert.True(t, dirty)

	require.NoError(t, ds.SetElementClean(3))
	clean, err = ds.IsElementClean(3)
	require.NoError(t, err)
	assert.True(t, clean)

	bit, err := ds.readCleanBit(3)
	require.NoError(t, err)
	assert.Equal(t, layout.Clean, bit)
}
