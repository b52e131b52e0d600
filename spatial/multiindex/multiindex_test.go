package multiindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caian-org/s1o/spatial"
	"github.com/caian-org/s1o/spatial/rtree"
)

func TestMultiindex_QuerySecondary_RangeMatchesBinarySearch(t *testing.T) {
	uids := []uint64{1, 2, 3, 4, 5}
	points := []spatial.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}}
	prices := []float64{50, 10, 30, 20, 40}

	a := New(rtree.New(2), map[string][]float64{"price": prices})
	require.NoError(t, a.Initialize(spatial.InitData{Dims: 2}, uids, points))

	var got []uint64
	for uid := range a.QuerySecondary("price", 20, 40) {
		got = append(got, uid)
	}

	want := map[uint64]bool{4: true, 3: true, 5: true}
	require.Len(t, got, 3)
	for _, uid := range got {
		assert.True(t, want[uid])
	}
}

func TestMultiindex_DelegatesPrimaryQueries(t *testing.T) {
	uids := []uint64{1, 2, 3}
	points := []spatial.Point{{0, 0}, {10, 10}, {20, 20}}

	a := New(rtree.New(2), nil)
	require.NoError(t, a.Initialize(spatial.InitData{Dims: 2}, uids, points))

	min, max, err := a.Bounds()
	require.NoError(t, err)
	assert.Equal(t, spatial.Point{0, 0}, min)
	assert.Equal(t, spatial.Point{20, 20}, max)

	count := 0
	for range a.All() {
		count++
	}
	assert.Equal(t, 3, count)
}

func TestMultiindex_MismatchedKeyLengthFails(t *testing.T) {
	uids := []uint64{1, 2, 3}
	points := []spatial.Point{{0, 0}, {1, 1}, {2, 2}}

	a := New(rtree.New(2), map[string][]float64{"price": {1, 2}})
	require.Error(t, a.Initialize(spatial.InitData{Dims: 2}, uids, points))
}

func TestSecondaryIndex_Bounds(t *testing.T) {
	si := buildSecondary("price", []uint64{1, 2, 3}, []float64{30, 10, 20})
	min, max := si.Bounds()
	assert.Equal(t, 10.0, min)
	assert.Equal(t, 30.0, max)
}
