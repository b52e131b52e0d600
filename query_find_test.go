package s1o

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/iterate"
	"github.com/caian-org/s1o/spatial"
)

func gridDataset(t *testing.T, w, h int) (*Dataset[pointMeta], []pointMeta) {
	n := w * h
	metas := make([]pointMeta, n)
	for i := range n {
		metas[i] = pointMeta{X: float64(i % w), Y: float64(i / w), DataSize: 4}
	}
	idx := RTree(2).MustBuild()
	ds, err := Create(basepath(t), pointAdapter{}, metas, idx, 0, 1)
	require.NoError(t, err)
	return ds, metas
}

func TestQueryElements_GridRange(t *testing.T) {
	ds, _ := gridDataset(t, 200, 200)
	defer ds.Close()

	ci := spatial.ClosedInterval{Min: spatial.Point{10, 10}, Max: spatial.Point{19, 19}}
	seq, err := ds.QueryElements(ci, 0)
	require.NoError(t, err)

	count := 0
	for pair, err := range seq {
		require.NoError(t, err)
		assert.True(t, pair.Meta.X >= 10 && pair.Meta.X <= 19)
		assert.True(t, pair.Meta.Y >= 10 && pair.Meta.Y <= 19)
		count++
	}
	assert.Equal(t, 100, count)
}

func TestQueryMetadata_RequiresSpatialIndex(t *testing.T) {
	metas, _ := gridPoints(5, 0)
	ds, err := Create(basepath(t), pointAdapter{}, metas, RTree(2).MustBuild(), NoData, 0)
	require.NoError(t, err)
	defer ds.Close()
	ds.spatial = nil // simulate a mapped dataset with no spatial index attached

	_, err = ds.QueryMetadata(spatial.ClosedInterval{Min: spatial.Point{0, 0}, Max: spatial.Point{1, 1}})
	require.Error(t, err)

	var stateErr *errs.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, errs.KindNotInitialized, stateErr.Kind)
}

func TestFindElement_ExactMatch(t *testing.T) {
	ds, metas := gridDataset(t, 200, 200)
	defer ds.Close()

	want := metas[137]
	meta, _, err := ds.FindElement(spatial.Point{want.X, want.Y}, 0)
	require.NoError(t, err)
	assert.Equal(t, want.X, meta.X)
	assert.Equal(t, want.Y, meta.Y)
}

func TestFindElement_PerturbedPointMismatches(t *testing.T) {
	ds, metas := gridDataset(t, 200, 200)
	defer ds.Close()

	want := metas[137]
	_, _, err := ds.FindElement(spatial.Point{want.X + 0.3, want.Y}, 0)
	require.Error(t, err)

	var queryErr *errs.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, errs.KindLocationMismatch, queryErr.Kind)
}

func TestFindMetadata_EmptyDataset(t *testing.T) {
	idx := RTree(2).MustBuild()
	ds, err := Create[pointMeta](basepath(t), pointAdapter{}, nil, idx, AllowUnsorted|NoData, 0)
	require.NoError(t, err)
	defer ds.Close()

	_, err = ds.FindMetadata(spatial.Point{0, 0})
	require.Error(t, err)

	var queryErr *errs.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, errs.KindEmptyQuery, queryErr.Kind)
}

func TestDataset_ImplementsResolver(t *testing.T) {
	ds, _ := gridDataset(t, 10, 10)
	defer ds.Close()

	var _ iterate.Resolver[pointMeta] = ds

	m, err := ds.Metadata(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.UID)
}
