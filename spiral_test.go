package s1o

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caian-org/s1o/internal/errs"
)

// spiralPoints lays out n points along an Archimedean spiral, exercising a
// spatial index over a wide, non-grid coordinate spread.
func spiralPoints(n int) []pointMeta {
	metas := make([]pointMeta, n)
	for i := range n {
		theta := float64(i) * 0.1
		r := float64(i) * 0.05
		metas[i] = pointMeta{X: r * math.Cos(theta), Y: r * math.Sin(theta), DataSize: 0}
	}
	return metas
}

func TestCreate_SpiralBounds(t *testing.T) {
	const n = 5000
	metas := spiralPoints(n)

	ds, err := Create(basepath(t), pointAdapter{}, metas, RTree(2).MustBuild(), NoData, 0)
	require.NoError(t, err)
	defer ds.Close()

	require.Equal(t, uint64(n), ds.NumElements())

	wantMinX, wantMaxX := metas[0].X, metas[0].X
	wantMinY, wantMaxY := metas[0].Y, metas[0].Y
	for _, m := range metas {
		wantMinX = math.Min(wantMinX, m.X)
		wantMaxX = math.Max(wantMaxX, m.X)
		wantMinY = math.Min(wantMinY, m.Y)
		wantMaxY = math.Max(wantMaxY, m.Y)
	}

	min, max, err := ds.spatial.Bounds()
	require.NoError(t, err)
	assert.InDelta(t, wantMinX, min[0], 1e-9)
	assert.InDelta(t, wantMinY, min[1], 1e-9)
	assert.InDelta(t, wantMaxX, max[0], 1e-9)
	assert.InDelta(t, wantMaxY, max[1], 1e-9)
}

func TestDiskRTree_ExhaustsResizeAttempts(t *testing.T) {
	bp := basepath(t)
	metas := spiralPoints(2000)
	idx := DiskRTree(bp+".ridx", 2).
		StartingFileSize(rootReserveForTest).
		FileIncrement(0).
		MaxResizeAttempts(0).
		MustBuild()

	_, err := Create(bp, pointAdapter{}, metas, idx, NoData, 0)
	require.Error(t, err)

	var formatErr *errs.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, errs.KindIndexSizeTooBig, formatErr.Kind)
}

const rootReserveForTest = 64
