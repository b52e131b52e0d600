package rtree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caian-org/s1o/spatial"
)

func gridAdapter(t *testing.T, side int) *Adapter {
	t.Helper()

	var uids []uint64
	var points []spatial.Point
	uid := uint64(1)
	for ix := 0; ix < side; ix++ {
		for iy := 0; iy < side; iy++ {
			uids = append(uids, uid)
			points = append(points, spatial.Point{-100 * float64(ix+1), 100 * float64(iy+1)})
			uid++
		}
	}

	a := New(2)
	require.NoError(t, a.Initialize(spatial.InitData{IsNew: true, CanWrite: true, Dims: 2}, uids, points))
	return a
}

func TestRtree_Bounds(t *testing.T) {
	a := gridAdapter(t, 200)

	min, max, err := a.Bounds()
	require.NoError(t, err)
	assert.Equal(t, spatial.Point{-100 * 200, 100}, min)
	assert.Equal(t, spatial.Point{-100, 100 * 200}, max)
}

func TestRtree_QueryRange_FullBoxReturnsEverything(t *testing.T) {
	const side = 200
	a := gridAdapter(t, side)

	seen := map[uint64]bool{}
	for r := range a.QueryRange(spatial.ClosedInterval{
		Min: spatial.Point{-100 * float64(side+1), 0},
		Max: spatial.Point{0, 100 * float64(side+1)},
	}) {
		assert.False(t, seen[r.UID], "duplicate uid %d", r.UID)
		seen[r.UID] = true
	}

	assert.Len(t, seen, side*side)
}

func TestRtree_QueryRange_TightBoxReturnsSingleUID(t *testing.T) {
	a := gridAdapter(t, 10)

	target := spatial.Point{-100, 100}
	var got []uint64
	for r := range a.QueryRange(spatial.ClosedInterval{
		Min: spatial.Point{target[0] - 1, target[1] - 1},
		Max: spatial.Point{target[0] + 1, target[1] + 1},
	}) {
		got = append(got, r.UID)
	}

	require.Len(t, got, 1)
	assert.EqualValues(t, 1, got[0])
}

func TestRtree_QueryNearest_ExactMatch(t *testing.T) {
	a := gridAdapter(t, 10)

	target := spatial.Point{-500, 300}
	var got spatial.Result
	for r := range a.QueryNearest(spatial.Nearest{Point: target, K: 1}) {
		got = r
		break
	}

	assert.True(t, got.Point.Equal(target))
	assert.InDelta(t, 0, got.Distance, 1e-9)
}

func TestRtree_QueryNearest_KOrdersByAscendingDistance(t *testing.T) {
	a := gridAdapter(t, 10)

	target := spatial.Point{-250, 250}
	var dists []float64
	for r := range a.QueryNearest(spatial.Nearest{Point: target, K: 5}) {
		dists = append(dists, r.Distance)
	}

	require.Len(t, dists, 5)
	for i := 1; i < len(dists); i++ {
		assert.LessOrEqual(t, dists[i-1], dists[i])
	}
}

func TestRtree_All_VisitsEveryEntryOnce(t *testing.T) {
	const side = 15
	a := gridAdapter(t, side)

	seen := map[uint64]bool{}
	for r := range a.All() {
		seen[r.UID] = true
	}
	assert.Len(t, seen, side*side)
}

func TestRtree_Empty(t *testing.T) {
	a := New(2)
	require.NoError(t, a.Initialize(spatial.InitData{}, nil, nil))
	assert.True(t, a.Empty())

	min, max, err := a.Bounds()
	require.NoError(t, err)
	assert.Nil(t, min)
	assert.Nil(t, max)

	for range a.QueryRange(spatial.ClosedInterval{Min: spatial.Point{0, 0}, Max: spatial.Point{1, 1}}) {
		t.Fatal("expected no results")
	}
}

func TestRtree_Spiral_Bounds(t *testing.T) {
	const n = 5000

	var uids []uint64
	var points []spatial.Point
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for i := 0; i < n; i++ {
		r := 100 * (float64(n) - 0.8*float64(i))
		x := r * math.Cos(float64(i)/100)
		y := r * math.Sin(float64(i)/100)

		uids = append(uids, uint64(i+1))
		points = append(points, spatial.Point{x, y})

		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	a := New(2)
	require.NoError(t, a.Initialize(spatial.InitData{IsNew: true, Dims: 2}, uids, points))

	min, max, err := a.Bounds()
	require.NoError(t, err)
	assert.InDelta(t, minX, min[0], 1e-6)
	assert.InDelta(t, minY, min[1], 1e-6)
	assert.InDelta(t, maxX, max[0], 1e-6)
	assert.InDelta(t, maxY, max[1], 1e-6)
}
