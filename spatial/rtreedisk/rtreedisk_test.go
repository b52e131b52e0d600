package rtreedisk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/spatial"
)

func buildGrid(t *testing.T, side int) (*Adapter, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ds.ridx")
	a := New(path, 2, WithStartingFileSize(1<<16), WithFileIncrement(1<<16), WithMaxResizeAttempts(6))

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

	require.NoError(t, a.Initialize(spatial.InitData{IsNew: true, Dims: 2}, uids, points))
	return a, path
}

func TestRtreeDisk_Bounds(t *testing.T) {
	a, _ := buildGrid(t, 50)
	defer a.Close()

	min, max, err := a.Bounds()
	require.NoError(t, err)
	assert.Equal(t, spatial.Point{-100 * 50, 100}, min)
	assert.Equal(t, spatial.Point{-100, 100 * 50}, max)
}

func TestRtreeDisk_QueryRange_FullBox(t *testing.T) {
	const side = 40
	a, _ := buildGrid(t, side)
	defer a.Close()

	seen := map[uint64]bool{}
	for r := range a.QueryRange(spatial.ClosedInterval{
		Min: spatial.Point{-100 * float64(side+1), 0},
		Max: spatial.Point{0, 100 * float64(side+1)},
	}) {
		seen[r.UID] = true
	}
	assert.Len(t, seen, side*side)
}

func TestRtreeDisk_QueryNearest_ExactMatch(t *testing.T) {
	a, _ := buildGrid(t, 20)
	defer a.Close()

	target := spatial.Point{-500, 300}
	var got spatial.Result
	for r := range a.QueryNearest(spatial.Nearest{Point: target, K: 1}) {
		got = r
		break
	}
	assert.True(t, got.Point.Equal(target))
}

func TestRtreeDisk_ReopenAfterCreate(t *testing.T) {
	a, path := buildGrid(t, 10)
	count := 0
	for range a.All() {
		count++
	}
	require.NoError(t, a.Close())

	reopened, err := Open(path, 2, count)
	require.NoError(t, err)
	defer reopened.Close()

	got := 0
	for range reopened.All() {
		got++
	}
	assert.Equal(t, count, got)
}

func TestRtreeDisk_Open_WrongCountFailsInconsistentIndex(t *testing.T) {
	_, path := buildGrid(t, 10)

	_, err := Open(path, 2, 999)
	require.Error(t, err)

	var fe *errs.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, errs.KindInconsistentIndex, fe.Kind)
}

func TestRtreeDisk_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ridx")
	a := New(path, 2)
	require.NoError(t, a.Initialize(spatial.InitData{}, nil, nil))
	assert.True(t, a.Empty())
}

func TestRtreeDisk_ExtraFiles(t *testing.T) {
	a := New("/tmp/ds", 2)
	assert.Equal(t, []string{"/tmp/ds.ridx"}, a.ExtraFiles("/tmp/ds"))
}
