package s1o

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caian-org/s1o/spatial"
)

func TestRTreeBuilder_Build(t *testing.T) {
	a, err := RTree(2).MaxEntries(8).Build()
	require.NoError(t, err)
	assert.True(t, a.Empty())
	assert.Equal(t, []string(nil), a.ExtraFiles("whatever"))
}

func TestDiskRTreeBuilder_BuildAndOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index")

	built, err := DiskRTree(path, 2).StartingFileSize(1 << 16).Build()
	require.NoError(t, err)

	init := spatial.InitData{Basepath: path, IsNew: true, CanWrite: true, Dims: 2}
	uids := []uint64{1, 2, 3}
	points := []spatial.Point{{0, 0}, {1, 1}, {2, 2}}
	require.NoError(t, built.Initialize(init, uids, points))
	require.NoError(t, built.Close())

	reopened, err := DiskRTree(path, 2).Open(3)
	require.NoError(t, err)
	assert.False(t, reopened.Empty())
}

func TestMultiIndexBuilder_Build(t *testing.T) {
	primary := RTree(2).MustBuild()
	a, err := MultiIndex(primary).Secondary("ts", []float64{1, 2, 3}).Build()
	require.NoError(t, err)
	assert.NotNil(t, a)
}
