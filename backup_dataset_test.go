package s1o

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caian-org/s1o/backup"
)

func TestDataset_SnapshotRestore_RoundTrips(t *testing.T) {
	ctx := context.Background()
	src := basepath(t)
	metas, blobs := gridPoints(12, 5)

	ds, err := Create(src, pointAdapter{}, metas, RTree(2).MustBuild(), 0, 1)
	require.NoError(t, err)
	defer ds.Close()

	for i := range metas {
		buf, err := ds.GetData(uint64(i+1), 0)
		require.NoError(t, err)
		copy(buf, blobs[i])
	}

	target, err := backup.NewLocalTarget(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, ds.Snapshot(ctx, backup.ZstdCodec{}, target, "snap-1"))

	dst := basepath(t)
	require.NoError(t, RestoreDataset[pointMeta](ctx, dst, pointAdapter{}, nil, false, backup.ZstdCodec{}, target, "snap-1"))

	restored, err := Open(dst, pointAdapter{}, RTree(2).MustBuild(), 0, 0, 1)
	require.NoError(t, err)
	defer restored.Close()

	require.Equal(t, ds.NumElements(), restored.NumElements())
	for i := range metas {
		uid := uint64(i + 1)
		m, data, err := restored.GetElement(uid)
		require.NoError(t, err)
		assert.Equal(t, metas[i].X, m.X)
		assert.Equal(t, metas[i].Y, m.Y)
		assert.Equal(t, blobs[i], data[:len(blobs[i])])
	}
}
