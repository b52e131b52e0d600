package s1o

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSync_NoopOnCleanDataset(t *testing.T) {
	metas, _ := gridPoints(5, 4)
	ds, err := Create(basepath(t), pointAdapter{}, metas, RTree(2).MustBuild(), 0, 1)
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.SyncMetadata())
	require.NoError(t, ds.SyncData())
}

func TestUnlink_RemovesAllFiles(t *testing.T) {
	bp := basepath(t)
	metas, _ := gridPoints(5, 4)
	idx := RTree(2).MustBuild()

	ds, err := Create(bp, pointAdapter{}, metas, idx, 0, 1, WithChecksums(false))
	require.NoError(t, err)
	require.NoError(t, ds.Close())

	metaPath := bp + ".pmeta"
	dataPath := bp + ".pdata"
	_, err = os.Stat(metaPath)
	require.NoError(t, err)
	_, err = os.Stat(dataPath)
	require.NoError(t, err)

	require.NoError(t, Unlink[pointMeta](bp, pointAdapter{}, RTree(2).MustBuild()))

	_, err = os.Stat(metaPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dataPath)
	assert.True(t, os.IsNotExist(err))
}

func TestUnlink_IdempotentOnMissingFiles(t *testing.T) {
	bp := basepath(t)
	require.NoError(t, Unlink[pointMeta](bp, pointAdapter{}, nil))
}
