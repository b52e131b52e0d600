package s1o

import (
	"context"
	"path/filepath"

	"github.com/caian-org/s1o/backup"
	"github.com/caian-org/s1o/spatial"
)

// backupEntries lists every file a dataset's on-disk state is spread
// across: the meta and data files, the `.crc` companion if checksums are
// enabled, and the spatial adapter's own sidecars. It is used by both
// Snapshot (reading from a live dataset) and RestoreDataset (reconstructing
// one before it has ever been opened).
func backupEntries(basepath string, pair filePaths, spatialIdx spatial.Adapter, hasChecksums bool) []backup.Entry {
	entries := []backup.Entry{
		{Path: pair.MetaPath(), Name: filepath.Base(pair.MetaPath())},
		{Path: pair.DataPath(), Name: filepath.Base(pair.DataPath())},
	}
	if hasChecksums {
		entries = append(entries, backup.Entry{Path: basepath + ".crc", Name: filepath.Base(basepath + ".crc")})
	}
	if spatialIdx != nil {
		for _, p := range spatialIdx.ExtraFiles(basepath) {
			entries = append(entries, backup.Entry{Path: p, Name: filepath.Base(p)})
		}
	}
	return entries
}

// filePaths is the subset of filepair.Pair's surface backupEntries needs,
// small enough that Snapshot and RestoreDataset can both satisfy it (a
// live Pair, and a pair of plain strings before the files exist).
type filePaths interface {
	MetaPath() string
	DataPath() string
}

type staticPaths struct{ meta, data string }

func (p staticPaths) MetaPath() string { return p.meta }
func (p staticPaths) DataPath() string { return p.data }

// Snapshot bundles ds's current on-disk files into a single archive,
// compresses it with codec, and ships it to target under key. It reads the
// files directly rather than going through ds's own handle, so it works
// regardless of whether ds is mapped or descriptor-mode.
func (ds *Dataset[M]) Snapshot(ctx context.Context, codec backup.Codec, target backup.Target, key string) error {
	entries := backupEntries(ds.basepath, ds.pair, ds.spatial, ds.crcFile != nil)
	return backup.Snapshot(ctx, entries, codec, target, key)
}

// RestoreDataset reconstructs a dataset's files under basepath from the
// archive stored under key, without requiring the dataset to have existed
// locally beforehand. Call Open afterward to bring it up.
func RestoreDataset[M any](ctx context.Context, basepath string, adapter MetaAdapter[M], spatialIdx spatial.Adapter, hasChecksums bool, codec backup.Codec, target backup.Target, key string) error {
	paths := staticPaths{
		meta: basepath + "." + adapter.MetaExt(),
		data: basepath + "." + adapter.DataExt(),
	}
	entries := backupEntries(basepath, paths, spatialIdx, hasChecksums)
	return backup.Restore(ctx, entries, codec, target, key)
}
