package s1o

import (
	"github.com/caian-org/s1o/filepair"
	"github.com/caian-org/s1o/spatial"
)

// Unlink removes every file a dataset under basepath owns: the metadata
// and data files, the .crc companion (harmless to remove if it never
// existed), and any sidecar files the spatial adapter's own ExtraFiles
// reports. Idempotent — a missing file is not an error.
func Unlink[M any](basepath string, adapter MetaAdapter[M], spatialIdx spatial.Adapter, opts ...Option) error {
	o := applyOptions(opts)

	extras := []string{basepath + ".crc"}
	if spatialIdx != nil {
		extras = append(extras, spatialIdx.ExtraFiles(basepath)...)
	}
	err := filepair.Unlink(basepath, adapter.MetaExt(), adapter.DataExt(), extras)
	o.logger.WithBasepath(basepath).LogUnlink(basepath, err)
	return err
}
