package s1o

import "time"

// SyncMetadata flushes pending metadata writes to stable storage: msync
// in mapped mode, fsync otherwise.
func (ds *Dataset[M]) SyncMetadata() error {
	start := time.Now()
	err := ds.pair.SyncMeta()
	ds.opts.metrics.RecordSync(time.Since(start), err)
	ds.opts.logger.WithBasepath(ds.basepath).LogSync(ds.basepath, err)
	return err
}

// SyncData flushes pending data writes to stable storage.
func (ds *Dataset[M]) SyncData() error {
	start := time.Now()
	err := ds.pair.SyncData()
	ds.opts.metrics.RecordSync(time.Since(start), err)
	ds.opts.logger.WithBasepath(ds.basepath).LogSync(ds.basepath, err)
	return err
}
