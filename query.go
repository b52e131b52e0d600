package s1o

import (
	"iter"
	"time"

	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/iterate"
	"github.com/caian-org/s1o/spatial"
)

// QueryElements returns an iterator over every (metadata, data) pair
// whose location falls within ci, resolved through the dataset at the
// given slot. Mapped mode only.
func (ds *Dataset[M]) QueryElements(ci spatial.ClosedInterval, slot int) (iter.Seq2[iterate.Pair[M], error], error) {
	start := time.Now()
	seq, err := ds.queryElements(ci, slot)
	ds.opts.metrics.RecordQuery(time.Since(start), err)
	ds.opts.logger.WithBasepath(ds.basepath).LogQuery(ds.basepath, 0, err)
	return seq, err
}

func (ds *Dataset[M]) queryElements(ci spatial.ClosedInterval, slot int) (iter.Seq2[iterate.Pair[M], error], error) {
	if !ds.pair.Mapped() {
		return nil, &errs.AccessError{Kind: errs.KindNotMmapped, Basepath: ds.basepath}
	}
	if ds.spatial == nil {
		return nil, &errs.StateError{Kind: errs.KindNotInitialized, Basepath: ds.basepath}
	}
	if !ds.noData {
		if err := ds.validateSlot(slot); err != nil {
			return nil, err
		}
	}
	return iterate.FromResults(ds.spatial.QueryRange(ci), slot, ds), nil
}

// QueryMetadata is QueryElements projected down to metadata alone.
func (ds *Dataset[M]) QueryMetadata(ci spatial.ClosedInterval) (iter.Seq2[M, error], error) {
	start := time.Now()
	seq, err := ds.queryElements(ci, 0)
	ds.opts.metrics.RecordQuery(time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return iterate.Metadata(seq), nil
}
