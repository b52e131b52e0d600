package s1o

import (
	"time"

	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/spatial"
)

// FindElement resolves the single record located exactly at point,
// failing empty_query if none exist, multiple_results if the two nearest
// records are equally distant from point (duplicates at point included),
// and location_mismatch if the nearest match's
// own coordinates differ from point (floating-point distance to the
// query can be zero without the stored point being bit-identical, e.g.
// after a lossy round trip — this call demands the latter).
func (ds *Dataset[M]) FindElement(point spatial.Point, slot int) (M, []byte, error) {
	start := time.Now()
	meta, data, err := ds.findElement(point, slot)
	ds.opts.metrics.RecordFind(time.Since(start), err)
	ds.opts.logger.WithBasepath(ds.basepath).LogFind(ds.basepath, ds.adapter.UID(meta), err)
	return meta, data, err
}

func (ds *Dataset[M]) findElement(point spatial.Point, slot int) (M, []byte, error) {
	var zero M
	if !ds.pair.Mapped() {
		return zero, nil, &errs.AccessError{Kind: errs.KindNotMmapped, Basepath: ds.basepath}
	}
	if ds.spatial == nil {
		return zero, nil, &errs.StateError{Kind: errs.KindNotInitialized, Basepath: ds.basepath}
	}

	var results []spatial.Result
	for r := range ds.spatial.QueryNearest(spatial.Nearest{Point: point, K: 2}) {
		results = append(results, r)
	}

	if len(results) == 0 {
		return zero, nil, &errs.QueryError{Kind: errs.KindEmptyQuery, Basepath: ds.basepath}
	}
	if len(results) > 1 && results[0].Distance == results[1].Distance {
		return zero, nil, &errs.QueryError{Kind: errs.KindMultipleResults, Basepath: ds.basepath, NumResults: len(results)}
	}
	if !results[0].Point.Equal(point) {
		return zero, nil, &errs.QueryError{Kind: errs.KindLocationMismatch, Basepath: ds.basepath}
	}

	meta, err := ds.GetMetadata(results[0].UID)
	if err != nil {
		return zero, nil, err
	}
	if ds.noData {
		return meta, nil, nil
	}
	if err := ds.validateSlot(slot); err != nil {
		return zero, nil, err
	}
	data, err := ds.GetData(results[0].UID, slot)
	return meta, data, err
}

// FindMetadata is FindElement projected down to metadata alone.
func (ds *Dataset[M]) FindMetadata(point spatial.Point) (M, error) {
	meta, _, err := ds.FindElement(point, 0)
	return meta, err
}
