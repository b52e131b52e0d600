package s1o

import (
	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/layout"
)

// GetElement returns uid's decoded metadata and a slice over its data
// blob's first slot, both aliasing the mapping directly. Mapped mode
// only — RWP datasets never hold a mapping to alias, and must use
// ReadElement instead.
func (ds *Dataset[M]) GetElement(uid uint64) (M, []byte, error) {
	meta, err := ds.GetMetadata(uid)
	if err != nil {
		return meta, nil, err
	}
	data, err := ds.GetData(uid, 0)
	return meta, data, err
}

// GetMetadata decodes and returns uid's metadata. Mapped mode only.
func (ds *Dataset[M]) GetMetadata(uid uint64) (M, error) {
	var zero M
	if !ds.pair.Mapped() {
		return zero, &errs.AccessError{Kind: errs.KindNotMmapped, Basepath: ds.basepath}
	}
	if err := ds.validateUID(uid); err != nil {
		return zero, err
	}
	row, err := ds.addressOf(uid)
	if err != nil {
		return zero, err
	}
	metaBytes, _, _ := layout.DecodeRow(row, ds.metaSize)
	m, err := ds.adapter.Decode(metaBytes)
	if err != nil {
		return zero, err
	}
	ds.adapter.SetUID(&m, uid)
	return m, nil
}

// GetData returns a slice over uid's data blob in the given slot, aliasing
// the mapping directly. Mapped mode only.
func (ds *Dataset[M]) GetData(uid uint64, slot int) ([]byte, error) {
	if !ds.pair.Mapped() {
		return nil, &errs.AccessError{Kind: errs.KindNotMmapped, Basepath: ds.basepath}
	}
	if ds.noData {
		return nil, &errs.AccessError{Kind: errs.KindNoData, Basepath: ds.basepath}
	}
	if err := ds.validateUID(uid); err != nil {
		return nil, err
	}
	if err := ds.validateSlot(slot); err != nil {
		return nil, err
	}

	row, err := ds.addressOf(uid)
	if err != nil {
		return nil, err
	}
	meta, dataOffset, _ := layout.DecodeRow(row, ds.metaSize)
	m, err := ds.adapter.Decode(meta)
	if err != nil {
		return nil, err
	}
	return ds.dataAddressOf(int64(dataOffset), ds.adapter.DataSize(m), slot)
}

// Metadata implements iterate.Resolver, so Dataset can drive the query
// pipelines in query.go/find.go directly.
func (ds *Dataset[M]) Metadata(uid uint64) (M, error) {
	if ds.pair.Mapped() {
		return ds.GetMetadata(uid)
	}
	meta, _, _, err := ds.readElement(uid, 0)
	return meta, err
}

// Data implements iterate.Resolver.
func (ds *Dataset[M]) Data(uid uint64, slot int) ([]byte, error) {
	if ds.pair.Mapped() {
		return ds.GetData(uid, slot)
	}
	_, data, _, err := ds.readElement(uid, slot)
	return data, err
}
