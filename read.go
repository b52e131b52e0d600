package s1o

import (
	"time"

	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/internal/hash"
	"github.com/caian-org/s1o/layout"
)

// ReadElement positioned-reads uid's row and, unless the dataset is
// NoData, its data blob in the given slot. RWP mode only. ok is false on
// EOF — uid lies beyond the dataset's current element count, which can
// happen across two RWP sessions racing a concurrent PushElement — rather
// than an error. When the checksum feature is enabled, the blob's CRC32C
// is verified against the `.crc` companion, failing check_data_mismatch
// on a mismatch.
func (ds *Dataset[M]) ReadElement(uid uint64, slot int) (meta M, data []byte, ok bool, err error) {
	start := time.Now()
	meta, data, ok, err = ds.readElement(uid, slot)
	ds.opts.metrics.RecordRead(time.Since(start), err)
	ds.opts.logger.WithBasepath(ds.basepath).LogRead(ds.basepath, uid, slot, err)
	return meta, data, ok, err
}

func (ds *Dataset[M]) readElement(uid uint64, slot int) (meta M, data []byte, ok bool, err error) {
	var zero M
	if ds.pair.Mapped() {
		return zero, nil, false, &errs.AccessError{Kind: errs.KindMmapped, Basepath: ds.basepath}
	}
	if uid == 0 || uid > ds.numElements {
		return zero, nil, false, nil
	}
	if !ds.noData {
		if err := ds.validateSlot(slot); err != nil {
			return zero, nil, false, err
		}
	}

	row, err := ds.readRowBytes(uid)
	if err != nil {
		return zero, nil, false, err
	}
	metaBytes, dataOffset, _ := layout.DecodeRow(row, ds.metaSize)

	m, err := ds.adapter.Decode(metaBytes)
	if err != nil {
		return zero, nil, false, err
	}
	if declared := ds.adapter.UID(m); declared != 0 && declared != uid {
		return zero, nil, true, &errs.FormatError{Kind: errs.KindInconsistentMeta, Basepath: ds.basepath, Expected: int64(uid), Actual: int64(declared)}
	}
	ds.adapter.SetUID(&m, uid)

	if ds.noData {
		return m, nil, true, nil
	}

	dataSize := ds.adapter.DataSize(m)
	buf := make([]byte, dataSize)
	off := int64(slot)*ds.slotSize + int64(dataOffset)
	if err := ds.pair.ReadDataAt(buf, off); err != nil {
		return zero, nil, false, err
	}

	if ds.crcFile != nil {
		want, err := ds.readCRC(uid)
		if err != nil {
			return zero, nil, false, err
		}
		if want != 0 && !hash.Verify(buf, want) {
			return zero, nil, true, &errs.FormatError{Kind: errs.KindCheckDataMismatch, Basepath: ds.basepath}
		}
	}

	return m, buf, true, nil
}
