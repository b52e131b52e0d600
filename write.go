package s1o

import (
	"time"

	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/internal/hash"
	"github.com/caian-org/s1o/layout"
)

// WriteElement positioned-writes meta and, unless NoData, data into the
// given slot of uid's existing row. RWP mode only. Refuses to change the
// row's declared data_size (invalid_data_size) — a write can update a
// blob's contents but never its length, since that would require
// relocating every row after it. Recomputes and rewrites the `.crc` entry
// when checksums are enabled.
func (ds *Dataset[M]) WriteElement(uid uint64, meta M, data []byte, slot int) error {
	start := time.Now()
	err := ds.writeElement(uid, meta, data, slot)
	ds.opts.metrics.RecordWrite(time.Since(start), err)
	ds.opts.logger.WithBasepath(ds.basepath).LogWrite(ds.basepath, uid, slot, err)
	return err
}

func (ds *Dataset[M]) writeElement(uid uint64, meta M, data []byte, slot int) error {
	if ds.pair.Mapped() {
		return &errs.AccessError{Kind: errs.KindMmapped, Basepath: ds.basepath}
	}
	if err := ds.validateUID(uid); err != nil {
		return err
	}
	if !ds.noData {
		if err := ds.validateSlot(slot); err != nil {
			return err
		}
	}

	row, err := ds.readRowBytes(uid)
	if err != nil {
		return err
	}
	existing, dataOffset, clean := layout.DecodeRow(row, ds.metaSize)

	existingMeta, err := ds.adapter.Decode(existing)
	if err != nil {
		return err
	}

	if !ds.noData {
		wantSize := ds.adapter.DataSize(existingMeta)
		gotSize := ds.adapter.DataSize(meta)
		if wantSize != gotSize {
			return &errs.AccessError{Kind: errs.KindInvalidDataSize, Basepath: ds.basepath, UID: uid}
		}
		if int64(len(data)) != gotSize {
			return &errs.AccessError{Kind: errs.KindInvalidDataSize, Basepath: ds.basepath, UID: uid}
		}

		off := int64(slot)*ds.slotSize + int64(dataOffset)
		if err := ds.pair.WriteDataAt(data, off); err != nil {
			return err
		}

		if ds.crcFile != nil {
			if err := ds.writeCRC(uid, hash.CRC32C(data)); err != nil {
				return err
			}
		}
	}

	ds.adapter.SetUID(&meta, uid)
	layout.EncodeRow(row, ds.adapter.Encode(meta), dataOffset, clean)
	return ds.writeRowBytes(uid, row)
}
