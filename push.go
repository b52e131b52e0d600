package s1o

import (
	"time"

	"github.com/caian-org/s1o/internal/alignmem"
	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/internal/hash"
	"github.com/caian-org/s1o/layout"
)

// PushElement appends a new row, returning its freshly allocated uid
// (the prior N+1). RWP mode only, and forbidden when NumSlots() > 1 —
// appending would otherwise require relocating every existing slot's
// data to keep each row's slots contiguous.
func (ds *Dataset[M]) PushElement(meta M, data []byte) (uid uint64, err error) {
	start := time.Now()
	uid, err = ds.pushElement(meta, data)
	ds.opts.metrics.RecordPush(time.Since(start), err)
	ds.opts.logger.WithBasepath(ds.basepath).LogPush(ds.basepath, uid, err)
	return uid, err
}

func (ds *Dataset[M]) pushElement(meta M, data []byte) (uint64, error) {
	if ds.pair.Mapped() {
		return 0, &errs.AccessError{Kind: errs.KindMmapped, Basepath: ds.basepath}
	}
	if ds.numSlots > 1 {
		return 0, &errs.AccessError{Kind: errs.KindPushMultiSlot, Basepath: ds.basepath, NumSlots: ds.numSlots}
	}

	newUID := ds.numElements + 1

	currentMetaSize, err := ds.pair.MetaSize()
	if err != nil {
		return 0, err
	}
	if err := ds.pair.ExtendMeta(currentMetaSize + ds.rowSize); err != nil {
		return 0, err
	}

	var dataOffset int64
	if !ds.noData {
		dataSize := ds.adapter.DataSize(meta)
		if int64(len(data)) != dataSize {
			return 0, &errs.AccessError{Kind: errs.KindInvalidDataSize, Basepath: ds.basepath, UID: newUID}
		}

		currentDataSize, err := ds.pair.DataSize()
		if err != nil {
			return 0, err
		}
		dataOffset = currentDataSize

		newDataSize := currentDataSize + alignmem.AlignUp(dataSize)
		if err := ds.pair.ExtendData(newDataSize); err != nil {
			return 0, err
		}
		if err := ds.pair.WriteDataAt(data, dataOffset); err != nil {
			return 0, err
		}
		ds.slotSize = newDataSize

		if ds.crcFile != nil {
			if err := ds.writeCRC(newUID, hash.CRC32C(data)); err != nil {
				return 0, err
			}
		}
	}

	ds.adapter.SetUID(&meta, newUID)
	row := make([]byte, ds.rowSize)
	layout.EncodeRow(row, ds.adapter.Encode(meta), uint64(dataOffset), layout.Clean)
	if err := ds.pair.WriteMetaAt(row, ds.rowOffset(newUID)); err != nil {
		return 0, err
	}

	ds.numElements = newUID
	if ds.cleanIdx != nil {
		ds.cleanIdx.mark(newUID, layout.Clean)
	}

	return newUID, nil
}
