package s1o

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/layout"
)

// cleanBitIndex accelerates clean/dirty/corrupt membership queries with
// three roaring bitmaps over uid, rather than decoding every row's trailer
// on each call. It is optional — a Dataset with a nil cleanIdx falls back
// to reading the row in question (or, for the Get*UIDs calls, every row)
// straight off the clean-bit trailer.
type cleanBitIndex struct {
	clean   *roaring.Bitmap
	dirty   *roaring.Bitmap
	corrupt *roaring.Bitmap
}

// newCleanBitIndex builds the bitmap index for ds. freshCreate skips the
// per-row decode pass: a dataset just built by create() has every row
// stamped Clean by assignDataOffsets, so the index is simply 1..numElements
// in the clean set. Otherwise every row is read once and classified.
func newCleanBitIndex[M any](ds *Dataset[M], freshCreate bool) *cleanBitIndex {
	idx := &cleanBitIndex{clean: roaring.New(), dirty: roaring.New(), corrupt: roaring.New()}

	if freshCreate {
		for uid := uint64(1); uid <= ds.numElements; uid++ {
			idx.clean.Add(uint32(uid))
		}
		return idx
	}

	for uid := uint64(1); uid <= ds.numElements; uid++ {
		bit, err := ds.readCleanBit(uid)
		if err != nil {
			idx.corrupt.Add(uint32(uid))
			continue
		}
		idx.mark(uid, bit)
	}
	return idx
}

func (idx *cleanBitIndex) mark(uid uint64, bit layout.CleanBit) {
	id := uint32(uid)
	idx.clean.Remove(id)
	idx.dirty.Remove(id)
	idx.corrupt.Remove(id)

	switch {
	case bit.IsClean():
		idx.clean.Add(id)
	case bit.IsDirty():
		idx.dirty.Add(id)
	default:
		idx.corrupt.Add(id)
	}
}

// readCleanBit decodes uid's row just far enough to recover its trailer.
func (ds *Dataset[M]) readCleanBit(uid uint64) (layout.CleanBit, error) {
	row, err := ds.readRowBytes(uid)
	if err != nil {
		return 0, err
	}
	_, _, bit := layout.DecodeRow(row, ds.metaSize)
	return bit, nil
}

// setCleanBit rewrites uid's trailer in place, leaving its metadata and
// data_offset untouched, and keeps the bitmap index (if enabled) in sync.
func (ds *Dataset[M]) setCleanBit(uid uint64, bit layout.CleanBit) error {
	if err := ds.validateUID(uid); err != nil {
		return err
	}
	row, err := ds.readRowBytes(uid)
	if err != nil {
		return err
	}
	meta, dataOffset, _ := layout.DecodeRow(row, ds.metaSize)
	layout.EncodeRow(row, meta, dataOffset, bit)
	if err := ds.writeRowBytes(uid, row); err != nil {
		return err
	}
	if ds.cleanIdx != nil {
		ds.cleanIdx.mark(uid, bit)
	}
	return nil
}

// SetElementClean marks uid's row Clean.
func (ds *Dataset[M]) SetElementClean(uid uint64) error { return ds.setCleanBit(uid, layout.Clean) }

// SetElementDirty marks uid's row Dirty.
func (ds *Dataset[M]) SetElementDirty(uid uint64) error { return ds.setCleanBit(uid, layout.Dirty) }

// IsElementClean reports whether uid's row is marked Clean.
func (ds *Dataset[M]) IsElementClean(uid uint64) (bool, error) {
	if err := ds.validateUID(uid); err != nil {
		return false, err
	}
	if ds.cleanIdx != nil {
		return ds.cleanIdx.clean.Contains(uint32(uid)), nil
	}
	bit, err := ds.readCleanBit(uid)
	if err != nil {
		return false, err
	}
	return bit.IsClean(), nil
}

// IsElementDirty reports whether uid's row is marked Dirty.
func (ds *Dataset[M]) IsElementDirty(uid uint64) (bool, error) {
	if err := ds.validateUID(uid); err != nil {
		return false, err
	}
	if ds.cleanIdx != nil {
		return ds.cleanIdx.dirty.Contains(uint32(uid)), nil
	}
	bit, err := ds.readCleanBit(uid)
	if err != nil {
		return false, err
	}
	return bit.IsDirty(), nil
}

// IsElementCorrupt reports whether uid's row's trailer is neither Clean
// nor Dirty.
func (ds *Dataset[M]) IsElementCorrupt(uid uint64) (bool, error) {
	if err := ds.validateUID(uid); err != nil {
		return false, err
	}
	if ds.cleanIdx != nil {
		return ds.cleanIdx.corrupt.Contains(uint32(uid)), nil
	}
	bit, err := ds.readCleanBit(uid)
	if err != nil {
		return false, err
	}
	return bit.IsCorrupt(), nil
}

// GetCleanUIDs returns every uid currently marked Clean.
func (ds *Dataset[M]) GetCleanUIDs() ([]uint64, error) { return ds.getUIDsByBit(layout.Clean) }

// GetDirtyUIDs returns every uid currently marked Dirty.
func (ds *Dataset[M]) GetDirtyUIDs() ([]uint64, error) { return ds.getUIDsByBit(layout.Dirty) }

// GetCorruptUIDs returns every uid whose trailer is neither Clean nor
// Dirty.
func (ds *Dataset[M]) GetCorruptUIDs() ([]uint64, error) {
	if ds.cleanIdx != nil {
		return toUID64(ds.cleanIdx.corrupt), nil
	}
	var out []uint64
	for uid := uint64(1); uid <= ds.numElements; uid++ {
		bit, err := ds.readCleanBit(uid)
		if err != nil {
			return nil, err
		}
		if bit.IsCorrupt() {
			out = append(out, uid)
		}
	}
	return out, nil
}

func (ds *Dataset[M]) getUIDsByBit(want layout.CleanBit) ([]uint64, error) {
	if ds.cleanIdx != nil {
		switch want {
		case layout.Clean:
			return toUID64(ds.cleanIdx.clean), nil
		case layout.Dirty:
			return toUID64(ds.cleanIdx.dirty), nil
		default:
			return nil, &errs.StateError{Kind: errs.KindNotInitialized, Basepath: ds.basepath}
		}
	}

	var out []uint64
	for uid := uint64(1); uid <= ds.numElements; uid++ {
		bit, err := ds.readCleanBit(uid)
		if err != nil {
			return nil, err
		}
		if bit == want {
			out = append(out, uid)
		}
	}
	return out, nil
}

func toUID64(bm *roaring.Bitmap) []uint64 {
	ids := bm.ToArray()
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out
}
