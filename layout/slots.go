package layout

import (
	"sort"

	"github.com/caian-org/s1o/internal/alignmem"
	"github.com/caian-org/s1o/internal/errs"
)

// SlotSize derives slot_size from the data file's size and the requested
// number of slots. numSlots==0 is valid only when the caller is in
// NO_DATA mode, which never calls this.
func SlotSize(dataFileSize int64, numSlots int, basepath string) (int64, error) {
	if numSlots <= 0 {
		return 0, &errs.AccessError{Kind: errs.KindInvalidNumSlots, Basepath: basepath, NumSlots: numSlots}
	}
	if dataFileSize%int64(numSlots) != 0 {
		return 0, &errs.FormatError{
			Kind: errs.KindExtraSlotBytes, Basepath: basepath,
			Expected: 0, Actual: dataFileSize % int64(numSlots),
		}
	}
	return dataFileSize / int64(numSlots), nil
}

// SlotOffset returns the byte offset of slot within the data file.
func SlotOffset(slot int, slotSize int64, numSlots int, basepath string) (int64, error) {
	if slot < 0 || slot >= numSlots {
		return 0, &errs.AccessError{Kind: errs.KindInvalidSlot, Basepath: basepath, Slot: slot, NumSlots: numSlots}
	}
	return int64(slot) * slotSize, nil
}

// RowExtent is one row's (data_offset, data_size) pair, as surfaced by the
// adapter's metadata during the integrity cross-check.
type RowExtent struct {
	UID        uint64
	DataOffset int64
	DataSize   int64
}

// CheckGapless verifies that, sorted by offset, extents partition
// [0, slotSize) exactly: no gaps, no overlap, 64-byte aligned boundaries,
// and the final extent ends precisely at slotSize.
func CheckGapless(extents []RowExtent, slotSize int64, basepath string) error {
	sorted := make([]RowExtent, len(extents))
	copy(sorted, extents)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DataOffset < sorted[j].DataOffset })

	var cursor int64
	for _, e := range sorted {
		if e.DataOffset%alignmem.Alignment != 0 {
			return &errs.FormatError{
				Kind: errs.KindInconsistentData, Basepath: basepath,
				Expected: cursor, Actual: e.DataOffset,
			}
		}
		if e.DataOffset != cursor {
			return &errs.FormatError{
				Kind: errs.KindInconsistentData, Basepath: basepath,
				Expected: cursor, Actual: e.DataOffset,
			}
		}
		cursor += alignmem.AlignUp(e.DataSize)
	}

	if cursor != slotSize {
		return &errs.FormatError{
			Kind: errs.KindInconsistentData, Basepath: basepath,
			Expected: slotSize, Actual: cursor,
		}
	}

	return nil
}

// CheckDataFileSize verifies slotSize*numSlots equals the data file's
// actual size.
func CheckDataFileSize(slotSize int64, numSlots int, actual int64, basepath string) error {
	want := slotSize * int64(numSlots)
	if want != actual {
		return &errs.FormatError{Kind: errs.KindInconsistentData, Basepath: basepath, Expected: want, Actual: actual}
	}
	return nil
}
