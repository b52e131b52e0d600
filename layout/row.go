package layout

import (
	"encoding/binary"

	"github.com/caian-org/s1o/internal/alignmem"
	"github.com/caian-org/s1o/internal/errs"
)

// CleanBit is the 32-bit per-row sentinel appended after data_offset.
// Any value other than Clean or Dirty is corrupt.
type CleanBit uint32

const (
	Clean CleanBit = 0xCA02178F
	Dirty CleanBit = 0xDF349172
)

func (c CleanBit) IsClean() bool   { return c == Clean }
func (c CleanBit) IsDirty() bool   { return c == Dirty }
func (c CleanBit) IsCorrupt() bool { return c != Clean && c != Dirty }

// dataOffsetSize and cleanBitSize are the two fields the row layout
// appends after the user's own metadata.
const (
	dataOffsetSize = 8
	cleanBitSize   = 4
	trailerSize    = dataOffsetSize + cleanBitSize
)

// RowSize returns the 64-byte-aligned total row size for a user metadata
// payload of metaSize bytes.
func RowSize(metaSize int) int64 {
	return alignmem.AlignUp(int64(metaSize) + trailerSize)
}

// RowOffset returns row uid's byte offset within the meta file, given the
// header size and row size. uid is 1-based; callers must validate uid
// themselves (InvalidUID).
func RowOffset(headerSize, rowSize int64, uid uint64) int64 {
	return headerSize + int64(uid-1)*rowSize
}

// EncodeRow writes meta, followed by dataOffset and clean, into buf, which
// must be exactly RowSize(len(meta)) bytes long. Padding bytes between the
// clean bit and the row's aligned end are left zero.
func EncodeRow(buf, meta []byte, dataOffset uint64, clean CleanBit) {
	n := copy(buf, meta)
	binary.LittleEndian.PutUint64(buf[n:n+dataOffsetSize], dataOffset)
	binary.LittleEndian.PutUint32(buf[n+dataOffsetSize:n+dataOffsetSize+cleanBitSize], uint32(clean))
}

// DecodeRow splits buf (a RowSize(metaSize)-byte row) back into the user
// metadata slice, the data offset, and the clean bit.
func DecodeRow(buf []byte, metaSize int) (meta []byte, dataOffset uint64, clean CleanBit) {
	meta = buf[:metaSize]
	dataOffset = binary.LittleEndian.Uint64(buf[metaSize : metaSize+dataOffsetSize])
	clean = CleanBit(binary.LittleEndian.Uint32(buf[metaSize+dataOffsetSize : metaSize+dataOffsetSize+cleanBitSize]))
	return meta, dataOffset, clean
}

// ValidateMetaFileSize checks that the meta file's size, minus the header,
// is an exact multiple of rowSize, returning the row count on success.
func ValidateMetaFileSize(fileSize, headerSize, rowSize int64, basepath string) (int64, error) {
	rem := fileSize - headerSize
	if rem < 0 || rem%rowSize != 0 {
		return 0, &errs.FormatError{
			Kind: errs.KindExtraMetaBytes, Basepath: basepath,
			Expected: 0, Actual: rem % rowSize,
		}
	}
	return rem / rowSize, nil
}
