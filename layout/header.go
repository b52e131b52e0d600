// Package layout implements the on-disk encoding of the metadata-file
// header and per-record rows: the packed header struct, the check block,
// row padding to the 64-byte alignment boundary, and the validations run
// when an existing file pair is opened.
package layout

import (
	"encoding/binary"

	"github.com/caian-org/s1o/internal/alignmem"
	"github.com/caian-org/s1o/internal/errs"
)

// Magic is the constant 8-byte identifier stored in every header.
const Magic = "CBENES1O"

// FixedHeaderSize is the size, in bytes, of the header's fixed fields
// (everything before the variable-length check block): one, uintsz,
// fofsz, checksz, metasz, version, revision, magic.
const FixedHeaderSize = 4*7 + 8

// Header is the decoded form of a meta-file header.
type Header struct {
	One      uint32
	Uintsz   uint32
	Fofsz    uint32
	Checksz  uint32
	Metasz   uint32
	Version  uint32
	Revision uint32
	Magic    [8]byte
	Check    []byte
}

// New builds the canonical header for a dataset whose row size is rowSize
// and whose adapter check block is check. Uintsz/Fofsz are fixed at the Go
// implementation's own type widths (4 and 8), matching the decision
// recorded for the ABI-portability open question.
func New(rowSize uint32, check []byte, version, revision uint32) Header {
	h := Header{
		One:      1,
		Uintsz:   4,
		Fofsz:    8,
		Checksz:  uint32(len(check)),
		Metasz:   rowSize,
		Version:  version,
		Revision: revision,
		Check:    check,
	}
	copy(h.Magic[:], Magic)
	return h
}

// Size returns the total padded size of the header, including the check
// block, rounded up to the 64-byte alignment boundary.
func (h Header) Size() int64 {
	return alignmem.AlignUp(int64(FixedHeaderSize) + int64(len(h.Check)))
}

// Encode serializes h into a Size()-byte buffer.
func (h Header) Encode() []byte {
	buf := make([]byte, h.Size())

	binary.LittleEndian.PutUint32(buf[0:4], h.One)
	binary.LittleEndian.PutUint32(buf[4:8], h.Uintsz)
	binary.LittleEndian.PutUint32(buf[8:12], h.Fofsz)
	binary.LittleEndian.PutUint32(buf[12:16], h.Checksz)
	binary.LittleEndian.PutUint32(buf[16:20], h.Metasz)
	binary.LittleEndian.PutUint32(buf[20:24], h.Version)
	binary.LittleEndian.PutUint32(buf[24:28], h.Revision)
	copy(buf[28:36], h.Magic[:])
	copy(buf[36:36+len(h.Check)], h.Check)

	return buf
}

// Decode parses a header out of buf, which must be at least
// FixedHeaderSize+checksz bytes long.
func Decode(buf []byte, checksz uint32) (Header, error) {
	if len(buf) < FixedHeaderSize+int(checksz) {
		return Header{}, &errs.IOError{
			Kind: errs.KindIncompleteRead, Op: "decode_header",
			ExpectedSize: int64(FixedHeaderSize) + int64(checksz), ActualSize: int64(len(buf)),
		}
	}

	var h Header
	h.One = binary.LittleEndian.Uint32(buf[0:4])
	h.Uintsz = binary.LittleEndian.Uint32(buf[4:8])
	h.Fofsz = binary.LittleEndian.Uint32(buf[8:12])
	h.Checksz = binary.LittleEndian.Uint32(buf[12:16])
	h.Metasz = binary.LittleEndian.Uint32(buf[16:20])
	h.Version = binary.LittleEndian.Uint32(buf[20:24])
	h.Revision = binary.LittleEndian.Uint32(buf[24:28])
	copy(h.Magic[:], buf[28:36])
	h.Check = append([]byte(nil), buf[36:36+checksz]...)

	return h, nil
}

// Validate compares buf (a just-decoded header's raw bytes) against want's
// encoding, byte for byte, failing base_data_mismatch at the first
// differing position for everything before the check block, and
// check_data_mismatch at the first differing position within it.
func Validate(buf []byte, want Header, basepath string) error {
	canon := want.Encode()

	n := FixedHeaderSize
	if len(buf) < n || len(canon) < n {
		n = min(len(buf), len(canon))
	}
	for i := 0; i < n; i++ {
		if buf[i] != canon[i] {
			return &errs.FormatError{Kind: errs.KindBaseDataMismatch, Basepath: basepath, Position: int64(i)}
		}
	}

	checkStart := FixedHeaderSize
	checkEnd := checkStart + len(want.Check)
	if len(buf) < checkEnd || len(canon) < checkEnd {
		return &errs.FormatError{Kind: errs.KindCheckDataMismatch, Basepath: basepath, Position: int64(checkStart)}
	}
	for i := checkStart; i < checkEnd; i++ {
		if buf[i] != canon[i] {
			return &errs.FormatError{Kind: errs.KindCheckDataMismatch, Basepath: basepath, Position: int64(i)}
		}
	}

	return nil
}
