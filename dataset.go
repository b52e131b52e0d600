// Package s1o implements an embedded, on-disk, spatially-indexed dataset:
// a fixed-schema metadata table paired with a variable-length, optionally
// multi-slot data file and a pluggable spatial index over each record's
// location.
package s1o

import (
	"encoding/binary"
	"os"

	"github.com/caian-org/s1o/filepair"
	"github.com/caian-org/s1o/internal/checked"
	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/layout"
	"github.com/caian-org/s1o/spatial"
)

// formatMajor/formatMinor/formatRevision identify the on-disk layout this
// package writes. Opening a file stamped with a different version fails
// base_data_mismatch at the header-comparison byte.
const (
	formatMajor    = 1
	formatMinor    = 0
	formatRevision = 0
)

func formatVersion() uint32 { return uint32(formatMajor)<<16 | uint32(formatMinor) }

// Mode is the bitfield controlling how Open opens a dataset's files.
// Mirrors filepair.Mode one level up, at the facade's own vocabulary
// (Create always implies New internally; Open passes Mode through
// unchanged, so Trunc there truncates the existing files).
type Mode int

const (
	Write Mode = 1 << iota
	Trunc
)

// New is the mode Create uses: truncate-and-write.
const New = Trunc | Write

func (m Mode) has(bit Mode) bool { return m&bit != 0 }

// Flags is the bitfield controlling a dataset's access posture.
type Flags int

const (
	// RWP selects descriptor-mode I/O: no mmap, no spatial index,
	// records addressed only by uid. Must be combined with AllowUnsorted.
	RWP Flags = 1 << iota

	// NoData opens/creates only the metadata file; NumSlots is forced to 0.
	NoData

	// AllowUnsorted suppresses the unsorted-metadata check Create would
	// otherwise run against the input sequence's declared uids.
	AllowUnsorted

	// NoDataCheck suppresses the data-file gapless/size cross-check Open
	// would otherwise run.
	NoDataCheck
)

func (f Flags) has(bit Flags) bool { return f&bit != 0 }

// MetaAdapter is the fixed-schema contract a user record type M must
// satisfy to be stored by a Dataset[M]: how to find its location and uid,
// its data blob's size, and how to serialize/deserialize the fixed-size
// metadata payload that sits in front of the data_offset/clean_bit
// trailer every row carries.
type MetaAdapter[M any] interface {
	// Location returns m's point in N-space.
	Location(m M) spatial.Point

	// UID returns m's declared uid, or 0 if the caller leaves uid
	// assignment entirely to Create.
	UID(m M) uint64

	// SetUID stores uid back into m, used by Create/read paths to hand
	// back a fully populated record.
	SetUID(m *M, uid uint64)

	// DataSize returns the size in bytes of m's associated data blob.
	DataSize(m M) int64

	// Check returns the adapter's schema fingerprint, stored in the
	// header and compared byte-for-byte on every Open.
	Check() []byte

	// Dims returns the fixed dimensionality of Location's points; must
	// agree with the spatial adapter's own Dims(), checked at
	// construction.
	Dims() int

	// MetaExt and DataExt name the two file extensions; must be distinct.
	MetaExt() string
	DataExt() string

	// MetaSize returns the fixed encoded size of M, excluding the
	// data_offset/clean_bit trailer every row appends.
	MetaSize() int

	// Encode serializes m into exactly MetaSize() bytes.
	Encode(m M) []byte

	// Decode parses a MetaSize()-byte buffer back into an M.
	Decode(buf []byte) (M, error)
}

// Dataset ties the file-pair storage engine, the record codec, and a
// pluggable spatial index together into the operations described by the
// facade: constructors, element accessors, bulk push/write/read, slot
// selection, and sync.
type Dataset[M any] struct {
	basepath string
	adapter  MetaAdapter[M]
	spatial  spatial.Adapter // nil in RWP mode
	pair     *filepair.Pair

	header   layout.Header
	rowSize  int64
	metaSize int

	numElements uint64
	numSlots    int
	slotSize    int64

	rwp           bool
	noData        bool
	allowUnsorted bool
	noDataCheck   bool

	opts     options
	cleanIdx *cleanBitIndex
	crcFile  *os.File // non-nil only in RWP mode with WithChecksums(true)
}

// crcPath names the per-row CRC32C companion file.
func (ds *Dataset[M]) crcPath() string { return ds.basepath + ".crc" }

// openCRCFile opens (creating if absent) the dataset's .crc companion.
// A no-op when checksums aren't enabled.
func openCRCFile(basepath string, enabled bool) (*os.File, error) {
	if !enabled {
		return nil, nil
	}
	return checked.Open(basepath+".crc", os.O_RDWR|os.O_CREATE, 0o644)
}

// readCRC returns the stored checksum for uid, or (0, nil) when the
// checksum feature isn't enabled or the entry was never written.
func (ds *Dataset[M]) readCRC(uid uint64) (uint32, error) {
	if ds.crcFile == nil {
		return 0, nil
	}
	buf := make([]byte, 4)
	off := int64(uid-1) * 4
	size, err := checked.Size(ds.crcPath())
	if err != nil {
		return 0, err
	}
	if off+4 > size {
		return 0, nil
	}
	if err := checked.ReadFullAt(ds.crcFile, ds.crcPath(), buf, off); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// writeCRC stores uid's checksum, extending the companion file as needed.
func (ds *Dataset[M]) writeCRC(uid uint64, sum uint32) error {
	if ds.crcFile == nil {
		return nil
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, sum)
	return checked.WriteFullAt(ds.crcFile, ds.crcPath(), buf, int64(uid-1)*4)
}

// Basepath returns the path prefix this dataset's files were opened under.
func (ds *Dataset[M]) Basepath() string { return ds.basepath }

// NumElements returns the dataset's current element count (N).
func (ds *Dataset[M]) NumElements() uint64 { return ds.numElements }

// NumSlots returns the dataset's configured slot count.
func (ds *Dataset[M]) NumSlots() int { return ds.numSlots }

// RWP reports whether this dataset is in descriptor (non-mmap) mode.
func (ds *Dataset[M]) RWP() bool { return ds.rwp }

func (ds *Dataset[M]) validateUID(uid uint64) error {
	if uid == 0 || uid > ds.numElements {
		return &errs.AccessError{Kind: errs.KindInvalidUID, Basepath: ds.basepath, UID: uid}
	}
	return nil
}

func (ds *Dataset[M]) validateSlot(slot int) error {
	if slot < 0 || slot >= ds.numSlots {
		return &errs.AccessError{Kind: errs.KindInvalidSlot, Basepath: ds.basepath, Slot: slot, NumSlots: ds.numSlots}
	}
	return nil
}

func (ds *Dataset[M]) rowOffset(uid uint64) int64 {
	return layout.RowOffset(ds.header.Size(), ds.rowSize, uid)
}

// addressOf returns the mapped row bytes for uid. Mapped mode only.
func (ds *Dataset[M]) addressOf(uid uint64) ([]byte, error) {
	metaBytes, err := ds.pair.MetaBytes()
	if err != nil {
		return nil, err
	}
	off := ds.rowOffset(uid)
	return metaBytes[off : off+ds.rowSize], nil
}

// readRowBytes returns a private copy of uid's row, from the mapping or
// via a positioned read depending on mode.
func (ds *Dataset[M]) readRowBytes(uid uint64) ([]byte, error) {
	if ds.pair.Mapped() {
		addr, err := ds.addressOf(uid)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, len(addr))
		copy(buf, addr)
		return buf, nil
	}
	buf := make([]byte, ds.rowSize)
	if err := ds.pair.ReadMetaAt(buf, ds.rowOffset(uid)); err != nil {
		return nil, err
	}
	return buf, nil
}

// writeRowBytes overwrites uid's row in place.
func (ds *Dataset[M]) writeRowBytes(uid uint64, buf []byte) error {
	if ds.pair.Mapped() {
		addr, err := ds.addressOf(uid)
		if err != nil {
			return err
		}
		copy(addr, buf)
		return nil
	}
	return ds.pair.WriteMetaAt(buf, ds.rowOffset(uid))
}

// dataAddressOf returns the mapped data bytes for a row's data_offset,
// data size, and slot. Mapped mode only.
func (ds *Dataset[M]) dataAddressOf(dataOffset, dataSize int64, slot int) ([]byte, error) {
	dataBytes, err := ds.pair.DataBytes()
	if err != nil {
		return nil, err
	}
	base := int64(slot)*ds.slotSize + dataOffset
	return dataBytes[base : base+dataSize], nil
}

// Close releases the dataset's resources in LIFO order: spatial storage,
// then mappings and descriptors (filepair.Pair.Close already orders the
// latter two correctly). It never panics; the first error encountered is
// returned.
func (ds *Dataset[M]) Close() error {
	if ds == nil {
		return nil
	}

	var first error
	if ds.spatial != nil {
		if err := ds.spatial.Close(); err != nil && first == nil {
			first = err
		}
	}
	if ds.crcFile != nil {
		if err := ds.crcFile.Close(); err != nil && first == nil {
			first = err
		}
	}
	if ds.pair != nil {
		if err := ds.pair.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
