// Package filepair owns the two on-disk files (metadata and data) backing
// a dataset, enforcing the mode/flag combinations the format allows and
// presenting a single positioned-read/write-or-mmap surface over both.
package filepair

import (
	"os"

	"github.com/caian-org/s1o/internal/checked"
	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/internal/mmap"
)

// Mode is the bitfield controlling how the pair's files are opened.
type Mode int

const (
	Write Mode = 1 << iota
	Trunc
)

// New creates (truncating if present) and opens for writing.
const New = Trunc | Write

func (m Mode) has(bit Mode) bool { return m&bit != 0 }

// Params are the construction-time parameters of a Pair, mirroring the
// file-pair handle's own parameter list (basepath, extensions, mode,
// no-data, map-fds, new sizes) independent of the dataset facade's own
// mode/flags bitfields.
type Params struct {
	Basepath string
	MetaExt  string
	DataExt  string
	Mode     Mode

	// NoData skips the data file entirely; num_slots is forced to 0.
	NoData bool

	// MapFDs memory-maps both files instead of keeping raw descriptors.
	MapFDs bool

	// NewMetaSize/NewDataSize pre-size freshly truncated files. Both must
	// be zero unless Mode.has(Trunc).
	NewMetaSize int64
	NewDataSize int64
}

// Pair owns the metadata and data file descriptors or mappings.
type Pair struct {
	basepath string
	metaExt  string
	dataExt  string

	writable bool
	mapped   bool
	noData   bool

	metaFile *os.File
	dataFile *os.File

	metaMap *mmap.Mapping
	dataMap *mmap.Mapping
}

func accessErr(kind errs.AccessErrorKind, basepath string) error {
	return &errs.AccessError{Kind: kind, Basepath: basepath}
}

// Open validates p and opens (creating/truncating/presizing as requested)
// the metadata file and, unless NoData, the data file.
func Open(p Params) (*Pair, error) {
	if p.Mode.has(Trunc) && !p.Mode.has(Write) {
		return nil, accessErr(errs.KindCreateWithoutWrite, p.Basepath)
	}
	if !p.Mode.has(Trunc) && (p.NewMetaSize != 0 || p.NewDataSize != 0) {
		return nil, accessErr(errs.KindOpenWithSize, p.Basepath)
	}
	if p.MetaExt == p.DataExt {
		return nil, accessErr(errs.KindExtensionsEqual, p.Basepath)
	}

	fp := &Pair{
		basepath: p.Basepath,
		metaExt:  p.MetaExt,
		dataExt:  p.DataExt,
		writable: p.Mode.has(Write),
		noData:   p.NoData,
	}

	metaFile, err := openFile(fp.metaPath(), p.Mode, p.NewMetaSize)
	if err != nil {
		return nil, err
	}
	fp.metaFile = metaFile

	if !p.NoData {
		dataFile, err := openFile(fp.dataPath(), p.Mode, p.NewDataSize)
		if err != nil {
			metaFile.Close()
			return nil, err
		}
		fp.dataFile = dataFile
	}

	if p.MapFDs {
		if err := fp.mapAll(); err != nil {
			fp.closeFiles()
			return nil, err
		}
	}

	return fp, nil
}

func openFile(path string, mode Mode, newSize int64) (*os.File, error) {
	flag := os.O_RDONLY
	if mode.has(Write) {
		flag = os.O_RDWR
	}
	if mode.has(Trunc) {
		flag |= os.O_CREATE | os.O_TRUNC
	}

	f, err := checked.Open(path, flag, 0o644)
	if err != nil {
		return nil, err
	}

	if newSize > 0 {
		if err := checked.PreSize(f, path, newSize); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func (fp *Pair) mapAll() error {
	metaMap, err := openMapping(fp.metaFile.Name(), fp.writable)
	if err != nil {
		return err
	}
	fp.metaMap = metaMap

	if !fp.noData {
		dataMap, err := openMapping(fp.dataFile.Name(), fp.writable)
		if err != nil {
			metaMap.Close()
			fp.metaMap = nil
			return err
		}
		fp.dataMap = dataMap
	}

	fp.mapped = true
	return nil
}

func openMapping(path string, writable bool) (*mmap.Mapping, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &errs.IOError{Kind: errs.KindIO, Op: "stat", Path: path, Errno: err}
	}
	if fi.Size() == 0 {
		return nil, accessErr(errs.KindEmptyMmap, path)
	}

	if writable {
		return mmap.OpenWritable(path)
	}
	return mmap.Open(path)
}

func (fp *Pair) metaPath() string { return fp.basepath + "." + fp.metaExt }
func (fp *Pair) dataPath() string { return fp.basepath + "." + fp.dataExt }

// Basepath, MetaPath, DataPath identify the pair's files on disk.
func (fp *Pair) Basepath() string { return fp.basepath }
func (fp *Pair) MetaPath() string { return fp.metaPath() }
func (fp *Pair) DataPath() string { return fp.dataPath() }

func (fp *Pair) Writable() bool { return fp.writable }
func (fp *Pair) Mapped() bool   { return fp.mapped }
func (fp *Pair) NoData() bool   { return fp.noData }

// MetaSize and DataSize report the current on-disk size of each file.
func (fp *Pair) MetaSize() (int64, error) { return checked.Size(fp.metaPath()) }
func (fp *Pair) DataSize() (int64, error) {
	if fp.noData {
		return 0, nil
	}
	return checked.Size(fp.dataPath())
}

// MetaBytes and DataBytes expose the mapped views; only valid in mapped mode.
func (fp *Pair) MetaBytes() ([]byte, error) {
	if !fp.mapped {
		return nil, accessErr(errs.KindNotMmapped, fp.basepath)
	}
	return fp.metaMap.Bytes(), nil
}

func (fp *Pair) DataBytes() ([]byte, error) {
	if !fp.mapped {
		return nil, accessErr(errs.KindNotMmapped, fp.basepath)
	}
	if fp.noData {
		return nil, accessErr(errs.KindNoData, fp.basepath)
	}
	return fp.dataMap.Bytes(), nil
}

// ReadMetaAt, WriteMetaAt, ReadDataAt, WriteDataAt perform positioned I/O in
// RWP (descriptor) mode; they fail with KindMmapped when the pair is mapped.
func (fp *Pair) ReadMetaAt(buf []byte, off int64) error {
	if fp.mapped {
		return accessErr(errs.KindMmapped, fp.basepath)
	}
	return checked.ReadFullAt(fp.metaFile, fp.metaPath(), buf, off)
}

func (fp *Pair) WriteMetaAt(buf []byte, off int64) error {
	if fp.mapped {
		return accessErr(errs.KindMmapped, fp.basepath)
	}
	if !fp.writable {
		return accessErr(errs.KindReadOnly, fp.basepath)
	}
	return checked.WriteFullAt(fp.metaFile, fp.metaPath(), buf, off)
}

func (fp *Pair) ReadDataAt(buf []byte, off int64) error {
	if fp.mapped {
		return accessErr(errs.KindMmapped, fp.basepath)
	}
	if fp.noData {
		return accessErr(errs.KindNoData, fp.basepath)
	}
	return checked.ReadFullAt(fp.dataFile, fp.dataPath(), buf, off)
}

func (fp *Pair) WriteDataAt(buf []byte, off int64) error {
	if fp.mapped {
		return accessErr(errs.KindMmapped, fp.basepath)
	}
	if !fp.writable {
		return accessErr(errs.KindReadOnly, fp.basepath)
	}
	if fp.noData {
		return accessErr(errs.KindNoData, fp.basepath)
	}
	return checked.WriteFullAt(fp.dataFile, fp.dataPath(), buf, off)
}

// ExtendData grows the data file to exactly size bytes via the
// seek-and-write-one-zero sparse-allocation trick, used by push_element.
func (fp *Pair) ExtendData(size int64) error {
	if fp.mapped {
		return accessErr(errs.KindMmapped, fp.basepath)
	}
	if !fp.writable {
		return accessErr(errs.KindReadOnly, fp.basepath)
	}
	return checked.PreSize(fp.dataFile, fp.dataPath(), size)
}

// ExtendMeta grows the meta file to exactly size bytes, used by push_element
// to append a new row.
func (fp *Pair) ExtendMeta(size int64) error {
	if fp.mapped {
		return accessErr(errs.KindMmapped, fp.basepath)
	}
	if !fp.writable {
		return accessErr(errs.KindReadOnly, fp.basepath)
	}
	return checked.PreSize(fp.metaFile, fp.metaPath(), size)
}

// SyncMeta and SyncData flush pending writes: msync in mapped mode,
// fsync otherwise.
func (fp *Pair) SyncMeta() error {
	if fp.mapped {
		return fp.metaMap.Flush()
	}
	return checked.Fsync(fp.metaFile, fp.metaPath())
}

func (fp *Pair) SyncData() error {
	if fp.noData {
		return nil
	}
	if fp.mapped {
		return fp.dataMap.Flush()
	}
	return checked.Fsync(fp.dataFile, fp.dataPath())
}

func (fp *Pair) closeFiles() error {
	var first error
	if fp.metaFile != nil {
		if err := fp.metaFile.Close(); err != nil && first == nil {
			first = err
		}
	}
	if fp.dataFile != nil {
		if err := fp.dataFile.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close unmaps (if mapped) and closes both files, in that order, returning
// the first error encountered. It never panics; callers get at most one
// error back even if several steps fail.
func (fp *Pair) Close() error {
	var first error

	if fp.metaMap != nil {
		if err := fp.metaMap.Close(); err != nil && first == nil {
			first = err
		}
	}
	if fp.dataMap != nil {
		if err := fp.dataMap.Close(); err != nil && first == nil {
			first = err
		}
	}

	if err := fp.closeFiles(); err != nil && first == nil {
		first = err
	}

	return first
}

// Unlink removes both files and the caller-supplied extra sidecar paths,
// ignoring "file not found" on any of them.
func Unlink(basepath, metaExt, dataExt string, extras []string) error {
	paths := []string{basepath + "." + metaExt, basepath + "." + dataExt}
	paths = append(paths, extras...)

	var first error
	for _, path := range paths {
		if err := checked.Unlink(path); err != nil && first == nil {
			first = err
		}
	}
	return first
}
