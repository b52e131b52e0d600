package s1o

import (
	"time"

	"github.com/caian-org/s1o/filepair"
	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/layout"
	"github.com/caian-org/s1o/spatial"
)

// Open reopens an existing dataset: decodes and validates its header
// against the canonical encoding adapter/formatVersion would produce,
// derives numElements from the meta file's size, and — unless NoDataCheck
// is set — cross-checks the data file's size against every row's declared
// data_offset/data_size. A spatial adapter that reports Empty() after
// construction is rebuilt from the dataset's own rows (the in-memory
// adapters have no independent persistence); one that already carries
// elements (a disk-backed index reopened through its own Open) is left
// alone.
func Open[M any](basepath string, adapter MetaAdapter[M], spatialIdx spatial.Adapter, mode Mode, flags Flags, numSlots int, opts ...Option) (*Dataset[M], error) {
	start := time.Now()
	o := applyOptions(opts)
	log := o.logger.WithBasepath(basepath)

	ds, err := open(basepath, adapter, spatialIdx, mode, flags, numSlots, o)
	o.metrics.RecordOpen(time.Since(start), err)
	numElements := 0
	if ds != nil {
		numElements = int(ds.numElements)
	}
	log.LogOpen(basepath, numElements, flags.has(RWP), err)
	return ds, err
}

func open[M any](basepath string, adapter MetaAdapter[M], spatialIdx spatial.Adapter, mode Mode, flags Flags, numSlots int, o options) (*Dataset[M], error) {
	rwp := flags.has(RWP)
	noData := flags.has(NoData)
	allowUnsorted := flags.has(AllowUnsorted)
	noDataCheck := flags.has(NoDataCheck)

	if rwp {
		if !allowUnsorted {
			return nil, &errs.AccessError{Kind: errs.KindUnsortedData, Basepath: basepath}
		}
		spatialIdx = nil
	}
	if noData {
		numSlots = 0
	} else if numSlots <= 0 {
		numSlots = 1
	}
	if !rwp && spatialIdx == nil {
		return nil, &errs.StateError{Kind: errs.KindNotInitialized, Basepath: basepath}
	}
	if spatialIdx != nil && spatialIdx.Dims() != adapter.Dims() {
		return nil, &errs.FormatError{
			Kind: errs.KindDimensionMismatch, Basepath: basepath,
			Expected: int64(adapter.Dims()), Actual: int64(spatialIdx.Dims()),
		}
	}
	if numSlots > 1 && rwp {
		return nil, &errs.AccessError{Kind: errs.KindInvalidNumSlots, Basepath: basepath, NumSlots: numSlots}
	}

	pair, err := filepair.Open(filepair.Params{
		Basepath: basepath, MetaExt: adapter.MetaExt(), DataExt: adapter.DataExt(),
		Mode: filepair.Mode(mode), NoData: noData, MapFDs: !rwp,
	})
	if err != nil {
		return nil, err
	}

	rowSize := layout.RowSize(adapter.MetaSize())
	wantHeader := layout.New(uint32(rowSize), adapter.Check(), formatVersion(), formatRevision)
	headerSize := wantHeader.Size()

	headerBuf := make([]byte, headerSize)
	if pair.Mapped() {
		metaBytes, err := pair.MetaBytes()
		if err != nil {
			pair.Close()
			return nil, err
		}
		if int64(len(metaBytes)) < headerSize {
			pair.Close()
			return nil, &errs.FormatError{Kind: errs.KindBaseDataMismatch, Basepath: basepath, Position: int64(len(metaBytes))}
		}
		copy(headerBuf, metaBytes[:headerSize])
	} else if err := pair.ReadMetaAt(headerBuf, 0); err != nil {
		pair.Close()
		return nil, err
	}
	if err := layout.Validate(headerBuf, wantHeader, basepath); err != nil {
		pair.Close()
		return nil, err
	}

	metaFileSize, err := pair.MetaSize()
	if err != nil {
		pair.Close()
		return nil, err
	}
	numElements, err := layout.ValidateMetaFileSize(metaFileSize, headerSize, rowSize, basepath)
	if err != nil {
		pair.Close()
		return nil, err
	}

	crcFile, err := openCRCFile(basepath, rwp && o.checksums)
	if err != nil {
		pair.Close()
		return nil, err
	}

	ds := &Dataset[M]{
		basepath: basepath, adapter: adapter, spatial: spatialIdx, pair: pair,
		header: wantHeader, rowSize: rowSize, metaSize: adapter.MetaSize(),
		numElements: uint64(numElements), numSlots: numSlots,
		rwp: rwp, noData: noData, allowUnsorted: allowUnsorted, noDataCheck: noDataCheck, opts: o,
		crcFile: crcFile,
	}

	if !noData {
		dataFileSize, err := pair.DataSize()
		if err != nil {
			ds.Close()
			return nil, err
		}
		slotSize, err := layout.SlotSize(dataFileSize, numSlots, basepath)
		if err != nil {
			ds.Close()
			return nil, err
		}
		ds.slotSize = slotSize

		if !noDataCheck {
			if err := checkDataIntegrity(ds, dataFileSize); err != nil {
				ds.Close()
				return nil, err
			}
		}
	}

	if spatialIdx != nil && spatialIdx.Empty() {
		if err := rebuildSpatialIndex(ds, mode.has(Write)); err != nil {
			ds.Close()
			return nil, err
		}
	}

	if o.cleanBitIndex {
		ds.cleanIdx = newCleanBitIndex(ds, false)
	}

	return ds, nil
}

// checkDataIntegrity decodes every row's trailer (and, through the
// adapter, its declared data size) and verifies the resulting extents
// gaplessly partition one slot, and that the slot count the caller
// requested accounts for the whole data file.
func checkDataIntegrity[M any](ds *Dataset[M], dataFileSize int64) error {
	extents := make([]layout.RowExtent, 0, ds.numElements)
	for uid := uint64(1); uid <= ds.numElements; uid++ {
		row, err := ds.readRowBytes(uid)
		if err != nil {
			return err
		}
		metaBytes, dataOffset, _ := layout.DecodeRow(row, ds.metaSize)
		m, err := ds.adapter.Decode(metaBytes)
		if err != nil {
			return err
		}
		extents = append(extents, layout.RowExtent{
			UID: uid, DataOffset: int64(dataOffset), DataSize: ds.adapter.DataSize(m),
		})
	}

	if err := layout.CheckGapless(extents, ds.slotSize, ds.basepath); err != nil {
		return err
	}
	return layout.CheckDataFileSize(ds.slotSize, ds.numSlots, dataFileSize, ds.basepath)
}

// rebuildSpatialIndex decodes every row's metadata and replays it through
// Initialize, for adapters with no independent on-disk persistence.
func rebuildSpatialIndex[M any](ds *Dataset[M], canWrite bool) error {
	uids := make([]uint64, 0, ds.numElements)
	points := make([]spatial.Point, 0, ds.numElements)

	for uid := uint64(1); uid <= ds.numElements; uid++ {
		row, err := ds.readRowBytes(uid)
		if err != nil {
			return err
		}
		metaBytes, _, _ := layout.DecodeRow(row, ds.metaSize)
		m, err := ds.adapter.Decode(metaBytes)
		if err != nil {
			return err
		}
		uids = append(uids, uid)
		points = append(points, ds.adapter.Location(m))
	}

	return ds.spatial.Initialize(spatial.InitData{
		Basepath: ds.basepath, IsNew: false, CanWrite: canWrite, Dims: ds.adapter.Dims(),
	}, uids, points)
}
