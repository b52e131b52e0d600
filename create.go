package s1o

import (
	"context"
	"sync"
	"time"

	"github.com/caian-org/s1o/filepair"
	"github.com/caian-org/s1o/internal/alignmem"
	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/layout"
	"github.com/caian-org/s1o/spatial"
)

// Create bulk-builds a new dataset under basepath from metas: it sizes and
// creates both files, writes the header and per-record check block, lays
// out metadata rows, asks spatialIdx (nil in RWP mode) to initialize over
// the (uid, location) pairs, then walks the natural iteration order —
// spatial when present, else insertion order — to assign each row's
// data_offset and mark it Clean.
func Create[M any](basepath string, adapter MetaAdapter[M], metas []M, spatialIdx spatial.Adapter, flags Flags, numSlots int, opts ...Option) (*Dataset[M], error) {
	start := time.Now()
	o := applyOptions(opts)
	log := o.logger.WithBasepath(basepath)

	ds, err := create(basepath, adapter, metas, spatialIdx, flags, numSlots, o)
	o.metrics.RecordCreate(time.Since(start), err)
	log.LogCreate(basepath, len(metas), numSlots, err)
	return ds, err
}

func create[M any](basepath string, adapter MetaAdapter[M], metas []M, spatialIdx spatial.Adapter, flags Flags, numSlots int, o options) (*Dataset[M], error) {
	rwp := flags.has(RWP)
	noData := flags.has(NoData)
	allowUnsorted := flags.has(AllowUnsorted)

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
	if !allowUnsorted {
		if err := checkSorted(basepath, adapter, metas); err != nil {
			return nil, err
		}
	}
	if numSlots > 1 && rwp {
		return nil, &errs.AccessError{Kind: errs.KindInvalidNumSlots, Basepath: basepath, NumSlots: numSlots}
	}

	rowSize := layout.RowSize(adapter.MetaSize())
	header := layout.New(uint32(rowSize), adapter.Check(), formatVersion(), formatRevision)
	headerSize := header.Size()

	metaFileSize := headerSize + int64(len(metas))*rowSize

	dataSizes := make([]int64, len(metas))
	var slotSize int64
	for i, m := range metas {
		dataSizes[i] = adapter.DataSize(m)
		slotSize += alignmem.AlignUp(dataSizes[i])
	}

	var dataFileSize int64
	if !noData {
		dataFileSize = slotSize * int64(numSlots)
	}

	pair, err := filepair.Open(filepair.Params{
		Basepath: basepath, MetaExt: adapter.MetaExt(), DataExt: adapter.DataExt(),
		Mode: filepair.New, NoData: noData, MapFDs: !rwp,
		NewMetaSize: metaFileSize, NewDataSize: dataFileSize,
	})
	if err != nil {
		return nil, err
	}

	crcFile, err := openCRCFile(basepath, rwp && o.checksums)
	if err != nil {
		pair.Close()
		return nil, err
	}

	ds := &Dataset[M]{
		basepath: basepath, adapter: adapter, spatial: spatialIdx, pair: pair,
		header: header, rowSize: rowSize, metaSize: adapter.MetaSize(),
		numElements: uint64(len(metas)), numSlots: numSlots, slotSize: slotSize,
		rwp: rwp, noData: noData, allowUnsorted: allowUnsorted, opts: o,
		crcFile: crcFile,
	}

	if err := writeHeader(ds); err != nil {
		ds.Close()
		return nil, err
	}
	if err := writeInitialRows(ds, adapter, metas, dataSizes); err != nil {
		ds.Close()
		return nil, err
	}

	if spatialIdx != nil {
		uids := make([]uint64, len(metas))
		points := make([]spatial.Point, len(metas))
		for i, m := range metas {
			uids[i] = uint64(i + 1)
			points[i] = adapter.Location(m)
		}
		if err := spatialIdx.Initialize(spatial.InitData{Basepath: basepath, IsNew: true, CanWrite: true, Dims: adapter.Dims()}, uids, points); err != nil {
			ds.Close()
			return nil, err
		}
	}

	if !noData {
		if err := assignDataOffsets(ds, dataSizes); err != nil {
			ds.Close()
			return nil, err
		}
	}

	if o.cleanBitIndex {
		ds.cleanIdx = newCleanBitIndex(ds, !noData)
	}

	return ds, nil
}

func checkSorted[M any](basepath string, adapter MetaAdapter[M], metas []M) error {
	for i, m := range metas {
		uid := adapter.UID(m)
		if uid != 0 && uid != uint64(i+1) {
			return &errs.AccessError{Kind: errs.KindUnsortedData, Basepath: basepath, UID: uid}
		}
	}
	return nil
}

func writeHeader[M any](ds *Dataset[M]) error {
	buf := ds.header.Encode()
	if ds.pair.Mapped() {
		metaBytes, err := ds.pair.MetaBytes()
		if err != nil {
			return err
		}
		copy(metaBytes, buf)
		return nil
	}
	return ds.pair.WriteMetaAt(buf, 0)
}

// writeInitialRows lays out every row with data_offset=0 and clean_bit=0
// (neither Clean nor Dirty — the row is incomplete until
// assignDataOffsets runs). In RWP mode, rows are independent byte ranges
// within the same file descriptor, so the write fan-out is bounded by the
// dataset's resource controller rather than left unbounded.
func writeInitialRows[M any](ds *Dataset[M], adapter MetaAdapter[M], metas []M, dataSizes []int64) error {
	rows := make([][]byte, len(metas))
	for i, m := range metas {
		row := make([]byte, ds.rowSize)
		layout.EncodeRow(row, adapter.Encode(m), 0, layout.CleanBit(0))
		rows[i] = row
	}

	if ds.pair.Mapped() {
		metaBytes, err := ds.pair.MetaBytes()
		if err != nil {
			return err
		}
		for i, row := range rows {
			off := ds.rowOffset(uint64(i + 1))
			copy(metaBytes[off:off+ds.rowSize], row)
		}
		return nil
	}

	return writeRowsParallel(ds, rows)
}

func writeRowsParallel[M any](ds *Dataset[M], rows [][]byte) error {
	ctl := ds.opts.resourceCtl
	ctx := context.Background()

	var wg sync.WaitGroup
	errCh := make(chan error, len(rows))

	for i, row := range rows {
		if err := ctl.AcquireBackground(ctx); err != nil {
			errCh <- err
			break
		}
		wg.Add(1)
		go func(i int, row []byte) {
			defer wg.Done()
			defer ctl.ReleaseBackground()
			off := ds.rowOffset(uint64(i + 1))
			errCh <- ds.pair.WriteMetaAt(row, off)
		}(i, row)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// assignDataOffsets walks the natural iteration order (spatial, when the
// dataset carries an index; insertion order otherwise) and stamps each
// row's data_offset/clean_bit, leaving the blob bytes themselves zeroed
// until a caller writes through get/write.
func assignDataOffsets[M any](ds *Dataset[M], dataSizes []int64) error {
	var order []uint64
	if ds.spatial != nil {
		for r := range ds.spatial.All() {
			order = append(order, r.UID)
		}
	} else {
		for uid := uint64(1); uid <= ds.numElements; uid++ {
			order = append(order, uid)
		}
	}

	var cursor int64
	for _, uid := range order {
		size := dataSizes[uid-1]
		if ds.pair.Mapped() {
			row, err := ds.addressOf(uid)
			if err != nil {
				return err
			}
			layout.EncodeRow(row, row[:ds.metaSize], uint64(cursor), layout.Clean)
		} else {
			full := make([]byte, ds.rowSize)
			if err := ds.pair.ReadMetaAt(full, ds.rowOffset(uid)); err != nil {
				return err
			}
			layout.EncodeRow(full, full[:ds.metaSize], uint64(cursor), layout.Clean)
			if err := ds.pair.WriteMetaAt(full, ds.rowOffset(uid)); err != nil {
				return err
			}
		}
		cursor += alignmem.AlignUp(size)
	}

	return nil
}
