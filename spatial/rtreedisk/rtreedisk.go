// Package rtreedisk implements a disk-backed R-tree spatial adapter:
// the same sort-tile-recursive packing as the in-memory variant, but
// serialized node-by-node into a managed memory-mapped file via
// mmapfile's resize-and-retry loader, so bulk-loading a large point set
// neither requires the whole tree to fit on the Go heap nor pays
// construction cost again on every reopen.
package rtreedisk

import (
	"container/heap"
	"encoding/binary"
	"iter"
	"math"

	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/internal/mmap"
	"github.com/caian-org/s1o/internal/strpack"
	"github.com/caian-org/s1o/mmapfile"
	"github.com/caian-org/s1o/spatial"
)

const (
	rootMagic        = "S1ORTREE"
	rootReserve      = 64
	defaultMaxEntries = 16

	kindLeaf     = 0
	kindInternal = 1

	defaultStartingFileSize  = 1 << 20
	defaultFileIncrement     = 1 << 20
	defaultMaxResizeAttempts = 8
)

// Adapter is the disk-backed R-tree spatial.Adapter. Nodes carry only
// uids (the slim shape); callers resolve metadata/data through the
// dataset.
type Adapter struct {
	dims       int
	maxEntries int

	startingFileSize  int64
	fileIncrement     int64
	maxResizeAttempts int

	path    string
	mapping *mmap.Mapping
	count   int
	rootOff int64
}

type Option func(*Adapter)

func WithMaxEntries(n int) Option {
	return func(a *Adapter) {
		if n > 1 {
			a.maxEntries = n
		}
	}
}

func WithStartingFileSize(n int64) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.startingFileSize = n
		}
	}
}

func WithFileIncrement(n int64) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.fileIncrement = n
		}
	}
}

func WithMaxResizeAttempts(n int) Option {
	return func(a *Adapter) {
		if n >= 0 {
			a.maxResizeAttempts = n
		}
	}
}

// New builds an adapter that will persist its tree in the file at path.
func New(path string, dims int, opts ...Option) *Adapter {
	a := &Adapter{
		path: path, dims: dims, maxEntries: defaultMaxEntries,
		startingFileSize: defaultStartingFileSize, fileIncrement: defaultFileIncrement,
		maxResizeAttempts: defaultMaxResizeAttempts,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) SupportsElementPair() bool { return false }
func (a *Adapter) Empty() bool               { return a.count == 0 }
func (a *Adapter) Dims() int                 { return a.dims }

func (a *Adapter) ExtraFiles(basepath string) []string { return []string{basepath + ".ridx"} }

// Initialize bulk loads the tree via the resize-and-retry loader,
// serializing the STR-packed node tree bottom-up so each node's child
// offsets are known before it is written.
func (a *Adapter) Initialize(init spatial.InitData, uids []uint64, points []spatial.Point) error {
	a.count = len(uids)

	if len(uids) == 0 {
		return a.writeEmpty()
	}

	entries := make([]spatial.Result, len(uids))
	raw := make([][]float64, len(uids))
	for i := range uids {
		entries[i] = spatial.Result{UID: uids[i], Point: points[i]}
		raw[i] = points[i]
	}
	group := strpack.Build(raw, a.dims, a.maxEntries)

	_, err := mmapfile.Create(mmapfile.CreateParams{
		Path: a.path, StartingFileSize: a.startingFileSize, FileIncrement: a.fileIncrement,
		MaxResizeAttempts: a.maxResizeAttempts, RootReserve: rootReserve,
	}, func(alloc *mmapfile.Allocator) error {
		rootOff, _, _, err := serializeGroup(alloc, group, entries, a.dims)
		if err != nil {
			return err
		}
		return writeRoot(alloc, a.dims, len(uids), rootOff)
	})
	if err != nil {
		return err
	}

	mapping, err := mmap.Open(a.path)
	if err != nil {
		return err
	}
	a.mapping = mapping
	_, a.rootOff, err = readRoot(mapping.Bytes(), a.dims, len(uids), a.path)
	return err
}

func (a *Adapter) writeEmpty() error {
	_, err := mmapfile.Create(mmapfile.CreateParams{
		Path: a.path, StartingFileSize: rootReserve, FileIncrement: 0,
		MaxResizeAttempts: 0, RootReserve: rootReserve,
	}, func(alloc *mmapfile.Allocator) error {
		return writeRoot(alloc, a.dims, 0, -1)
	})
	return err
}

// Open maps an existing tree file, validating the root object against
// the expected element count (inconsistent_index on mismatch).
func Open(path string, dims, expectedCount int) (*Adapter, error) {
	mapping, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	_, rootOff, err := readRoot(mapping.Bytes(), dims, expectedCount, path)
	if err != nil {
		mapping.Close()
		return nil, err
	}

	return &Adapter{
		path: path, dims: dims, mapping: mapping, count: expectedCount, rootOff: rootOff,
	}, nil
}

func (a *Adapter) Close() error {
	if a.mapping == nil {
		return nil
	}
	return a.mapping.Close()
}

func (a *Adapter) Bounds() (spatial.Point, spatial.Point, error) {
	if a.count == 0 {
		return nil, nil, nil
	}
	_, _, min, max := readNodeHeader(a.mapping.Bytes(), a.rootOff, a.dims)
	return min, max, nil
}

func (a *Adapter) QueryRange(ci spatial.ClosedInterval) iter.Seq[spatial.Result] {
	return func(yield func(spatial.Result) bool) {
		if a.count == 0 {
			return
		}
		rangeWalk(a.mapping.Bytes(), a.rootOff, a.dims, ci, yield)
	}
}

func rangeWalk(data []byte, off int64, dims int, ci spatial.ClosedInterval, yield func(spatial.Result) bool) bool {
	kind, count, min, max := readNodeHeader(data, off, dims)
	if !boxesOverlap(min, max, ci.Min, ci.Max) {
		return true
	}

	if kind == kindLeaf {
		for _, e := range readLeafEntries(data, off, count, dims) {
			if ci.Contains(e.Point) {
				if !yield(e) {
					return false
				}
			}
		}
		return true
	}

	for _, childOff := range readChildOffsets(data, off, count, dims) {
		if !rangeWalk(data, childOff, dims, ci, yield) {
			return false
		}
	}
	return true
}

func (a *Adapter) QueryNearest(q spatial.Nearest) iter.Seq[spatial.Result] {
	return func(yield func(spatial.Result) bool) {
		if a.count == 0 || q.K <= 0 {
			return
		}

		data := a.mapping.Bytes()
		pq := &candidateHeap{}
		_, _, min, max := readNodeHeader(data, a.rootOff, a.dims)
		heap.Push(pq, candidate{offset: a.rootOff, dist: boxMinDist(min, max, q.Point)})

		found := 0
		for pq.Len() > 0 && found < q.K {
			c := heap.Pop(pq).(candidate)

			if c.isEntry {
				if !yield(spatial.Result{UID: c.entry.UID, Point: c.entry.Point, Distance: c.dist}) {
					return
				}
				found++
				continue
			}

			kind, count, _, _ := readNodeHeader(data, c.offset, a.dims)
			if kind == kindLeaf {
				for _, e := range readLeafEntries(data, c.offset, count, a.dims) {
					heap.Push(pq, candidate{isEntry: true, entry: e, dist: euclidean(e.Point, q.Point)})
				}
				continue
			}

			for _, childOff := range readChildOffsets(data, c.offset, count, a.dims) {
				_, _, cmin, cmax := readNodeHeader(data, childOff, a.dims)
				heap.Push(pq, candidate{offset: childOff, dist: boxMinDist(cmin, cmax, q.Point)})
			}
		}
	}
}

func (a *Adapter) All() iter.Seq[spatial.Result] {
	return func(yield func(spatial.Result) bool) {
		if a.count == 0 {
			return
		}
		walkAll(a.mapping.Bytes(), a.rootOff, a.dims, yield)
	}
}

func walkAll(data []byte, off int64, dims int, yield func(spatial.Result) bool) bool {
	kind, count, _, _ := readNodeHeader(data, off, dims)
	if kind == kindLeaf {
		for _, e := range readLeafEntries(data, off, count, dims) {
			if !yield(e) {
				return false
			}
		}
		return true
	}
	for _, childOff := range readChildOffsets(data, off, count, dims) {
		if !walkAll(data, childOff, dims, yield) {
			return false
		}
	}
	return true
}

type candidate struct {
	isEntry bool
	offset  int64
	entry   spatial.Result
	dist    float64
}

type candidateHeap []candidate

func (h candidateHeap) Len() int           { return len(h) }
func (h candidateHeap) Less(i, j int) bool { return h[i].dist < h[j].dist }
func (h candidateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func euclidean(p, q spatial.Point) float64 {
	var sum float64
	for i := range p {
		d := p[i] - q[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func boxMinDist(min, max, q spatial.Point) float64 {
	var sum float64
	for i := range q {
		var d float64
		switch {
		case q[i] < min[i]:
			d = min[i] - q[i]
		case q[i] > max[i]:
			d = q[i] - max[i]
		}
		sum += d * d
	}
	return math.Sqrt(sum)
}

func boxesOverlap(aMin, aMax, bMin, bMax spatial.Point) bool {
	for i := range aMin {
		if aMax[i] < bMin[i] || aMin[i] > bMax[i] {
			return false
		}
	}
	return true
}

// --- node (de)serialization ---
//
// Node block layout: kind(1) pad(3) count(4) min(dims*8) max(dims*8)
// payload. Leaf payload is count * (uid(8) point(dims*8)); internal
// payload is count * childOffset(8).

func nodeHeaderSize(dims int) int64 { return 1 + 3 + 4 + int64(dims)*8*2 }

func serializeGroup(alloc *mmapfile.Allocator, g *strpack.Group, entries []spatial.Result, dims int) (off int64, min, max spatial.Point, err error) {
	if g.Leaf() {
		leafEntries := make([]spatial.Result, len(g.Indices))
		for i, idx := range g.Indices {
			leafEntries[i] = entries[idx]
		}
		min, max = boundsOf(leafEntries)

		size := nodeHeaderSize(dims) + int64(len(leafEntries))*(8+int64(dims)*8)
		off, err = alloc.Alloc(size)
		if err != nil {
			return 0, nil, nil, err
		}
		buf := alloc.Bytes(off, size)
		writeNodeHeader(buf, kindLeaf, len(leafEntries), min, max, dims)

		p := nodeHeaderSize(dims)
		for _, e := range leafEntries {
			binary.LittleEndian.PutUint64(buf[p:p+8], e.UID)
			p += 8
			for _, v := range e.Point {
				binary.LittleEndian.PutUint64(buf[p:p+8], math.Float64bits(v))
				p += 8
			}
		}
		return off, min, max, nil
	}

	childOffs := make([]int64, len(g.Children))
	for i, c := range g.Children {
		childOff, cmin, cmax, err := serializeGroup(alloc, c, entries, dims)
		if err != nil {
			return 0, nil, nil, err
		}
		childOffs[i] = childOff
		if i == 0 {
			min, max = cmin.Clone(), cmax.Clone()
		} else {
			for d := range min {
				if cmin[d] < min[d] {
					min[d] = cmin[d]
				}
				if cmax[d] > max[d] {
					max[d] = cmax[d]
				}
			}
		}
	}

	size := nodeHeaderSize(dims) + int64(len(childOffs))*8
	off, err = alloc.Alloc(size)
	if err != nil {
		return 0, nil, nil, err
	}
	buf := alloc.Bytes(off, size)
	writeNodeHeader(buf, kindInternal, len(childOffs), min, max, dims)

	p := nodeHeaderSize(dims)
	for _, co := range childOffs {
		binary.LittleEndian.PutUint64(buf[p:p+8], uint64(co))
		p += 8
	}

	return off, min, max, nil
}

func writeNodeHeader(buf []byte, kind byte, count int, min, max spatial.Point, dims int) {
	buf[0] = kind
	binary.LittleEndian.PutUint32(buf[4:8], uint32(count))
	p := 8
	for i := 0; i < dims; i++ {
		binary.LittleEndian.PutUint64(buf[p:p+8], math.Float64bits(min[i]))
		p += 8
	}
	for i := 0; i < dims; i++ {
		binary.LittleEndian.PutUint64(buf[p:p+8], math.Float64bits(max[i]))
		p += 8
	}
}

func readNodeHeader(data []byte, off int64, dims int) (kind byte, count int, min, max spatial.Point) {
	buf := data[off:]
	kind = buf[0]
	count = int(binary.LittleEndian.Uint32(buf[4:8]))

	min = make(spatial.Point, dims)
	max = make(spatial.Point, dims)
	p := 8
	for i := 0; i < dims; i++ {
		min[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[p : p+8]))
		p += 8
	}
	for i := 0; i < dims; i++ {
		max[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[p : p+8]))
		p += 8
	}
	return kind, count, min, max
}

func readLeafEntries(data []byte, off int64, count, dims int) []spatial.Result {
	buf := data[off+nodeHeaderSize(dims):]
	out := make([]spatial.Result, count)
	p := 0
	for i := 0; i < count; i++ {
		uid := binary.LittleEndian.Uint64(buf[p : p+8])
		p += 8
		pt := make(spatial.Point, dims)
		for d := 0; d < dims; d++ {
			pt[d] = math.Float64frombits(binary.LittleEndian.Uint64(buf[p : p+8]))
			p += 8
		}
		out[i] = spatial.Result{UID: uid, Point: pt}
	}
	return out
}

func readChildOffsets(data []byte, off int64, count, dims int) []int64 {
	buf := data[off+nodeHeaderSize(dims):]
	out := make([]int64, count)
	p := 0
	for i := 0; i < count; i++ {
		out[i] = int64(binary.LittleEndian.Uint64(buf[p : p+8]))
		p += 8
	}
	return out
}

func boundsOf(entries []spatial.Result) (spatial.Point, spatial.Point) {
	min := entries[0].Point.Clone()
	max := entries[0].Point.Clone()
	for _, e := range entries[1:] {
		for i, v := range e.Point {
			if v < min[i] {
				min[i] = v
			}
			if v > max[i] {
				max[i] = v
			}
		}
	}
	return min, max
}

// --- root object ---

func writeRoot(alloc *mmapfile.Allocator, dims, count int, rootNodeOff int64) error {
	buf := alloc.Root(rootReserve)
	copy(buf[0:8], rootMagic)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(dims))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(count))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(rootNodeOff))
	return nil
}

func readRoot(data []byte, dims, expectedCount int, path string) (count int, rootOff int64, err error) {
	if len(data) < rootReserve || string(data[0:8]) != rootMagic {
		return 0, 0, &errs.FormatError{Kind: errs.KindInconsistentIndex, Basepath: path}
	}

	gotDims := int(binary.LittleEndian.Uint32(data[8:12]))
	gotCount := int(binary.LittleEndian.Uint32(data[12:16]))
	rootOff = int64(binary.LittleEndian.Uint64(data[16:24]))

	if gotDims != dims || gotCount != expectedCount {
		return 0, 0, &errs.FormatError{
			Kind: errs.KindInconsistentIndex, Basepath: path,
			Expected: int64(expectedCount), Actual: int64(gotCount),
		}
	}

	return gotCount, rootOff, nil
}

var _ spatial.Adapter = (*Adapter)(nil)
