// This file implements immutable fluent builder APIs for assembling a
// spatial.Adapter before it is handed to Create or Open. Builders never
// mutate the receiver in place — each chained setter returns a new builder
// value.
package s1o

import (
	"github.com/caian-org/s1o/spatial"
	"github.com/caian-org/s1o/spatial/multiindex"
	"github.com/caian-org/s1o/spatial/rtree"
	"github.com/caian-org/s1o/spatial/rtreedisk"
)

// =============================================================================
// In-memory R-tree builder
// =============================================================================

// RTree starts a builder for the in-memory STR-packed R-tree adapter.
func RTree(dimension int) RTreeBuilder {
	return RTreeBuilder{dimension: dimension, maxEntries: 0}
}

// RTreeBuilder is an immutable fluent builder for rtree.Adapter.
type RTreeBuilder struct {
	dimension  int
	maxEntries int
}

// MaxEntries sets the maximum number of entries per node. Zero keeps the
// adapter's own default.
func (b RTreeBuilder) MaxEntries(n int) RTreeBuilder {
	b.maxEntries = n
	return b
}

// Build constructs the adapter. It never fails — kept returning an error
// for symmetry with the other builders, since all three are handed to
// Create/Open through the same call shape.
func (b RTreeBuilder) Build() (spatial.Adapter, error) {
	var opts []rtree.Option
	if b.maxEntries > 0 {
		opts = append(opts, rtree.WithMaxEntries(b.maxEntries))
	}
	return rtree.New(b.dimension, opts...), nil
}

// MustBuild constructs the adapter, panicking on error.
func (b RTreeBuilder) MustBuild() spatial.Adapter {
	a, err := b.Build()
	if err != nil {
		panic(err)
	}
	return a
}

// =============================================================================
// Disk-backed R-tree builder
// =============================================================================

// DiskRTree starts a builder for the mmap-arena-backed R-tree adapter,
// persisted in the file at path.
func DiskRTree(path string, dimension int) DiskRTreeBuilder {
	// maxResizeAttempts -1 keeps the adapter's default; 0 means one attempt.
	return DiskRTreeBuilder{path: path, dimension: dimension, maxResizeAttempts: -1}
}

// DiskRTreeBuilder is an immutable fluent builder for rtreedisk.Adapter.
type DiskRTreeBuilder struct {
	path              string
	dimension         int
	maxEntries        int
	startingFileSize  int64
	fileIncrement     int64
	maxResizeAttempts int
}

func (b DiskRTreeBuilder) MaxEntries(n int) DiskRTreeBuilder {
	b.maxEntries = n
	return b
}

func (b DiskRTreeBuilder) StartingFileSize(n int64) DiskRTreeBuilder {
	b.startingFileSize = n
	return b
}

func (b DiskRTreeBuilder) FileIncrement(n int64) DiskRTreeBuilder {
	b.fileIncrement = n
	return b
}

func (b DiskRTreeBuilder) MaxResizeAttempts(n int) DiskRTreeBuilder {
	b.maxResizeAttempts = n
	return b
}

// Build constructs a fresh adapter ready for Initialize. Reopening an
// existing one is done separately, through rtreedisk.Open, since the
// dataset facade only needs to rebuild an adapter's in-memory state on
// Open when the adapter itself reports Empty() — a disk-backed tree loaded
// via rtreedisk.Open already carries its element count.
func (b DiskRTreeBuilder) Build() (spatial.Adapter, error) {
	var opts []rtreedisk.Option
	if b.maxEntries > 0 {
		opts = append(opts, rtreedisk.WithMaxEntries(b.maxEntries))
	}
	if b.startingFileSize > 0 {
		opts = append(opts, rtreedisk.WithStartingFileSize(b.startingFileSize))
	}
	if b.fileIncrement > 0 {
		opts = append(opts, rtreedisk.WithFileIncrement(b.fileIncrement))
	}
	if b.maxResizeAttempts >= 0 {
		opts = append(opts, rtreedisk.WithMaxResizeAttempts(b.maxResizeAttempts))
	}
	return rtreedisk.New(b.path, b.dimension, opts...), nil
}

// MustBuild constructs the adapter, panicking on error.
func (b DiskRTreeBuilder) MustBuild() spatial.Adapter {
	a, err := b.Build()
	if err != nil {
		panic(err)
	}
	return a
}

// Open reopens a disk R-tree previously built under path, validating the
// stored element count against expectedCount.
func (b DiskRTreeBuilder) Open(expectedCount int) (spatial.Adapter, error) {
	return rtreedisk.Open(b.path, b.dimension, expectedCount)
}

// =============================================================================
// Multi-index (primary + secondary) builder
// =============================================================================

// MultiIndex starts a builder wrapping primary with secondary ordered
// key indices.
func MultiIndex(primary spatial.Adapter) MultiIndexBuilder {
	return MultiIndexBuilder{primary: primary, secondaries: map[string][]float64{}}
}

// MultiIndexBuilder is an immutable fluent builder for multiindex.Adapter.
type MultiIndexBuilder struct {
	primary     spatial.Adapter
	secondaries map[string][]float64
}

// Secondary registers a secondary key column, parallel by position to the
// uids slice that will later be passed to Initialize. Returns a new
// builder value with an independent copy of the secondary-column map.
func (b MultiIndexBuilder) Secondary(name string, keys []float64) MultiIndexBuilder {
	next := make(map[string][]float64, len(b.secondaries)+1)
	for k, v := range b.secondaries {
		next[k] = v
	}
	next[name] = keys
	b.secondaries = next
	return b
}

// Build constructs the composite adapter.
func (b MultiIndexBuilder) Build() (spatial.Adapter, error) {
	return multiindex.New(b.primary, b.secondaries), nil
}

// MustBuild constructs the adapter, panicking on error.
func (b MultiIndexBuilder) MustBuild() spatial.Adapter {
	a, err := b.Build()
	if err != nil {
		panic(err)
	}
	return a
}
