// Package spatial defines the contract any spatial index implementation
// (in-memory R-tree, disk-backed R-tree, ordered multi-index) must satisfy
// to plug into the dataset facade.
package spatial

import "iter"

// Point is a location in N-dimensional space. Its length is the adapter's
// fixed dimensionality; every Point handed to or returned by an Adapter has
// the same length.
type Point []float64

// Equal reports whether p and q have the same coordinates.
func (p Point) Equal(q Point) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of p.
func (p Point) Clone() Point {
	c := make(Point, len(p))
	copy(c, p)
	return c
}

// ClosedInterval is the axis-aligned range-query predicate: every
// coordinate of a matching point satisfies Min[i] <= x[i] <= Max[i].
type ClosedInterval struct {
	Min Point
	Max Point
}

// Contains reports whether p falls within the interval, coordinate-wise.
func (ci ClosedInterval) Contains(p Point) bool {
	for i := range p {
		if p[i] < ci.Min[i] || p[i] > ci.Max[i] {
			return false
		}
	}
	return true
}

// Nearest is the k-nearest-neighbor query predicate.
type Nearest struct {
	Point Point
	K     int
}

// InitData conveys bulk-load context to Initialize: the dataset's
// basepath (for adapters that own sidecar files), whether this is a fresh
// build versus reopening an existing one, and whether the adapter may
// write to its backing storage.
type InitData struct {
	Basepath string
	IsNew    bool
	CanWrite bool
	Dims     int
}

// Result is one match produced by a range or nearest-neighbor query: the
// record's uid, its indexed point, and (only for Nearest) the distance to
// the query point.
type Result struct {
	UID      uint64
	Point    Point
	Distance float64
}

// Adapter is the non-generic contract every spatial index implementation
// satisfies. SupportsElementPair distinguishes the two concrete shapes the
// original design expressed as a compile-time trait flag: rich adapters
// cache resolved byte offsets alongside each node (an in-memory
// optimization, invalidated on reopen), slim adapters carry only uids and
// always resolve through the dataset.
type Adapter interface {
	// SupportsElementPair reports whether this adapter caches resolved
	// offsets alongside its nodes, or stores only uids.
	SupportsElementPair() bool

	// Empty reports whether the adapter currently holds no elements.
	Empty() bool

	// Dims returns the adapter's fixed dimensionality.
	Dims() int

	// ExtraFiles lists the sidecar paths this adapter owns under
	// basepath, for unlink and filename-distinctness checks.
	ExtraFiles(basepath string) []string

	// Initialize bulk-loads the adapter from parallel uid/point streams.
	// len(uids) must equal len(points).
	Initialize(init InitData, uids []uint64, points []Point) error

	// Bounds returns the per-axis minimum and maximum of every indexed
	// point. Empty on a dataset with no elements.
	Bounds() (min, max Point, err error)

	// QueryRange returns every (uid, point) whose point falls within ci.
	QueryRange(ci ClosedInterval) iter.Seq[Result]

	// QueryNearest returns the k nearest (uid, point, distance) triples to
	// n.Point, in ascending distance order.
	QueryNearest(n Nearest) iter.Seq[Result]

	// All iterates every indexed (uid, point) in the adapter's natural
	// storage order.
	All() iter.Seq[Result]

	// Close releases any resources (mapped files, heap allocations) the
	// adapter owns.
	Close() error
}
