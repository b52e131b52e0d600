// Package rtree implements an in-memory R-tree spatial adapter, bulk
// loaded with a sort-tile-recursive (STR) packing and queried with a
// best-first branch-and-bound traversal for k-nearest-neighbor lookups.
package rtree

import (
	"container/heap"
	"iter"
	"math"

	"github.com/caian-org/s1o/internal/strpack"
	"github.com/caian-org/s1o/spatial"
)

const defaultMaxEntries = 16

// Adapter is the in-memory R-tree spatial.Adapter. It stores only uids
// alongside each indexed point (the "slim" shape from the adapter
// contract); callers resolve metadata/data through the dataset.
type Adapter struct {
	dims       int
	maxEntries int
	root       *node
	count      int
}

// Option configures a new Adapter.
type Option func(*Adapter)

// WithMaxEntries overrides the maximum number of entries per leaf node.
func WithMaxEntries(n int) Option {
	return func(a *Adapter) {
		if n > 1 {
			a.maxEntries = n
		}
	}
}

// New builds an empty adapter for the given dimensionality. Call
// Initialize to bulk load it.
func New(dims int, opts ...Option) *Adapter {
	a := &Adapter{dims: dims, maxEntries: defaultMaxEntries}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type node struct {
	min, max spatial.Point
	leaf     bool
	entries  []spatial.Result // leaf only
	children []*node          // internal only
}

func (a *Adapter) SupportsElementPair() bool { return false }
func (a *Adapter) Empty() bool               { return a.count == 0 }
func (a *Adapter) Dims() int                 { return a.dims }

func (a *Adapter) ExtraFiles(basepath string) []string { return nil }

// Initialize bulk loads the tree from parallel uid/point slices via STR
// packing.
func (a *Adapter) Initialize(init spatial.InitData, uids []uint64, points []spatial.Point) error {
	entries := make([]spatial.Result, len(uids))
	for i := range uids {
		entries[i] = spatial.Result{UID: uids[i], Point: points[i]}
	}

	if len(entries) == 0 {
		a.root = nil
		a.count = 0
		return nil
	}

	a.root = strBuild(entries, a.dims, a.maxEntries, 0)
	a.count = len(entries)
	return nil
}

func (a *Adapter) Close() error { return nil }

func (a *Adapter) Bounds() (spatial.Point, spatial.Point, error) {
	if a.root == nil {
		return nil, nil, nil
	}
	return a.root.min.Clone(), a.root.max.Clone(), nil
}

func (a *Adapter) QueryRange(ci spatial.ClosedInterval) iter.Seq[spatial.Result] {
	return func(yield func(spatial.Result) bool) {
		if a.root == nil {
			return
		}
		rangeWalk(a.root, ci, yield)
	}
}

func rangeWalk(n *node, ci spatial.ClosedInterval, yield func(spatial.Result) bool) bool {
	if !boxesOverlap(n.min, n.max, ci.Min, ci.Max) {
		return true
	}
	if n.leaf {
		for _, e := range n.entries {
			if ci.Contains(e.Point) {
				if !yield(e) {
					return false
				}
			}
		}
		return true
	}
	for _, c := range n.children {
		if !rangeWalk(c, ci, yield) {
			return false
		}
	}
	return true
}

func (a *Adapter) QueryNearest(q spatial.Nearest) iter.Seq[spatial.Result] {
	return func(yield func(spatial.Result) bool) {
		if a.root == nil || q.K <= 0 {
			return
		}

		pq := &candidateHeap{}
		heap.Push(pq, candidate{node: a.root, dist: boxMinDist(a.root.min, a.root.max, q.Point)})

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

			if c.node.leaf {
				for _, e := range c.node.entries {
					heap.Push(pq, candidate{isEntry: true, entry: e, dist: euclidean(e.Point, q.Point)})
				}
				continue
			}

			for _, child := range c.node.children {
				heap.Push(pq, candidate{node: child, dist: boxMinDist(child.min, child.max, q.Point)})
			}
		}
	}
}

func (a *Adapter) All() iter.Seq[spatial.Result] {
	return func(yield func(spatial.Result) bool) {
		if a.root == nil {
			return
		}
		walkAll(a.root, yield)
	}
}

func walkAll(n *node, yield func(spatial.Result) bool) bool {
	if n.leaf {
		for _, e := range n.entries {
			if !yield(e) {
				return false
			}
		}
		return true
	}
	for _, c := range n.children {
		if !walkAll(c, yield) {
			return false
		}
	}
	return true
}

// candidate is a unit of best-first search: either an unexpanded node or
// a resolved leaf entry, ordered by lower-bound distance to the query
// point. Grounded on the priority-queue shape used for beam search
// elsewhere in the retrieval pack, adapted into a plain min-heap over a
// mixed node/entry candidate type.
type candidate struct {
	isEntry bool
	node    *node
	entry   spatial.Result
	dist    float64
}

type candidateHeap []candidate

func (h candidateHeap) Len() int            { return len(h) }
func (h candidateHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h candidateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)         { *h = append(*h, x.(candidate)) }
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

// strBuild packs entries into an R-tree by walking the shared
// sort-tile-recursive group tree and attaching bounds/entries at each
// level.
func strBuild(entries []spatial.Result, dims, maxEntries, depth int) *node {
	points := make([][]float64, len(entries))
	for i, e := range entries {
		points[i] = e.Point
	}

	group := strpack.Build(points, dims, maxEntries)
	return nodeFromGroup(group, entries)
}

func nodeFromGroup(g *strpack.Group, entries []spatial.Result) *node {
	if g.Leaf() {
		leafEntries := make([]spatial.Result, len(g.Indices))
		for i, idx := range g.Indices {
			leafEntries[i] = entries[idx]
		}
		return newLeaf(leafEntries)
	}

	children := make([]*node, len(g.Children))
	for i, c := range g.Children {
		children[i] = nodeFromGroup(c, entries)
	}
	return newInternal(children)
}

func newLeaf(entries []spatial.Result) *node {
	n := &node{leaf: true, entries: entries}
	n.min, n.max = boundsOf(entries)
	return n
}

func newInternal(children []*node) *node {
	n := &node{children: children}
	n.min = children[0].min.Clone()
	n.max = children[0].max.Clone()
	for _, c := range children[1:] {
		expand(&n.min, &n.max, c.min, c.max)
	}
	return n
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

func expand(min, max *spatial.Point, childMin, childMax spatial.Point) {
	for i := range *min {
		if childMin[i] < (*min)[i] {
			(*min)[i] = childMin[i]
		}
		if childMax[i] > (*max)[i] {
			(*max)[i] = childMax[i]
		}
	}
}

var _ spatial.Adapter = (*Adapter)(nil)
