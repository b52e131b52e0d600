// Package strpack implements sort-tile-recursive bulk packing, shared by
// the in-memory and disk-backed R-tree adapters so the partitioning
// algorithm is written once and serialized however each backing store
// needs.
package strpack

import (
	"math"
	"sort"
)

// Group is one node of the packing result: a leaf carries the indices
// (into the caller's original point slice) it covers; an internal group
// carries its child groups.
type Group struct {
	Indices  []int
	Children []*Group
}

// Leaf reports whether g is a leaf group.
func (g *Group) Leaf() bool { return g.Children == nil }

// Build packs len(points) items, each points[i] of length dims, into a
// tree of groups with at most maxEntries indices per leaf.
func Build(points [][]float64, dims, maxEntries int) *Group {
	indices := make([]int, len(points))
	for i := range indices {
		indices[i] = i
	}
	return build(points, indices, dims, maxEntries, 0)
}

func build(points [][]float64, indices []int, dims, maxEntries, depth int) *Group {
	if len(indices) <= maxEntries {
		return &Group{Indices: indices}
	}

	dim := depth % dims
	sort.Slice(indices, func(i, j int) bool { return points[indices[i]][dim] < points[indices[j]][dim] })

	totalLeaves := ceilDiv(len(indices), maxEntries)
	sliceCount := int(math.Ceil(math.Pow(float64(totalLeaves), 1.0/float64(dims))))
	if sliceCount < 1 {
		sliceCount = 1
	}
	sliceSize := ceilDiv(len(indices), sliceCount)

	var children []*Group
	for start := 0; start < len(indices); start += sliceSize {
		end := start + sliceSize
		if end > len(indices) {
			end = len(indices)
		}
		children = append(children, build(points, indices[start:end], dims, maxEntries, depth+1))
	}

	return &Group{Children: children}
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }
