// Package multiindex implements the composite spatial adapter: a primary
// spatial index (any spatial.Adapter) plus a set of ordered secondary
// indices keyed by numeric fields the metadata exposes. Secondary indices
// are columnar sorted arrays answering closed-interval range queries by
// binary search, sealed once at bulk load — a new secondary value
// requires a full reseal, matching the dataset's append-only posture for
// everything except the primary index's own growth.
package multiindex

import (
	"iter"
	"sort"

	"github.com/caian-org/s1o/internal/errs"
	"github.com/caian-org/s1o/spatial"
)

// SecondaryIndex is one columnar sorted-array secondary key, sealed after
// Build: entries are sorted by Key, and range queries binary search the
// sorted Keys slice for the matching [lower, upper] slice bounds.
type SecondaryIndex struct {
	name string
	uids []uint64
	keys []float64
}

func buildSecondary(name string, uids []uint64, keys []float64) *SecondaryIndex {
	order := make([]int, len(uids))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return keys[order[i]] < keys[order[j]] })

	si := &SecondaryIndex{name: name, uids: make([]uint64, len(uids)), keys: make([]float64, len(keys))}
	for pos, idx := range order {
		si.uids[pos] = uids[idx]
		si.keys[pos] = keys[idx]
	}
	return si
}

// Bounds returns the secondary index's own per-index min/max key.
func (si *SecondaryIndex) Bounds() (min, max float64) {
	if len(si.keys) == 0 {
		return 0, 0
	}
	return si.keys[0], si.keys[len(si.keys)-1]
}

// QueryRange returns every uid whose key falls within [lower, upper],
// located by binary search over the sealed sorted array.
func (si *SecondaryIndex) QueryRange(lower, upper float64) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		start := sort.SearchFloat64s(si.keys, lower)
		for i := start; i < len(si.keys) && si.keys[i] <= upper; i++ {
			if !yield(si.uids[i]) {
				return
			}
		}
	}
}

// Adapter composes a primary spatial.Adapter with named secondary
// ordered indices. It satisfies spatial.Adapter itself by delegating
// every primary-index method; QuerySecondary is the additional
// secondary-side entry point, called on the Adapter directly (the dataset
// facade does not call it).
type Adapter struct {
	primary        spatial.Adapter
	secondaryInput map[string][]float64
	secondaries    map[string]*SecondaryIndex
}

// New wraps primary with secondary key columns. secondaryKeys must map
// each secondary field name to a slice parallel, by position, to the
// uids slice that will later be passed to Initialize.
func New(primary spatial.Adapter, secondaryKeys map[string][]float64) *Adapter {
	return &Adapter{primary: primary, secondaryInput: secondaryKeys, secondaries: map[string]*SecondaryIndex{}}
}

func (a *Adapter) SupportsElementPair() bool { return a.primary.SupportsElementPair() }
func (a *Adapter) Empty() bool               { return a.primary.Empty() }
func (a *Adapter) Dims() int                 { return a.primary.Dims() }

func (a *Adapter) ExtraFiles(basepath string) []string { return a.primary.ExtraFiles(basepath) }

func (a *Adapter) Initialize(init spatial.InitData, uids []uint64, points []spatial.Point) error {
	if err := a.primary.Initialize(init, uids, points); err != nil {
		return err
	}

	for name, keys := range a.secondaryInput {
		if len(keys) != len(uids) {
			return &errs.FormatError{
				Kind: errs.KindInconsistentIndex, Basepath: init.Basepath,
				Expected: int64(len(uids)), Actual: int64(len(keys)),
			}
		}
		a.secondaries[name] = buildSecondary(name, uids, keys)
	}

	return nil
}

func (a *Adapter) Bounds() (spatial.Point, spatial.Point, error) { return a.primary.Bounds() }

func (a *Adapter) QueryRange(ci spatial.ClosedInterval) iter.Seq[spatial.Result] {
	return a.primary.QueryRange(ci)
}

func (a *Adapter) QueryNearest(n spatial.Nearest) iter.Seq[spatial.Result] {
	return a.primary.QueryNearest(n)
}

func (a *Adapter) All() iter.Seq[spatial.Result] { return a.primary.All() }

func (a *Adapter) Close() error { return a.primary.Close() }

// Secondary returns the named secondary index, or nil if none was built
// under that name.
func (a *Adapter) Secondary(name string) *SecondaryIndex { return a.secondaries[name] }

// QuerySecondary range-queries the named secondary index by key.
func (a *Adapter) QuerySecondary(name string, lower, upper float64) iter.Seq[uint64] {
	si := a.secondaries[name]
	if si == nil {
		return func(func(uint64) bool) {}
	}
	return si.QueryRange(lower, upper)
}

var _ spatial.Adapter = (*Adapter)(nil)
