// Package iterate builds typed iterator pipelines from single-purpose
// transforms (uid -> pair, pair -> metadata, pair -> pair-at-slot)
// composed by wrapping range-over-func iterators, never by materializing
// intermediate slices. The dataset facade uses FromResults and Metadata to
// resolve spatial query results.
package iterate

import (
	"iter"

	"github.com/caian-org/s1o/spatial"
)

// Pair is one resolved (metadata, data) result, addressed by uid.
type Pair[M any] struct {
	UID  uint64
	Meta M
	Data []byte
}

// Resolver looks up a record's metadata and, for mapped or RWP reads,
// its data blob in a given slot. Every concrete adapter in this module
// is the "slim" shape (uid-only nodes per the adapter contract's default),
// so every producer below resolves through a Resolver rather than
// dereferencing a cached pointer.
type Resolver[M any] interface {
	Metadata(uid uint64) (M, error)
	Data(uid uint64, slot int) ([]byte, error)
}

// UIDRange yields start, start+1, ..., end-1.
func UIDRange(start, end uint64) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for uid := start; uid < end; uid++ {
			if !yield(uid) {
				return
			}
		}
	}
}

// FromUIDs resolves each uid in uids into a (metadata, data) Pair via r,
// in the given slot. This is the "dataset lookup" producer behind
// FromResults' query result resolution, since every adapter in this
// module carries only uids in its nodes.
func FromUIDs[M any](uids iter.Seq[uint64], slot int, r Resolver[M]) iter.Seq2[Pair[M], error] {
	return func(yield func(Pair[M], error) bool) {
		for uid := range uids {
			meta, err := r.Metadata(uid)
			if err != nil {
				yield(Pair[M]{}, err)
				return
			}

			data, err := r.Data(uid, slot)
			if err != nil {
				yield(Pair[M]{}, err)
				return
			}

			if !yield(Pair[M]{UID: uid, Meta: meta, Data: data}, nil) {
				return
			}
		}
	}
}

// FromResults is FromUIDs specialized to a spatial query's Result stream,
// discarding the adapter's own (redundant, dataset-authoritative) point
// copy.
func FromResults[M any](results iter.Seq[spatial.Result], slot int, r Resolver[M]) iter.Seq2[Pair[M], error] {
	return FromUIDs(uidsOf(results), slot, r)
}

func uidsOf(results iter.Seq[spatial.Result]) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for res := range results {
			if !yield(res.UID) {
				return
			}
		}
	}
}

// Metadata projects a (meta, data) pipeline down to metadata alone — the
// pair -> meta transform from the composition table.
func Metadata[M any](pairs iter.Seq2[Pair[M], error]) iter.Seq2[M, error] {
	return func(yield func(M, error) bool) {
		for p, err := range pairs {
			if err != nil {
				yield(*new(M), err)
				return
			}
			if !yield(p.Meta, nil) {
				return
			}
		}
	}
}

// AtSlot rebinds an already-resolved pipeline onto a different slot by
// re-resolving each pair's data through r — the "+ slot_offset" transform
// applied after dataset lookup.
func AtSlot[M any](pairs iter.Seq2[Pair[M], error], slot int, r Resolver[M]) iter.Seq2[Pair[M], error] {
	return func(yield func(Pair[M], error) bool) {
		for p, err := range pairs {
			if err != nil {
				yield(Pair[M]{}, err)
				return
			}

			data, err := r.Data(p.UID, slot)
			if err != nil {
				yield(Pair[M]{}, err)
				return
			}

			if !yield(Pair[M]{UID: p.UID, Meta: p.Meta, Data: data}, nil) {
				return
			}
		}
	}
}

// Collect drains a (Pair, error) pipeline into a slice, returning the
// first error encountered (if any) with whatever was collected before it.
func Collect[M any](pairs iter.Seq2[Pair[M], error]) ([]Pair[M], error) {
	var out []Pair[M]
	for p, err := range pairs {
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}
