// Package s1o implements an embedded, on-disk, spatially-indexed dataset
// library: a fixed-schema metadata table paired with a variable-length,
// optionally multi-slot data file, addressed either through a zero-copy
// memory mapping or through positioned descriptor I/O, and searched
// through a pluggable spatial index (in-memory R-tree, disk-backed
// R-tree, or a primary index composed with ordered secondary key
// columns).
//
// # Quick start
//
// Build a dataset from a slice of records that implement MetaAdapter[M]:
//
//	idx := s1o.RTree(2).MustBuild()
//	ds, err := s1o.Create("./points", adapter, records, idx, 0, 1)
//	if err != nil {
//	    panic(err)
//	}
//	defer ds.Close()
//
// Reopen it later — the same adapter and a fresh spatial index instance,
// rebuilt automatically from the dataset's own rows:
//
//	idx := s1o.RTree(2).MustBuild()
//	ds, err := s1o.Open("./points", adapter, idx, 0, 0, 1)
//
// # Access modes
//
// Mapped mode (the default) memory-maps both files and exposes direct
// GetElement/GetMetadata/GetData accessors plus spatial QueryElements and
// FindElement. RWP (descriptor) mode trades the mapping and the spatial
// index for ReadElement/WriteElement/PushElement against bare uids — the
// append-only ingestion path when elements arrive one at a time across
// sessions.
//
// # Errors
//
// Failures the library detects itself are one of six structured types —
// IOError, FormatError, AccessError, StateError, QueryError, BackupError —
// each wrapping a category sentinel (ErrIO, ErrFormat, ErrAccess,
// ErrState, ErrQuery, ErrBackup) reachable through errors.Is, and
// carrying a Kind constant reachable through a type switch on errors.As.
// Failed open, read, write, seek, fsync and unlink calls are returned as
// errors that name the operation and path but are not of these types and
// wrap none of the sentinels.
package s1o
