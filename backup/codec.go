// Package backup implements the L9 snapshot/restore layer: it bundles a
// dataset's file-pair and sidecar files into a single compressed archive
// stream and ships that stream to a pluggable Target (local filesystem, S3,
// or MinIO). It has no knowledge of the record layout or any generic
// metadata type — it operates purely on the file paths a caller hands it,
// which keeps it usable from the root package's Dataset facade without an
// import cycle.
package backup

import "io"

// Codec compresses and decompresses the archive stream. Compress wraps w so
// every subsequent Write is compressed before reaching w; the returned
// WriteCloser must be closed to flush any buffered output. Decompress wraps
// r so every subsequent Read yields decompressed bytes.
type Codec interface {
	// Name returns a short identifier for the codec ("zstd", "lz4").
	Name() string

	Compress(w io.Writer) (io.WriteCloser, error)
	Decompress(r io.Reader) (io.ReadCloser, error)
}
