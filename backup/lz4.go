package backup

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4Codec compresses the archive stream with lz4, trading compression
// ratio for speed relative to ZstdCodec.
type LZ4Codec struct {
	// Level, if non-zero, is applied via lz4.Writer.Apply.
	Level lz4.CompressionLevel
}

func (c LZ4Codec) Name() string { return "lz4" }

func (c LZ4Codec) Compress(w io.Writer) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	if c.Level != 0 {
		if err := zw.Apply(lz4.CompressionLevelOption(c.Level)); err != nil {
			return nil, err
		}
	}
	return zw, nil
}

func (c LZ4Codec) Decompress(r io.Reader) (io.ReadCloser, error) {
	return lz4ReadCloser{lz4.NewReader(r)}, nil
}

// lz4ReadCloser adapts *lz4.Reader, which has no Close method of its own,
// to io.ReadCloser.
type lz4ReadCloser struct {
	*lz4.Reader
}

func (lz4ReadCloser) Close() error { return nil }
