package backup

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// ZstdCodec compresses the archive stream with zstd. Level follows the
// zstd package's own EncoderLevel scale (1 = fastest, 4 = best
// compression); zero selects zstd's default level.
type ZstdCodec struct {
	Level zstd.EncoderLevel
}

func (c ZstdCodec) Name() string { return "zstd" }

func (c ZstdCodec) Compress(w io.Writer) (io.WriteCloser, error) {
	level := c.Level
	if level == 0 {
		level = zstd.SpeedDefault
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(level))
}

func (c ZstdCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return zstdReadCloser{dec}, nil
}

// zstdReadCloser adapts *zstd.Decoder, whose Close takes no error, to
// io.ReadCloser.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}
