package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_EncodeDecode_RoundTrip(t *testing.T) {
	meta := []byte("some fixed-size metadata")
	size := RowSize(len(meta))

	buf := make([]byte, size)
	EncodeRow(buf, meta, 4096, Clean)

	gotMeta, gotOffset, gotClean := DecodeRow(buf, len(meta))
	assert.Equal(t, meta, gotMeta)
	assert.EqualValues(t, 4096, gotOffset)
	assert.Equal(t, Clean, gotClean)
	assert.True(t, gotClean.IsClean())
	assert.False(t, gotClean.IsCorrupt())
}

func TestRow_CorruptCleanBit(t *testing.T) {
	c := CleanBit(0xDEADBEEF)
	assert.True(t, c.IsCorrupt())
	assert.False(t, c.IsClean())
	assert.False(t, c.IsDirty())
}

func TestRow_SizeIsAligned(t *testing.T) {
	for _, metaSize := range []int{0, 1, 48, 63, 64, 65, 127} {
		size := RowSize(metaSize)
		assert.EqualValues(t, 0, size%64, "row size for meta %d must be 64-aligned", metaSize)
		assert.GreaterOrEqual(t, size, int64(metaSize+12))
	}
}

func TestValidateMetaFileSize(t *testing.T) {
	headerSize := int64(64)
	rowSize := int64(64)

	n, err := ValidateMetaFileSize(headerSize+5*rowSize, headerSize, rowSize, "/tmp/ds")
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	_, err = ValidateMetaFileSize(headerSize+5*rowSize+3, headerSize, rowSize, "/tmp/ds")
	require.Error(t, err)
}
