package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotSize(t *testing.T) {
	size, err := SlotSize(300, 3, "/tmp/ds")
	require.NoError(t, err)
	assert.EqualValues(t, 100, size)

	_, err = SlotSize(301, 3, "/tmp/ds")
	require.Error(t, err)
}

func TestSlotOffset(t *testing.T) {
	off, err := SlotOffset(2, 100, 3, "/tmp/ds")
	require.NoError(t, err)
	assert.EqualValues(t, 200, off)

	_, err = SlotOffset(3, 100, 3, "/tmp/ds")
	require.Error(t, err)
}

func TestCheckGapless_ValidPartition(t *testing.T) {
	extents := []RowExtent{
		{UID: 2, DataOffset: 64, DataSize: 64},
		{UID: 1, DataOffset: 0, DataSize: 33}, // aligns to 64
		{UID: 3, DataOffset: 128, DataSize: 40},
	}
	require.NoError(t, CheckGapless(extents, 192, "/tmp/ds"))
}

func TestCheckGapless_DetectsGap(t *testing.T) {
	extents := []RowExtent{
		{UID: 1, DataOffset: 0, DataSize: 64},
		{UID: 2, DataOffset: 128, DataSize: 64}, // gap at 64
	}
	require.Error(t, CheckGapless(extents, 192, "/tmp/ds"))
}

func TestCheckGapless_DetectsShortFinalExtent(t *testing.T) {
	extents := []RowExtent{
		{UID: 1, DataOffset: 0, DataSize: 64},
	}
	require.Error(t, CheckGapless(extents, 128, "/tmp/ds"))
}

func TestCheckDataFileSize(t *testing.T) {
	require.NoError(t, CheckDataFileSize(100, 3, 300, "/tmp/ds"))
	require.Error(t, CheckDataFileSize(100, 3, 301, "/tmp/ds"))
}
