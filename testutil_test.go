package s1o

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/caian-org/s1o/spatial"
)

// pointMeta is the fixed-schema record used across the facade's test
// suite: a 2-D point with a fixed-size payload.
type pointMeta struct {
	UID      uint64
	X, Y     float64
	DataSize int64
}

const pointMetaSize = 8 + 8 + 8 + 8

type pointAdapter struct{}

func (pointAdapter) Location(m pointMeta) spatial.Point { return spatial.Point{m.X, m.Y} }
func (pointAdapter) UID(m pointMeta) uint64              { return m.UID }
func (pointAdapter) SetUID(m *pointMeta, uid uint64)     { m.UID = uid }
func (pointAdapter) DataSize(m pointMeta) int64          { return m.DataSize }
func (pointAdapter) Check() []byte                       { return []byte("pointMeta/v1") }
func (pointAdapter) Dims() int                           { return 2 }
func (pointAdapter) MetaExt() string                     { return "pmeta" }
func (pointAdapter) DataExt() string                     { return "pdata" }
func (pointAdapter) MetaSize() int                       { return pointMetaSize }

func (pointAdapter) Encode(m pointMeta) []byte {
	buf := make([]byte, pointMetaSize)
	binary.LittleEndian.PutUint64(buf[0:8], m.UID)
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(m.X))
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(m.Y))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(m.DataSize))
	return buf
}

func (pointAdapter) Decode(buf []byte) (pointMeta, error) {
	if len(buf) < pointMetaSize {
		return pointMeta{}, fmt.Errorf("short buffer: %d", len(buf))
	}
	return pointMeta{
		UID:      binary.LittleEndian.Uint64(buf[0:8]),
		X:        math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16])),
		Y:        math.Float64frombits(binary.LittleEndian.Uint64(buf[16:24])),
		DataSize: int64(binary.LittleEndian.Uint64(buf[24:32])),
	}, nil
}

// gridPoints builds n evenly spaced points over [0,w) x [0,h), each
// carrying a payload of payloadSize bytes seeded from its index.
func gridPoints(n int, payloadSize int64) ([]pointMeta, [][]byte) {
	metas := make([]pointMeta, n)
	blobs := make([][]byte, n)
	for i := range n {
		metas[i] = pointMeta{X: float64(i % 200), Y: float64(i / 200), DataSize: payloadSize}
		blob := make([]byte, payloadSize)
		for j := range blob {
			blob[j] = byte(i + j)
		}
		blobs[i] = blob
	}
	return metas, blobs
}
