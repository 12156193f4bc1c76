// SqrClippedReLU (squared clipped ReLU) activation layer.

package layers

import (
	"fmt"
	"io"

	"github.com/hailam/qnnue/common"
)

// SqrClippedReLUHashValue returns the hash value for a SqrClippedReLU layer.
// Same constant as ClippedReLU.
func SqrClippedReLUHashValue(prevHash uint32) uint32 {
	return 0x538D24C7 + prevHash
}

// SqrClippedReLU applies min(127, x*x >> (2*WeightScaleBits + 7)) to each of
// its predecessor's int32 outputs. The square emphasizes large activations
// compared to the plain clipped variant.
type SqrClippedReLU struct {
	previous Int32Layer

	dims           int
	selfBufferSize int
}

// NewSqrClippedReLU creates a SqrClippedReLU layer on top of previous.
func NewSqrClippedReLU(previous Int32Layer) *SqrClippedReLU {
	dims := previous.OutputDimensions()
	return &SqrClippedReLU{
		previous:       previous,
		dims:           dims,
		selfBufferSize: common.CeilToMultiple(dims, common.CacheLineSize),
	}
}

// Previous returns the layer immediately before this one.
func (s *SqrClippedReLU) Previous() Int32Layer { return s.previous }

func (s *SqrClippedReLU) OutputDimensions() int { return s.dims }

func (s *SqrClippedReLU) BufferSize() int {
	return s.previous.BufferSize() + s.selfBufferSize
}

func (s *SqrClippedReLU) HashValue() uint32 {
	return SqrClippedReLUHashValue(s.previous.HashValue())
}

func (s *SqrClippedReLU) StructureString() string {
	return fmt.Sprintf("SqrClippedReLU[%d](%s)", s.dims, s.previous.StructureString())
}

// ReadParameters delegates to the predecessor; the activation itself has no
// parameters.
func (s *SqrClippedReLU) ReadParameters(r io.Reader) error {
	return s.previous.ReadParameters(r)
}

// Propagate applies the activation to the predecessor's output and returns
// this layer's region of the buffer.
func (s *SqrClippedReLU) Propagate(transformedFeatures []uint8, buffer []byte) []uint8 {
	input := s.previous.Propagate(transformedFeatures, buffer[s.selfBufferSize:])
	output := buffer[:s.dims]

	const shift = 2*common.WeightScaleBits + 7
	for i, v := range input {
		result := int64(v) * int64(v) >> shift
		if result > 127 {
			result = 127
		}
		output[i] = uint8(result)
	}
	return output
}
