// ClippedReLU activation layer.

package layers

import (
	"fmt"
	"io"

	"github.com/hailam/qnnue/common"
)

// ClippedReLUHashValue returns the hash value for a ClippedReLU layer.
func ClippedReLUHashValue(prevHash uint32) uint32 {
	return 0x538D24C7 + prevHash
}

// ClippedReLU applies clamp(x >> WeightScaleBits, 0, 127) to each of its
// predecessor's int32 outputs, producing uint8 activations.
type ClippedReLU struct {
	previous Int32Layer

	dims           int
	selfBufferSize int
}

// NewClippedReLU creates a ClippedReLU layer on top of previous. Input and
// output dimension counts are equal.
func NewClippedReLU(previous Int32Layer) *ClippedReLU {
	dims := previous.OutputDimensions()
	return &ClippedReLU{
		previous:       previous,
		dims:           dims,
		selfBufferSize: common.CeilToMultiple(dims, common.CacheLineSize),
	}
}

// Previous returns the layer immediately before this one.
func (c *ClippedReLU) Previous() Int32Layer { return c.previous }

func (c *ClippedReLU) OutputDimensions() int { return c.dims }

func (c *ClippedReLU) BufferSize() int {
	return c.previous.BufferSize() + c.selfBufferSize
}

func (c *ClippedReLU) HashValue() uint32 {
	return ClippedReLUHashValue(c.previous.HashValue())
}

func (c *ClippedReLU) StructureString() string {
	return fmt.Sprintf("ClippedReLU[%d](%s)", c.dims, c.previous.StructureString())
}

// ReadParameters delegates to the predecessor; the activation itself has no
// parameters.
func (c *ClippedReLU) ReadParameters(r io.Reader) error {
	return c.previous.ReadParameters(r)
}

// Propagate applies the activation to the predecessor's output and returns
// this layer's region of the buffer.
func (c *ClippedReLU) Propagate(transformedFeatures []uint8, buffer []byte) []uint8 {
	input := c.previous.Propagate(transformedFeatures, buffer[c.selfBufferSize:])
	output := buffer[:c.dims]
	SIMDClippedReLU(input, output, common.WeightScaleBits)
	return output
}
