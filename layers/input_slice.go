// InputSlice layer: the leaf of every chain.

package layers

import (
	"fmt"
	"io"
)

// InputSlice exposes a window of the transformed feature vector as a layer.
// It terminates the propagation recursion: it has no predecessor, reads no
// parameters and needs no buffer space.
type InputSlice struct {
	outputDims int
	offset     int
}

// NewInputSlice creates an input slice over [0, outputDims).
func NewInputSlice(outputDims int) *InputSlice {
	return NewInputSliceOffset(outputDims, 0)
}

// NewInputSliceOffset creates an input slice over [offset, offset+outputDims).
func NewInputSliceOffset(outputDims, offset int) *InputSlice {
	return &InputSlice{outputDims: outputDims, offset: offset}
}

func (s *InputSlice) OutputDimensions() int { return s.outputDims }

func (s *InputSlice) BufferSize() int { return 0 }

// HashValue returns the hash embedded in the parameter file for this layer.
func (s *InputSlice) HashValue() uint32 {
	hashValue := uint32(0xEC42E90D)
	hashValue ^= uint32(s.outputDims) ^ (uint32(s.offset) << 10)
	return hashValue
}

func (s *InputSlice) StructureString() string {
	return fmt.Sprintf("InputSlice[%d(%d:%d)]",
		s.outputDims, s.offset, s.offset+s.outputDims)
}

// ReadParameters is a no-op; the input slice has no parameters.
func (s *InputSlice) ReadParameters(r io.Reader) error {
	return nil
}

// Propagate returns the layer's window of the transformed feature vector.
// The buffer is untouched.
func (s *InputSlice) Propagate(transformedFeatures []uint8, buffer []byte) []uint8 {
	return transformedFeatures[s.offset : s.offset+s.outputDims]
}
