// AffineTransform (fully connected) layer.

package layers

import (
	"fmt"
	"io"

	"github.com/hailam/qnnue/common"
)

// AffineTransformHashValue returns the hash value for an AffineTransform
// layer with the given predecessor hash and output width.
func AffineTransformHashValue(prevHash uint32, outputDims int) uint32 {
	hashValue := uint32(0xCC03DAE4)
	hashValue += uint32(outputDims)
	hashValue ^= prevHash >> 1
	hashValue ^= prevHash << 31
	return hashValue
}

// AffineTransform computes output = weights*input + biases over quantized
// values: uint8 inputs, int8 weights, int32 biases and outputs. Accumulation
// is exact int32 arithmetic, so every kernel variant produces bit-identical
// results for the same parameters and input.
type AffineTransform struct {
	previous Uint8Layer

	inputDims       int
	outputDims      int
	paddedInputDims int
	selfBufferSize  int

	// Biases are stored as int32 (BiasType = OutputType = int32).
	Biases []int32

	// Weights are stored as int8, row-major, one padded row per output.
	Weights []int8
}

// NewAffineTransform creates an affine layer on top of previous. The input
// dimension count is taken from the predecessor; each weight row is padded
// to a multiple of the SIMD width.
func NewAffineTransform(previous Uint8Layer, outputDims int) *AffineTransform {
	inputDims := previous.OutputDimensions()
	paddedInput := common.CeilToMultiple(inputDims, common.MaxSimdWidth)

	return &AffineTransform{
		previous:        previous,
		inputDims:       inputDims,
		outputDims:      outputDims,
		paddedInputDims: paddedInput,
		selfBufferSize:  common.CeilToMultiple(outputDims*4, common.CacheLineSize),
		Biases:          make([]int32, outputDims),
		Weights:         make([]int8, outputDims*paddedInput),
	}
}

// Previous returns the layer immediately before this one.
func (a *AffineTransform) Previous() Uint8Layer { return a.previous }

// InputDimensions returns the number of inputs consumed, equal to the
// predecessor's output dimension count.
func (a *AffineTransform) InputDimensions() int { return a.inputDims }

func (a *AffineTransform) OutputDimensions() int { return a.outputDims }

// PaddedInputDimensions returns the input dimension count rounded up to the
// SIMD width. Weight rows have this many columns on disk and in memory.
func (a *AffineTransform) PaddedInputDimensions() int { return a.paddedInputDims }

// BufferSize returns the propagation buffer requirement of the chain up to
// and including this layer.
func (a *AffineTransform) BufferSize() int {
	return a.previous.BufferSize() + a.selfBufferSize
}

// HashValue returns the hash for the chain up to and including this layer.
func (a *AffineTransform) HashValue() uint32 {
	return AffineTransformHashValue(a.previous.HashValue(), a.outputDims)
}

func (a *AffineTransform) StructureString() string {
	return fmt.Sprintf("AffineTransform[%d<-%d](%s)",
		a.outputDims, a.inputDims, a.previous.StructureString())
}

// ReadParameters reads the chain's parameters from a sequential stream:
// predecessor first, then this layer's biases and weights in on-disk order.
// The stream carries no framing at this level; a short stream is the only
// detected failure.
func (a *AffineTransform) ReadParameters(r io.Reader) error {
	if err := a.previous.ReadParameters(r); err != nil {
		return err
	}

	if err := common.ReadLittleEndianSlice(r, a.Biases); err != nil {
		return fmt.Errorf("failed to read biases: %w", err)
	}
	if err := common.ReadLittleEndianSlice(r, a.Weights); err != nil {
		return fmt.Errorf("failed to read weights: %w", err)
	}
	return nil
}

// Propagate performs the forward pass. The predecessor writes its output
// into buffer beyond this layer's own region; this layer then accumulates
// one dot product per output row into the region's int32 view and returns
// that view. No allocation occurs and parameters are never mutated, so
// concurrent calls with distinct buffers are safe.
func (a *AffineTransform) Propagate(transformedFeatures []uint8, buffer []byte) []int32 {
	input := a.previous.Propagate(transformedFeatures, buffer[a.selfBufferSize:])
	output := int32View(buffer, a.outputDims)

	for i := 0; i < a.outputDims; i++ {
		offset := i * a.paddedInputDims
		output[i] = a.Biases[i] + SIMDDotProductInt8Uint8(a.Weights[offset:offset+a.paddedInputDims], input, a.inputDims)
	}
	return output
}
