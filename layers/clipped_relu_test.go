package layers

import (
	"testing"

	"github.com/hailam/qnnue/common"
)

func TestClippedReLUChain(t *testing.T) {
	// InputSlice[4] -> Affine[4] -> ClippedReLU
	fc := NewAffineTransform(NewInputSlice(4), 4)
	// Diagonal weights route input i straight to output i; biases place the
	// accumulator below zero, in range, and above the clamp.
	for i := 0; i < 4; i++ {
		fc.Weights[i*fc.PaddedInputDimensions()+i] = 1
	}
	fc.Biases = []int32{-100, 0, 42 << common.WeightScaleBits, 1 << 20}

	relu := NewClippedReLU(fc)
	out := relu.Propagate([]uint8{0, 0, 0, 0}, common.NewAlignedBuffer(relu.BufferSize()))

	want := []uint8{0, 0, 42, 127}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("output[%d] = %d, expected %d", i, out[i], want[i])
		}
	}

	if got, want := relu.StructureString(), "ClippedReLU[4](AffineTransform[4<-4](InputSlice[4(0:4)]))"; got != want {
		t.Errorf("StructureString = %q, expected %q", got, want)
	}
	if relu.HashValue() != 0x538D24C7+fc.HashValue() {
		t.Errorf("HashValue = %08x", relu.HashValue())
	}
	if relu.BufferSize() != fc.BufferSize()+common.CacheLineSize {
		t.Errorf("BufferSize = %d", relu.BufferSize())
	}
}

func TestSqrClippedReLUChain(t *testing.T) {
	fc := NewAffineTransform(NewInputSlice(4), 4)
	relu := NewSqrClippedReLU(fc)

	// 181² >> 19 = 0; 16384² >> 19 = 512 -> clamps to 127
	fc.Biases = []int32{0, -181, 16384, 2896}
	out := relu.Propagate([]uint8{0, 0, 0, 0}, common.NewAlignedBuffer(relu.BufferSize()))

	shift := uint(2*common.WeightScaleBits + 7)
	for i, b := range fc.Biases {
		expected := int64(b) * int64(b) >> shift
		if expected > 127 {
			expected = 127
		}
		if out[i] != uint8(expected) {
			t.Errorf("output[%d] = %d, expected %d", i, out[i], expected)
		}
	}

	if relu.HashValue() != SqrClippedReLUHashValue(fc.HashValue()) {
		t.Errorf("HashValue = %08x", relu.HashValue())
	}
}
