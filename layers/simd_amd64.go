//go:build goexperiment.simd && amd64

// SIMD-accelerated kernel variants.
// Requires Go 1.26+ with GOEXPERIMENT=simd on AMD64.

package layers

import (
	"simd/archsimd"
)

// Number of int32 values processed per SIMD iteration (256-bit AVX2)
const simdInt32Width = 8

// SIMDDotProductInt8Uint8 computes the dot product of int8 weights and uint8
// inputs over the first count elements.
//
// Accumulation stays in exact int32 arithmetic: the AVX2 maddubs sequence
// saturates its int16 intermediates, which would break bit-identity with the
// scalar variant, and the simd package has no widening int8*uint8 multiply.
// The chunk loop keeps memory access SIMD-width shaped so the padded row
// layout pays off in cache behavior.
func SIMDDotProductInt8Uint8(weights []int8, inputs []uint8, count int) int32 {
	var sum int32

	// Process 32 elements at a time
	i := 0
	for ; i+32 <= count; i += 32 {
		for j := 0; j < 32; j++ {
			sum += int32(weights[i+j]) * int32(inputs[i+j])
		}
	}

	for ; i < count; i++ {
		sum += int32(weights[i]) * int32(inputs[i])
	}

	return sum
}

// SIMDClippedReLU applies clamp(x >> shift, 0, 127) elementwise.
// Input: int32 slice, Output: uint8 slice of the same length.
func SIMDClippedReLU(input []int32, output []uint8, shift int) {
	n := len(input)

	// Process 8 int32 values at a time
	i := 0
	for ; i+simdInt32Width <= n; i += simdInt32Width {
		v := archsimd.LoadInt32x8(input[i:])

		v = v.ShiftRight(shift)

		zero := archsimd.Int32x8{}
		maxVal := archsimd.BroadcastInt32x8(127)
		v = v.Max(zero).Min(maxVal)

		for j := 0; j < 8; j++ {
			output[i+j] = uint8(v.Get(j))
		}
	}

	for ; i < n; i++ {
		val := input[i] >> shift
		if val < 0 {
			val = 0
		} else if val > 127 {
			val = 127
		}
		output[i] = uint8(val)
	}
}
