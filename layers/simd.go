//go:build !goexperiment.simd || !amd64

// Scalar kernel variants.
// Used when building without GOEXPERIMENT=simd or on non-AMD64 platforms.
// AMD64 with GOEXPERIMENT=simd uses simd_amd64.go.

package layers

// SIMDDotProductInt8Uint8 computes the dot product of int8 weights and uint8
// inputs over the first count elements, accumulating in exact int32
// arithmetic. Must stay bit-identical to every vectorized variant.
func SIMDDotProductInt8Uint8(weights []int8, inputs []uint8, count int) int32 {
	var sum int32
	// Unroll by 4 for better performance
	i := 0
	for ; i+4 <= count; i += 4 {
		sum += int32(weights[i]) * int32(inputs[i])
		sum += int32(weights[i+1]) * int32(inputs[i+1])
		sum += int32(weights[i+2]) * int32(inputs[i+2])
		sum += int32(weights[i+3]) * int32(inputs[i+3])
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

	// Unroll by 4 for better performance
	i := 0
	for ; i+4 <= n; i += 4 {
		v0 := input[i] >> shift
		v1 := input[i+1] >> shift
		v2 := input[i+2] >> shift
		v3 := input[i+3] >> shift

		if v0 < 0 {
			v0 = 0
		} else if v0 > 127 {
			v0 = 127
		}
		if v1 < 0 {
			v1 = 0
		} else if v1 > 127 {
			v1 = 127
		}
		if v2 < 0 {
			v2 = 0
		} else if v2 > 127 {
			v2 = 127
		}
		if v3 < 0 {
			v3 = 0
		} else if v3 > 127 {
			v3 = 127
		}

		output[i] = uint8(v0)
		output[i+1] = uint8(v1)
		output[i+2] = uint8(v2)
		output[i+3] = uint8(v3)
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
