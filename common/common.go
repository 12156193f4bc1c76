// Common types, constants and stream utilities for the quantized network
// format.

package common

import (
	"encoding/binary"
	"io"
	"unsafe"
)

// Version of the network parameter file format.
const Version uint32 = 0x7AF32F20

// Weight scaling used by the activation layers.
const WeightScaleBits = 6

// CacheLineSize is the alignment granted to each layer's slice of the
// propagation buffer.
const CacheLineSize = 64

// SIMD width constants, in bytes. Padded input dimensions are always a
// multiple of MaxSimdWidth so full-width vector loads stay in bounds.
const (
	SimdWidth    = 32
	MaxSimdWidth = 32
)

// CeilToMultiple rounds n up to be a multiple of base.
func CeilToMultiple[T ~int | ~uint | ~int32 | ~uint32](n, base T) T {
	return (n + base - 1) / base * base
}

// ReadLittleEndian reads an integer from a stream in little-endian order.
func ReadLittleEndian[T int8 | uint8 | int16 | uint16 | int32 | uint32](r io.Reader) (T, error) {
	var result T
	err := binary.Read(r, binary.LittleEndian, &result)
	return result, err
}

// ReadLittleEndianSlice reads integers in bulk from a little-endian stream.
func ReadLittleEndianSlice[T int8 | uint8 | int16 | uint16 | int32 | uint32](r io.Reader, out []T) error {
	return binary.Read(r, binary.LittleEndian, out)
}

// WriteLittleEndian writes an integer to a stream in little-endian order.
func WriteLittleEndian[T int8 | uint8 | int16 | uint16 | int32 | uint32](w io.Writer, value T) error {
	return binary.Write(w, binary.LittleEndian, value)
}

// WriteLittleEndianSlice writes integers in bulk to a little-endian stream.
func WriteLittleEndianSlice[T int8 | uint8 | int16 | uint16 | int32 | uint32](w io.Writer, values []T) error {
	return binary.Write(w, binary.LittleEndian, values)
}

// NewAlignedBuffer allocates a zeroed byte slice of length size whose first
// element sits on a cache-line boundary. Layer propagation partitions this
// buffer into per-layer regions, so aligning the base address aligns every
// region as well.
func NewAlignedBuffer(size int) []byte {
	if size == 0 {
		return nil
	}
	raw := make([]byte, size+CacheLineSize-1)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&raw[0])) % CacheLineSize); rem != 0 {
		off = CacheLineSize - rem
	}
	return raw[off : off+size : off+size]
}
