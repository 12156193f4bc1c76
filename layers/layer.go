// Layer interfaces and propagation-buffer views.
//
// A network is a linear chain of layers. Each layer owns its predecessor and
// partitions the caller-supplied propagation buffer: the prefix holds this
// layer's output, the rest is handed to the predecessor. The leaf of every
// chain is an InputSlice, which reads straight from the transformed feature
// vector and needs no buffer at all.

package layers

import (
	"io"
	"unsafe"
)

// Layer is the contract shared by every layer kind in a chain.
//
// HashValue fingerprints the chain's shape (dimensions and layer kinds, not
// parameter values); two chains with equal hashes have identical topology.
// StructureString is a human-readable rendering of the same information.
//
// ReadParameters consumes this layer's slice of a sequential parameter
// stream, predecessor first. It must complete before the first Propagate
// call and is not safe for concurrent use. After it returns, parameters are
// immutable and Propagate may be called from multiple goroutines as long as
// each call gets its own buffer.
type Layer interface {
	OutputDimensions() int
	BufferSize() int
	HashValue() uint32
	StructureString() string
	ReadParameters(r io.Reader) error
}

// Uint8Layer is a layer producing unsigned 8-bit activations. Propagate
// writes into its region of buffer and returns a view of exactly
// OutputDimensions values; for leaf layers the view may alias
// transformedFeatures instead.
type Uint8Layer interface {
	Layer
	Propagate(transformedFeatures []uint8, buffer []byte) []uint8
}

// Int32Layer is a layer producing signed 32-bit accumulator outputs.
type Int32Layer interface {
	Layer
	Propagate(transformedFeatures []uint8, buffer []byte) []int32
}

// int32View reinterprets the first 4*n bytes of b as an []int32. The buffer
// must be at least 4*n bytes and 4-byte aligned; both are preconditions of
// Propagate, so violations panic rather than return errors.
func int32View(b []byte, n int) []int32 {
	_ = b[4*n-1]
	p := unsafe.Pointer(&b[0])
	if uintptr(p)%unsafe.Alignof(int32(0)) != 0 {
		panic("layers: propagation buffer is not 4-byte aligned")
	}
	return unsafe.Slice((*int32)(p), n)
}
