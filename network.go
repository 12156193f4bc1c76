// Network loading, saving and evaluation.

package qnnue

import (
	"fmt"
	"io"
	"os"

	"github.com/hailam/qnnue/common"
	"github.com/hailam/qnnue/layers"
)

// Standard stack dimensions: transformed features feed a 32-wide hidden
// layer twice, then a single output unit.
const (
	L1 = 32
	L2 = 32
)

// Network wraps a complete layer chain together with the parameter-file
// framing around it.
type Network struct {
	// Output is the head of the chain; evaluation returns its first unit.
	Output layers.Int32Layer

	// File info
	CurrentFile    string
	NetDescription string

	// Expected hash, fixed by the chain's shape at construction.
	Hash uint32

	// Pre-allocated propagation buffer for Evaluate. EvaluateInto takes a
	// caller-owned buffer instead for concurrent use.
	buffer []byte
}

// NewNetwork wraps an already-constructed chain.
func NewNetwork(output layers.Int32Layer) *Network {
	return &Network{
		Output: output,
		Hash:   output.HashValue(),
		buffer: common.NewAlignedBuffer(output.BufferSize()),
	}
}

// NewStandardNetwork builds the classic stack over transformedDims features:
//
//	InputSlice -> AffineTransform[L1] -> ClippedReLU
//	           -> AffineTransform[L2] -> ClippedReLU
//	           -> AffineTransform[1]
func NewStandardNetwork(transformedDims int) *Network {
	in := layers.NewInputSlice(transformedDims)
	fc0 := layers.NewAffineTransform(in, L1)
	ac0 := layers.NewClippedReLU(fc0)
	fc1 := layers.NewAffineTransform(ac0, L2)
	ac1 := layers.NewClippedReLU(fc1)
	out := layers.NewAffineTransform(ac1, 1)
	return NewNetwork(out)
}

// Load loads network parameters from a file.
func (n *Network) Load(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if err := n.LoadFromReader(f); err != nil {
		return err
	}
	n.CurrentFile = filename
	return nil
}

// LoadFromReader loads network parameters from a reader: header, chain hash,
// then the chain's sequential parameter stream.
func (n *Network) LoadFromReader(r io.Reader) error {
	hashValue, description, err := readHeader(r)
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if hashValue != n.Hash {
		return fmt.Errorf("hash mismatch: expected %08x, got %08x", n.Hash, hashValue)
	}
	n.NetDescription = description

	chainHash, err := common.ReadLittleEndian[uint32](r)
	if err != nil {
		return fmt.Errorf("failed to read chain hash: %w", err)
	}
	if expected := n.Output.HashValue(); chainHash != expected {
		return fmt.Errorf("chain hash mismatch: expected %08x, got %08x", expected, chainHash)
	}

	if err := n.Output.ReadParameters(r); err != nil {
		return fmt.Errorf("failed to read parameters: %w", err)
	}
	return nil
}

// Save writes the network to a file in the same framing Load expects.
func (n *Network) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return n.WriteTo(f)
}

// WriteTo writes the header, chain hash and chain parameters to w.
// Only chains assembled from the layer kinds in this module can be written.
func (n *Network) WriteTo(w io.Writer) error {
	if err := writeHeader(w, n.Hash, n.NetDescription); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := common.WriteLittleEndian(w, n.Output.HashValue()); err != nil {
		return fmt.Errorf("failed to write chain hash: %w", err)
	}
	if err := writeParameters(w, n.Output); err != nil {
		return fmt.Errorf("failed to write parameters: %w", err)
	}
	return nil
}

// Evaluate runs the forward pass over the network's internal buffer and
// returns the first output unit. Not safe for concurrent use on one
// instance; use EvaluateInto with per-goroutine buffers instead.
func (n *Network) Evaluate(transformedFeatures []uint8) int32 {
	return n.EvaluateInto(transformedFeatures, n.buffer)
}

// EvaluateInto runs the forward pass over a caller-owned buffer of at least
// BufferSize bytes, allocated cache-line aligned (common.NewAlignedBuffer).
func (n *Network) EvaluateInto(transformedFeatures []uint8, buffer []byte) int32 {
	return n.Output.Propagate(transformedFeatures, buffer)[0]
}

// BufferSize returns the propagation buffer requirement of the full chain.
func (n *Network) BufferSize() int {
	return n.Output.BufferSize()
}

// StructureString returns the human-readable chain descriptor.
func (n *Network) StructureString() string {
	return n.Output.StructureString()
}

// readHeader reads and validates the network file header.
func readHeader(r io.Reader) (uint32, string, error) {
	version, err := common.ReadLittleEndian[uint32](r)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read version: %w", err)
	}
	if version != common.Version {
		return 0, "", fmt.Errorf("version mismatch: expected %08x, got %08x", common.Version, version)
	}

	hashValue, err := common.ReadLittleEndian[uint32](r)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read hash: %w", err)
	}

	descSize, err := common.ReadLittleEndian[uint32](r)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read description size: %w", err)
	}

	descBytes := make([]byte, descSize)
	if _, err := io.ReadFull(r, descBytes); err != nil {
		return 0, "", fmt.Errorf("failed to read description: %w", err)
	}

	return hashValue, string(descBytes), nil
}

// writeHeader writes the network file header.
func writeHeader(w io.Writer, hashValue uint32, description string) error {
	if err := common.WriteLittleEndian(w, common.Version); err != nil {
		return err
	}
	if err := common.WriteLittleEndian(w, hashValue); err != nil {
		return err
	}
	if err := common.WriteLittleEndian(w, uint32(len(description))); err != nil {
		return err
	}
	_, err := w.Write([]byte(description))
	return err
}

// writeParameters emits the chain's parameters in ReadParameters order,
// predecessor first.
func writeParameters(w io.Writer, layer layers.Layer) error {
	switch l := layer.(type) {
	case *layers.InputSlice:
		return nil
	case *layers.ClippedReLU:
		return writeParameters(w, l.Previous())
	case *layers.SqrClippedReLU:
		return writeParameters(w, l.Previous())
	case *layers.AffineTransform:
		if err := writeParameters(w, l.Previous()); err != nil {
			return err
		}
		if err := common.WriteLittleEndianSlice(w, l.Biases); err != nil {
			return err
		}
		return common.WriteLittleEndianSlice(w, l.Weights)
	default:
		return fmt.Errorf("cannot serialize layer %T", layer)
	}
}
