package qnnue

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/qnnue/common"
	"github.com/hailam/qnnue/layers"
)

const testDims = 64

func randomizeNetwork(t *testing.T, net *Network, seed int64) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))

	var fill func(l layers.Layer)
	fill = func(l layers.Layer) {
		switch layer := l.(type) {
		case *layers.AffineTransform:
			fill(layer.Previous())
			for i := range layer.Biases {
				layer.Biases[i] = int32(rng.Intn(1<<12) - 1<<11)
			}
			for i := 0; i < layer.OutputDimensions(); i++ {
				row := layer.Weights[i*layer.PaddedInputDimensions():]
				for j := 0; j < layer.InputDimensions(); j++ {
					row[j] = int8(rng.Intn(256) - 128)
				}
			}
		case *layers.ClippedReLU:
			fill(layer.Previous())
		case *layers.SqrClippedReLU:
			fill(layer.Previous())
		case *layers.InputSlice:
		default:
			t.Fatalf("unexpected layer type %T", l)
		}
	}
	fill(net.Output)
}

func randomFeatures(seed int64) []uint8 {
	rng := rand.New(rand.NewSource(seed))
	features := make([]uint8, testDims)
	for i := range features {
		features[i] = uint8(rng.Intn(128))
	}
	return features
}

func TestStandardNetworkShape(t *testing.T) {
	net := NewStandardNetwork(testDims)

	assert.Equal(t, "AffineTransform[1<-32](ClippedReLU[32](AffineTransform[32<-32]"+
		"(ClippedReLU[32](AffineTransform[32<-64](InputSlice[64(0:64)])))))",
		net.StructureString())
	assert.Equal(t, net.Output.HashValue(), net.Hash)
	assert.Equal(t, net.Output.BufferSize(), net.BufferSize())
}

func TestNetworkRoundTrip(t *testing.T) {
	src := NewStandardNetwork(testDims)
	randomizeNetwork(t, src, 1)
	src.NetDescription = "round-trip fixture"

	var buf bytes.Buffer
	require.NoError(t, src.WriteTo(&buf))

	dst := NewStandardNetwork(testDims)
	require.NoError(t, dst.LoadFromReader(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, "round-trip fixture", dst.NetDescription)

	features := randomFeatures(2)
	assert.Equal(t, src.Evaluate(features), dst.Evaluate(features))
}

func TestNetworkSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.qnnue")

	src := NewStandardNetwork(testDims)
	randomizeNetwork(t, src, 3)
	require.NoError(t, src.Save(path))

	dst := NewStandardNetwork(testDims)
	require.NoError(t, dst.Load(path))
	assert.Equal(t, path, dst.CurrentFile)

	features := randomFeatures(4)
	assert.Equal(t, src.Evaluate(features), dst.Evaluate(features))
}

func TestNetworkHashMismatch(t *testing.T) {
	src := NewStandardNetwork(testDims)
	randomizeNetwork(t, src, 5)

	var buf bytes.Buffer
	require.NoError(t, src.WriteTo(&buf))

	// A chain over a different feature width has a different hash.
	dst := NewStandardNetwork(testDims * 2)
	err := dst.LoadFromReader(bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash mismatch")
}

func TestNetworkBadVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, common.WriteLittleEndian(&buf, uint32(0xDEADBEEF)))
	require.NoError(t, common.WriteLittleEndian(&buf, uint32(0)))
	require.NoError(t, common.WriteLittleEndian(&buf, uint32(0)))

	err := NewStandardNetwork(testDims).LoadFromReader(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version mismatch")
}

func TestNetworkTruncatedStream(t *testing.T) {
	src := NewStandardNetwork(testDims)
	randomizeNetwork(t, src, 6)

	var buf bytes.Buffer
	require.NoError(t, src.WriteTo(&buf))

	err := NewStandardNetwork(testDims).LoadFromReader(bytes.NewReader(buf.Bytes()[:buf.Len()-1]))
	require.Error(t, err)
}

// Concurrent evaluation over per-goroutine buffers must agree with the
// single-threaded result.
func TestNetworkConcurrentEvaluate(t *testing.T) {
	net := NewStandardNetwork(testDims)
	randomizeNetwork(t, net, 7)

	features := randomFeatures(8)
	want := net.Evaluate(features)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buffer := common.NewAlignedBuffer(net.BufferSize())
			for i := 0; i < 100; i++ {
				if got := net.EvaluateInto(features, buffer); got != want {
					t.Errorf("concurrent Evaluate = %d, expected %d", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}
