/*
Package qnnue implements the quantized layer stack of an NNUE-style
(Efficiently Updatable Neural Network) evaluation function.

The hot path is a chain of fixed-size integer layers: uint8 activations,
int8 weights, int32 accumulators. Layers compose by value over a single
caller-owned propagation buffer, so a full forward pass performs no
allocation. Evaluation is bit-reproducible: every kernel variant, scalar or
vectorized, produces identical outputs for identical parameters and inputs,
so a network file scores the same on every platform.

Parameters load from the sequential little-endian format used by NNUE
network files. The feature transformer that produces the input vector is out
of scope; callers supply a transformed feature vector directly.

# Usage

	net := qnnue.NewStandardNetwork(512)
	if err := net.Load("nn.qnnue"); err != nil {
		log.Fatal(err)
	}

	score := net.Evaluate(features)

Loading is a single-threaded initialization step. Afterwards parameters are
read-only and any number of goroutines may evaluate concurrently via
EvaluateInto with per-goroutine buffers.
*/
package qnnue
