// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"
	"math"
	"math/rand"
)

// Linear represents a fully connected (dense) layer.
//
// Computes y = x*W^T + b for a batch of row vectors.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	layer := nn.NewLinear(784, 10, rng)
//	out := layer.Forward(x) // [batch, 784] -> [batch, 10]
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // flat [outFeatures * inFeatures], row-major
	bias        *Parameter // [outFeatures]
}

// NewLinear creates a new linear layer with Xavier initialization.
//
// Parameters:
//   - inFeatures: Input dimensionality
//   - outFeatures: Output dimensionality
//   - rng: Random source used for weight initialization; seeding it is the
//     caller's responsibility so that runs stay reproducible
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("linear.weight", Xavier(inFeatures, outFeatures, rng)),
		bias:        NewParameter("linear.bias", make([]float32, outFeatures)),
	}
}

// InFeatures returns the input dimensionality.
func (l *Linear) InFeatures() int { return l.inFeatures }

// OutFeatures returns the output dimensionality.
func (l *Linear) OutFeatures() int { return l.outFeatures }

// Forward computes the layer output for a batch of samples.
//
// Input shape [batch, inFeatures], output shape [batch, outFeatures].
// Panics if a row has the wrong width.
func (l *Linear) Forward(x [][]float32) [][]float32 {
	w := l.weight.Value()
	b := l.bias.Value()

	out := make([][]float32, len(x))
	for i, row := range x {
		if len(row) != l.inFeatures {
			panic(fmt.Sprintf("nn: Linear expects rows of width %d, got %d", l.inFeatures, len(row)))
		}
		y := make([]float32, l.outFeatures)
		for o := 0; o < l.outFeatures; o++ {
			sum := b[o]
			base := o * l.inFeatures
			for j, v := range row {
				sum += w[base+j] * v
			}
			y[o] = sum
		}
		out[i] = y
	}
	return out
}

// Parameters returns the trainable parameters of this layer.
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter (flat, row-major [out][in]).
func (l *Linear) Weight() *Parameter { return l.weight }

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter { return l.bias }

// Xavier initializes a flat weight buffer using Xavier/Glorot uniform
// initialization for the given fan-in and fan-out.
func Xavier(fanIn, fanOut int, rng *rand.Rand) []float32 {
	limit := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))
	buf := make([]float32, fanIn*fanOut)
	for i := range buf {
		buf[i] = (rng.Float32()*2 - 1) * limit
	}
	return buf
}
