// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"
	"math"
)

// Loss computes a scalar loss from a batch of predictions and targets.
type Loss func(pred, target [][]float32) float32

// MSE computes Mean Squared Error loss.
//
// Loss = mean((pred - target)²) over every element in the batch.
//
// Panics if shapes differ; a silent shape mismatch would make the loss
// meaningless.
func MSE(pred, target [][]float32) float32 {
	if len(pred) != len(target) {
		panic("nn: MSE batch sizes differ")
	}
	var sum float64
	var n int
	for i := range pred {
		if len(pred[i]) != len(target[i]) {
			panic("nn: MSE row widths differ")
		}
		for j := range pred[i] {
			d := float64(pred[i][j] - target[i][j])
			sum += d * d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / float64(n))
}

// CrossEntropy computes softmax cross-entropy loss for classification.
//
// Predictions are raw logits [batch, classes]; targets are one-hot rows of
// the same shape. Uses the log-sum-exp trick for numerical stability.
func CrossEntropy(logits, target [][]float32) float32 {
	if len(logits) != len(target) {
		panic("nn: CrossEntropy batch sizes differ")
	}
	var sum float64
	for i, row := range logits {
		if len(row) != len(target[i]) {
			panic("nn: CrossEntropy row widths differ")
		}
		// log-sum-exp over the row
		maxv := row[0]
		for _, v := range row[1:] {
			if v > maxv {
				maxv = v
			}
		}
		var expSum float64
		for _, v := range row {
			expSum += math.Exp(float64(v - maxv))
		}
		logSumExp := float64(maxv) + math.Log(expSum)
		for j, t := range target[i] {
			if t != 0 {
				sum += float64(t) * (logSumExp - float64(row[j]))
			}
		}
	}
	if len(logits) == 0 {
		return 0
	}
	return float32(sum / float64(len(logits)))
}

// lossRegistry maps configuration names to loss functions.
var lossRegistry = map[string]Loss{
	"mse_loss":      MSE,
	"cross_entropy": CrossEntropy,
}

// LossByName resolves a loss function from its configuration name.
//
// Known names: "mse_loss", "cross_entropy".
func LossByName(name string) (Loss, error) {
	fn, ok := lossRegistry[name]
	if !ok {
		return nil, fmt.Errorf("nn: unknown loss %q", name)
	}
	return fn, nil
}

// LossNames returns the registered loss names, for use as option choices.
func LossNames() []string {
	return []string{"cross_entropy", "mse_loss"}
}
