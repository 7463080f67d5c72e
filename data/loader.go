// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data provides dataset mixins and loaders for stride modules.
//
// A data mixin owns the loaders for the train/validation/test splits and is
// responsible for setting the module's InputShape and OutputShape during
// construction, before other mixins run. The base mixins here (Dataset,
// RegressionDataset, ClassificationDataset) declare the shared options and
// validations; the Random*Loader mixins generate small synthetic datasets,
// useful for tests and smoke training runs.
package data

import (
	"iter"
	"math/rand"

	"github.com/stride-ml/stride/core"
)

// SliceLoader is an in-memory Loader over a fixed slice of batches.
type SliceLoader struct {
	batches []core.Batch
}

// NewSliceLoader creates a loader over pre-built batches.
func NewSliceLoader(batches []core.Batch) *SliceLoader {
	return &SliceLoader{batches: batches}
}

// Batches iterates the batches in order.
func (l *SliceLoader) Batches() iter.Seq[core.Batch] {
	return func(yield func(core.Batch) bool) {
		for _, b := range l.batches {
			if !yield(b) {
				return
			}
		}
	}
}

// Len returns the number of batches per pass.
func (l *SliceLoader) Len() int {
	return len(l.batches)
}

// BatchSamples splits aligned sample rows into mini-batches.
//
// The last batch may be smaller when the sample count does not divide
// evenly. When shuffle is true, samples are permuted with the given rng
// (Fisher-Yates) before batching.
//
// Panics if x and y row counts differ.
func BatchSamples(x, y [][]float32, batchSize int, shuffle bool, rng *rand.Rand) []core.Batch {
	if len(x) != len(y) {
		panic("data: input and target sample counts differ")
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	indices := make([]int, len(x))
	for i := range indices {
		indices[i] = i
	}
	if shuffle && rng != nil {
		for i := len(indices) - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			indices[i], indices[j] = indices[j], indices[i]
		}
	}

	numBatches := (len(x) + batchSize - 1) / batchSize
	batches := make([]core.Batch, 0, numBatches)
	for start := 0; start < len(x); start += batchSize {
		end := start + batchSize
		if end > len(x) {
			end = len(x)
		}
		b := core.Batch{
			X: make([][]float32, 0, end-start),
			Y: make([][]float32, 0, end-start),
		}
		for _, idx := range indices[start:end] {
			b.X = append(b.X, x[idx])
			b.Y = append(b.Y, y[idx])
		}
		batches = append(batches, b)
	}
	return batches
}

// Split divides aligned sample rows into two parts, the second holding
// ratio of the samples (e.g. 0.2 for a 20% validation split).
func Split(x, y [][]float32, ratio float64) (trainX, trainY, restX, restY [][]float32) {
	if len(x) != len(y) {
		panic("data: input and target sample counts differ")
	}
	cut := int(float64(len(x)) * (1.0 - ratio))
	return x[:cut], y[:cut], x[cut:], y[cut:]
}
