// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package data

import (
	"fmt"
	"math/rand"

	"github.com/stride-ml/stride/core"
)

// Split sizes for the generated datasets. Small on purpose: these loaders
// exist for tests and smoke runs, not for real training.
const (
	randomTrainSamples = 65
	randomValSamples   = 4
	randomTestSamples  = 10
)

// RandomRegressionLoader is a data mixin generating a synthetic regression
// dataset: inputs are uniform random vectors, targets are the per-sample
// [mean, variance] of the input.
//
// It sets the module's InputShape and OutputShape during Init and exposes
// one loader per split.
type RandomRegressionLoader struct {
	train *SliceLoader
	val   *SliceLoader
	test  *SliceLoader
}

// Extends declares the base mixin chain.
func (l *RandomRegressionLoader) Extends() []core.Mixin {
	return []core.Mixin{&RegressionDataset{}}
}

// Configs declares the loader's own options.
func (l *RandomRegressionLoader) Configs() *core.Configs {
	return core.NewConfigs().
		Add(core.ConfigOption{
			Name: "input_shape", Type: core.IntOption, Default: 10,
			Strategy: core.Constant, Description: "Input dimensionality of generated samples.",
		})
}

// Init generates the three splits and sets the module shapes.
func (l *RandomRegressionLoader) Init(m *core.Module, hparams *core.AttributeBag) error {
	dim, err := hparams.Int("input_shape")
	if err != nil {
		return err
	}
	batchSize, err := hparams.Int("batch_size")
	if err != nil {
		return err
	}
	seed, err := hparams.Int("seed")
	if err != nil {
		return err
	}
	if dim <= 0 {
		return fmt.Errorf("input_shape must be positive, got %d", dim)
	}

	m.InputShape = core.Shape{dim}
	m.OutputShape = core.Shape{2}

	rng := rand.New(rand.NewSource(int64(seed)))
	l.train = NewSliceLoader(regressionBatches(rng, dim, randomTrainSamples, batchSize, true))
	l.val = NewSliceLoader(regressionBatches(rng, dim, randomValSamples, batchSize, false))
	l.test = NewSliceLoader(regressionBatches(rng, dim, randomTestSamples, batchSize, false))
	return nil
}

// ValidateAttributes requires every option this loader declares (directly
// or through its bases) to be present in the shared hparams.
func (l *RandomRegressionLoader) ValidateAttributes(m *core.Module) []string {
	var missing []string
	for _, name := range []string{"input_shape", "batch_size", "seed", "loss"} {
		if !m.Hparams().Has(name) {
			missing = append(missing, "hparams."+name)
		}
	}
	return missing
}

// TrainLoader returns the training split.
func (l *RandomRegressionLoader) TrainLoader() core.Loader { return l.train }

// ValLoader returns the validation split.
func (l *RandomRegressionLoader) ValLoader() core.Loader { return l.val }

// TestLoader returns the test split.
func (l *RandomRegressionLoader) TestLoader() core.Loader { return l.test }

func regressionBatches(rng *rand.Rand, dim, samples, batchSize int, shuffle bool) []core.Batch {
	x := make([][]float32, samples)
	y := make([][]float32, samples)
	for i := range x {
		row := make([]float32, dim)
		var sum float64
		for j := range row {
			row[j] = rng.Float32()
			sum += float64(row[j])
		}
		mean := sum / float64(dim)
		var variance float64
		for _, v := range row {
			d := float64(v) - mean
			variance += d * d
		}
		variance /= float64(dim)
		x[i] = row
		y[i] = []float32{float32(mean), float32(variance)}
	}
	return BatchSamples(x, y, batchSize, shuffle, rng)
}

// RandomClassificationLoader is a data mixin generating a synthetic binary
// classification dataset: inputs are uniform random vectors, the label is
// whether the sample mean exceeds 0.5, targets are one-hot rows.
type RandomClassificationLoader struct {
	train *SliceLoader
	val   *SliceLoader
	test  *SliceLoader
}

// Extends declares the base mixin chain.
func (l *RandomClassificationLoader) Extends() []core.Mixin {
	return []core.Mixin{&ClassificationDataset{}}
}

// Configs declares the loader's own options.
func (l *RandomClassificationLoader) Configs() *core.Configs {
	return core.NewConfigs().
		Add(core.ConfigOption{
			Name: "input_shape", Type: core.IntOption, Default: 10,
			Strategy: core.Constant, Description: "Input dimensionality of generated samples.",
		})
}

// Init generates the three splits, sets the module shapes, and names the
// classes.
func (l *RandomClassificationLoader) Init(m *core.Module, hparams *core.AttributeBag) error {
	dim, err := hparams.Int("input_shape")
	if err != nil {
		return err
	}
	batchSize, err := hparams.Int("batch_size")
	if err != nil {
		return err
	}
	seed, err := hparams.Int("seed")
	if err != nil {
		return err
	}
	if dim <= 0 {
		return fmt.Errorf("input_shape must be positive, got %d", dim)
	}

	m.InputShape = core.Shape{dim}
	m.OutputShape = core.Shape{2}
	m.Classes = []string{"low", "high"}

	rng := rand.New(rand.NewSource(int64(seed)))
	l.train = NewSliceLoader(classificationBatches(rng, dim, randomTrainSamples, batchSize, true))
	l.val = NewSliceLoader(classificationBatches(rng, dim, randomValSamples, batchSize, false))
	l.test = NewSliceLoader(classificationBatches(rng, dim, randomTestSamples, batchSize, false))
	return nil
}

// ValidateAttributes requires every option this loader declares (directly
// or through its bases) to be present in the shared hparams.
func (l *RandomClassificationLoader) ValidateAttributes(m *core.Module) []string {
	var missing []string
	for _, name := range []string{"input_shape", "batch_size", "seed", "loss"} {
		if !m.Hparams().Has(name) {
			missing = append(missing, "hparams."+name)
		}
	}
	return missing
}

// TrainLoader returns the training split.
func (l *RandomClassificationLoader) TrainLoader() core.Loader { return l.train }

// ValLoader returns the validation split.
func (l *RandomClassificationLoader) ValLoader() core.Loader { return l.val }

// TestLoader returns the test split.
func (l *RandomClassificationLoader) TestLoader() core.Loader { return l.test }

func classificationBatches(rng *rand.Rand, dim, samples, batchSize int, shuffle bool) []core.Batch {
	x := make([][]float32, samples)
	y := make([][]float32, samples)
	for i := range x {
		row := make([]float32, dim)
		var sum float64
		for j := range row {
			row[j] = rng.Float32()
			sum += float64(row[j])
		}
		x[i] = row
		if sum/float64(dim) > 0.5 {
			y[i] = []float32{0, 1}
		} else {
			y[i] = []float32{1, 0}
		}
	}
	return BatchSamples(x, y, batchSize, shuffle, rng)
}
