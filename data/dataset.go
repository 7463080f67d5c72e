// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package data

import (
	"github.com/stride-ml/stride/core"
	"github.com/stride-ml/stride/nn"
)

// lossChoices lists the loss names usable as option choices.
func lossChoices() []any {
	names := nn.LossNames()
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

// Dataset is the base mixin every data mixin extends. It declares the
// options shared by all datasets and validates that the composing data
// mixin actually set the module's shape declarations.
type Dataset struct{}

// Init is a no-op; concrete data mixins build their loaders.
func (d *Dataset) Init(m *core.Module, hparams *core.AttributeBag) error {
	return nil
}

// Configs declares options shared by every dataset.
func (d *Dataset) Configs() *core.Configs {
	return core.NewConfigs().
		Add(core.ConfigOption{
			Name: "batch_size", Type: core.IntOption, Default: 16,
			Strategy: core.Constant, Description: "Number of samples per mini-batch.",
		}).
		Add(core.ConfigOption{
			Name: "seed", Type: core.IntOption, Default: 42,
			Strategy: core.Constant, Description: "Random seed for data generation and shuffling.",
		})
}

// ValidateAttributes requires the shape declarations a data mixin must set.
func (d *Dataset) ValidateAttributes(m *core.Module) []string {
	var missing []string
	if m.InputShape == nil {
		missing = append(missing, "input_shape")
	}
	if m.OutputShape == nil {
		missing = append(missing, "output_shape")
	}
	return missing
}

// RegressionDataset extends Dataset for regression tasks: it declares the
// loss option with an MSE default and resolves the module's loss function
// after construction if the module body did not set one.
type RegressionDataset struct{}

// Extends declares the base mixin chain.
func (d *RegressionDataset) Extends() []core.Mixin {
	return []core.Mixin{&Dataset{}}
}

// Init is a no-op.
func (d *RegressionDataset) Init(m *core.Module, hparams *core.AttributeBag) error {
	return nil
}

// Configs declares the regression loss option.
func (d *RegressionDataset) Configs() *core.Configs {
	return core.NewConfigs().
		Add(core.ConfigOption{
			Name: "loss", Type: core.StringOption, Default: "mse_loss",
			Strategy: core.Choice, Choices: lossChoices(),
			Description: "Loss function used by the default training step.",
		})
}

// OnInitEnd resolves the loss function by name unless the module body
// already set one.
func (d *RegressionDataset) OnInitEnd(m *core.Module, hparams *core.AttributeBag) {
	resolveLoss(m, hparams)
}

// ValidateAttributes requires a resolved loss function.
func (d *RegressionDataset) ValidateAttributes(m *core.Module) []string {
	if m.Loss == nil {
		return []string{"loss"}
	}
	return nil
}

// ClassificationDataset extends Dataset for classification tasks: it
// declares the loss option with a cross-entropy default and requires the
// data mixin to name the classes.
type ClassificationDataset struct{}

// Extends declares the base mixin chain.
func (d *ClassificationDataset) Extends() []core.Mixin {
	return []core.Mixin{&Dataset{}}
}

// Init is a no-op.
func (d *ClassificationDataset) Init(m *core.Module, hparams *core.AttributeBag) error {
	return nil
}

// Configs declares the classification loss option.
func (d *ClassificationDataset) Configs() *core.Configs {
	return core.NewConfigs().
		Add(core.ConfigOption{
			Name: "loss", Type: core.StringOption, Default: "cross_entropy",
			Strategy: core.Choice, Choices: lossChoices(),
			Description: "Loss function used by the default training step.",
		})
}

// OnInitEnd resolves the loss function by name unless the module body
// already set one.
func (d *ClassificationDataset) OnInitEnd(m *core.Module, hparams *core.AttributeBag) {
	resolveLoss(m, hparams)
}

// ValidateAttributes requires class names and a resolved loss function.
func (d *ClassificationDataset) ValidateAttributes(m *core.Module) []string {
	var missing []string
	if len(m.Classes) == 0 {
		missing = append(missing, "classes")
	}
	if m.Loss == nil {
		missing = append(missing, "loss")
	}
	return missing
}

// resolveLoss installs the loss named by the "loss" option. An unknown name
// leaves the module's loss unset, which the validation phase reports.
func resolveLoss(m *core.Module, hparams *core.AttributeBag) {
	if m.Loss != nil {
		return
	}
	name, err := hparams.String("loss")
	if err != nil {
		return
	}
	fn, err := nn.LossByName(name)
	if err != nil {
		log := m.Logger()
		log.Warn().Str("loss", name).Msg("unknown loss name in hparams")
		return
	}
	m.Loss = fn
}
