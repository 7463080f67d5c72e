// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"fmt"

	"github.com/stride-ml/stride/core"
)

// SgdOptimizer is a mixin composing SGD into a module. It declares the
// learning_rate, momentum, and weight_decay options and produces the
// optimizer setup the training driver expects.
type SgdOptimizer struct {
	// LRStepSize and LRGamma configure the attached StepLR schedule.
	// Zero values mean no schedule.
	LRStepSize int
	LRGamma    float64
}

// Init is a no-op; the optimizer is produced on demand by
// ConfigureOptimizers, once the module body has registered its parameters.
func (o *SgdOptimizer) Init(m *core.Module, hparams *core.AttributeBag) error {
	return nil
}

// Configs declares the SGD hyperparameter options.
func (o *SgdOptimizer) Configs() *core.Configs {
	return core.NewConfigs().
		Add(core.ConfigOption{
			Name: "learning_rate", Type: core.FloatOption, Default: 0.1,
			Strategy: core.LogUniform, Description: "Optimizer learning rate.",
		}).
		Add(core.ConfigOption{
			Name: "momentum", Type: core.FloatOption, Default: 0.9,
			Strategy: core.Constant, Description: "SGD momentum factor.",
		}).
		Add(core.ConfigOption{
			Name: "weight_decay", Type: core.FloatOption, Default: 1e-5,
			Strategy: core.Constant, Description: "L2 weight decay penalty.",
		})
}

// ValidateAttributes requires the declared options to be present in hparams.
func (o *SgdOptimizer) ValidateAttributes(m *core.Module) []string {
	return missingOptions(m, "learning_rate", "momentum", "weight_decay")
}

// ConfigureOptimizers builds the SGD optimizer over the module's registered
// parameters, with an optional step schedule.
func (o *SgdOptimizer) ConfigureOptimizers(m *core.Module) (core.OptimizerSetup, error) {
	hp := m.Hparams()
	lr, err := hp.Float("learning_rate")
	if err != nil {
		return core.OptimizerSetup{}, fmt.Errorf("sgd optimizer: %w", err)
	}
	momentum, err := hp.Float("momentum")
	if err != nil {
		return core.OptimizerSetup{}, fmt.Errorf("sgd optimizer: %w", err)
	}
	weightDecay, err := hp.Float("weight_decay")
	if err != nil {
		return core.OptimizerSetup{}, fmt.Errorf("sgd optimizer: %w", err)
	}

	sgd := NewSGD(m.Parameters(), SGDConfig{
		LR:          float32(lr),
		Momentum:    float32(momentum),
		WeightDecay: float32(weightDecay),
	})
	setup := core.OptimizerSetup{Optimizer: sgd}
	if o.LRStepSize > 0 {
		setup.Scheduler = NewStepLR(sgd, o.LRStepSize, float32(o.LRGamma))
	}
	return setup, nil
}

// AdamOptimizer is a mixin composing Adam into a module.
type AdamOptimizer struct{}

// Init is a no-op; see SgdOptimizer.Init.
func (o *AdamOptimizer) Init(m *core.Module, hparams *core.AttributeBag) error {
	return nil
}

// Configs declares the Adam hyperparameter options.
//
// weight_decay is declared identically to SgdOptimizer's so that composing
// both strategies deduplicates it; learning_rate deliberately differs
// (different sensible defaults), so composing both is a configuration
// conflict the schema reports.
func (o *AdamOptimizer) Configs() *core.Configs {
	return core.NewConfigs().
		Add(core.ConfigOption{
			Name: "learning_rate", Type: core.FloatOption, Default: 0.001,
			Strategy: core.LogUniform, Description: "Optimizer learning rate.",
		}).
		Add(core.ConfigOption{
			Name: "weight_decay", Type: core.FloatOption, Default: 1e-5,
			Strategy: core.Constant, Description: "L2 weight decay penalty.",
		})
}

// ValidateAttributes requires the declared options to be present in hparams.
func (o *AdamOptimizer) ValidateAttributes(m *core.Module) []string {
	return missingOptions(m, "learning_rate", "weight_decay")
}

// ConfigureOptimizers builds the Adam optimizer over the module's
// registered parameters.
func (o *AdamOptimizer) ConfigureOptimizers(m *core.Module) (core.OptimizerSetup, error) {
	hp := m.Hparams()
	lr, err := hp.Float("learning_rate")
	if err != nil {
		return core.OptimizerSetup{}, fmt.Errorf("adam optimizer: %w", err)
	}
	weightDecay, err := hp.Float("weight_decay")
	if err != nil {
		return core.OptimizerSetup{}, fmt.Errorf("adam optimizer: %w", err)
	}

	adam := NewAdam(m.Parameters(), AdamConfig{
		LR:          float32(lr),
		WeightDecay: float32(weightDecay),
	})
	return core.OptimizerSetup{Optimizer: adam}, nil
}

func missingOptions(m *core.Module, names ...string) []string {
	var missing []string
	for _, name := range names {
		if !m.Hparams().Has(name) {
			missing = append(missing, "hparams."+name)
		}
	}
	return missing
}
