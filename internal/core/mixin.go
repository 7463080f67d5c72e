// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package core

import "iter"

// Mixin is one composable unit of a module: constructor logic plus any of
// the optional capabilities below. Mixins are not instantiable on their own;
// they only run as part of a composed module's construction.
//
// Init is invoked exactly once per construction, bound to the shared module
// and its attribute bag, in linearized order: declaration order among
// unrelated mixins, each mixin ahead of the bases it extends. A mixin may
// read attributes set by earlier mixins and must declare, via
// AttributeValidator, any attribute it requires but does not itself set.
type Mixin interface {
	Init(m *Module, hparams *AttributeBag) error
}

// Extender is implemented by mixins that build on base mixins. Bases are
// linearized ahead of the mixin itself, deduplicated by type identity.
type Extender interface {
	Extends() []Mixin
}

// PostInitHook is implemented by mixins that need to run after the module's
// own constructor body. Hooks fire in the same order as constructors.
type PostInitHook interface {
	OnInitEnd(m *Module, hparams *AttributeBag)
}

// AttributeValidator is implemented by mixins that require attributes they
// do not set themselves. ValidateAttributes returns the paths of required
// attributes that are absent; it runs after all hooks, and every failure
// across all mixins is reported together.
type AttributeValidator interface {
	ValidateAttributes(m *Module) []string
}

// ConfigProvider is implemented by mixins (and module specs) that declare
// configuration options. Declarations are merged in mixin order.
type ConfigProvider interface {
	Configs() *Configs
}

// WarmUpper is implemented by mixins that override the module's default
// no-op warm-up behavior.
type WarmUpper interface {
	WarmUp(m *Module, inputShape Shape)
}

// Batch is one mini-batch of samples: X rows are inputs, Y rows are targets.
type Batch struct {
	X [][]float32
	Y [][]float32
}

// Loader yields batches for one dataset split.
type Loader interface {
	// Batches iterates the split's batches in order.
	Batches() iter.Seq[Batch]
	// Len returns the number of batches per pass.
	Len() int
}

// DataSource is implemented by mixins that provide data. A data mixin must
// set the module's InputShape and OutputShape during Init, before later
// mixins run, and expose one loader per split.
type DataSource interface {
	TrainLoader() Loader
	ValLoader() Loader
	TestLoader() Loader
}

// Optimizer is the narrow contract the training driver needs from an
// optimization strategy.
type Optimizer interface {
	// Step applies one update from the gradients currently stored on the
	// module's parameters.
	Step()
	// ZeroGrad clears parameter gradients before the next iteration.
	ZeroGrad()
}

// Scheduler adjusts an optimizer between epochs.
type Scheduler interface {
	OnEpochEnd(epoch int)
}

// OptimizerSetup is what an optimizer mixin hands to the training driver:
// the optimizer itself plus an optional schedule.
type OptimizerSetup struct {
	Optimizer Optimizer
	Scheduler Scheduler // may be nil
}

// OptimizerProvider is implemented by mixins that provide an optimization
// strategy for the composed module.
type OptimizerProvider interface {
	ConfigureOptimizers(m *Module) (OptimizerSetup, error)
}

// ForwardFunc computes predictions for a batch of input rows.
type ForwardFunc func(x [][]float32) [][]float32
