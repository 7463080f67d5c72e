// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package core provides the public API for composing and constructing
// stride training modules.
//
// A module is declared as a Spec: a lifecycle base plus an ordered list of
// mixins, each contributing constructor logic, optional post-init hooks,
// configuration declarations, and attribute validation. Construction is
// deterministic: mixin constructors run exactly once, in linearized order,
// before the module's own constructor body; post-init hooks fire after it,
// in the same order; validation runs last and reports every missing
// attribute at once.
//
// Example:
//
//	spec := &core.Spec{
//	    Name:   "Regressor",
//	    Mixins: []core.Mixin{&data.RandomRegressionLoader{}, &optim.SgdOptimizer{}},
//	    Body: func(m *core.Module) error {
//	        rng := rand.New(rand.NewSource(42))
//	        lin := nn.NewLinear(m.InputShape.NumElements(), m.OutputShape.NumElements(), rng)
//	        m.AddParameters(lin.Parameters()...)
//	        m.SetForward(lin.Forward)
//	        return nil
//	    },
//	}
//	module, err := core.New(spec, nil)
package core

import (
	"github.com/rs/zerolog"

	"github.com/stride-ml/stride/internal/core"
)

// Spec declares a composed module: name, ordered mixins, and the module's
// own constructor body plus optional overrides.
type Spec = core.Spec

// Module is a fully constructed, composed training module.
type Module = core.Module

// Shape describes input/output dimensions.
type Shape = core.Shape

// State tracks a module instance through construction.
type State = core.State

// Construction states, in order.
const (
	StateCreated            = core.StateCreated
	StateMixinsConstructing = core.StateMixinsConstructing
	StateOwnBodyExecuting   = core.StateOwnBodyExecuting
	StateHooksFiring        = core.StateHooksFiring
	StateValidating         = core.StateValidating
	StateReady              = core.StateReady
	StateConstructionFailed = core.StateConstructionFailed
)

// Mixin is one composable unit of a module.
type Mixin = core.Mixin

// Optional mixin capabilities, checked explicitly by the orchestrator.
type (
	Extender           = core.Extender
	PostInitHook       = core.PostInitHook
	AttributeValidator = core.AttributeValidator
	ConfigProvider     = core.ConfigProvider
	WarmUpper          = core.WarmUpper
	DataSource         = core.DataSource
	OptimizerProvider  = core.OptimizerProvider
)

// AttributeBag is the shared hyperparameter store of a module.
type AttributeBag = core.AttributeBag

// NewBag creates an empty attribute bag.
func NewBag() *AttributeBag { return core.NewBag() }

// BagOf coerces nil, map[string]any, or an existing bag into a bag.
func BagOf(v any) (*AttributeBag, error) { return core.BagOf(v) }

// LoadBag reads a YAML mapping from path into a new bag.
func LoadBag(path string) (*AttributeBag, error) { return core.LoadBag(path) }

// Configuration schema types.
type (
	Configs      = core.Configs
	ConfigOption = core.ConfigOption
	OptionType   = core.OptionType
	Strategy     = core.Strategy
)

// Option value types.
const (
	IntOption    = core.IntOption
	FloatOption  = core.FloatOption
	StringOption = core.StringOption
	BoolOption   = core.BoolOption
)

// Value-generation strategies.
const (
	Constant   = core.Constant
	Choice     = core.Choice
	Uniform    = core.Uniform
	LogUniform = core.LogUniform
)

// NewConfigs creates an empty configuration schema.
func NewConfigs() *Configs { return core.NewConfigs() }

// Training-driver contract types.
type (
	Batch          = core.Batch
	Loader         = core.Loader
	StepOutput     = core.StepOutput
	ForwardFunc    = core.ForwardFunc
	Optimizer      = core.Optimizer
	Scheduler      = core.Scheduler
	OptimizerSetup = core.OptimizerSetup
)

// Error types raised by the construction protocol.
type (
	LinearizationError    = core.LinearizationError
	ConfigConflictError   = core.ConfigConflictError
	MissingAttributeError = core.MissingAttributeError
	AttributeFailure      = core.AttributeFailure
)

// ErrForwardNotImplemented is returned when Forward is invoked on a module
// that never registered a prediction function.
var ErrForwardNotImplemented = core.ErrForwardNotImplemented

// Option configures module construction.
type Option = core.Option

// WithLogger routes construction logging to the given logger.
func WithLogger(l zerolog.Logger) Option { return core.WithLogger(l) }

// New constructs a module instance from its spec.
//
// hparams may be nil, a map[string]any, or an *AttributeBag; options absent
// from it are seeded from the collected configuration defaults.
func New(spec *Spec, hparams any, opts ...Option) (*Module, error) {
	return core.New(spec, hparams, opts...)
}

// Linearize computes the deterministic construction order for a declared
// mixin list. Exposed for tooling; New resolves it internally.
func Linearize(mixins []Mixin) ([]Mixin, error) { return core.Linearize(mixins) }

// MixinName returns a short "pkg.Type" diagnostic name for a mixin.
func MixinName(m Mixin) string { return core.MixinName(m) }
