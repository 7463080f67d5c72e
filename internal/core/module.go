// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stride-ml/stride/nn"
)

// Shape describes the dimensions of a module's inputs or outputs.
// Example: Shape{28, 28} for a 28×28 input.
type Shape []int

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i, d := range s {
		if d != o[i] {
			return false
		}
	}
	return true
}

// NumElements returns the product of all dimensions, or 0 for a nil shape.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// State tracks a module instance through its construction protocol.
type State int

// Construction states, in order. Ready and ConstructionFailed are terminal.
const (
	StateCreated State = iota
	StateMixinsConstructing
	StateOwnBodyExecuting
	StateHooksFiring
	StateValidating
	StateReady
	StateConstructionFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateMixinsConstructing:
		return "mixins-constructing"
	case StateOwnBodyExecuting:
		return "own-body-executing"
	case StateHooksFiring:
		return "hooks-firing"
	case StateValidating:
		return "validating"
	case StateReady:
		return "ready"
	case StateConstructionFailed:
		return "construction-failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Spec declares a composed module: a name, an ordered mixin list, and the
// module's own constructor body plus optional overrides. A Spec plays the
// role of a class declaration; instances are built from it with New.
//
// Example:
//
//	spec := &core.Spec{
//	    Name:   "MnistClassifier",
//	    Mixins: []core.Mixin{&data.RandomClassificationLoader{}, &optim.SgdOptimizer{}},
//	    Body: func(m *core.Module) error {
//	        lin := nn.NewLinear(m.InputShape.NumElements(), m.OutputShape.NumElements(), rng)
//	        m.AddParameters(lin.Parameters()...)
//	        m.SetForward(lin.Forward)
//	        return nil
//	    },
//	}
//	module, err := core.New(spec, nil)
//
// Order and configuration schema are computed once per Spec, lazily, and
// cached; a Spec must not be mutated after its first use.
type Spec struct {
	// Name identifies the composed module in logs and errors.
	Name string
	// Mixins lists the contributing mixins in declaration order.
	Mixins []Mixin
	// Body is the module's own constructor, run exactly once after every
	// mixin constructor. Named Body rather than Init because *Spec carries
	// an Init method to satisfy Mixin (see below).
	Body func(m *Module) error
	// Forward, when set, is the module's prediction function. The module
	// may instead call Module.SetForward from its Body.
	Forward ForwardFunc
	// Configs, when set, declares the module's own configuration options,
	// merged after every mixin's declarations.
	Configs func() *Configs
	// Validate, when set, returns required attribute paths that are absent
	// after construction, reported alongside mixin validation failures.
	Validate func(m *Module) []string
	// WarmUp, when set, overrides warm-up dispatch entirely.
	WarmUp func(m *Module, inputShape Shape)

	orderOnce   sync.Once
	order       []Mixin
	orderErr    error
	configsOnce sync.Once
	configs     *Configs
	configsErr  error
}

func (s *Spec) name() string {
	if s.Name != "" {
		return s.Name
	}
	return "Module"
}

// MixinOrder returns the linearized mixin order for this spec, computed once
// and cached. The order is stable and deterministic for a fixed declaration.
func (s *Spec) MixinOrder() ([]Mixin, error) {
	s.orderOnce.Do(func() {
		order, err := Linearize(s.Mixins)
		if err != nil {
			if lerr, ok := err.(*LinearizationError); ok && lerr.Module == "" {
				lerr.Module = s.name()
			}
			s.orderErr = err
			return
		}
		s.order = order
	})
	return s.order, s.orderErr
}

// CollectConfigs merges the configuration declarations of every mixin, in
// mixin order, followed by the spec's own declarations. Computed once per
// spec and cached.
func (s *Spec) CollectConfigs() (*Configs, error) {
	s.configsOnce.Do(func() {
		order, err := s.MixinOrder()
		if err != nil {
			s.configsErr = err
			return
		}
		merged := NewConfigs()
		for _, m := range order {
			provider, ok := m.(ConfigProvider)
			if !ok {
				continue
			}
			if err := merged.Merge(provider.Configs(), MixinName(m)); err != nil {
				s.configsErr = err
				return
			}
		}
		if s.Configs != nil {
			if err := merged.Merge(s.Configs(), s.name()); err != nil {
				s.configsErr = err
				return
			}
		}
		s.configs = merged
	})
	return s.configs, s.configsErr
}

// Init makes *Spec satisfy Mixin so that passing a composed module where a
// mixin is expected compiles and is then rejected by linearization, rather
// than misordering silently. It never runs.
func (s *Spec) Init(*Module, *AttributeBag) error {
	return &LinearizationError{
		Module: s.name(),
		Reason: "a composed module cannot be constructed as a mixin",
	}
}

// Module is a fully constructed, composed training module. It owns the
// shared attribute bag (its hparams), the input/output shape declarations
// contributed by data mixins, the registered trainable parameters, and the
// loss and forward functions assembled during construction.
type Module struct {
	spec    *Spec
	mixins  []Mixin
	hparams *AttributeBag
	runID   string
	log     zerolog.Logger
	state   State

	// InputShape and OutputShape are set by a data mixin during Init,
	// before later mixins run.
	InputShape  Shape
	OutputShape Shape
	// Classes holds human-readable class names for classification modules.
	Classes []string
	// Loss computes the training loss; resolved from the "loss" option by
	// dataset mixins or set directly by the module body.
	Loss nn.Loss

	params  []*nn.Parameter
	forward ForwardFunc
}

// Name returns the composed module's declared name.
func (m *Module) Name() string { return m.spec.name() }

// RunID returns the unique identifier assigned to this instance at
// construction, for experiment tracking and log correlation.
func (m *Module) RunID() string { return m.runID }

// Hparams returns the shared attribute bag.
func (m *Module) Hparams() *AttributeBag { return m.hparams }

// State returns the instance's construction state.
func (m *Module) State() State { return m.state }

// Logger returns the module-scoped logger.
func (m *Module) Logger() zerolog.Logger { return m.log }

// Mixins returns the linearized mixin order this instance was built with.
func (m *Module) Mixins() []Mixin {
	out := make([]Mixin, len(m.mixins))
	copy(out, m.mixins)
	return out
}

// SetForward registers the module's prediction function. Typically called
// from the spec's Body.
func (m *Module) SetForward(fn ForwardFunc) { m.forward = fn }

// HasForward reports whether a prediction function has been registered.
func (m *Module) HasForward() bool { return m.forward != nil }

// Forward computes predictions for a batch of input rows.
//
// Returns ErrForwardNotImplemented if no prediction function was registered;
// the absence is tolerated at construction time but not at call time.
func (m *Module) Forward(x [][]float32) ([][]float32, error) {
	if m.forward == nil {
		return nil, fmt.Errorf("module %s: %w", m.Name(), ErrForwardNotImplemented)
	}
	return m.forward(x), nil
}

// AddParameters registers trainable parameters with the module, making them
// visible to optimizer mixins.
func (m *Module) AddParameters(params ...*nn.Parameter) {
	m.params = append(m.params, params...)
}

// Parameters returns all registered trainable parameters.
func (m *Module) Parameters() []*nn.Parameter {
	return m.params
}

// StepOutput is the result of one training, validation, or test step,
// consumable by an external training driver.
type StepOutput struct {
	Loss   float32
	Pred   [][]float32
	Target [][]float32
}

// TrainingStep runs the default step scaffold: predictions from Forward,
// loss from the configured loss function against the batch targets.
func (m *Module) TrainingStep(batch Batch, batchIdx int) (StepOutput, error) {
	return m.step(batch, batchIdx)
}

// ValidationStep mirrors TrainingStep for the validation split.
func (m *Module) ValidationStep(batch Batch, batchIdx int) (StepOutput, error) {
	return m.step(batch, batchIdx)
}

// TestStep mirrors TrainingStep for the test split.
func (m *Module) TestStep(batch Batch, batchIdx int) (StepOutput, error) {
	return m.step(batch, batchIdx)
}

func (m *Module) step(batch Batch, batchIdx int) (StepOutput, error) {
	pred, err := m.Forward(batch.X)
	if err != nil {
		return StepOutput{}, fmt.Errorf("step %d: %w", batchIdx, err)
	}
	if m.Loss == nil {
		return StepOutput{}, fmt.Errorf("module %s: no loss function configured", m.Name())
	}
	return StepOutput{
		Loss:   m.Loss(pred, batch.Y),
		Pred:   pred,
		Target: batch.Y,
	}, nil
}

// WarmUp runs the module's warm-up behavior: the spec-level override when
// present, otherwise the first mixin in order that implements WarmUpper,
// otherwise nothing. Until called, no warm-up side effect occurs.
func (m *Module) WarmUp(inputShape Shape) {
	if m.spec.WarmUp != nil {
		m.spec.WarmUp(m, inputShape)
		return
	}
	for _, mx := range m.mixins {
		if w, ok := mx.(WarmUpper); ok {
			w.WarmUp(m, inputShape)
			return
		}
	}
}

// DataSource returns the first data-providing mixin in order, if any.
func (m *Module) DataSource() (DataSource, bool) {
	for _, mx := range m.mixins {
		if ds, ok := mx.(DataSource); ok {
			return ds, true
		}
	}
	return nil, false
}

// TrainLoader returns the training split loader, or nil when no data mixin
// is composed in.
func (m *Module) TrainLoader() Loader {
	if ds, ok := m.DataSource(); ok {
		return ds.TrainLoader()
	}
	return nil
}

// ValLoader returns the validation split loader, or nil when no data mixin
// is composed in.
func (m *Module) ValLoader() Loader {
	if ds, ok := m.DataSource(); ok {
		return ds.ValLoader()
	}
	return nil
}

// TestLoader returns the test split loader, or nil when no data mixin is
// composed in.
func (m *Module) TestLoader() Loader {
	if ds, ok := m.DataSource(); ok {
		return ds.TestLoader()
	}
	return nil
}

// ConfigureOptimizers asks the first optimizer mixin in order for the
// optimizer setup expected by the training driver.
func (m *Module) ConfigureOptimizers() (OptimizerSetup, error) {
	for _, mx := range m.mixins {
		if p, ok := mx.(OptimizerProvider); ok {
			return p.ConfigureOptimizers(m)
		}
	}
	return OptimizerSetup{}, fmt.Errorf("module %s: no optimizer mixin composed in", m.Name())
}
