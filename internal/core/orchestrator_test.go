// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendMsg(hparams *AttributeBag, tag string) {
	v, _ := hparams.Get("msg")
	log := v.(*[]string)
	*log = append(*log, tag)
}

type orderMixin1 struct{}

func (*orderMixin1) Init(m *Module, hparams *AttributeBag) error {
	appendMsg(hparams, "Mixin1.Init")
	return nil
}

func (*orderMixin1) OnInitEnd(m *Module, hparams *AttributeBag) {
	appendMsg(hparams, "Mixin1.OnInitEnd")
}

type orderMixin2 struct{}

func (*orderMixin2) Init(m *Module, hparams *AttributeBag) error {
	appendMsg(hparams, "Mixin2.Init")
	return nil
}

func (*orderMixin2) OnInitEnd(m *Module, hparams *AttributeBag) {
	appendMsg(hparams, "Mixin2.OnInitEnd")
}

func quietLogger() zerolog.Logger {
	return zerolog.Nop()
}

// TestInitOrder pins the construction protocol: mixin constructors in
// declaration order, then the module's own body, then post-init hooks in
// the same order.
func TestInitOrder(t *testing.T) {
	var msg []string
	spec := &Spec{
		Name:   "InitOrderModule",
		Mixins: []Mixin{&orderMixin1{}, &orderMixin2{}},
		Body: func(m *Module) error {
			appendMsg(m.Hparams(), "InitOrderModule.Init")
			m.InputShape = Shape{1}
			m.OutputShape = Shape{1}
			return nil
		},
	}

	module, err := New(spec, map[string]any{"msg": &msg}, WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NotNil(t, module)

	assert.Equal(t, []string{
		"Mixin1.Init",
		"Mixin2.Init",
		"InitOrderModule.Init",
		"Mixin1.OnInitEnd",
		"Mixin2.OnInitEnd",
	}, msg)
	assert.Equal(t, StateReady, module.State())
}

// countingMixin counts constructor invocations per instance type.
type countingBase struct{}

var countingBaseInits int

func (*countingBase) Init(*Module, *AttributeBag) error {
	countingBaseInits++
	return nil
}

type countingLeft struct{}

func (*countingLeft) Init(*Module, *AttributeBag) error { return nil }
func (*countingLeft) Extends() []Mixin                  { return []Mixin{&countingBase{}} }

type countingRight struct{}

func (*countingRight) Init(*Module, *AttributeBag) error { return nil }
func (*countingRight) Extends() []Mixin                  { return []Mixin{&countingBase{}} }

// TestSharedBaseConstructedOnce verifies that a mixin reachable through two
// ancestry paths is constructed exactly once.
func TestSharedBaseConstructedOnce(t *testing.T) {
	countingBaseInits = 0
	spec := &Spec{
		Name:   "Diamond",
		Mixins: []Mixin{&countingLeft{}, &countingRight{}},
	}
	_, err := New(spec, nil, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, 1, countingBaseInits)
}

type defaultsMixin struct{}

func (*defaultsMixin) Init(*Module, *AttributeBag) error { return nil }

func (*defaultsMixin) Configs() *Configs {
	return NewConfigs().Add(ConfigOption{
		Name: "hidden_units", Type: IntOption, Default: 128,
		Strategy: Constant, Description: "Width of the hidden layer.",
	})
}

// TestDefaultsSeeded verifies that options absent from the caller's hparams
// are seeded from the collected schema defaults, so construction with nil
// hparams succeeds.
func TestDefaultsSeeded(t *testing.T) {
	spec := &Spec{Name: "Defaults", Mixins: []Mixin{&defaultsMixin{}}}
	module, err := New(spec, nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	got, err := module.Hparams().Int("hidden_units")
	require.NoError(t, err)
	assert.Equal(t, 128, got)
}

// TestCallerValueWinsOverDefault verifies explicit hparams are not clobbered.
func TestCallerValueWinsOverDefault(t *testing.T) {
	spec := &Spec{Name: "Defaults", Mixins: []Mixin{&defaultsMixin{}}}
	module, err := New(spec, map[string]any{"hidden_units": 32}, WithLogger(quietLogger()))
	require.NoError(t, err)

	got, err := module.Hparams().Int("hidden_units")
	require.NoError(t, err)
	assert.Equal(t, 32, got)
}

type needsAlpha struct{}

func (*needsAlpha) Init(*Module, *AttributeBag) error { return nil }
func (*needsAlpha) ValidateAttributes(m *Module) []string {
	if !m.Hparams().Has("alpha") {
		return []string{"hparams.alpha"}
	}
	return nil
}

type needsBeta struct{}

func (*needsBeta) Init(*Module, *AttributeBag) error { return nil }
func (*needsBeta) ValidateAttributes(m *Module) []string {
	if !m.Hparams().Has("beta") {
		return []string{"hparams.beta"}
	}
	return nil
}

// TestMissingAttributesAggregated verifies that validation reports every
// missing attribute with its declaring mixin, and that construction is
// atomic: no instance is returned.
func TestMissingAttributesAggregated(t *testing.T) {
	spec := &Spec{
		Name:   "Incomplete",
		Mixins: []Mixin{&needsAlpha{}, &needsBeta{}},
	}
	module, err := New(spec, nil, WithLogger(quietLogger()))
	assert.Nil(t, module)

	var merr *MissingAttributeError
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Failures, 2)
	assert.Equal(t, "core.needsAlpha", merr.Failures[0].Mixin)
	assert.Equal(t, "hparams.alpha", merr.Failures[0].Attribute)
	assert.Equal(t, "core.needsBeta", merr.Failures[1].Mixin)
	assert.Equal(t, "hparams.beta", merr.Failures[1].Attribute)
	assert.Contains(t, err.Error(), "hparams.alpha")
	assert.Contains(t, err.Error(), "hparams.beta")
}

// TestMissingForwardWarnsOnce verifies that a module without a forward
// function constructs successfully and logs exactly one warning naming
// forward.
func TestMissingForwardWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	spec := &Spec{Name: "NoForward", Mixins: []Mixin{&mixA{}}}
	module, err := New(spec, nil, WithLogger(logger))
	require.NoError(t, err)
	require.NotNil(t, module)
	assert.Equal(t, StateReady, module.State())

	var warnings int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, `"level":"warn"`) {
			warnings++
			assert.Contains(t, line, "forward")
		}
	}
	assert.Equal(t, 1, warnings)
}

// TestForwardPresentNoWarning is the complement: registering a forward
// function suppresses the warning.
func TestForwardPresentNoWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	spec := &Spec{
		Name:   "WithForward",
		Mixins: []Mixin{&mixA{}},
		Forward: func(x [][]float32) [][]float32 {
			return x
		},
	}
	_, err := New(spec, nil, WithLogger(logger))
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), `"level":"warn"`)
}

type failingMixin struct{}

func (*failingMixin) Init(*Module, *AttributeBag) error {
	return assert.AnError
}

// TestMixinInitFailureIsAtomic verifies a failing constructor aborts the
// whole construction with the mixin named in the error.
func TestMixinInitFailureIsAtomic(t *testing.T) {
	spec := &Spec{Name: "Failing", Mixins: []Mixin{&failingMixin{}, &mixB{}}}
	module, err := New(spec, nil, WithLogger(quietLogger()))
	assert.Nil(t, module)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "core.failingMixin")
}

// TestLinearizationFailureBeforeConstruction verifies no constructor runs
// when the ancestry cannot be linearized.
func TestLinearizationFailureBeforeConstruction(t *testing.T) {
	ran := false
	spec := &Spec{
		Name:   "Bad",
		Mixins: []Mixin{&derivedAB{}, &derivedBA{}},
		Body: func(m *Module) error {
			ran = true
			return nil
		},
	}
	module, err := New(spec, nil, WithLogger(quietLogger()))
	assert.Nil(t, module)
	var lerr *LinearizationError
	require.ErrorAs(t, err, &lerr)
	assert.False(t, ran)
}

// TestRunIDAssigned verifies every instance gets a distinct run identifier.
func TestRunIDAssigned(t *testing.T) {
	spec := &Spec{Name: "IDs", Mixins: []Mixin{&mixA{}}}
	a, err := New(spec, nil, WithLogger(quietLogger()))
	require.NoError(t, err)
	b, err := New(spec, nil, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
}
