// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stride-ml/stride/nn"
)

func TestShapeEqual(t *testing.T) {
	assert.True(t, Shape{28, 28}.Equal(Shape{28, 28}))
	assert.False(t, Shape{28, 28}.Equal(Shape{28}))
	assert.False(t, Shape{28, 28}.Equal(Shape{28, 27}))
	assert.True(t, Shape(nil).Equal(Shape{}))
}

func TestShapeNumElements(t *testing.T) {
	assert.Equal(t, 784, Shape{28, 28}.NumElements())
	assert.Equal(t, 10, Shape{10}.NumElements())
	assert.Equal(t, 0, Shape(nil).NumElements())
}

func TestForwardNotImplementedAtCallTime(t *testing.T) {
	spec := &Spec{Name: "NoForward", Mixins: []Mixin{&mixA{}}}
	module, err := New(spec, nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = module.Forward([][]float32{{1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForwardNotImplemented))
	assert.Contains(t, err.Error(), "NoForward")
}

func TestTrainingStepComputesLoss(t *testing.T) {
	spec := &Spec{
		Name:   "Identity",
		Mixins: []Mixin{&mixA{}},
		Forward: func(x [][]float32) [][]float32 {
			return x
		},
		Body: func(m *Module) error {
			m.Loss = nn.MSE
			return nil
		},
	}
	module, err := New(spec, nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	batch := Batch{
		X: [][]float32{{1, 2}, {3, 4}},
		Y: [][]float32{{0, 2}, {3, 2}},
	}
	out, err := module.TrainingStep(batch, 0)
	require.NoError(t, err)
	// Squared errors: 1, 0, 0, 4 over 4 elements.
	assert.InDelta(t, 1.25, out.Loss, 1e-6)
	assert.Equal(t, batch.X, out.Pred)
	assert.Equal(t, batch.Y, out.Target)
}

func TestStepWithoutLoss(t *testing.T) {
	spec := &Spec{
		Name:    "Lossless",
		Mixins:  []Mixin{&mixA{}},
		Forward: func(x [][]float32) [][]float32 { return x },
	}
	module, err := New(spec, nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = module.ValidationStep(Batch{X: [][]float32{{1}}, Y: [][]float32{{1}}}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no loss function")
}

type warmingMixin struct {
	calls []Shape
}

func (*warmingMixin) Init(*Module, *AttributeBag) error { return nil }
func (w *warmingMixin) WarmUp(m *Module, inputShape Shape) {
	w.calls = append(w.calls, inputShape)
}

func TestWarmUpDispatchesToMixin(t *testing.T) {
	w := &warmingMixin{}
	spec := &Spec{Name: "Warm", Mixins: []Mixin{&mixA{}, w}}
	module, err := New(spec, nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	// No warm-up side effect until explicitly invoked.
	assert.Empty(t, w.calls)

	module.WarmUp(Shape{3})
	module.WarmUp(Shape{3})
	require.Len(t, w.calls, 2)
	assert.Equal(t, Shape{3}, w.calls[0])
}

func TestWarmUpSpecOverrideWins(t *testing.T) {
	w := &warmingMixin{}
	var overrideCalls int
	spec := &Spec{
		Name:   "Warm",
		Mixins: []Mixin{w},
		WarmUp: func(m *Module, inputShape Shape) {
			overrideCalls++
		},
	}
	module, err := New(spec, nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	module.WarmUp(Shape{3})
	assert.Equal(t, 1, overrideCalls)
	assert.Empty(t, w.calls)
}

func TestWarmUpWithoutProviderIsNoOp(t *testing.T) {
	spec := &Spec{Name: "Cold", Mixins: []Mixin{&mixA{}}}
	module, err := New(spec, nil, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.NotPanics(t, func() { module.WarmUp(Shape{3}) })
}

func TestLoadersNilWithoutDataMixin(t *testing.T) {
	spec := &Spec{Name: "NoData", Mixins: []Mixin{&mixA{}}}
	module, err := New(spec, nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	_, ok := module.DataSource()
	assert.False(t, ok)
	assert.Nil(t, module.TrainLoader())
	assert.Nil(t, module.ValLoader())
	assert.Nil(t, module.TestLoader())
}

func TestConfigureOptimizersWithoutProvider(t *testing.T) {
	spec := &Spec{Name: "NoOpt", Mixins: []Mixin{&mixA{}}}
	module, err := New(spec, nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = module.ConfigureOptimizers()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no optimizer mixin")
}

func TestAddParameters(t *testing.T) {
	spec := &Spec{
		Name:   "Params",
		Mixins: []Mixin{&mixA{}},
		Body: func(m *Module) error {
			m.AddParameters(nn.NewParameter("w", []float32{1, 2}))
			m.AddParameters(nn.NewParameter("b", []float32{0}))
			return nil
		},
	}
	module, err := New(spec, nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	params := module.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, "w", params[0].Name())
	assert.Equal(t, "b", params[1].Name())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "construction-failed", StateConstructionFailed.String())
	assert.Equal(t, "created", StateCreated.String())
}
