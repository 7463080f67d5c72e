// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim implements optimization strategies and the mixins that
// compose them into modules.
//
// This package provides:
//   - SGD: Stochastic Gradient Descent with momentum and weight decay
//   - Adam: Adaptive Moment Estimation with bias correction
//   - StepLR: step learning-rate schedule
//   - SgdOptimizer / AdamOptimizer: mixins declaring the matching
//     configuration options and producing the optimizer for a module
//
// Optimizers update parameters in place from the gradients stored on them
// by the surrounding training driver.
//
// Example:
//
//	optimizer := optim.NewSGD(module.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
//	for batch := range loader.Batches() {
//	    // driver computes and sets gradients
//	    optimizer.Step()
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"math"

	"github.com/stride-ml/stride/nn"
)

// SGD implements Stochastic Gradient Descent with optional momentum and
// weight decay.
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + (grad + weight_decay * param)
//	param   -= lr * velocity
type SGD struct {
	params      []*nn.Parameter
	lr          float32
	momentum    float32
	weightDecay float32
	velocities  map[*nn.Parameter][]float32
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR          float32 // Learning rate (default: 0.01)
	Momentum    float32 // Momentum factor (default: 0.0, range: [0, 1))
	WeightDecay float32 // L2 penalty (default: 0.0)
}

// NewSGD creates a new SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:      params,
		lr:          config.LR,
		momentum:    config.Momentum,
		weightDecay: config.WeightDecay,
		velocities:  make(map[*nn.Parameter][]float32),
	}
}

// Step applies one gradient update to all parameters. Parameters without a
// gradient are skipped.
func (s *SGD) Step() {
	for _, param := range s.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}
		value := param.Value()

		var velocity []float32
		if s.momentum != 0 {
			velocity = s.velocities[param]
			if velocity == nil {
				velocity = make([]float32, len(value))
				s.velocities[param] = velocity
			}
		}

		for i := range value {
			g := grad[i] + s.weightDecay*value[i]
			if s.momentum != 0 {
				velocity[i] = s.momentum*velocity[i] + g
				g = velocity[i]
			}
			value[i] -= s.lr * g
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (s *SGD) LR() float32 { return s.lr }

// SetLR updates the learning rate. Used by schedulers.
func (s *SGD) SetLR(lr float32) { s.lr = lr }

// Adam implements the Adam optimizer with bias correction.
//
// Update rule:
//
//	m_t = beta1 * m + (1 - beta1) * grad
//	v_t = beta2 * v + (1 - beta2) * grad²
//	param -= lr * m̂_t / (sqrt(v̂_t) + eps)
type Adam struct {
	params      []*nn.Parameter
	lr          float32
	beta1       float32
	beta2       float32
	epsilon     float32
	weightDecay float32
	step        int
	moments     map[*nn.Parameter][]float32
	variances   map[*nn.Parameter][]float32
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR          float32    // Learning rate (default: 0.001)
	Betas       [2]float32 // Exponential decay rates (default: 0.9, 0.999)
	Epsilon     float32    // Numerical stability term (default: 1e-8)
	WeightDecay float32    // L2 penalty (default: 0.0)
}

// NewAdam creates a new Adam optimizer over the given parameters.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas == [2]float32{} {
		config.Betas = [2]float32{0.9, 0.999}
	}
	if config.Epsilon == 0 {
		config.Epsilon = 1e-8
	}
	return &Adam{
		params:      params,
		lr:          config.LR,
		beta1:       config.Betas[0],
		beta2:       config.Betas[1],
		epsilon:     config.Epsilon,
		weightDecay: config.WeightDecay,
		moments:     make(map[*nn.Parameter][]float32),
		variances:   make(map[*nn.Parameter][]float32),
	}
}

// Step applies one Adam update to all parameters.
func (a *Adam) Step() {
	a.step++
	bc1 := 1 - float32(math.Pow(float64(a.beta1), float64(a.step)))
	bc2 := 1 - float32(math.Pow(float64(a.beta2), float64(a.step)))

	for _, param := range a.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}
		value := param.Value()

		m := a.moments[param]
		v := a.variances[param]
		if m == nil {
			m = make([]float32, len(value))
			v = make([]float32, len(value))
			a.moments[param] = m
			a.variances[param] = v
		}

		for i := range value {
			g := grad[i] + a.weightDecay*value[i]
			m[i] = a.beta1*m[i] + (1-a.beta1)*g
			v[i] = a.beta2*v[i] + (1-a.beta2)*g*g
			mHat := m[i] / bc1
			vHat := v[i] / bc2
			value[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.epsilon)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (a *Adam) LR() float32 { return a.lr }

// SetLR updates the learning rate. Used by schedulers.
func (a *Adam) SetLR(lr float32) { a.lr = lr }

// lrOptimizer is the contract schedulers need from an optimizer.
type lrOptimizer interface {
	LR() float32
	SetLR(lr float32)
}

// StepLR decays the learning rate by gamma every stepSize epochs.
type StepLR struct {
	opt      lrOptimizer
	stepSize int
	gamma    float32
}

// NewStepLR creates a step learning-rate schedule.
func NewStepLR(opt lrOptimizer, stepSize int, gamma float32) *StepLR {
	return &StepLR{opt: opt, stepSize: stepSize, gamma: gamma}
}

// OnEpochEnd decays the learning rate when the epoch boundary is reached.
func (s *StepLR) OnEpochEnd(epoch int) {
	if s.stepSize <= 0 {
		return
	}
	if (epoch+1)%s.stepSize == 0 {
		s.opt.SetLR(s.opt.LR() * s.gamma)
	}
}
