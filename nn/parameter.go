// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

// Parameter represents a trainable parameter.
//
// Parameters hold a flat value buffer and, after a backward pass performed
// by the surrounding training driver, a gradient buffer of the same length.
//
// Example:
//
//	weight := nn.NewParameter("lin.weight", make([]float32, 20))
//	weight.SetGrad(grads)
//	optimizer.Step()
type Parameter struct {
	name  string
	value []float32
	grad  []float32
}

// NewParameter creates a new trainable parameter.
//
// The value buffer should be initialized before creating the Parameter.
// The gradient is nil until SetGrad is called.
func NewParameter(name string, value []float32) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter buffer. Mutations are visible to the owning
// layer; optimizers update it in place.
func (p *Parameter) Value() []float32 {
	return p.value
}

// Grad returns the gradient buffer, or nil if none has been set since the
// last ZeroGrad.
func (p *Parameter) Grad() []float32 {
	return p.grad
}

// SetGrad sets the gradient buffer.
//
// Panics if the gradient length does not match the value length, since a
// mismatched update would silently corrupt the parameter.
func (p *Parameter) SetGrad(grad []float32) {
	if grad != nil && len(grad) != len(p.value) {
		panic("nn: gradient length does not match parameter length")
	}
	p.grad = grad
}

// AccumulateGrad adds grad into the current gradient buffer, allocating it
// on first use. Used when several samples contribute to one update.
func (p *Parameter) AccumulateGrad(grad []float32) {
	if len(grad) != len(p.value) {
		panic("nn: gradient length does not match parameter length")
	}
	if p.grad == nil {
		p.grad = make([]float32, len(p.value))
	}
	for i, g := range grad {
		p.grad[i] += g
	}
}

// ZeroGrad clears the gradient buffer.
//
// This should be called before each training iteration to avoid
// accumulating gradients from previous iterations.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
