// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Plain mixins without ancestry.
type mixA struct{}

func (*mixA) Init(*Module, *AttributeBag) error { return nil }

type mixB struct{}

func (*mixB) Init(*Module, *AttributeBag) error { return nil }

// derivedAB extends A then B; derivedBA extends B then A.
type derivedAB struct{}

func (*derivedAB) Init(*Module, *AttributeBag) error { return nil }
func (*derivedAB) Extends() []Mixin                  { return []Mixin{&mixA{}, &mixB{}} }

type derivedBA struct{}

func (*derivedBA) Init(*Module, *AttributeBag) error { return nil }
func (*derivedBA) Extends() []Mixin                  { return []Mixin{&mixB{}, &mixA{}} }

// derivedA and derivedB share the mixA base through different paths.
type derivedA struct{}

func (*derivedA) Init(*Module, *AttributeBag) error { return nil }
func (*derivedA) Extends() []Mixin                  { return []Mixin{&mixA{}} }

type derivedB struct{}

func (*derivedB) Init(*Module, *AttributeBag) error { return nil }
func (*derivedB) Extends() []Mixin                  { return []Mixin{&mixA{}} }

// selfLoop extends itself.
type selfLoop struct{}

func (*selfLoop) Init(*Module, *AttributeBag) error { return nil }
func (*selfLoop) Extends() []Mixin                  { return []Mixin{&selfLoop{}} }

func names(mixins []Mixin) []string {
	out := make([]string, len(mixins))
	for i, m := range mixins {
		out[i] = MixinName(m)
	}
	return out
}

func TestLinearizeDeclarationOrder(t *testing.T) {
	order, err := Linearize([]Mixin{&mixA{}, &mixB{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"core.mixA", "core.mixB"}, names(order))
}

func TestLinearizeIsDeterministic(t *testing.T) {
	declared := []Mixin{&derivedA{}, &derivedB{}, &mixB{}}
	first, err := Linearize(declared)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Linearize([]Mixin{&derivedA{}, &derivedB{}, &mixB{}})
		require.NoError(t, err)
		assert.Equal(t, names(first), names(again))
	}
}

func TestLinearizeBasesFollowDerived(t *testing.T) {
	order, err := Linearize([]Mixin{&derivedAB{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"core.derivedAB", "core.mixA", "core.mixB"}, names(order))
}

func TestLinearizeSharedBaseAppearsOnce(t *testing.T) {
	order, err := Linearize([]Mixin{&derivedA{}, &derivedB{}})
	require.NoError(t, err)
	// mixA is reachable through both paths and must appear exactly once,
	// after everything that extends it.
	assert.Equal(t, []string{"core.derivedA", "core.derivedB", "core.mixA"}, names(order))
}

func TestLinearizeConflictingBaseOrders(t *testing.T) {
	_, err := Linearize([]Mixin{&derivedAB{}, &derivedBA{}})
	var lerr *LinearizationError
	require.ErrorAs(t, err, &lerr)
	assert.Contains(t, lerr.Error(), "conflicting base orders")
}

func TestLinearizeDuplicateDeclaration(t *testing.T) {
	_, err := Linearize([]Mixin{&mixA{}, &mixA{}})
	var lerr *LinearizationError
	require.ErrorAs(t, err, &lerr)
	assert.Contains(t, lerr.Error(), "more than once")
}

func TestLinearizeCyclicAncestry(t *testing.T) {
	_, err := Linearize([]Mixin{&selfLoop{}})
	var lerr *LinearizationError
	require.ErrorAs(t, err, &lerr)
	assert.Contains(t, lerr.Error(), "cyclic")
}

// A composed module used as a mixin must fail at linearization, not at
// compile time, so *Spec has to satisfy Mixin alongside its Body field.
var _ Mixin = (*Spec)(nil)

func TestSpecInitRefusesToRunAsMixin(t *testing.T) {
	inner := &Spec{Name: "Inner", Mixins: []Mixin{&mixA{}}}
	err := inner.Init(nil, nil)
	var lerr *LinearizationError
	require.ErrorAs(t, err, &lerr)
	assert.Contains(t, lerr.Error(), "Inner")
}

func TestLinearizeRejectsComposedSpec(t *testing.T) {
	inner := &Spec{Name: "Inner", Mixins: []Mixin{&mixA{}}}
	_, err := Linearize([]Mixin{inner, &mixB{}})
	var lerr *LinearizationError
	require.ErrorAs(t, err, &lerr)
	assert.Contains(t, lerr.Error(), "nested composition")
}

func TestSpecMixinOrderIsCached(t *testing.T) {
	spec := &Spec{Name: "Cached", Mixins: []Mixin{&derivedA{}, &mixB{}}}
	first, err := spec.MixinOrder()
	require.NoError(t, err)
	second, err := spec.MixinOrder()
	require.NoError(t, err)
	// Same backing slice: the order is a class-level artifact.
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Same(t, first[i], second[i])
	}
}
