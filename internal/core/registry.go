// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"path"
	"reflect"
	"strings"
)

// MixinName returns a short "pkg.Type" name for a mixin, used in ordering
// diagnostics and error messages.
func MixinName(m Mixin) string {
	if s, ok := m.(*Spec); ok {
		return s.name()
	}
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return path.Base(t.PkgPath()) + "." + t.Name()
}

// mixinType is the identity under which mixins deduplicate: two instances of
// the same Go type are the same mixin, and only the first seen is invoked.
func mixinType(m Mixin) reflect.Type {
	return reflect.TypeOf(m)
}

// Linearize computes the construction order for a declared mixin list.
//
// The order is the C3 linearization of a virtual module node whose direct
// bases are the declared mixins and whose indirect bases come from each
// mixin's Extends chain: every base precedes nothing it follows elsewhere,
// declaration order is preserved among unrelated mixins, and a mixin
// reachable through several paths appears exactly once.
//
// It fails with a *LinearizationError before any construction when the
// declared orders are contradictory, when a mixin is declared twice at the
// same level, when an Extends chain is cyclic, or when a composed module
// spec appears anywhere in the ancestry (nested composition is unsupported).
func Linearize(declared []Mixin) ([]Mixin, error) {
	if err := checkDuplicates(declared); err != nil {
		return nil, err
	}
	seqs := make([][]Mixin, 0, len(declared)+1)
	for _, m := range declared {
		seq, err := ancestry(m, nil)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
	}
	seqs = append(seqs, append([]Mixin(nil), declared...))
	return merge(seqs)
}

// ancestry returns the C3 linearization of one mixin: the mixin itself
// followed by the merged linearizations of its bases.
func ancestry(m Mixin, trail []reflect.Type) ([]Mixin, error) {
	if _, ok := m.(*Spec); ok {
		return nil, &LinearizationError{
			Reason: fmt.Sprintf("%s is a composed module and cannot be used as a mixin (nested composition is unsupported)", MixinName(m)),
		}
	}
	t := mixinType(m)
	for _, seen := range trail {
		if seen == t {
			return nil, &LinearizationError{
				Reason: fmt.Sprintf("cyclic ancestry through %s", MixinName(m)),
			}
		}
	}
	ext, ok := m.(Extender)
	if !ok {
		return []Mixin{m}, nil
	}
	bases := ext.Extends()
	if len(bases) == 0 {
		return []Mixin{m}, nil
	}
	if err := checkDuplicates(bases); err != nil {
		return nil, err
	}
	trail = append(trail, t)
	seqs := make([][]Mixin, 0, len(bases)+1)
	for _, b := range bases {
		seq, err := ancestry(b, trail)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
	}
	seqs = append(seqs, append([]Mixin(nil), bases...))
	merged, err := merge(seqs)
	if err != nil {
		return nil, err
	}
	return append([]Mixin{m}, merged...), nil
}

// merge is the C3 merge: repeatedly take the head of the first sequence
// whose head does not appear in the tail of any sequence. If no such head
// exists the declared orders contradict each other.
func merge(seqs [][]Mixin) ([]Mixin, error) {
	work := make([][]Mixin, 0, len(seqs))
	for _, s := range seqs {
		if len(s) > 0 {
			work = append(work, s)
		}
	}

	var out []Mixin
	for len(work) > 0 {
		var head Mixin
		found := false
		for _, seq := range work {
			if inTail(mixinType(seq[0]), work) {
				continue
			}
			head = seq[0]
			found = true
			break
		}
		if !found {
			return nil, &LinearizationError{
				Reason: "conflicting base orders between " + describeHeads(work),
			}
		}
		out = append(out, head)

		ht := mixinType(head)
		next := work[:0]
		for _, seq := range work {
			if mixinType(seq[0]) == ht {
				seq = seq[1:]
			}
			if len(seq) > 0 {
				next = append(next, seq)
			}
		}
		work = next
	}
	return out, nil
}

// inTail reports whether type t appears past the head of any sequence.
func inTail(t reflect.Type, seqs [][]Mixin) bool {
	for _, seq := range seqs {
		for _, m := range seq[1:] {
			if mixinType(m) == t {
				return true
			}
		}
	}
	return false
}

func checkDuplicates(mixins []Mixin) error {
	seen := map[reflect.Type]bool{}
	for _, m := range mixins {
		t := mixinType(m)
		if seen[t] {
			return &LinearizationError{
				Reason: fmt.Sprintf("mixin %s is declared more than once at the same level", MixinName(m)),
			}
		}
		seen[t] = true
	}
	return nil
}

func describeHeads(seqs [][]Mixin) string {
	names := make([]string, 0, len(seqs))
	seen := map[string]bool{}
	for _, seq := range seqs {
		n := MixinName(seq[0])
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return strings.Join(names, ", ")
}
