// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// AttributeBag is the shared hyperparameter store of a module.
//
// It maps dotted-path keys to values over nested map[string]any storage.
// One bag is created per module construction, mutated cooperatively by every
// mixin during initialization, and kept for the lifetime of the module as
// its hparams.
//
// Reading an absent path never fabricates a value: Get reports absence
// explicitly and GetDefault returns the caller-supplied fallback.
type AttributeBag struct {
	data map[string]any
}

// NewBag creates an empty attribute bag.
func NewBag() *AttributeBag {
	return &AttributeBag{data: map[string]any{}}
}

// BagOf coerces the supported hparams inputs into a bag.
//
// Accepts nil (empty bag), map[string]any (adopted as the bag's storage),
// or an existing *AttributeBag (shared, not copied).
func BagOf(v any) (*AttributeBag, error) {
	switch h := v.(type) {
	case nil:
		return NewBag(), nil
	case *AttributeBag:
		if h == nil {
			return NewBag(), nil
		}
		return h, nil
	case map[string]any:
		return &AttributeBag{data: h}, nil
	default:
		return nil, fmt.Errorf("unsupported hparams type %T (want nil, map[string]any or *AttributeBag)", v)
	}
}

// LoadBag reads a YAML mapping from path into a new bag.
func LoadBag(path string) (*AttributeBag, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hparams file: %w", err)
	}
	data := map[string]any{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse hparams file %s: %w", path, err)
	}
	return &AttributeBag{data: data}, nil
}

// Set stores a value at a dotted path, creating intermediate maps as needed.
// A non-map intermediate value is replaced.
func (b *AttributeBag) Set(path string, v any) {
	parts := strings.Split(path, ".")
	node := b.data
	for _, p := range parts[:len(parts)-1] {
		next, ok := node[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[p] = next
		}
		node = next
	}
	node[parts[len(parts)-1]] = v
}

// Get returns the value at a dotted path and whether it is present.
func (b *AttributeBag) Get(path string) (any, bool) {
	parts := strings.Split(path, ".")
	node := b.data
	for _, p := range parts[:len(parts)-1] {
		next, ok := node[p].(map[string]any)
		if !ok {
			return nil, false
		}
		node = next
	}
	v, ok := node[parts[len(parts)-1]]
	return v, ok
}

// GetDefault returns the value at path, or def when absent.
func (b *AttributeBag) GetDefault(path string, def any) any {
	if v, ok := b.Get(path); ok {
		return v
	}
	return def
}

// Has reports whether path is present with a non-nil value.
func (b *AttributeBag) Has(path string) bool {
	v, ok := b.Get(path)
	return ok && v != nil
}

// Int returns the integer at path. Float values with an exact integer
// representation are accepted (YAML and flag sources disagree on numeric
// types).
func (b *AttributeBag) Int(path string) (int, error) {
	v, ok := b.Get(path)
	if !ok {
		return 0, fmt.Errorf("hparams: %q is not set", path)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	case float32:
		if n == float32(int(n)) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("hparams: %q is %T, not an integer", path, v)
}

// Float returns the float at path; integer values are widened.
func (b *AttributeBag) Float(path string) (float64, error) {
	v, ok := b.Get(path)
	if !ok {
		return 0, fmt.Errorf("hparams: %q is not set", path)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("hparams: %q is %T, not a float", path, v)
}

// String returns the string at path.
func (b *AttributeBag) String(path string) (string, error) {
	v, ok := b.Get(path)
	if !ok {
		return "", fmt.Errorf("hparams: %q is not set", path)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("hparams: %q is %T, not a string", path, v)
	}
	return s, nil
}

// Bool returns the boolean at path.
func (b *AttributeBag) Bool(path string) (bool, error) {
	v, ok := b.Get(path)
	if !ok {
		return false, fmt.Errorf("hparams: %q is not set", path)
	}
	t, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("hparams: %q is %T, not a bool", path, v)
	}
	return t, nil
}

// Keys returns the sorted top-level keys. Mostly useful for logging.
func (b *AttributeBag) Keys() []string {
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
