// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBagSetGetDottedPath(t *testing.T) {
	b := NewBag()
	b.Set("optimizer.lr", 0.01)
	b.Set("optimizer.momentum", 0.9)
	b.Set("batch_size", 32)

	lr, err := b.Float("optimizer.lr")
	require.NoError(t, err)
	assert.Equal(t, 0.01, lr)

	bs, err := b.Int("batch_size")
	require.NoError(t, err)
	assert.Equal(t, 32, bs)

	_, ok := b.Get("optimizer.nesterov")
	assert.False(t, ok)
}

func TestBagSetReplacesNonMapIntermediate(t *testing.T) {
	b := NewBag()
	b.Set("optimizer", "sgd")
	b.Set("optimizer.lr", 0.01)

	lr, err := b.Float("optimizer.lr")
	require.NoError(t, err)
	assert.Equal(t, 0.01, lr)
}

func TestBagGetDefault(t *testing.T) {
	b := NewBag()
	b.Set("seed", 42)
	assert.Equal(t, 42, b.GetDefault("seed", 7))
	assert.Equal(t, 7, b.GetDefault("other", 7))
}

func TestBagHasIgnoresNil(t *testing.T) {
	b := NewBag()
	b.Set("present", 1)
	b.Set("nilval", nil)
	assert.True(t, b.Has("present"))
	assert.False(t, b.Has("nilval"))
	assert.False(t, b.Has("absent"))
}

func TestBagIntAcceptsIntegralFloats(t *testing.T) {
	b := NewBag()
	b.Set("epochs", float64(10))
	b.Set("ratio", 0.5)

	n, err := b.Int("epochs")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	_, err = b.Int("ratio")
	assert.Error(t, err)
}

func TestBagFloatWidensInts(t *testing.T) {
	b := NewBag()
	b.Set("lr", 1)
	f, err := b.Float("lr")
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)
}

func TestBagTypedGetterErrors(t *testing.T) {
	b := NewBag()
	b.Set("name", "mnist")

	_, err := b.Int("name")
	assert.Error(t, err)
	_, err = b.Bool("name")
	assert.Error(t, err)
	_, err = b.String("absent")
	assert.Error(t, err)

	s, err := b.String("name")
	require.NoError(t, err)
	assert.Equal(t, "mnist", s)
}

func TestBagOf(t *testing.T) {
	b, err := BagOf(nil)
	require.NoError(t, err)
	assert.NotNil(t, b)

	src := map[string]any{"seed": 1}
	b, err = BagOf(src)
	require.NoError(t, err)
	seed, err := b.Int("seed")
	require.NoError(t, err)
	assert.Equal(t, 1, seed)

	same, err := BagOf(b)
	require.NoError(t, err)
	assert.Same(t, b, same)

	_, err = BagOf(42)
	assert.Error(t, err)
}

func TestBagKeysSorted(t *testing.T) {
	b := NewBag()
	b.Set("zeta", 1)
	b.Set("alpha", 2)
	b.Set("mid", 3)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, b.Keys())
}

func TestLoadBag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hparams.yaml")
	content := "batch_size: 8\nloss: mse_loss\noptimizer:\n  lr: 0.05\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	b, err := LoadBag(path)
	require.NoError(t, err)

	bs, err := b.Int("batch_size")
	require.NoError(t, err)
	assert.Equal(t, 8, bs)

	loss, err := b.String("loss")
	require.NoError(t, err)
	assert.Equal(t, "mse_loss", loss)

	lr, err := b.Float("optimizer.lr")
	require.NoError(t, err)
	assert.Equal(t, 0.05, lr)
}

func TestLoadBagMissingFile(t *testing.T) {
	_, err := LoadBag(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
