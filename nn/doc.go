// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the minimal numeric building blocks the lifecycle
// layer composes with: trainable parameters, a fully connected layer, and
// common loss functions.
//
// Stride deliberately does not own a tensor engine. Everything here works on
// plain [][]float32 batches (one row per sample) so that modules, datasets,
// and optimizers can be wired and tested without a heavyweight numeric
// backend. A production model would typically implement its forward pass on
// top of an external engine and only expose the same narrow contract.
//
// # Basic Usage
//
//	rng := rand.New(rand.NewSource(42))
//	layer := nn.NewLinear(10, 2, rng)
//	pred := layer.Forward(x)           // x: [batch, 10] -> pred: [batch, 2]
//	loss := nn.MSE(pred, target)
//
// # Loss Functions
//
// Losses are selected by name through module configuration:
//
//	fn, err := nn.LossByName("mse_loss")
package nn
