// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package core implements the lifecycle-composition engine: mixin
// linearization, the ordered construction protocol, configuration schema
// aggregation, and the shared attribute bag.
//
// A composed module is declared as a Spec naming its mixins in order. New
// drives construction: each mixin's constructor runs exactly once against
// the shared module and attribute bag, in the deterministic linearized
// order, followed by the module's own constructor body, followed by each
// mixin's post-init hook in the same order, followed by attribute
// validation. Construction is atomic: any fatal error returns no instance.
package core
