// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// defaultLogger is where construction warnings go unless WithLogger is used.
var defaultLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Option configures module construction.
type Option func(*buildOptions)

type buildOptions struct {
	logger    zerolog.Logger
	loggerSet bool
}

// WithLogger routes construction logging (including the missing-forward
// warning) to the given logger instead of the package default.
func WithLogger(l zerolog.Logger) Option {
	return func(o *buildOptions) {
		o.logger = l
		o.loggerSet = true
	}
}

// New constructs a module instance from its spec.
//
// hparams may be nil, a map[string]any, or an *AttributeBag; absent options
// are seeded from the collected configuration defaults, so a module whose
// mixins declare complete defaults constructs with New(spec, nil).
//
// The protocol is single-threaded and atomic:
//
//  1. Resolve the linearized mixin order (fails before any construction on
//     ambiguous ancestry or nested composition).
//  2. Run every mixin's Init exactly once, in order, against the shared
//     instance and bag.
//  3. Run the spec's own Body, once.
//  4. Fire every mixin's OnInitEnd hook, in the same order.
//  5. Run all attribute validations, aggregating every failure.
//
// Any fatal error returns (nil, err); no partially-initialized module is
// ever handed back. A module without a forward function constructs
// successfully but logs one warning.
func New(spec *Spec, hparams any, opts ...Option) (*Module, error) {
	if spec == nil {
		return nil, fmt.Errorf("nil module spec")
	}
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}
	if !bo.loggerSet {
		bo.logger = defaultLogger
	}
	log := bo.logger.With().Str("module", spec.name()).Logger()

	order, err := spec.MixinOrder()
	if err != nil {
		return nil, err
	}
	cfgs, err := spec.CollectConfigs()
	if err != nil {
		return nil, err
	}
	bag, err := BagOf(hparams)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", spec.name(), err)
	}
	for _, name := range cfgs.Names() {
		if !bag.Has(name) {
			opt, _ := cfgs.Get(name)
			bag.Set(name, opt.Default)
		}
	}

	m := &Module{
		spec:    spec,
		mixins:  order,
		hparams: bag,
		runID:   uuid.NewString(),
		log:     log,
		state:   StateCreated,
		forward: spec.Forward,
	}

	m.state = StateMixinsConstructing
	for _, mx := range order {
		log.Debug().Str("mixin", MixinName(mx)).Msg("running mixin constructor")
		if err := mx.Init(m, bag); err != nil {
			m.state = StateConstructionFailed
			return nil, fmt.Errorf("mixin %s: init: %w", MixinName(mx), err)
		}
	}

	m.state = StateOwnBodyExecuting
	if spec.Body != nil {
		if err := spec.Body(m); err != nil {
			m.state = StateConstructionFailed
			return nil, fmt.Errorf("module %s: init: %w", spec.name(), err)
		}
	}

	m.state = StateHooksFiring
	for _, mx := range order {
		if h, ok := mx.(PostInitHook); ok {
			h.OnInitEnd(m, bag)
		}
	}

	m.state = StateValidating
	var failures []AttributeFailure
	for _, mx := range order {
		v, ok := mx.(AttributeValidator)
		if !ok {
			continue
		}
		for _, attr := range v.ValidateAttributes(m) {
			failures = append(failures, AttributeFailure{Mixin: MixinName(mx), Attribute: attr})
		}
	}
	if spec.Validate != nil {
		for _, attr := range spec.Validate(m) {
			failures = append(failures, AttributeFailure{Mixin: spec.name(), Attribute: attr})
		}
	}
	if len(failures) > 0 {
		m.state = StateConstructionFailed
		return nil, &MissingAttributeError{Module: spec.name(), Failures: failures}
	}

	if !m.HasForward() {
		log.Warn().Msg("module does not implement forward; prediction will fail if invoked")
	}

	m.state = StateReady
	log.Debug().
		Str("run_id", m.runID).
		Int("mixins", len(order)).
		Int("options", cfgs.Len()).
		Msg("module constructed")
	return m, nil
}
