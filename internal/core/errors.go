// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForwardNotImplemented is returned when Forward is invoked on a module
// that never registered a forward function. Construction tolerates the
// absence (with a warning); invocation does not.
var ErrForwardNotImplemented = errors.New("forward is not implemented")

// LinearizationError reports that a module's mixin ancestry cannot be
// resolved to a single deterministic order, or that an unsupported nested
// composition was declared. It is raised before any constructor runs.
type LinearizationError struct {
	Module string // composed module name, when known
	Reason string
}

func (e *LinearizationError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("cannot linearize mixins of %s: %s", e.Module, e.Reason)
	}
	return fmt.Sprintf("cannot linearize mixins: %s", e.Reason)
}

// ConfigConflictError reports that two declaring sources define the same
// option name with differing definitions. Identical redeclarations are
// deduplicated and never reach this error.
type ConfigConflictError struct {
	Option   string
	First    string // source that declared the option first
	Second   string // source whose redeclaration conflicts
	Existing ConfigOption
	Incoming ConfigOption
}

func (e *ConfigConflictError) Error() string {
	return fmt.Sprintf(
		"config option %q declared by %s conflicts with earlier declaration by %s (existing %s, incoming %s)",
		e.Option, e.Second, e.First, e.Existing.describe(), e.Incoming.describe(),
	)
}

// AttributeFailure names one attribute a mixin requires but found absent
// after construction.
type AttributeFailure struct {
	Mixin     string
	Attribute string
}

func (f AttributeFailure) String() string {
	return fmt.Sprintf("%s requires %q", f.Mixin, f.Attribute)
}

// MissingAttributeError aggregates every missing required attribute found
// during the validation phase, not just the first, so a composition mistake
// can be fixed in one round-trip.
type MissingAttributeError struct {
	Module   string
	Failures []AttributeFailure
}

func (e *MissingAttributeError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.String()
	}
	return fmt.Sprintf("module %s is missing %d required attribute(s): %s",
		e.Module, len(e.Failures), strings.Join(parts, "; "))
}
