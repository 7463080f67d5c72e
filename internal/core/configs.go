// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"reflect"

	"github.com/spf13/pflag"
)

// OptionType declares the value type of a configuration option.
type OptionType int

// Supported option value types.
const (
	IntOption OptionType = iota
	FloatOption
	StringOption
	BoolOption
)

func (t OptionType) String() string {
	switch t {
	case IntOption:
		return "int"
	case FloatOption:
		return "float"
	case StringOption:
		return "string"
	case BoolOption:
		return "bool"
	default:
		return fmt.Sprintf("OptionType(%d)", int(t))
	}
}

// Strategy tags how an option's value is meant to be produced, e.g. a plain
// constant versus a value sampled by a hyperparameter search.
type Strategy string

// Known value-generation strategies.
const (
	Constant   Strategy = "constant"
	Choice     Strategy = "choice"
	Uniform    Strategy = "uniform"
	LogUniform Strategy = "loguniform"
)

// ConfigOption is one immutable option declaration: a name, a value type, a
// default, a value-generation strategy, and a human-readable description.
//
// Option names must be unique within a merged schema. Two sources may
// declare the same option only if the declarations are identical.
type ConfigOption struct {
	Name        string
	Type        OptionType
	Default     any
	Strategy    Strategy
	Choices     []any // allowed values, for Strategy == Choice
	Description string
}

// validate checks that the declaration is internally consistent.
func (o ConfigOption) validate() error {
	if o.Name == "" {
		return fmt.Errorf("config option without a name")
	}
	if !o.typeMatches(o.Default) {
		return fmt.Errorf("config option %q: default %v (%T) does not match declared type %s",
			o.Name, o.Default, o.Default, o.Type)
	}
	for _, c := range o.Choices {
		if !o.typeMatches(c) {
			return fmt.Errorf("config option %q: choice %v (%T) does not match declared type %s",
				o.Name, c, c, o.Type)
		}
	}
	return nil
}

func (o ConfigOption) typeMatches(v any) bool {
	switch o.Type {
	case IntOption:
		_, ok := v.(int)
		return ok
	case FloatOption:
		_, ok := v.(float64)
		return ok
	case StringOption:
		_, ok := v.(string)
		return ok
	case BoolOption:
		_, ok := v.(bool)
		return ok
	}
	return false
}

func (o ConfigOption) equal(other ConfigOption) bool {
	return reflect.DeepEqual(o, other)
}

func (o ConfigOption) describe() string {
	return fmt.Sprintf("{type: %s, default: %v, strategy: %s, description: %q}",
		o.Type, o.Default, o.Strategy, o.Description)
}

// Configs is an ordered, append-only collection of option declarations,
// keyed by name and preserving first-seen declaration order.
type Configs struct {
	order  []string
	byName map[string]ConfigOption
	source map[string]string // option name -> declaring source, for conflict reports
}

// NewConfigs creates an empty schema.
func NewConfigs() *Configs {
	return &Configs{byName: map[string]ConfigOption{}, source: map[string]string{}}
}

// Add appends an option declaration and returns the schema for chaining.
//
// An invalid declaration or a duplicate name inside one declaring source is
// a programming error at the declaration site and panics; cross-source
// duplicates are handled by Merge instead.
func (c *Configs) Add(opt ConfigOption) *Configs {
	if err := c.add(opt, ""); err != nil {
		panic(err)
	}
	return c
}

func (c *Configs) add(opt ConfigOption, source string) error {
	if err := opt.validate(); err != nil {
		return err
	}
	if opt.Strategy == "" {
		opt.Strategy = Constant
	}
	if existing, ok := c.byName[opt.Name]; ok {
		if existing.equal(opt) {
			// Idempotent redeclaration, e.g. a shared base option.
			return nil
		}
		return &ConfigConflictError{
			Option:   opt.Name,
			First:    c.source[opt.Name],
			Second:   source,
			Existing: existing,
			Incoming: opt,
		}
	}
	c.order = append(c.order, opt.Name)
	c.byName[opt.Name] = opt
	c.source[opt.Name] = source
	return nil
}

// Merge folds another schema into this one.
//
// Identical redeclarations deduplicate silently; a name redeclared with any
// differing field returns a *ConfigConflictError. The source name is
// recorded for diagnostics.
func (c *Configs) Merge(other *Configs, source string) error {
	if other == nil {
		return nil
	}
	for _, name := range other.order {
		if err := c.add(other.byName[name], source); err != nil {
			return err
		}
	}
	return nil
}

// Names returns option names in first-seen declaration order.
func (c *Configs) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Get returns the declaration for name.
func (c *Configs) Get(name string) (ConfigOption, bool) {
	opt, ok := c.byName[name]
	return opt, ok
}

// Len returns the number of declared options.
func (c *Configs) Len() int {
	return len(c.order)
}

// Defaults returns a fresh bag holding every option's declared default.
func (c *Configs) Defaults() *AttributeBag {
	bag := NewBag()
	for _, name := range c.order {
		bag.Set(name, c.byName[name].Default)
	}
	return bag
}

// BindFlags declares one typed command-line flag per option, with the
// option's default and description. This is a one-directional adapter from
// the schema to an external argument parser.
func (c *Configs) BindFlags(fs *pflag.FlagSet) {
	for _, name := range c.order {
		opt := c.byName[name]
		switch opt.Type {
		case IntOption:
			fs.Int(name, opt.Default.(int), opt.Description)
		case FloatOption:
			fs.Float64(name, opt.Default.(float64), opt.Description)
		case StringOption:
			fs.String(name, opt.Default.(string), opt.Description)
		case BoolOption:
			fs.Bool(name, opt.Default.(bool), opt.Description)
		}
	}
}

// BagFromFlags reads parsed flag values back into a bag, one entry per
// declared option. Options with Strategy == Choice are checked against
// their allowed values.
func (c *Configs) BagFromFlags(fs *pflag.FlagSet) (*AttributeBag, error) {
	bag := NewBag()
	for _, name := range c.order {
		opt := c.byName[name]
		var (
			v   any
			err error
		)
		switch opt.Type {
		case IntOption:
			v, err = fs.GetInt(name)
		case FloatOption:
			v, err = fs.GetFloat64(name)
		case StringOption:
			v, err = fs.GetString(name)
		case BoolOption:
			v, err = fs.GetBool(name)
		}
		if err != nil {
			return nil, fmt.Errorf("read flag %q: %w", name, err)
		}
		if opt.Strategy == Choice && len(opt.Choices) > 0 {
			if !allowed(v, opt.Choices) {
				return nil, fmt.Errorf("flag %q: value %v is not one of %v", name, v, opt.Choices)
			}
		}
		bag.Set(name, v)
	}
	return bag, nil
}

func allowed(v any, choices []any) bool {
	for _, c := range choices {
		if v == c {
			return true
		}
	}
	return false
}
