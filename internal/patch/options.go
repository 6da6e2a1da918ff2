// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package patch

// DefaultIdentityField is the map key object list items are matched by.
const DefaultIdentityField = "name"

// Options configures a single Apply call.
type Options struct {
	// IdentityField is the key that identifies items of an object list.
	IdentityField string

	// Equal compares identifier values. Defaults to EqualRaw.
	Equal EqualFunc

	// AllowNewKeys permits creating map keys below the root attribute.
	// Root keys must always name an existing attribute.
	AllowNewKeys bool
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the options Apply uses when none are given.
func DefaultOptions() Options {
	return Options{
		IdentityField: DefaultIdentityField,
		Equal:         EqualRaw,
		AllowNewKeys:  true,
	}
}

// WithIdentityField sets the identifying field for object lists.
func WithIdentityField(field string) Option {
	return func(o *Options) {
		if field != "" {
			o.IdentityField = field
		}
	}
}

// WithEqual sets the identifier equality function.
func WithEqual(eq EqualFunc) Option {
	return func(o *Options) {
		if eq != nil {
			o.Equal = eq
		}
	}
}

// WithAllowNewKeys controls whether map keys may be created below the root.
func WithAllowNewKeys(allow bool) Option {
	return func(o *Options) {
		o.AllowNewKeys = allow
	}
}

// Strict rejects keys that do not already exist anywhere in the record.
func Strict() Option {
	return WithAllowNewKeys(false)
}

// WithOptions replaces all options at once.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		*o = opts
		if o.IdentityField == "" {
			o.IdentityField = DefaultIdentityField
		}
		if o.Equal == nil {
			o.Equal = EqualRaw
		}
	}
}

func newOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
