// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/openchoreo/catalog/internal/document"
	"github.com/openchoreo/catalog/internal/patch"
	"github.com/openchoreo/catalog/internal/patch/ops"
	"github.com/openchoreo/catalog/internal/rules"
)

// DefaultPatchOptions returns the engine options for a kind. Inquiry fields
// are keyed by UUID and compared by parsed value.
func DefaultPatchOptions(kind Kind) []patch.Option {
	switch kind {
	case KindInquiry:
		return []patch.Option{patch.WithIdentityField("id"), patch.WithEqual(patch.EqualUUID)}
	default:
		return []patch.Option{patch.WithIdentityField(patch.DefaultIdentityField)}
	}
}

// Updater loads an entity, patches a copy, validates it and saves it.
// The stored entity is left untouched unless every step succeeds.
type Updater struct {
	store   Store
	logger  logr.Logger
	options map[Kind][]patch.Option
	rules   map[Kind]*rules.Set
}

// UpdaterOption configures an Updater.
type UpdaterOption func(*Updater)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger logr.Logger) UpdaterOption {
	return func(u *Updater) { u.logger = logger }
}

// WithPatchOptions adds engine options for a kind on top of its defaults.
func WithPatchOptions(kind Kind, opts ...patch.Option) UpdaterOption {
	return func(u *Updater) { u.options[kind] = append(u.options[kind], opts...) }
}

// WithRules sets the validation rules for a kind.
func WithRules(kind Kind, set *rules.Set) UpdaterOption {
	return func(u *Updater) { u.rules[kind] = set }
}

func NewUpdater(store Store, opts ...UpdaterOption) *Updater {
	u := &Updater{
		store:   store,
		logger:  logr.Discard(),
		options: make(map[Kind][]patch.Option),
		rules:   make(map[Kind]*rules.Set),
	}
	for _, kind := range []Kind{KindProduct, KindGroup, KindInquiry} {
		u.options[kind] = DefaultPatchOptions(kind)
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Patch applies a structural patch document to the referenced entity.
func (u *Updater) Patch(ctx context.Context, ref Ref, doc document.Value) (Entity, error) {
	return u.update(ctx, ref, "patch", func(e Entity) error {
		return patch.Apply(e, doc, u.options[ref.Kind]...)
	})
}

// Operations applies a JSON Patch operation list to the referenced entity.
func (u *Updater) Operations(ctx context.Context, ref Ref, operations []ops.Operation) (Entity, error) {
	return u.update(ctx, ref, "operations", func(e Entity) error {
		return ops.Apply(e, operations)
	})
}

func (u *Updater) update(ctx context.Context, ref Ref, method string, apply func(Entity) error) (Entity, error) {
	logger := u.logger.WithValues("tenant", ref.Tenant, "kind", ref.Kind, "id", ref.ID, "method", method)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	current, err := u.store.Get(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", ref, err)
	}

	// Apply leaves a record in an undefined state on failure, so work on a copy.
	next := current.Clone()
	if err := apply(next); err != nil {
		logger.Error(err, "Patch rejected")
		return nil, fmt.Errorf("failed to patch %s: %w", ref, err)
	}
	if err := u.rules[ref.Kind].Check(Native(next)); err != nil {
		logger.Error(err, "Patched entity failed validation")
		return nil, fmt.Errorf("failed to validate %s: %w", ref, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := u.store.Put(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", ref, err)
	}
	logger.V(1).Info("Patched entity")
	return next, nil
}
