// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package patch applies partial update documents onto records.
//
// The merge is driven by the shape of the patch document:
//   - maps are merged key by key; keys absent from the patch are left alone
//   - scalars and value lists replace the target as a whole
//   - object lists are merged item by item, matching items through an
//     identifying field (default "name"); unmatched items are appended
//
// Root keys must name existing record attributes. Below the root, new map
// keys are created unless Strict is given. Apply stops at the first mismatch
// and mutates the record in place, so a record must be discarded after a
// failed call.
package patch

import (
	"errors"
	"fmt"

	"github.com/openchoreo/catalog/internal/document"
)

// Apply merges doc onto rec. doc must be a map keyed by attribute name.
func Apply(rec Record, doc document.Value, opts ...Option) error {
	root, ok := doc.(document.Map)
	if !ok {
		return mismatchf(ErrInvalidAttribute, nil, "", "patch document must be a map, got %s", kindOf(doc))
	}
	e := &engine{rec: rec, opts: newOptions(opts)}
	return e.patchMap(nil, root)
}

// ApplyNative decodes data (decoded JSON: map[string]any, []any, primitives)
// and merges it onto rec.
func ApplyNative(rec Record, data any, opts ...Option) error {
	doc, err := document.FromNative(data)
	if err != nil {
		if errors.Is(err, document.ErrMixedList) {
			return &MismatchError{Kind: ErrMixedList, Err: err}
		}
		return fmt.Errorf("failed to decode patch document: %w", err)
	}
	return Apply(rec, doc, opts...)
}

type engine struct {
	rec  Record
	opts Options
}

func (e *engine) patch(path Path, data document.Value) error {
	switch v := data.(type) {
	case document.Map:
		return e.patchMap(path, v)
	case document.Scalar:
		return replace(e.rec, path, v)
	case document.ObjectList:
		return e.patchObjectList(path, v)
	case document.ValueList:
		return replace(e.rec, path, document.Clone(v))
	default:
		return mismatchf(ErrInvalidKey, path, "", "unsupported patch value %T", data)
	}
}

// patchMap visits keys in lexical order so the reported error is stable.
func (e *engine) patchMap(path Path, data document.Map) error {
	for _, key := range data.Keys() {
		value := data[key]
		res, err := resolveKey(e.rec, path, key, e.opts)
		if err != nil {
			return err
		}
		switch res {
		case resolvedExists:
			if err := e.patch(path.child(Key(key)), value); err != nil {
				return err
			}
		case resolvedPermitted:
			if err := setKey(e.rec, path, key, document.Clone(value)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *engine) patchObjectList(path Path, items document.ObjectList) error {
	field := e.opts.IdentityField
	for _, item := range items {
		id, ok := identifierOf(item, field)
		if !ok {
			return mismatch(ErrMissingIdentifierKey, path, field)
		}
		res, idx, err := resolveIdentity(e.rec, path, id, e.opts)
		if err != nil {
			return err
		}
		switch res {
		case resolvedFound:
			if err := e.patchMap(path.child(Index(idx)), item); err != nil {
				return err
			}
		case resolvedPermitted:
			if err := appendItem(e.rec, path, document.CloneMap(item)); err != nil {
				return err
			}
		}
	}
	return nil
}
