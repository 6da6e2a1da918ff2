// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package patch

import (
	"github.com/openchoreo/catalog/internal/document"
)

// resolution is the outcome of looking a key up in the record.
type resolution int

const (
	// resolvedExists means the key is present and can be merged into.
	resolvedExists resolution = iota
	// resolvedPermitted means the key is absent and may be created.
	resolvedPermitted
	// resolvedFound means an object list item matched by identity.
	resolvedFound
)

// resolveKey decides whether key exists in the map at path. At the root
// (empty path) the key must name an existing attribute.
func resolveKey(rec Record, path Path, key string, opts Options) (resolution, error) {
	if len(path) == 0 {
		if _, ok := rec.Attribute(key); ok {
			return resolvedExists, nil
		}
		return 0, mismatch(ErrInvalidAttribute, nil, key)
	}

	leaf, err := Get(rec, path)
	if err != nil {
		return 0, err
	}
	m, ok := leaf.(document.Map)
	if !ok {
		return 0, mismatchf(ErrInvalidKey, path, key, "target is a %s", kindOf(leaf))
	}
	if _, ok := m[key]; ok {
		return resolvedExists, nil
	}
	if !opts.AllowNewKeys {
		return 0, mismatch(ErrNonExistingKey, path, key)
	}
	return resolvedPermitted, nil
}

// resolveIdentity looks up the object list item at path whose identifying
// field equals id. It returns the item index when found.
func resolveIdentity(rec Record, path Path, id document.Scalar, opts Options) (resolution, int, error) {
	leaf, err := Get(rec, path)
	if err != nil {
		return 0, -1, err
	}

	idx := -1
	switch list := leaf.(type) {
	case document.ObjectList:
		idx = matchIndex(list, opts.IdentityField, id, opts.Equal)
	case document.ValueList:
		if len(list) != 0 {
			return 0, -1, mismatchf(ErrInvalidKey, path, id.String(), "target is a %s", kindOf(leaf))
		}
	default:
		return 0, -1, mismatchf(ErrInvalidKey, path, id.String(), "target is a %s", kindOf(leaf))
	}

	if idx >= 0 {
		return resolvedFound, idx, nil
	}
	if !opts.AllowNewKeys {
		return 0, -1, mismatch(ErrNonExistingKey, path, id.String())
	}
	return resolvedPermitted, -1, nil
}
