// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package patch

import (
	"github.com/google/uuid"

	"github.com/openchoreo/catalog/internal/document"
)

// EqualFunc reports whether two identifier values denote the same item.
type EqualFunc func(a, b document.Scalar) bool

// EqualRaw compares identifiers by value with no normalisation.
func EqualRaw(a, b document.Scalar) bool {
	return a.Equal(b)
}

// EqualUUID compares string identifiers as UUIDs when both sides parse,
// so hyphenated, braced, urn and bare hex forms of one UUID match.
// Anything else falls back to EqualRaw.
func EqualUUID(a, b document.Scalar) bool {
	as, aok := a.AsString()
	bs, bok := b.AsString()
	if aok && bok {
		au, aerr := uuid.Parse(as)
		bu, berr := uuid.Parse(bs)
		if aerr == nil && berr == nil {
			return au == bu
		}
	}
	return EqualRaw(a, b)
}

// identifierOf returns the scalar value of field in item.
func identifierOf(item document.Map, field string) (document.Scalar, bool) {
	v, ok := item[field]
	if !ok {
		return document.Scalar{}, false
	}
	s, ok := v.(document.Scalar)
	return s, ok
}

// matchIndex returns the position of the first item whose identifying field
// equals id, or -1.
func matchIndex(list document.ObjectList, field string, id document.Scalar, eq EqualFunc) int {
	for i, item := range list {
		candidate, ok := identifierOf(item, field)
		if !ok {
			continue
		}
		if eq(candidate, id) {
			return i
		}
	}
	return -1
}
