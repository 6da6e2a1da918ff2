// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package patch

import "github.com/openchoreo/catalog/internal/document"

// Record is the entity a patch is applied to.
//
// Attribute must return the live value held by the record: maps returned for
// document attributes are written to in place, so a copy would silently drop
// nested updates. Scalar attributes are returned as document.Scalar.
//
// SetAttribute replaces an attribute wholesale. It returns an error when the
// attribute does not exist or cannot hold the given value.
type Record interface {
	Attribute(name string) (document.Value, bool)
	SetAttribute(name string, v document.Value) error
}
