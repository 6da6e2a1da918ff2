// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the tenant scoped catalog entities and the updater
// that patches them.
//
// Entities implement patch.Record with hand written accessors. Scalar
// attributes are type checked on assignment; list attributes only accept
// their own list kind (an empty list of either kind fits).
package catalog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/openchoreo/catalog/internal/document"
	"github.com/openchoreo/catalog/internal/patch"
)

var (
	// ErrNotFound is returned when the store has no entity for a reference.
	ErrNotFound = errors.New("not found")
	// ErrAttributeType is returned when an assigned value has the wrong type.
	ErrAttributeType = errors.New("wrong attribute type")
	// ErrReadOnly is returned when an assignment would change an identifier.
	ErrReadOnly = errors.New("read-only attribute")
	// ErrUnknownAttribute is returned when assigning an attribute the entity does not have.
	ErrUnknownAttribute = errors.New("unknown attribute")
)

// Kind names an entity type.
type Kind string

const (
	KindProduct Kind = "product"
	KindGroup   Kind = "group"
	KindInquiry Kind = "inquiry"
)

// ParseKind validates an entity kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindProduct, KindGroup, KindInquiry:
		return k, nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
}

// Ref addresses one entity of a tenant.
type Ref struct {
	Tenant string
	Kind   Kind
	ID     uuid.UUID
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s/%s", r.Tenant, r.Kind, r.ID)
}

// Entity is a patchable catalog record.
type Entity interface {
	patch.Record
	Ref() Ref
	// AttributeNames lists the attributes in lexical order.
	AttributeNames() []string
	Clone() Entity
}

// New returns an empty entity of kind with the given identifier.
func New(kind Kind, tenant string, id uuid.UUID) (Entity, error) {
	switch kind {
	case KindProduct:
		p := NewProduct(tenant, "")
		p.ID = id
		return p, nil
	case KindGroup:
		g := NewGroup(tenant, "")
		g.ID = id
		return g, nil
	case KindInquiry:
		q := NewInquiry(tenant, "")
		q.ID = id
		return q, nil
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}

// FromDocument builds an entity of kind from decoded attributes. Without an
// "id" attribute the entity gets a fresh identifier.
func FromDocument(kind Kind, tenant string, attrs document.Map) (Entity, error) {
	id := uuid.New()
	if v, ok := attrs["id"]; ok && !isNull(v) {
		s, _ := v.(document.Scalar)
		str, ok := s.AsString()
		if !ok {
			return nil, typeError("id", "a uuid", v)
		}
		parsed, err := uuid.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a uuid: %v", ErrAttributeType, "id", err)
		}
		id = parsed
	}

	e, err := New(kind, tenant, id)
	if err != nil {
		return nil, err
	}
	for _, name := range attrs.Keys() {
		if err := e.SetAttribute(name, document.Clone(attrs[name])); err != nil {
			return nil, fmt.Errorf("failed to build %s: %w", kind, err)
		}
	}
	return e, nil
}

// Document returns a deep copy of the entity's attributes.
func Document(e Entity) document.Map {
	out := make(document.Map)
	for _, name := range e.AttributeNames() {
		v, _ := e.Attribute(name)
		out[name] = document.Clone(v)
	}
	return out
}

// Native returns the entity's attributes as plain Go values.
func Native(e Entity) map[string]any {
	return document.ToNative(Document(e)).(map[string]any)
}

func unknownAttribute(kind Kind, name string) error {
	return fmt.Errorf("%w %q on %s", ErrUnknownAttribute, name, kind)
}

func typeError(name, want string, v document.Value) error {
	return fmt.Errorf("%w: %q expects %s, got %s", ErrAttributeType, name, want, describe(v))
}

func describe(v document.Value) string {
	if s, ok := v.(document.Scalar); ok {
		if s.IsNull() {
			return "null"
		}
		return fmt.Sprintf("%T", s.Interface())
	}
	return v.Kind().String()
}

func isNull(v document.Value) bool {
	s, ok := v.(document.Scalar)
	return v == nil || (ok && s.IsNull())
}

func stringAttr(name string, v document.Value) (string, error) {
	if isNull(v) {
		return "", nil
	}
	if s, ok := v.(document.Scalar); ok {
		if str, ok := s.AsString(); ok {
			return str, nil
		}
	}
	return "", typeError(name, "a string", v)
}

func boolAttr(name string, v document.Value) (bool, error) {
	if isNull(v) {
		return false, nil
	}
	if s, ok := v.(document.Scalar); ok {
		if b, ok := s.AsBool(); ok {
			return b, nil
		}
	}
	return false, typeError(name, "a bool", v)
}

func floatAttr(name string, v document.Value) (float64, error) {
	if isNull(v) {
		return 0, nil
	}
	if s, ok := v.(document.Scalar); ok {
		if f, ok := s.AsFloat(); ok {
			return f, nil
		}
	}
	return 0, typeError(name, "a number", v)
}

func mapAttr(name string, v document.Value) (document.Map, error) {
	if isNull(v) {
		return document.Map{}, nil
	}
	if m, ok := v.(document.Map); ok {
		return m, nil
	}
	return nil, typeError(name, "a map", v)
}

func objectListAttr(name string, v document.Value) (document.ObjectList, error) {
	switch typed := v.(type) {
	case document.ObjectList:
		return typed, nil
	case document.ValueList:
		if len(typed) == 0 {
			return document.ObjectList{}, nil
		}
	}
	if isNull(v) {
		return document.ObjectList{}, nil
	}
	return nil, typeError(name, "a list of objects", v)
}

func valueListAttr(name string, v document.Value) (document.ValueList, error) {
	switch typed := v.(type) {
	case document.ValueList:
		return typed, nil
	case document.ObjectList:
		if len(typed) == 0 {
			return document.ValueList{}, nil
		}
	}
	if isNull(v) {
		return document.ValueList{}, nil
	}
	return nil, typeError(name, "a list of values", v)
}

// idAttr accepts an assignment only when it names the current identifier.
func idAttr(name string, current uuid.UUID, v document.Value) error {
	s, ok := v.(document.Scalar)
	if !ok {
		return typeError(name, "a uuid", v)
	}
	str, ok := s.AsString()
	if !ok {
		return typeError(name, "a uuid", v)
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return fmt.Errorf("%w: %q is not a uuid: %v", ErrAttributeType, name, err)
	}
	if id != current {
		return fmt.Errorf("%w: %q", ErrReadOnly, name)
	}
	return nil
}

func cloneObjects(l document.ObjectList) document.ObjectList {
	return document.Clone(l).(document.ObjectList)
}

func cloneValues(l document.ValueList) document.ValueList {
	return document.Clone(l).(document.ValueList)
}

// assign converts v and keeps current when the conversion fails.
func assign[T any](current T, name string, v document.Value, convert func(string, document.Value) (T, error)) (T, error) {
	next, err := convert(name, v)
	if err != nil {
		return current, err
	}
	return next, nil
}
