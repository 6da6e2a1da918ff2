// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package record provides a generic attribute record for the patch engine.
//
// The set of attributes is fixed when the record is built. Each attribute
// keeps the shape it was created with: scalar attributes only accept
// scalars, map attributes only maps, list attributes either list kind.
// Null is accepted everywhere, and a null attribute accepts anything.
package record

import (
	"errors"
	"fmt"
	"sort"

	"github.com/openchoreo/catalog/internal/document"
)

var (
	// ErrUnknownAttribute is returned when assigning an attribute the record does not have.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrShapeMismatch is returned when a value does not fit the attribute's shape.
	ErrShapeMismatch = errors.New("value does not fit attribute shape")
)

type shape int

const (
	shapeAny shape = iota
	shapeScalar
	shapeMap
	shapeList
)

func (s shape) String() string {
	switch s {
	case shapeScalar:
		return "scalar"
	case shapeMap:
		return "map"
	case shapeList:
		return "list"
	default:
		return "any"
	}
}

func shapeOf(v document.Value) shape {
	switch typed := v.(type) {
	case document.Map:
		return shapeMap
	case document.ObjectList, document.ValueList:
		return shapeList
	case document.Scalar:
		if typed.IsNull() {
			return shapeAny
		}
		return shapeScalar
	default:
		return shapeAny
	}
}

// Record is an attribute map with per-attribute shapes.
type Record struct {
	attrs  map[string]document.Value
	shapes map[string]shape
}

// New builds a record whose attributes and shapes come from attrs.
func New(attrs document.Map) *Record {
	r := &Record{
		attrs:  make(map[string]document.Value, len(attrs)),
		shapes: make(map[string]shape, len(attrs)),
	}
	for name, v := range attrs {
		if v == nil {
			v = document.Null()
		}
		r.attrs[name] = v
		r.shapes[name] = shapeOf(v)
	}
	return r
}

// FromNative builds a record from a decoded JSON object.
func FromNative(attrs map[string]any) (*Record, error) {
	v, err := document.FromNative(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode record attributes: %w", err)
	}
	return New(v.(document.Map)), nil
}

// Decode builds a record from a JSON or YAML object.
func Decode(data []byte) (*Record, error) {
	m, err := document.DecodeMap(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return New(m), nil
}

// Attribute returns the live value of an attribute.
func (r *Record) Attribute(name string) (document.Value, bool) {
	v, ok := r.attrs[name]
	return v, ok
}

// SetAttribute assigns an attribute if v fits its shape.
func (r *Record) SetAttribute(name string, v document.Value) error {
	want, ok := r.shapes[name]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownAttribute, name)
	}
	if v == nil {
		v = document.Null()
	}
	got := shapeOf(v)
	if want != shapeAny && got != shapeAny && got != want {
		return fmt.Errorf("%w: %q holds a %s, got %s", ErrShapeMismatch, name, want, v.Kind())
	}
	r.attrs[name] = v
	if want == shapeAny {
		r.shapes[name] = got
	}
	return nil
}

// Names returns the attribute names in lexical order.
func (r *Record) Names() []string {
	names := make([]string, 0, len(r.attrs))
	for name := range r.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Document returns a deep copy of all attributes as a map.
func (r *Record) Document() document.Map {
	out := make(document.Map, len(r.attrs))
	for name, v := range r.attrs {
		out[name] = document.Clone(v)
	}
	return out
}

// ToNative returns the attributes as map[string]any for encoding.
func (r *Record) ToNative() map[string]any {
	return document.ToNative(r.Document()).(map[string]any)
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	out := &Record{
		attrs:  make(map[string]document.Value, len(r.attrs)),
		shapes: make(map[string]shape, len(r.shapes)),
	}
	for name, v := range r.attrs {
		out.attrs[name] = document.Clone(v)
	}
	for name, s := range r.shapes {
		out.shapes[name] = s
	}
	return out
}
