// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package document provides the tagged value tree that patch documents and
// document attributes are decoded into.
//
// A Value is exactly one of:
//   - Map: string keys to Values
//   - ObjectList: a list whose elements are all Maps
//   - ValueList: a list with no Map elements (scalars and nested lists)
//   - Scalar: string, int64, float64, bool or null
//
// Lists are classified once, when they are built from native data, so a list
// that mixes maps and non-maps never becomes a Value.
package document

import (
	"fmt"
	"math"
	"sort"
)

// Kind names the variant of a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindMap
	KindObjectList
	KindValueList
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMap:
		return "map"
	case KindObjectList:
		return "object list"
	case KindValueList:
		return "value list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a node of a document tree. The set of implementations is closed.
type Value interface {
	Kind() Kind
	isValue()
}

// Map is a keyed document node.
type Map map[string]Value

// ObjectList is a list of maps, matched item by item through an identifying field.
type ObjectList []Map

// ValueList is a list without maps. It is always replaced as a whole.
type ValueList []Value

// Scalar wraps a leaf value: string, int64, float64, bool or nil.
type Scalar struct {
	v any
}

func (Map) Kind() Kind        { return KindMap }
func (ObjectList) Kind() Kind { return KindObjectList }
func (ValueList) Kind() Kind  { return KindValueList }
func (Scalar) Kind() Kind     { return KindScalar }

func (Map) isValue()        {}
func (ObjectList) isValue() {}
func (ValueList) isValue()  {}
func (Scalar) isValue()     {}

// Keys returns the map keys in lexical order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns a string scalar.
func String(s string) Scalar { return Scalar{v: s} }

// Int returns an integer scalar.
func Int(i int64) Scalar { return Scalar{v: i} }

// Float returns a floating point scalar.
func Float(f float64) Scalar { return Scalar{v: f} }

// Bool returns a boolean scalar.
func Bool(b bool) Scalar { return Scalar{v: b} }

// Null returns the null scalar.
func Null() Scalar { return Scalar{} }

// Interface returns the wrapped Go value.
func (s Scalar) Interface() any { return s.v }

// IsNull reports whether the scalar is null.
func (s Scalar) IsNull() bool { return s.v == nil }

// AsString returns the scalar as a string when it holds one.
func (s Scalar) AsString() (string, bool) {
	str, ok := s.v.(string)
	return str, ok
}

// AsBool returns the scalar as a bool when it holds one.
func (s Scalar) AsBool() (bool, bool) {
	b, ok := s.v.(bool)
	return b, ok
}

// AsFloat returns the scalar as a float64 when it holds a number.
func (s Scalar) AsFloat() (float64, bool) {
	return s.number()
}

func (s Scalar) String() string {
	if s.v == nil {
		return "null"
	}
	return fmt.Sprintf("%v", s.v)
}

// Equal compares two scalars by value. Two integers compare exactly; an
// integer and a float compare numerically. No other conversion is applied.
func (s Scalar) Equal(other Scalar) bool {
	if li, ok := s.v.(int64); ok {
		if ri, ok := other.v.(int64); ok {
			return li == ri
		}
	}
	ln, lok := s.number()
	rn, rok := other.number()
	if lok || rok {
		return lok && rok && ln == rn
	}
	return s.v == other.v
}

func (s Scalar) number() (float64, bool) {
	switch n := s.v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func newNumber(f float64) Scalar {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Int(int64(f))
	}
	return Float(f)
}
