// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMixedList is returned when a list mixes maps with non-map elements.
var ErrMixedList = errors.New("badly formed data: cannot mix objects and values in a list")

// ErrUnsupportedType is returned for native values that have no document form.
var ErrUnsupportedType = errors.New("unsupported value type")

// ListKind is the classification of a native list.
type ListKind int

const (
	// ListEmpty is an empty list; it is handled like a ValueList.
	ListEmpty ListKind = iota
	// ListObject is a list whose elements are all maps.
	ListObject
	// ListValue is a list with no map elements.
	ListValue
)

// Classify tags a native list as empty, object or value list.
// Nested lists are not inspected.
func Classify(items []any) (ListKind, error) {
	if len(items) == 0 {
		return ListEmpty, nil
	}
	maps := 0
	for _, item := range items {
		if isNativeMap(item) {
			maps++
		}
	}
	switch maps {
	case 0:
		return ListValue, nil
	case len(items):
		return ListObject, nil
	default:
		return ListEmpty, ErrMixedList
	}
}

func isNativeMap(v any) bool {
	switch v.(type) {
	case map[string]any, Map:
		return true
	default:
		return false
	}
}

// FromNative converts decoded JSON-family data (map[string]any, []any and
// primitives) into a Value. Values that are already document nodes are
// returned unchanged.
func FromNative(v any) (Value, error) {
	return fromNative(v, "")
}

// MustFromNative is FromNative that panics on error. It is meant for literals.
func MustFromNative(v any) Value {
	val, err := FromNative(v)
	if err != nil {
		panic(err)
	}
	return val
}

func fromNative(v any, at string) (Value, error) {
	switch typed := v.(type) {
	case Value:
		return typed, nil
	case map[string]any:
		m := make(Map, len(typed))
		for k, child := range typed {
			cv, err := fromNative(child, at+"/"+escapeToken(k))
			if err != nil {
				return nil, err
			}
			m[k] = cv
		}
		return m, nil
	case []any:
		return listFromNative(typed, at)
	case []map[string]any:
		items := make([]any, len(typed))
		for i := range typed {
			items[i] = typed[i]
		}
		return listFromNative(items, at)
	case []string:
		list := make(ValueList, len(typed))
		for i, s := range typed {
			list[i] = String(s)
		}
		return list, nil
	}
	s, err := scalarFromNative(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location(at), err)
	}
	return s, nil
}

func listFromNative(items []any, at string) (Value, error) {
	kind, err := Classify(items)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location(at), err)
	}
	if kind == ListObject {
		list := make(ObjectList, len(items))
		for i, item := range items {
			cv, err := fromNative(item, at+"/"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			list[i] = cv.(Map)
		}
		return list, nil
	}
	list := make(ValueList, len(items))
	for i, item := range items {
		cv, err := fromNative(item, at+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		list[i] = cv
	}
	return list, nil
}

func scalarFromNative(v any) (Scalar, error) {
	switch n := v.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(n), nil
	case bool:
		return Bool(n), nil
	case int:
		return Int(int64(n)), nil
	case int8:
		return Int(int64(n)), nil
	case int16:
		return Int(int64(n)), nil
	case int32:
		return Int(int64(n)), nil
	case int64:
		return Int(n), nil
	case uint:
		return unsigned(uint64(n)), nil
	case uint8:
		return Int(int64(n)), nil
	case uint16:
		return Int(int64(n)), nil
	case uint32:
		return Int(int64(n)), nil
	case uint64:
		return unsigned(n), nil
	case float32:
		return newNumber(float64(n)), nil
	case float64:
		return newNumber(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return Scalar{}, fmt.Errorf("invalid number %q: %w", n.String(), err)
		}
		return Float(f), nil
	case Scalar:
		return n, nil
	default:
		return Scalar{}, fmt.Errorf("%w %T", ErrUnsupportedType, v)
	}
}

func unsigned(u uint64) Scalar {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

// ToNative converts a Value back into map[string]any, []any and primitives.
func ToNative(v Value) any {
	switch typed := v.(type) {
	case nil:
		return nil
	case Map:
		out := make(map[string]any, len(typed))
		for k, child := range typed {
			out[k] = ToNative(child)
		}
		return out
	case ObjectList:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = ToNative(item)
		}
		return out
	case ValueList:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = ToNative(item)
		}
		return out
	case Scalar:
		return typed.v
	default:
		return nil
	}
}

// escapeToken encodes a key as an RFC 6901 reference token.
func escapeToken(seg string) string {
	seg = strings.ReplaceAll(seg, "~", "~0")
	seg = strings.ReplaceAll(seg, "/", "~1")
	return seg
}

func location(at string) string {
	if at == "" {
		return "/"
	}
	return at
}
