// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package document

// Clone returns a deep copy of v. Scalars are immutable and returned as-is.
func Clone(v Value) Value {
	switch typed := v.(type) {
	case Map:
		return CloneMap(typed)
	case ObjectList:
		if typed == nil {
			return ObjectList(nil)
		}
		out := make(ObjectList, len(typed))
		for i, item := range typed {
			out[i] = CloneMap(item)
		}
		return out
	case ValueList:
		if typed == nil {
			return ValueList(nil)
		}
		out := make(ValueList, len(typed))
		for i, item := range typed {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// CloneMap recursively copies a map and all its nested maps and lists.
func CloneMap(src Map) Map {
	if src == nil {
		return nil
	}
	out := make(Map, len(src))
	for k, v := range src {
		out[k] = Clone(v)
	}
	return out
}

// Equal reports whether two values have the same shape and contents.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Map:
		y, ok := b.(Map)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	case ObjectList:
		y, ok := b.(ObjectList)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case ValueList:
		y, ok := b.(ValueList)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Scalar:
		y, ok := b.(Scalar)
		return ok && x.Equal(y)
	default:
		return a == nil && b == nil
	}
}
