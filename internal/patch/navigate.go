// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package patch

import (
	"github.com/openchoreo/catalog/internal/document"
)

// Get returns the value at path inside rec.
func Get(rec Record, path Path) (document.Value, error) {
	if len(path) == 0 {
		return nil, mismatchf(ErrInvalidAttribute, path, "", "empty path")
	}
	head := path[0]
	if head.isIndex {
		return nil, mismatch(ErrInvalidAttribute, path[:1], head.String())
	}
	current, ok := rec.Attribute(head.key)
	if !ok {
		return nil, mismatch(ErrInvalidAttribute, nil, head.key)
	}

	for i := 1; i < len(path); i++ {
		seg := path[i]
		switch node := current.(type) {
		case document.Map:
			if seg.isIndex {
				return nil, mismatchf(ErrInvalidKey, path[:i], seg.String(), "map cannot be indexed by position")
			}
			child, ok := node[seg.key]
			if !ok {
				return nil, mismatch(ErrNonExistingKey, path[:i], seg.key)
			}
			current = child
		case document.ObjectList:
			if !seg.isIndex {
				return nil, mismatchf(ErrInvalidKey, path[:i], seg.key, "object list is addressed by position")
			}
			if seg.index < 0 || seg.index >= len(node) {
				return nil, mismatchf(ErrInvalidKey, path[:i], seg.String(), "index out of bounds")
			}
			current = node[seg.index]
		default:
			return nil, mismatchf(ErrInvalidKey, path[:i], seg.String(), "cannot descend into %s", kindOf(current))
		}
	}
	return current, nil
}

// setKey assigns leaf[key] = value where leaf is the map at path.
func setKey(rec Record, path Path, key string, value document.Value) error {
	leaf, err := Get(rec, path)
	if err != nil {
		return err
	}
	m, ok := leaf.(document.Map)
	if !ok {
		return mismatchf(ErrInvalidKey, path, key, "target is a %s", kindOf(leaf))
	}
	if m == nil {
		m = document.Map{key: value}
		return replace(rec, path, m)
	}
	m[key] = value
	return nil
}

// replace overwrites the value at path. A single-segment path assigns the
// record attribute directly.
func replace(rec Record, path Path, value document.Value) error {
	if len(path) == 0 {
		return mismatchf(ErrInvalidAttribute, path, "", "empty path")
	}
	if len(path) == 1 {
		name := path[0].String()
		if _, ok := rec.Attribute(name); !ok {
			return mismatch(ErrInvalidAttribute, nil, name)
		}
		if err := rec.SetAttribute(name, value); err != nil {
			e := mismatch(ErrInconsistentAttribute, nil, name)
			e.Err = err
			return e
		}
		return nil
	}

	parentPath, last := path[:len(path)-1], path[len(path)-1]
	parent, err := Get(rec, parentPath)
	if err != nil {
		return err
	}
	switch node := parent.(type) {
	case document.Map:
		if last.isIndex || node == nil {
			return mismatchf(ErrInvalidKey, parentPath, last.String(), "target is a map")
		}
		node[last.key] = value
		return nil
	case document.ObjectList:
		item, ok := value.(document.Map)
		if !last.isIndex || !ok || last.index < 0 || last.index >= len(node) {
			return mismatchf(ErrInvalidKey, parentPath, last.String(), "object list items must be replaced by objects in range")
		}
		node[last.index] = item
		return nil
	default:
		return mismatchf(ErrInvalidKey, parentPath, last.String(), "target is a %s", kindOf(parent))
	}
}

// appendItem appends item to the object list at path and writes the grown
// list back to its parent. An empty value list is promoted to an object list.
func appendItem(rec Record, path Path, item document.Map) error {
	target, err := Get(rec, path)
	if err != nil {
		return err
	}
	var grown document.ObjectList
	switch list := target.(type) {
	case document.ObjectList:
		grown = append(list, item)
	case document.ValueList:
		if len(list) != 0 {
			return mismatchf(ErrInvalidKey, path, "", "cannot append an object to a %s", kindOf(target))
		}
		grown = document.ObjectList{item}
	default:
		return mismatchf(ErrInvalidKey, path, "", "cannot append an object to a %s", kindOf(target))
	}
	return replace(rec, path, grown)
}

func kindOf(v document.Value) string {
	if v == nil {
		return "missing value"
	}
	if s, ok := v.(document.Scalar); ok && s.IsNull() {
		return "null"
	}
	return v.Kind().String()
}
