// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package patch

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: a map key or an object list index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a map key (or, first in a path, attribute name) segment.
func Key(k string) Segment { return Segment{key: k} }

// Index returns an object list position segment.
func Index(i int) Segment { return Segment{index: i, isIndex: true} }

// IsIndex reports whether the segment addresses a list position.
func (s Segment) IsIndex() bool { return s.isIndex }

func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Path addresses a value inside a record. The first segment names an
// attribute; later segments descend through maps and object lists.
type Path []Segment

// String renders the path as a JSON Pointer.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		s := seg.String()
		s = strings.ReplaceAll(s, "~", "~0")
		s = strings.ReplaceAll(s, "/", "~1")
		b.WriteString(s)
	}
	return b.String()
}

// child returns a new path extended by seg; p is left untouched.
func (p Path) child(seg Segment) Path {
	next := make(Path, len(p)+1)
	copy(next, p)
	next[len(p)] = seg
	return next
}

func (p Path) clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}
