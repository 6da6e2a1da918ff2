// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package ops applies JSON Patch (RFC 6902) operation lists to records.
//
// Paths start with the attribute name, followed by the attribute's inner
// location. Besides plain RFC 6901 pointers, paths accept:
//   - bracketed indices: /options[0]/values
//   - item filters: /options/[?(@.name=='size')]/values/-
//
// A filter fans out to every matching item; a filter that matches nothing
// turns the operation into a no-op. The custom mergeShallow operation
// overlays map keys at the target without deep merging.
package ops

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/openchoreo/catalog/internal/document"
	"github.com/openchoreo/catalog/internal/patch"
)

// filterExpr recognises `@.field=='value'` inside `[?(...)]` selectors.
// Group 1 is the dotted field path, group 2 the expected value.
var filterExpr = regexp.MustCompile(`^@\.([A-Za-z0-9_.-]+)\s*==\s*['"](.*)['"]$`)

const (
	opAdd          = "add"
	opRemove       = "remove"
	opMove         = "move"
	opCopy         = "copy"
	opMergeShallow = "mergeshallow"
)

// Apply runs operations in order against rec and stops at the first failure.
func Apply(rec patch.Record, operations []Operation) error {
	for i, op := range operations {
		if err := ApplyOperation(rec, op); err != nil {
			return fmt.Errorf("operation %d (%s %s): %w", i, op.Op, op.Path, err)
		}
	}
	return nil
}

// ApplyOperation applies one operation. The touched attributes are lifted
// into a scratch document, patched there, then decoded and assigned back.
func ApplyOperation(rec patch.Record, operation Operation) error {
	op := strings.ToLower(operation.Op)

	attrs := []string{}
	attr, err := attributeOf(operation.Path)
	if err != nil {
		return err
	}
	attrs = append(attrs, attr)
	if op == opMove || op == opCopy {
		from, err := attributeOf(operation.From)
		if err != nil {
			return fmt.Errorf("invalid from: %w", err)
		}
		if from != attr {
			attrs = append(attrs, from)
		}
	}

	scratch := make(map[string]any, len(attrs))
	for _, name := range attrs {
		v, ok := rec.Attribute(name)
		if !ok {
			return &patch.MismatchError{Kind: patch.ErrInvalidAttribute, Key: name}
		}
		scratch[name] = document.ToNative(document.Clone(v))
	}

	switch op {
	case opAdd, "replace", opRemove, "test", opMove, opCopy:
		scratch, err = applyRFC6902(scratch, op, operation)
	case opMergeShallow:
		err = applyMergeShallow(scratch, operation.Path, operation.Value)
	default:
		return fmt.Errorf("unknown patch operation: %s", operation.Op)
	}
	if err != nil {
		return err
	}

	for _, name := range attrs {
		v, err := document.FromNative(scratch[name])
		if err != nil {
			return &patch.MismatchError{Kind: patch.ErrMixedList, Key: name, Err: err}
		}
		if err := rec.SetAttribute(name, v); err != nil {
			return &patch.MismatchError{Kind: patch.ErrInconsistentAttribute, Key: name, Err: err}
		}
	}
	return nil
}

// attributeOf returns the first segment of a path.
func attributeOf(rawPath string) (string, error) {
	segments := splitRawPath(rawPath)
	if len(segments) == 0 || segments[0] == "" {
		return "", fmt.Errorf("path %q must start with an attribute name", rawPath)
	}
	head := segments[0]
	if idx := strings.Index(head, "["); idx >= 0 {
		head = head[:idx]
	}
	if head == "" {
		return "", fmt.Errorf("path %q must start with an attribute name", rawPath)
	}
	return unescapeToken(head), nil
}

// applyRFC6902 expands the path (and from) and runs the operation at every
// resolved location. "add" creates missing parent maps first.
func applyRFC6902(doc map[string]any, op string, operation Operation) (map[string]any, error) {
	pointers, err := expandPaths(doc, operation.Path)
	if err != nil {
		return nil, err
	}
	if len(pointers) == 0 {
		return doc, nil
	}

	from := ""
	if op == opMove || op == opCopy {
		froms, err := expandPaths(doc, operation.From)
		if err != nil {
			return nil, err
		}
		if len(froms) != 1 {
			return nil, fmt.Errorf("from %q must resolve to exactly one location, got %d", operation.From, len(froms))
		}
		from = froms[0]
	}

	for _, pointer := range pointers {
		if op == opAdd {
			if err := ensureParentExists(doc, pointer); err != nil {
				return nil, err
			}
		}
		doc, err = applyJSONPatch(doc, op, pointer, from, operation.Value)
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// applyMergeShallow overlays the keys of value onto every map the path
// resolves to. Nested maps in value replace their targets wholesale.
func applyMergeShallow(doc map[string]any, rawPath string, value any) error {
	overlay, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("mergeShallow value must be an object")
	}
	pointers, err := expandPaths(doc, rawPath)
	if err != nil {
		return err
	}
	for _, pointer := range pointers {
		segments := splitPointer(pointer)
		parent, err := walk(doc, segments[:len(segments)-1], true)
		if err != nil {
			return err
		}
		if err := mergeShallowAt(parent, segments[len(segments)-1], overlay); err != nil {
			return err
		}
	}
	return nil
}

func mergeShallowAt(parent any, last string, overlay map[string]any) error {
	merge := func(existing any) any {
		target, ok := existing.(map[string]any)
		if !ok || target == nil {
			target = make(map[string]any, len(overlay))
		}
		for k, v := range overlay {
			target[k] = cloneNative(v)
		}
		return target
	}

	switch container := parent.(type) {
	case map[string]any:
		container[last] = merge(container[last])
		return nil
	case []any:
		index, err := strconv.Atoi(last)
		if err != nil || index < 0 || index >= len(container) {
			return fmt.Errorf("invalid array index %q for mergeShallow", last)
		}
		container[index] = merge(container[index])
		return nil
	default:
		return fmt.Errorf("mergeShallow parent must be object or array, got %T", parent)
	}
}

// --- Path expansion --------------------------------------------------------

// cursor is one candidate location during expansion.
type cursor struct {
	pointer []string
	value   any
}

func (c cursor) descend(segment string, value any) cursor {
	next := make([]string, len(c.pointer)+1)
	copy(next, c.pointer)
	next[len(c.pointer)] = segment
	return cursor{pointer: next, value: value}
}

// expandPaths turns a path expression into the JSON Pointers it resolves to.
func expandPaths(root map[string]any, rawPath string) ([]string, error) {
	cursors := []cursor{{pointer: []string{}, value: root}}
	for _, segment := range splitRawPath(rawPath) {
		next := make([]cursor, 0, len(cursors))
		for _, c := range cursors {
			expanded, err := expandSegment(c, segment)
			if err != nil {
				return nil, err
			}
			next = append(next, expanded...)
		}
		cursors = next
		if len(cursors) == 0 {
			return nil, nil
		}
	}

	pointers := make([]string, 0, len(cursors))
	for _, c := range cursors {
		pointers = append(pointers, buildPointer(c.pointer))
	}
	return pointers, nil
}

// expandSegment handles one slash-separated segment, which may chain a key
// with bracket selectors: `options[0]`, `[?(@.name=='size')][0]`, `-`.
func expandSegment(c cursor, segment string) ([]cursor, error) {
	current := []cursor{c}
	remaining := segment
	if remaining == "-" {
		return []cursor{c.descend("-", nil)}, nil
	}

	for len(remaining) > 0 {
		if !strings.HasPrefix(remaining, "[") {
			token := remaining
			if idx := strings.Index(remaining, "["); idx >= 0 {
				token, remaining = remaining[:idx], remaining[idx:]
			} else {
				remaining = ""
			}
			var err error
			current, err = applyToken(current, unescapeToken(token))
			if err != nil {
				return nil, err
			}
			continue
		}

		closeIdx := strings.Index(remaining, "]")
		if closeIdx == -1 {
			return nil, fmt.Errorf("unclosed bracket segment in %q", segment)
		}
		content := remaining[1:closeIdx]
		remaining = remaining[closeIdx+1:]

		var err error
		switch {
		case strings.HasPrefix(content, "?(") && strings.HasSuffix(content, ")"):
			current, err = applyFilter(current, content[2:len(content)-1])
		case content == "-":
			for i := range current {
				current[i] = current[i].descend("-", nil)
			}
		default:
			index, convErr := strconv.Atoi(content)
			if convErr != nil {
				return nil, fmt.Errorf("unsupported array index %q", content)
			}
			current, err = applyIndex(current, index)
		}
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

// applyToken descends by key, or by index when the value is an array and
// the token is numeric.
func applyToken(cursors []cursor, token string) ([]cursor, error) {
	next := make([]cursor, 0, len(cursors))
	for _, c := range cursors {
		switch node := c.value.(type) {
		case map[string]any:
			next = append(next, c.descend(token, node[token]))
		case []any:
			index, err := strconv.Atoi(token)
			if err != nil {
				return nil, fmt.Errorf("path segment %q expects an array index", token)
			}
			if index < 0 || index >= len(node) {
				return nil, fmt.Errorf("array index %d out of bounds", index)
			}
			next = append(next, c.descend(token, node[index]))
		case nil:
			next = append(next, c.descend(token, nil))
		default:
			return nil, fmt.Errorf("path segment %q expects an object, got %T", token, c.value)
		}
	}
	return next, nil
}

func applyIndex(cursors []cursor, index int) ([]cursor, error) {
	next := make([]cursor, 0, len(cursors))
	for _, c := range cursors {
		arr, ok := c.value.([]any)
		if !ok {
			return nil, fmt.Errorf("path segment expects an array, got %T", c.value)
		}
		if index < 0 || index >= len(arr) {
			return nil, fmt.Errorf("array index %d out of bounds", index)
		}
		next = append(next, c.descend(strconv.Itoa(index), arr[index]))
	}
	return next, nil
}

// applyFilter keeps the array items that satisfy expr. Non-arrays are skipped.
func applyFilter(cursors []cursor, expr string) ([]cursor, error) {
	matches := filterExpr.FindStringSubmatch(strings.TrimSpace(expr))
	if len(matches) != 3 {
		return nil, fmt.Errorf("unsupported filter expression: %s", expr)
	}
	field := strings.Split(matches[1], ".")
	expected := matches[2]

	next := []cursor{}
	for _, c := range cursors {
		arr, ok := c.value.([]any)
		if !ok {
			continue
		}
		for idx, item := range arr {
			if fieldEquals(item, field, expected) {
				next = append(next, c.descend(strconv.Itoa(idx), item))
			}
		}
	}
	return next, nil
}

func fieldEquals(item any, field []string, expected string) bool {
	current := item
	for _, segment := range field {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		current, ok = m[segment]
		if !ok {
			return false
		}
	}
	if current == nil {
		return expected == ""
	}
	return fmt.Sprintf("%v", current) == expected
}

// --- RFC 6902 execution ----------------------------------------------------

// applyJSONPatch runs a single operation through github.com/evanphx/json-patch.
func applyJSONPatch(doc map[string]any, op, pointer, from string, value any) (map[string]any, error) {
	entry := map[string]any{"op": op, "path": pointer}
	switch op {
	case opRemove:
	case opMove, opCopy:
		entry["from"] = from
	default:
		entry["value"] = value
	}

	patchBytes, err := json.Marshal([]map[string]any{entry})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal patch: %w", err)
	}
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	decoded, err := jsonpatch.DecodePatch(patchBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JSON patch: %w", err)
	}
	patched, err := decoded.Apply(docBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to apply JSON patch: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(patched))
	dec.UseNumber()
	var updated map[string]any
	if err := dec.Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal patched record: %w", err)
	}
	return updated, nil
}

// ensureParentExists creates missing intermediate maps along pointer. An
// array index cannot be invented, so a missing parent followed by a numeric
// segment is an error; `-` creates an empty array.
func ensureParentExists(root map[string]any, pointer string) error {
	segments := splitPointer(pointer)
	if len(segments) < 2 {
		return nil
	}
	_, err := walk(root, segments[:len(segments)-1], true, segments[len(segments)-1])
	return err
}

// walk follows segments from root. With create set, missing or null map
// entries become containers chosen by the segment that follows them.
func walk(root map[string]any, segments []string, create bool, last ...string) (any, error) {
	current := any(root)
	for i, seg := range segments {
		switch node := current.(type) {
		case map[string]any:
			child, exists := node[seg]
			if !exists || child == nil {
				if !create {
					return nil, fmt.Errorf("missing path at segment %s", seg)
				}
				next := ""
				if i+1 < len(segments) {
					next = segments[i+1]
				} else if len(last) > 0 {
					next = last[0]
				}
				switch {
				case next == "-":
					child = []any{}
				case isIndex(next):
					return nil, fmt.Errorf("array index %s out of bounds at segment %s", next, seg)
				default:
					child = map[string]any{}
				}
				node[seg] = child
			}
			current = child
		case []any:
			index, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("expected array index at segment %s", seg)
			}
			if index < 0 || index >= len(node) {
				return nil, fmt.Errorf("array index %d out of bounds at segment %s", index, seg)
			}
			current = node[index]
		default:
			return nil, fmt.Errorf("cannot traverse segment %s on type %T", seg, current)
		}
	}
	return current, nil
}

// --- Helpers ----------------------------------------------------------------

func isIndex(seg string) bool {
	_, err := strconv.Atoi(seg)
	return err == nil
}

func splitRawPath(path string) []string {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "/")
}

func splitPointer(pointer string) []string {
	parts := splitRawPath(pointer)
	for i, part := range parts {
		if part != "-" {
			parts[i] = unescapeToken(part)
		}
	}
	return parts
}

func buildPointer(segments []string) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteByte('/')
		if seg == "-" {
			b.WriteString(seg)
			continue
		}
		seg = strings.ReplaceAll(seg, "~", "~0")
		seg = strings.ReplaceAll(seg, "/", "~1")
		b.WriteString(seg)
	}
	return b.String()
}

func unescapeToken(seg string) string {
	seg = strings.ReplaceAll(seg, "~1", "/")
	seg = strings.ReplaceAll(seg, "~0", "~")
	return seg
}

func cloneNative(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, child := range typed {
			out[k] = cloneNative(child)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, child := range typed {
			out[i] = cloneNative(child)
		}
		return out
	default:
		return typed
	}
}
