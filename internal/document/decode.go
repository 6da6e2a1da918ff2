// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	yamlv3 "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"
)

// DecodeJSON decodes a JSON document into a Value. Integers keep their
// integer form instead of degrading to float64.
func DecodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON document: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode JSON document: unexpected trailing data")
	}
	return FromNative(raw)
}

// DecodeYAML decodes a YAML 1.2 document into a Value. JSON is valid input.
// Unquoted y, n, yes, no, on and off stay strings.
func DecodeYAML(data []byte) (Value, error) {
	var native any
	if err := yamlv3.Unmarshal(data, &native); err != nil {
		return nil, fmt.Errorf("failed to decode YAML document: %w", err)
	}
	return FromNative(NormalizeYAML(native))
}

// NormalizeYAML rewrites maps with non-string keys, as produced by
// gopkg.in/yaml.v3, into map[string]any. Keys are formatted with %v.
func NormalizeYAML(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		for k, child := range typed {
			typed[k] = NormalizeYAML(child)
		}
		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, child := range typed {
			out[fmt.Sprintf("%v", k)] = NormalizeYAML(child)
		}
		return out
	case []any:
		for i, child := range typed {
			typed[i] = NormalizeYAML(child)
		}
		return typed
	default:
		return v
	}
}

// DecodeMap decodes a JSON or YAML document whose root must be a map.
func DecodeMap(data []byte) (Map, error) {
	v, err := DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(Map)
	if !ok {
		return nil, fmt.Errorf("document root must be a map, got %s", v.Kind())
	}
	return m, nil
}

// MarshalJSON encodes a Value as JSON.
func MarshalJSON(v Value) ([]byte, error) {
	return json.Marshal(ToNative(v))
}

// MarshalYAML encodes a Value as YAML.
func MarshalYAML(v Value) ([]byte, error) {
	return yaml.Marshal(ToNative(v))
}
