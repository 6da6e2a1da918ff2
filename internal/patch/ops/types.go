// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/openchoreo/catalog/internal/document"
)

// Operation is a single JSON Patch (RFC 6902) operation against a record.
// The first path segment names the record attribute.
type Operation struct {
	Op    string `json:"op" yaml:"op"`
	Path  string `json:"path" yaml:"path"`
	From  string `json:"from,omitempty" yaml:"from,omitempty"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Decode parses a JSON or YAML 1.2 list of operations.
func Decode(data []byte) ([]Operation, error) {
	var operations []Operation
	if err := yaml.Unmarshal(data, &operations); err != nil {
		return nil, fmt.Errorf("failed to decode patch operations: %w", err)
	}
	for i := range operations {
		operations[i].Value = document.NormalizeYAML(operations[i].Value)
	}
	return operations, nil
}
