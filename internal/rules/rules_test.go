// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"errors"
	"strings"
	"testing"

	"sigs.k8s.io/yaml"
)

const product = `
id: 6f1c2b9e-8d4a-4c1e-9b7a-2f3d4e5a6b7c
name: widget
status: draft
tags: [new, sale]
options:
  - name: size
    values: [s, m]
  - name: color
    values: [red, red]
`

func mustDoc(t *testing.T, src string) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return doc
}

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rules   []string
		wantErr string
	}{
		{name: "no rules"},
		{
			name:  "all rules hold",
			rules: []string{"self.name.size() > 0", "cat_unique(self.tags)", "cat_is_uuid(self.id)"},
		},
		{
			name:  "strings extension",
			rules: []string{"self.name.upperAscii() == 'WIDGET'"},
		},
		{
			name:  "sets extension",
			rules: []string{"sets.contains(['draft', 'published'], [self.status])"},
		},
		{
			name:    "first failing rule is reported",
			rules:   []string{"self.name == 'widget'", "self.options.all(o, cat_unique(o.values))", "false"},
			wantErr: "rule violation: self.options.all(o, cat_unique(o.values))",
		},
		{
			name:    "non-bool result",
			rules:   []string{"self.name"},
			wantErr: "not bool",
		},
		{
			name:    "missing key fails evaluation",
			rules:   []string{"self.price > 0"},
			wantErr: "rule violation: self.price > 0",
		},
		{
			name:    "name is not a uuid",
			rules:   []string{"cat_is_uuid(self.name)"},
			wantErr: "cat_is_uuid(self.name)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			set, err := Compile(tt.rules)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if set.Len() != len(tt.rules) {
				t.Fatalf("Len() = %d, want %d", set.Len(), len(tt.rules))
			}

			err = set.Check(mustDoc(t, product))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Check() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrRuleViolation) {
				t.Fatalf("Check() error = %v, want ErrRuleViolation", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Check() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestCompileRejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	_, err := Compile([]string{"self.name ==", "true"})
	if err == nil {
		t.Fatal("Compile() expected error")
	}
	if !strings.Contains(err.Error(), `failed to compile rule "self.name =="`) {
		t.Errorf("Compile() error = %q", err)
	}
}

func TestNilSet(t *testing.T) {
	t.Parallel()

	var set *Set
	if err := set.Check(map[string]any{}); err != nil {
		t.Errorf("Check() on nil set error = %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("Len() on nil set = %d", set.Len())
	}
}
