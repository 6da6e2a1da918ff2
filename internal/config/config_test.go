// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openchoreo/catalog/internal/catalog"
	"github.com/openchoreo/catalog/internal/document"
	"github.com/openchoreo/catalog/internal/patch"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		file      string
		overrides map[string]any
		want      Config
	}{
		{
			name: "defaults",
			want: Config{
				Patch:  PatchConfig{IdentityField: "name", AllowNewKeys: true},
				Log:    LogConfig{Level: "info"},
				Output: "yaml",
			},
		},
		{
			name: "file over defaults",
			file: `
patch:
  identityField: sku
  uuidIdentity: true
rules:
  product:
    - self.name.size() > 0
output: json
`,
			want: Config{
				Patch:  PatchConfig{IdentityField: "sku", AllowNewKeys: true, UUIDIdentity: true},
				Rules:  map[string][]string{"product": {"self.name.size() > 0"}},
				Log:    LogConfig{Level: "info"},
				Output: "json",
			},
		},
		{
			name: "overrides over file",
			file: `
patch:
  identityField: sku
log:
  level: debug
`,
			overrides: map[string]any{KeyIdentityField: "code", KeyAllowNewKeys: false},
			want: Config{
				Patch:  PatchConfig{IdentityField: "code", AllowNewKeys: false},
				Log:    LogConfig{Level: "debug"},
				Output: "yaml",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}
			got, err := Load(path, tt.overrides)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, *got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		file      string
		overrides map[string]any
		wantErr   string
	}{
		{name: "bad output", overrides: map[string]any{KeyOutput: "xml"}, wantErr: `unsupported output format "xml"`},
		{name: "bad log level", file: "log: {level: trace}", wantErr: `unsupported log level "trace"`},
		{name: "empty identity field", overrides: map[string]any{KeyIdentityField: ""}, wantErr: "must not be empty"},
		{name: "unknown rule kind", file: "rules: {order: [true]}", wantErr: `unknown entity kind "order"`},
		{name: "malformed yaml", file: "patch: [", wantErr: "failed to parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}
			_, err := Load(path, tt.overrides)
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestPatchOptions(t *testing.T) {
	t.Parallel()

	cfg := &Config{Patch: PatchConfig{IdentityField: "sku", AllowNewKeys: false, UUIDIdentity: true}}
	var opts patch.Options
	for _, opt := range cfg.PatchOptions() {
		opt(&opts)
	}
	if opts.IdentityField != "sku" || opts.AllowNewKeys || opts.Equal == nil {
		t.Errorf("PatchOptions() produced %+v", opts)
	}
	upper := document.String("6BA7B810-9DAD-11D1-80B4-00C04FD430C8")
	lower := document.String("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	if !opts.Equal(upper, lower) {
		t.Error("PatchOptions() with uuidIdentity should compare identifiers as UUIDs")
	}

	cfg.Patch.UUIDIdentity = false
	for _, opt := range cfg.PatchOptions() {
		opt(&opts)
	}
	if opts.Equal(upper, lower) {
		t.Error("PatchOptions() without uuidIdentity should compare identifiers raw")
	}
}

func TestRuleSets(t *testing.T) {
	t.Parallel()

	cfg := &Config{Rules: map[string][]string{
		"product": {"self.name.size() > 0", "cat_unique(self.tags)"},
		"inquiry": {"self.status != ''"},
	}}
	sets, err := cfg.RuleSets()
	if err != nil {
		t.Fatalf("RuleSets() error = %v", err)
	}
	if sets[catalog.KindProduct].Len() != 2 || sets[catalog.KindInquiry].Len() != 1 {
		t.Errorf("RuleSets() = %v", sets)
	}

	cfg.Rules["group"] = []string{"self.name =="}
	if _, err := cfg.RuleSets(); err == nil {
		t.Error("RuleSets() expected compile error")
	}

	opts, err := (&Config{Rules: map[string][]string{"group": {"true"}}}).UpdaterOptions()
	if err != nil || len(opts) != 1 {
		t.Errorf("UpdaterOptions() = %d options, error %v", len(opts), err)
	}
}
