// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads patch tool settings. Values are layered in order:
// built-in defaults, an optional YAML file, then explicit overrides (flags).
//
// Example file:
//
//	patch:
//	  identityField: name
//	  allowNewKeys: true
//	  uuidIdentity: false
//	rules:
//	  product:
//	    - self.name.size() > 0
//	log:
//	  level: info
//	output: yaml
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/openchoreo/catalog/internal/catalog"
	"github.com/openchoreo/catalog/internal/patch"
	"github.com/openchoreo/catalog/internal/rules"
)

const delim = "."

// Keys accepted in overrides.
const (
	KeyIdentityField = "patch.identityField"
	KeyAllowNewKeys  = "patch.allowNewKeys"
	KeyUUIDIdentity  = "patch.uuidIdentity"
	KeyLogLevel      = "log.level"
	KeyOutput        = "output"
)

// Config is the resolved tool configuration.
type Config struct {
	Patch  PatchConfig         `koanf:"patch"`
	Rules  map[string][]string `koanf:"rules"`
	Log    LogConfig           `koanf:"log"`
	Output string              `koanf:"output"`
}

type PatchConfig struct {
	IdentityField string `koanf:"identityField"`
	AllowNewKeys  bool   `koanf:"allowNewKeys"`
	UUIDIdentity  bool   `koanf:"uuidIdentity"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

func defaults() map[string]any {
	return map[string]any{
		KeyIdentityField: patch.DefaultIdentityField,
		KeyAllowNewKeys:  true,
		KeyUUIDIdentity:  false,
		KeyLogLevel:      "info",
		KeyOutput:        "yaml",
	}
}

// Load resolves the configuration. path may be empty; overrides use the
// dotted keys above.
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(delim)

	if err := k.Load(confmap.Provider(defaults(), delim), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(confmap.Provider(file, delim), nil); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, delim), nil); err != nil {
			return nil, fmt.Errorf("failed to load overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return out, nil
}

// Validate checks enumerated settings and rule kinds.
func (c *Config) Validate() error {
	if c.Patch.IdentityField == "" {
		return fmt.Errorf("%s must not be empty", KeyIdentityField)
	}
	switch c.Output {
	case "yaml", "json":
	default:
		return fmt.Errorf("unsupported output format %q", c.Output)
	}
	switch c.Log.Level {
	case "debug", "info", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.Log.Level)
	}
	for kind := range c.Rules {
		if _, err := catalog.ParseKind(kind); err != nil {
			return fmt.Errorf("invalid rules section: %w", err)
		}
	}
	return nil
}

// PatchOptions returns the engine options described by the patch section.
func (c *Config) PatchOptions() []patch.Option {
	opts := patch.DefaultOptions()
	opts.IdentityField = c.Patch.IdentityField
	opts.AllowNewKeys = c.Patch.AllowNewKeys
	if c.Patch.UUIDIdentity {
		opts.Equal = patch.EqualUUID
	}
	return []patch.Option{patch.WithOptions(opts)}
}

// RuleSets compiles the rules section per entity kind.
func (c *Config) RuleSets() (map[catalog.Kind]*rules.Set, error) {
	kinds := make([]string, 0, len(c.Rules))
	for kind := range c.Rules {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	out := make(map[catalog.Kind]*rules.Set, len(kinds))
	for _, name := range kinds {
		kind, err := catalog.ParseKind(name)
		if err != nil {
			return nil, err
		}
		set, err := rules.Compile(c.Rules[name])
		if err != nil {
			return nil, fmt.Errorf("rules for %s: %w", kind, err)
		}
		out[kind] = set
	}
	return out, nil
}

// UpdaterOptions turns the configuration into catalog updater options.
func (c *Config) UpdaterOptions() ([]catalog.UpdaterOption, error) {
	sets, err := c.RuleSets()
	if err != nil {
		return nil, err
	}
	opts := make([]catalog.UpdaterOption, 0, len(sets))
	for kind, set := range sets {
		opts = append(opts, catalog.WithRules(kind, set))
	}
	return opts, nil
}
