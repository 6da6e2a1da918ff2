// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openchoreo/catalog/internal/catalog"
	"github.com/openchoreo/catalog/internal/config"
	"github.com/openchoreo/catalog/internal/document"
	"github.com/openchoreo/catalog/internal/patch"
	"github.com/openchoreo/catalog/internal/patch/ops"
	"github.com/openchoreo/catalog/internal/record"
)

type applyFlags struct {
	recordPath    string
	patchPath     string
	configPath    string
	identityField string
	strict        bool
	uuidIdentity  bool
	operations    bool
	kind          string
	tenant        string
	output        string
	verbose       bool
}

// NewRootCommand builds the catalog-patch command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "catalog-patch",
		Short:        "Apply structural patches to catalog records",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.AddCommand(newApplyCommand())
	return root
}

func newApplyCommand() *cobra.Command {
	f := &applyFlags{}
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Patch a record file and print the result",
		Example: `  catalog-patch apply --record product.yaml --patch patch.yaml
  catalog-patch apply --record product.yaml --patch ops.json --ops --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.recordPath, "record", "", "record file (JSON or YAML)")
	flags.StringVar(&f.patchPath, "patch", "", "patch document or operation list (JSON or YAML)")
	flags.StringVar(&f.configPath, "config", "", "config file")
	flags.StringVar(&f.identityField, "identity-field", "", "field identifying items of object lists")
	flags.BoolVar(&f.strict, "strict", false, "reject keys that do not already exist")
	flags.BoolVar(&f.uuidIdentity, "uuid-identity", false, "compare identifiers as UUIDs")
	flags.BoolVar(&f.operations, "ops", false, "treat the patch as a JSON Patch operation list")
	flags.StringVar(&f.kind, "kind", "", "load the record as a catalog entity of this kind (product, group, inquiry)")
	flags.StringVar(&f.tenant, "tenant", "default", "tenant owning the entity loaded with --kind")
	flags.StringVar(&f.output, "output", "", "output format: yaml or json")
	flags.BoolVar(&f.verbose, "verbose", false, "enable debug logging")
	_ = cmd.MarkFlagRequired("record")
	_ = cmd.MarkFlagRequired("patch")
	return cmd
}

// overrides collects the flags the user set explicitly.
func (f *applyFlags) overrides(cmd *cobra.Command) map[string]any {
	out := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("identity-field") {
		out[config.KeyIdentityField] = f.identityField
	}
	if flags.Changed("strict") {
		out[config.KeyAllowNewKeys] = !f.strict
	}
	if flags.Changed("uuid-identity") {
		out[config.KeyUUIDIdentity] = f.uuidIdentity
	}
	if flags.Changed("output") {
		out[config.KeyOutput] = f.output
	}
	if f.verbose {
		out[config.KeyLogLevel] = "debug"
	}
	return out
}

func runApply(cmd *cobra.Command, f *applyFlags) error {
	cfg, err := config.Load(f.configPath, f.overrides(cmd))
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)

	recordData, err := os.ReadFile(f.recordPath)
	if err != nil {
		return fmt.Errorf("failed to read record: %w", err)
	}
	patchData, err := os.ReadFile(f.patchPath)
	if err != nil {
		return fmt.Errorf("failed to read patch: %w", err)
	}

	logger.V(1).Info("Applying patch", "record", f.recordPath, "patch", f.patchPath, "operations", f.operations, "kind", f.kind)
	var result document.Map
	if f.kind != "" {
		result, err = applyEntity(cmd, cfg, f, logger, recordData, patchData)
	} else {
		result, err = applyRecord(cfg, f, recordData, patchData)
	}
	if err != nil {
		return err
	}

	encoded, err := encode(result, cfg.Output)
	if err != nil {
		return err
	}
	logger.V(1).Info("Patch applied", "attributes", len(result))
	_, err = cmd.OutOrStdout().Write(encoded)
	return err
}

// applyRecord patches a free-form record.
func applyRecord(cfg *config.Config, f *applyFlags, recordData, patchData []byte) (document.Map, error) {
	rec, err := record.Decode(recordData)
	if err != nil {
		return nil, err
	}
	if f.operations {
		operations, err := ops.Decode(patchData)
		if err != nil {
			return nil, err
		}
		if err := ops.Apply(rec, operations); err != nil {
			return nil, fmt.Errorf("failed to apply operations: %w", err)
		}
		return rec.Document(), nil
	}

	doc, err := document.DecodeYAML(patchData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode patch: %w", err)
	}
	if err := patch.Apply(rec, doc, cfg.PatchOptions()...); err != nil {
		return nil, fmt.Errorf("failed to apply patch: %w", err)
	}
	return rec.Document(), nil
}

// applyEntity loads the record as a catalog entity and patches it through
// the catalog updater, which also runs the kind's configured rules.
func applyEntity(cmd *cobra.Command, cfg *config.Config, f *applyFlags, logger logr.Logger, recordData, patchData []byte) (document.Map, error) {
	kind, err := catalog.ParseKind(f.kind)
	if err != nil {
		return nil, err
	}
	attrs, err := document.DecodeMap(recordData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	entity, err := catalog.FromDocument(kind, f.tenant, attrs)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	store := catalog.NewMemoryStore()
	if err := store.Put(ctx, entity); err != nil {
		return nil, err
	}
	opts, err := cfg.UpdaterOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		catalog.WithLogger(logger),
		catalog.WithPatchOptions(kind, f.entityPatchOptions(cmd, cfg)...),
	)
	updater := catalog.NewUpdater(store, opts...)

	var patched catalog.Entity
	if f.operations {
		operations, err := ops.Decode(patchData)
		if err != nil {
			return nil, err
		}
		patched, err = updater.Operations(ctx, entity.Ref(), operations)
		if err != nil {
			return nil, err
		}
	} else {
		doc, err := document.DecodeYAML(patchData)
		if err != nil {
			return nil, fmt.Errorf("failed to decode patch: %w", err)
		}
		patched, err = updater.Patch(ctx, entity.Ref(), doc)
		if err != nil {
			return nil, err
		}
	}
	return catalog.Document(patched), nil
}

// entityPatchOptions keeps the kind's identity settings unless a flag
// overrides them. Strictness always follows the configuration.
func (f *applyFlags) entityPatchOptions(cmd *cobra.Command, cfg *config.Config) []patch.Option {
	opts := []patch.Option{patch.WithAllowNewKeys(cfg.Patch.AllowNewKeys)}
	flags := cmd.Flags()
	if flags.Changed("identity-field") {
		opts = append(opts, patch.WithIdentityField(cfg.Patch.IdentityField))
	}
	if flags.Changed("uuid-identity") {
		equal := patch.EqualRaw
		if cfg.Patch.UUIDIdentity {
			equal = patch.EqualUUID
		}
		opts = append(opts, patch.WithEqual(equal))
	}
	return opts
}

func encode(doc document.Map, format string) ([]byte, error) {
	if format == "json" {
		out, err := document.MarshalJSON(doc)
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	}
	return document.MarshalYAML(doc)
}

func newLogger(w io.Writer, level string) logr.Logger {
	zapLevel := zapcore.InfoLevel
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), zapLevel)
	return zapr.NewLogger(zap.New(core))
}
