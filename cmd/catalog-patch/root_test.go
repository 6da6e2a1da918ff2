// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"sigs.k8s.io/yaml"

	"github.com/openchoreo/catalog/internal/catalog"
	"github.com/openchoreo/catalog/internal/patch"
)

const productRecord = `
name: widget
active: false
options:
  - name: size
    values: [s, m]
attributes:
  color: red
tags: [new]
`

var _ = Describe("apply", func() {
	var (
		dir    string
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	)

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	run := func(args ...string) error {
		cmd := NewRootCommand(stdout, stderr)
		cmd.SetArgs(append([]string{"apply"}, args...))
		return cmd.Execute()
	}

	output := func() map[string]any {
		var got map[string]any
		Expect(yaml.Unmarshal(stdout.Bytes(), &got)).To(Succeed())
		return got
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	Context("with a structural patch", func() {
		It("merges the patch and prints YAML", func() {
			rec := write("record.yaml", productRecord)
			doc := write("patch.yaml", `
active: true
attributes: {size: xl}
options:
  - {name: size, values: [l]}
  - {name: color, values: [red]}
`)
			Expect(run("--record", rec, "--patch", doc)).To(Succeed())

			got := output()
			Expect(got).To(HaveKeyWithValue("active", true))
			Expect(got).To(HaveKeyWithValue("attributes", map[string]any{"color": "red", "size": "xl"}))
			Expect(got["options"]).To(ConsistOf(
				map[string]any{"name": "size", "values": []any{"l"}},
				map[string]any{"name": "color", "values": []any{"red"}},
			))
		})

		It("prints JSON when asked", func() {
			rec := write("record.yaml", productRecord)
			doc := write("patch.json", `{"tags": ["sale"]}`)
			Expect(run("--record", rec, "--patch", doc, "--output", "json")).To(Succeed())

			Expect(stdout.String()).To(HavePrefix("{"))
			Expect(output()).To(HaveKeyWithValue("tags", []any{"sale"}))
		})

		It("rejects unknown root attributes", func() {
			rec := write("record.yaml", productRecord)
			doc := write("patch.yaml", `bogus: 1`)

			err := run("--record", rec, "--patch", doc)
			Expect(err).To(MatchError(patch.ErrInvalidAttribute))
			Expect(err.Error()).To(ContainSubstring(`invalid attribute "bogus"`))
			Expect(stdout.Len()).To(BeZero())
		})

		It("rejects new nested keys with --strict", func() {
			rec := write("record.yaml", productRecord)
			doc := write("patch.yaml", `attributes: {size: xl}`)

			Expect(run("--record", rec, "--patch", doc, "--strict")).To(MatchError(patch.ErrNonExistingKey))
		})

		It("uses the configured identity field", func() {
			rec := write("record.yaml", `
variants:
  - {sku: a1, stock: 1}
  - {sku: b2, stock: 4}
`)
			doc := write("patch.yaml", `variants: [{sku: b2, stock: 0}]`)
			cfg := write("config.yaml", `
patch:
  identityField: sku
`)
			Expect(run("--record", rec, "--patch", doc, "--config", cfg)).To(Succeed())
			Expect(output()["variants"]).To(Equal([]any{
				map[string]any{"sku": "a1", "stock": float64(1)},
				map[string]any{"sku": "b2", "stock": float64(0)},
			}))
		})

		It("reports items without the identity field", func() {
			rec := write("record.yaml", productRecord)
			doc := write("patch.yaml", `options: [{values: [xs]}]`)

			err := run("--record", rec, "--patch", doc, "--identity-field", "name")
			Expect(err).To(MatchError(patch.ErrMissingIdentifierKey))
		})

		It("validates the result against configured rules", func() {
			rec := write("record.yaml", productRecord)
			doc := write("patch.yaml", `tags: [sale, sale]`)
			cfg := write("config.yaml", `
rules:
  product:
    - cat_unique(self.tags)
`)
			err := run("--record", rec, "--patch", doc, "--config", cfg, "--kind", "product")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("rule violation: cat_unique(self.tags)"))
		})
	})

	Context("with --kind", func() {
		It("patches the record as a catalog entity", func() {
			rec := write("product.yaml", "id: 6ba7b810-9dad-11d1-80b4-00c04fd430c8\n"+productRecord)
			doc := write("patch.yaml", `
price: 12.5
options:
  - {name: size, values: [l]}
`)
			Expect(run("--record", rec, "--patch", doc, "--kind", "product", "--tenant", "acme")).To(Succeed())

			got := output()
			Expect(got).To(HaveKeyWithValue("id", "6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
			Expect(got).To(HaveKeyWithValue("price", 12.5))
			Expect(got["options"]).To(Equal([]any{map[string]any{"name": "size", "values": []any{"l"}}}))
		})

		It("matches inquiry fields by UUID", func() {
			rec := write("inquiry.yaml", `
email: buyer@example.com
fields:
  - {id: 6ba7b810-9dad-11d1-80b4-00c04fd430c8, label: quantity, value: 1}
`)
			doc := write("patch.yaml", `
fields:
  - {id: 6BA7B810-9DAD-11D1-80B4-00C04FD430C8, value: 2}
`)
			Expect(run("--record", rec, "--patch", doc, "--kind", "inquiry")).To(Succeed())

			fields := output()["fields"]
			Expect(fields).To(HaveLen(1))
			Expect(fields).To(ContainElement(HaveKeyWithValue("label", "quantity")))
			Expect(fields).To(ContainElement(HaveKeyWithValue("value", float64(2))))
		})

		It("applies operations through the updater", func() {
			rec := write("product.yaml", productRecord)
			doc := write("ops.yaml", `[{op: replace, path: /active, value: true}]`)
			Expect(run("--record", rec, "--patch", doc, "--kind", "product", "--ops")).To(Succeed())
			Expect(output()).To(HaveKeyWithValue("active", true))
		})

		It("rejects attributes the kind does not have", func() {
			rec := write("product.yaml", productRecord+"colour: red\n")
			doc := write("patch.yaml", `name: x`)

			err := run("--record", rec, "--patch", doc, "--kind", "product")
			Expect(err).To(MatchError(catalog.ErrUnknownAttribute))
			Expect(stdout.Len()).To(BeZero())
		})

		It("rejects scalar type changes", func() {
			rec := write("product.yaml", productRecord)
			doc := write("patch.yaml", `active: maybe`)

			err := run("--record", rec, "--patch", doc, "--kind", "product")
			Expect(err).To(MatchError(patch.ErrInconsistentAttribute))
		})

		It("rejects unknown kinds", func() {
			rec := write("product.yaml", productRecord)
			doc := write("patch.yaml", `name: x`)
			Expect(run("--record", rec, "--patch", doc, "--kind", "order")).To(MatchError(ContainSubstring(`unknown entity kind "order"`)))
		})
	})

	Context("with JSON Patch operations", func() {
		It("applies the operation list", func() {
			rec := write("record.yaml", productRecord)
			doc := write("ops.yaml", `
- op: add
  path: /options/[?(@.name=='size')]/values/-
  value: l
- op: remove
  path: /tags/0
`)
			Expect(run("--record", rec, "--patch", doc, "--ops", "--verbose")).To(Succeed())

			got := output()
			Expect(got["options"]).To(Equal([]any{map[string]any{"name": "size", "values": []any{"s", "m", "l"}}}))
			Expect(got["tags"]).To(BeEmpty())
			Expect(stderr.String()).To(ContainSubstring("Patch applied"))
		})
	})

	It("requires the record and patch flags", func() {
		Expect(run()).To(HaveOccurred())
	})

	It("fails on a missing record file", func() {
		doc := write("patch.yaml", `name: x`)
		err := run("--record", filepath.Join(dir, "absent.yaml"), "--patch", doc)
		Expect(err).To(MatchError(ContainSubstring("failed to read record")))
	})
})
