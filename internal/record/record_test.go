// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/openchoreo/catalog/internal/document"
	"github.com/openchoreo/catalog/internal/patch"
)

type RecordSuite struct {
	suite.Suite
	rec *Record
}

func (s *RecordSuite) SetupTest() {
	rec, err := Decode([]byte(`
name: widget
active: true
price: 12.5
description: null
attributes: {color: red}
tags: [new, sale]
options:
  - {name: size, values: [s, m]}
`))
	s.Require().NoError(err)
	s.rec = rec
}

func TestRecordSuite(t *testing.T) {
	suite.Run(t, new(RecordSuite))
}

// TestShapes verifies assignments are checked against the attribute's shape.
func (s *RecordSuite) TestShapes() {
	s.Run("accepts same shape", func() {
		s.Require().NoError(s.rec.SetAttribute("name", document.String("gadget")))
		s.Require().NoError(s.rec.SetAttribute("attributes", document.Map{}))
	})

	s.Run("lists are interchangeable", func() {
		s.Require().NoError(s.rec.SetAttribute("tags", document.ObjectList{{"name": document.String("x")}}))
		s.Require().NoError(s.rec.SetAttribute("options", document.ValueList{}))
	})

	s.Run("rejects different shape", func() {
		err := s.rec.SetAttribute("active", document.ValueList{document.Bool(true)})
		s.Require().ErrorIs(err, ErrShapeMismatch)

		err = s.rec.SetAttribute("attributes", document.String("red"))
		s.Require().ErrorIs(err, ErrShapeMismatch)
	})

	s.Run("null fits anything and a null attribute takes its first shape", func() {
		s.Require().NoError(s.rec.SetAttribute("price", document.Null()))
		s.Require().NoError(s.rec.SetAttribute("description", document.Map{"en": document.String("hi")}))
		s.Require().ErrorIs(s.rec.SetAttribute("description", document.String("hi")), ErrShapeMismatch)
	})

	s.Run("rejects unknown attribute", func() {
		s.Require().ErrorIs(s.rec.SetAttribute("bogus", document.Int(1)), ErrUnknownAttribute)
	})
}

// TestPatchThroughRecord exercises the engine against the generic record.
func (s *RecordSuite) TestPatchThroughRecord() {
	doc, err := document.DecodeJSON([]byte(`{
		"name": "gadget",
		"attributes": {"size": "xl"},
		"tags": ["clearance"],
		"options": [{"name": "size", "values": ["l"]}, {"name": "color", "values": ["red"]}]
	}`))
	s.Require().NoError(err)
	s.Require().NoError(patch.Apply(s.rec, doc))

	s.Equal(map[string]any{
		"name":        "gadget",
		"active":      true,
		"price":       12.5,
		"description": nil,
		"attributes":  map[string]any{"color": "red", "size": "xl"},
		"tags":        []any{"clearance"},
		"options": []any{
			map[string]any{"name": "size", "values": []any{"l"}},
			map[string]any{"name": "color", "values": []any{"red"}},
		},
	}, s.rec.ToNative())
}

// TestPatchInconsistentAttribute verifies shape failures surface as mismatches.
func (s *RecordSuite) TestPatchInconsistentAttribute() {
	err := patch.ApplyNative(s.rec, map[string]any{"active": []any{"yes"}})
	s.Require().ErrorIs(err, patch.ErrInconsistentAttribute)
	s.Require().ErrorIs(err, ErrShapeMismatch)
}

// TestCloneIsIndependent verifies a clone can be patched without touching the source.
func (s *RecordSuite) TestCloneIsIndependent() {
	cp := s.rec.Clone()
	s.Require().NoError(patch.ApplyNative(cp, map[string]any{
		"attributes": map[string]any{"color": "blue"},
		"options":    []any{map[string]any{"name": "size", "values": []any{"xs"}}},
	}))

	attrs, _ := s.rec.Attribute("attributes")
	s.Equal("red", document.ToNative(attrs).(map[string]any)["color"])
	opts, _ := s.rec.Attribute("options")
	s.Equal([]any{map[string]any{"name": "size", "values": []any{"s", "m"}}}, document.ToNative(opts))
}

func (s *RecordSuite) TestNames() {
	s.Equal([]string{"active", "attributes", "description", "name", "options", "price", "tags"}, s.rec.Names())
}

func TestFromNativeRejectsMixedList(t *testing.T) {
	_, err := FromNative(map[string]any{"opts": []any{map[string]any{"name": "a"}, 1}})
	if err == nil {
		t.Fatal("FromNative() expected error")
	}
}
