// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"github.com/google/uuid"

	"github.com/openchoreo/catalog/internal/document"
)

var groupAttributes = []string{"id", "name", "options"}

// Group collects option groups shared by several products.
type Group struct {
	Tenant  string
	ID      uuid.UUID
	Name    string
	Options document.ObjectList
}

func NewGroup(tenant, name string) *Group {
	return &Group{Tenant: tenant, ID: uuid.New(), Name: name, Options: document.ObjectList{}}
}

func (g *Group) Ref() Ref { return Ref{Tenant: g.Tenant, Kind: KindGroup, ID: g.ID} }

func (g *Group) AttributeNames() []string { return groupAttributes }

func (g *Group) Attribute(name string) (document.Value, bool) {
	switch name {
	case "id":
		return document.String(g.ID.String()), true
	case "name":
		return document.String(g.Name), true
	case "options":
		return g.Options, true
	default:
		return nil, false
	}
}

func (g *Group) SetAttribute(name string, v document.Value) error {
	var err error
	switch name {
	case "id":
		err = idAttr(name, g.ID, v)
	case "name":
		g.Name, err = assign(g.Name, name, v, stringAttr)
	case "options":
		g.Options, err = assign(g.Options, name, v, objectListAttr)
	default:
		err = unknownAttribute(KindGroup, name)
	}
	return err
}

func (g *Group) Clone() Entity {
	out := *g
	out.Options = cloneObjects(g.Options)
	return &out
}
