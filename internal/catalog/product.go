// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"github.com/google/uuid"

	"github.com/openchoreo/catalog/internal/document"
)

var productAttributes = []string{"active", "attributes", "id", "name", "options", "price", "tags"}

// Product is a sellable catalog item. Options is a list of option groups
// identified by name, e.g. {name: size, values: [s, m]}.
type Product struct {
	Tenant     string
	ID         uuid.UUID
	Name       string
	Active     bool
	Price      float64
	Options    document.ObjectList
	Attributes document.Map
	Tags       document.ValueList
}

// NewProduct returns an inactive product with a fresh identifier.
func NewProduct(tenant, name string) *Product {
	return &Product{
		Tenant:     tenant,
		ID:         uuid.New(),
		Name:       name,
		Options:    document.ObjectList{},
		Attributes: document.Map{},
		Tags:       document.ValueList{},
	}
}

func (p *Product) Ref() Ref { return Ref{Tenant: p.Tenant, Kind: KindProduct, ID: p.ID} }

func (p *Product) AttributeNames() []string { return productAttributes }

func (p *Product) Attribute(name string) (document.Value, bool) {
	switch name {
	case "id":
		return document.String(p.ID.String()), true
	case "name":
		return document.String(p.Name), true
	case "active":
		return document.Bool(p.Active), true
	case "price":
		return document.Float(p.Price), true
	case "options":
		return p.Options, true
	case "attributes":
		return p.Attributes, true
	case "tags":
		return p.Tags, true
	default:
		return nil, false
	}
}

func (p *Product) SetAttribute(name string, v document.Value) error {
	var err error
	switch name {
	case "id":
		err = idAttr(name, p.ID, v)
	case "name":
		p.Name, err = assign(p.Name, name, v, stringAttr)
	case "active":
		p.Active, err = assign(p.Active, name, v, boolAttr)
	case "price":
		p.Price, err = assign(p.Price, name, v, floatAttr)
	case "options":
		p.Options, err = assign(p.Options, name, v, objectListAttr)
	case "attributes":
		p.Attributes, err = assign(p.Attributes, name, v, mapAttr)
	case "tags":
		p.Tags, err = assign(p.Tags, name, v, valueListAttr)
	default:
		err = unknownAttribute(KindProduct, name)
	}
	return err
}

func (p *Product) Clone() Entity {
	out := *p
	out.Options = cloneObjects(p.Options)
	out.Attributes = document.CloneMap(p.Attributes)
	out.Tags = cloneValues(p.Tags)
	return &out
}
