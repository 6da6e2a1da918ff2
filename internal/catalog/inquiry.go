// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"github.com/google/uuid"

	"github.com/openchoreo/catalog/internal/document"
)

var inquiryAttributes = []string{"email", "fields", "id", "status"}

// Inquiry is a customer request. Fields are identified by a UUID "id".
type Inquiry struct {
	Tenant string
	ID     uuid.UUID
	Email  string
	Status string
	Fields document.ObjectList
}

func NewInquiry(tenant, email string) *Inquiry {
	return &Inquiry{Tenant: tenant, ID: uuid.New(), Email: email, Status: "open", Fields: document.ObjectList{}}
}

func (q *Inquiry) Ref() Ref { return Ref{Tenant: q.Tenant, Kind: KindInquiry, ID: q.ID} }

func (q *Inquiry) AttributeNames() []string { return inquiryAttributes }

func (q *Inquiry) Attribute(name string) (document.Value, bool) {
	switch name {
	case "id":
		return document.String(q.ID.String()), true
	case "email":
		return document.String(q.Email), true
	case "status":
		return document.String(q.Status), true
	case "fields":
		return q.Fields, true
	default:
		return nil, false
	}
}

func (q *Inquiry) SetAttribute(name string, v document.Value) error {
	var err error
	switch name {
	case "id":
		err = idAttr(name, q.ID, v)
	case "email":
		q.Email, err = assign(q.Email, name, v, stringAttr)
	case "status":
		q.Status, err = assign(q.Status, name, v, stringAttr)
	case "fields":
		q.Fields, err = assign(q.Fields, name, v, objectListAttr)
	default:
		err = unknownAttribute(KindInquiry, name)
	}
	return err
}

func (q *Inquiry) Clone() Entity {
	out := *q
	out.Fields = cloneObjects(q.Fields)
	return &out
}
