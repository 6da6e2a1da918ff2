// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"github.com/google/cel-go/ext"
	"github.com/google/uuid"
)

// BaseCELExtensions returns the CEL extensions available to catalog rules:
// optional types, the strings, lists and sets extensions, and the catalog
// custom functions.
func BaseCELExtensions() []cel.EnvOption {
	opts := []cel.EnvOption{
		cel.OptionalTypes(),
		ext.Strings(),
		ext.Lists(),
		ext.Sets(),
	}
	return append(opts, CustomFunctions()...)
}

// CustomFunctions returns the catalog specific CEL functions. They use the
// "cat_" prefix to stay clear of upstream names.
//
// cat_is_uuid(string) - reports whether the string parses as a UUID
//
//	cat_is_uuid(self.id)
//
// cat_unique(list) - reports whether no two list elements are equal
//
//	self.options.all(o, cat_unique(o.values))
func CustomFunctions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("cat_is_uuid",
			cel.Overload("cat_is_uuid_string", []*cel.Type{cel.StringType}, cel.BoolType,
				cel.UnaryBinding(func(arg ref.Val) ref.Val {
					s, ok := arg.Value().(string)
					if !ok {
						return types.MaybeNoSuchOverloadErr(arg)
					}
					_, err := uuid.Parse(s)
					return types.Bool(err == nil)
				}),
			),
		),
		cel.Function("cat_unique",
			cel.Overload("cat_unique_list", []*cel.Type{cel.ListType(cel.DynType)}, cel.BoolType,
				cel.UnaryBinding(uniqueFunction),
			),
		),
	}
}

func uniqueFunction(arg ref.Val) ref.Val {
	list, ok := arg.(traits.Lister)
	if !ok {
		return types.MaybeNoSuchOverloadErr(arg)
	}
	seen := []ref.Val{}
	for it := list.Iterator(); it.HasNext() == types.True; {
		item := it.Next()
		for _, prev := range seen {
			if prev.Equal(item) == types.True {
				return types.False
			}
		}
		seen = append(seen, item)
	}
	return types.True
}
