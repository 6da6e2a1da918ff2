// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package rules evaluates CEL validation rules against patched entities.
//
// Every rule is a boolean CEL expression over the variable `self`, which is
// bound to the entity's attributes as a map:
//
//	self.name.size() > 0
//	cat_unique(self.tags)
//
// A Set runs its rules in order and reports the first one that does not hold.
package rules

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
)

// ErrRuleViolation is returned when a rule evaluates to false, to a non-bool,
// or fails to evaluate.
var ErrRuleViolation = errors.New("rule violation")

// SelfVariable is the name the entity is bound to in rule expressions.
const SelfVariable = "self"

type rule struct {
	expr    string
	program cel.Program
}

// Set is an ordered list of compiled rules. The zero value holds no rules.
type Set struct {
	rules []rule
}

// NewEnv returns the CEL environment rules are compiled in.
func NewEnv() (*cel.Env, error) {
	opts := append(BaseCELExtensions(),
		cel.Variable(SelfVariable, cel.MapType(cel.StringType, cel.DynType)),
	)
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// Compile parses and checks every expression.
func Compile(exprs []string) (*Set, error) {
	set := &Set{}
	if len(exprs) == 0 {
		return set, nil
	}
	env, err := NewEnv()
	if err != nil {
		return nil, err
	}
	for _, expr := range exprs {
		ast, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("failed to compile rule %q: %w", expr, issues.Err())
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("failed to build program for rule %q: %w", expr, err)
		}
		set.rules = append(set.rules, rule{expr: expr, program: program})
	}
	return set, nil
}

// Len returns the number of rules in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Check evaluates the rules against doc and returns the first violation.
func (s *Set) Check(doc map[string]any) error {
	if s == nil {
		return nil
	}
	activation := map[string]any{SelfVariable: doc}
	for _, r := range s.rules {
		out, _, err := r.program.Eval(activation)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrRuleViolation, r.expr, err)
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return fmt.Errorf("%w: %s: result is %s, not bool", ErrRuleViolation, r.expr, out.Type().TypeName())
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrRuleViolation, r.expr)
		}
	}
	return nil
}
