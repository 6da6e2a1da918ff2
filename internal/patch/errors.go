// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package patch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openchoreo/catalog/internal/document"
)

// ErrMismatch matches every structural mismatch raised by the engine.
var ErrMismatch = errors.New("structural mismatch")

// Mismatch kinds. A *MismatchError always matches exactly one of these and
// ErrMismatch with errors.Is.
var (
	// ErrInvalidAttribute reports a root key without a matching record attribute.
	ErrInvalidAttribute = errors.New("invalid attribute")
	// ErrInvalidKey reports a key applied to a value that has no keyed access.
	ErrInvalidKey = errors.New("invalid key")
	// ErrNonExistingKey reports a key missing from a map when new keys are not allowed.
	ErrNonExistingKey = errors.New("non-existing key")
	// ErrMissingIdentifierKey reports an object list item without the identifying field.
	ErrMissingIdentifierKey = errors.New("missing identifier key in object")
	// ErrMixedList reports a list that mixes objects and values.
	ErrMixedList = document.ErrMixedList
	// ErrInconsistentAttribute reports a failed direct attribute assignment.
	ErrInconsistentAttribute = errors.New("inconsistent attribute")
)

// MismatchError is the single error type returned by Apply.
type MismatchError struct {
	// Kind is one of the mismatch sentinels above.
	Kind error
	// Path locates the container the failing key was applied to.
	Path Path
	// Key is the offending key, identifier field or identifier value.
	Key string
	// Err is the underlying cause, if any.
	Err error
}

func (e *MismatchError) Error() string {
	if e.Err != nil && errors.Is(e.Err, e.Kind) {
		return e.Err.Error()
	}
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(e.Path.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches ErrMismatch and the error's Kind.
func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch || target == e.Kind
}

func (e *MismatchError) Unwrap() error {
	return e.Err
}

func mismatch(kind error, path Path, key string) *MismatchError {
	return &MismatchError{Kind: kind, Path: path.clone(), Key: key}
}

func mismatchf(kind error, path Path, key string, format string, args ...any) *MismatchError {
	e := mismatch(kind, path, key)
	e.Err = fmt.Errorf(format, args...)
	return e
}
