// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package di

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrRegistryFrozen is returned when registering into a frozen [Registry].
	ErrRegistryFrozen = errors.New("di: registry is frozen")

	// ErrNilAbstraction is returned when registering a nil abstraction type.
	ErrNilAbstraction = errors.New("di: abstraction type must not be nil")
)

// InvalidConstructorError occurs when a constructor does not have a
// supported shape.
type InvalidConstructorError struct {
	Constructor reflect.Type
	Reason      string
}

// Error implements the [builtin.error] interface.
func (e InvalidConstructorError) Error() string {
	if e.Constructor == nil {
		return fmt.Sprintf("di: invalid constructor: %s", e.Reason)
	}
	return fmt.Sprintf("di: invalid constructor %s: %s", e.Constructor, e.Reason)
}

// ImplementationMismatchError occurs when the implementation produced by a
// constructor does not satisfy the abstraction it is being bound to.
type ImplementationMismatchError struct {
	Abstraction    reflect.Type
	Implementation reflect.Type
}

// Error implements the [builtin.error] interface.
func (e ImplementationMismatchError) Error() string {
	return fmt.Sprintf("di: %s does not implement %s", e.Implementation, e.Abstraction)
}

// UnregisteredAbstractionError occurs when resolving an abstraction,
// directly or as a dependency, which has no binding.
type UnregisteredAbstractionError struct {
	Abstraction reflect.Type

	// RequiredBy is the abstraction whose constructor needed the
	// missing one. It is nil if the missing abstraction was the one
	// originally requested.
	RequiredBy reflect.Type
}

// Error implements the [builtin.error] interface.
func (e UnregisteredAbstractionError) Error() string {
	if e.RequiredBy == nil {
		return fmt.Sprintf("di: no binding registered for %s", e.Abstraction)
	}
	return fmt.Sprintf("di: no binding registered for %s required by %s", e.Abstraction, e.RequiredBy)
}

// ResolutionCycleError occurs when a dependency graph refers back to itself.
type ResolutionCycleError struct {
	// Cycle starts and ends with the same abstraction.
	Cycle []reflect.Type
}

// Error implements the [builtin.error] interface.
func (e ResolutionCycleError) Error() string {
	names := make([]string, len(e.Cycle))
	for i, t := range e.Cycle {
		names[i] = t.String()
	}
	return fmt.Sprintf("di: dependency cycle detected: %s", strings.Join(names, " -> "))
}

// ConstructorError wraps any error returned, or panic raised, by a constructor.
type ConstructorError struct {
	Implementation reflect.Type
	Cause          error
}

// Error implements the [builtin.error] interface.
func (e ConstructorError) Error() string {
	return fmt.Sprintf("di: failed to construct %s: %s", e.Implementation, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConstructorError) Unwrap() error {
	return e.Cause
}
