// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rester

import (
	"fmt"
	"reflect"
)

// InvalidCandidateError occurs when a discovery candidate is neither a
// usable constructor nor a value.
type InvalidCandidateError struct {
	Candidate reflect.Type
	Reason    string
}

// Error implements the [builtin.error] interface.
func (e InvalidCandidateError) Error() string {
	return fmt.Sprintf("rester: invalid candidate %v: %s", e.Candidate, e.Reason)
}

// AmbiguousActionError occurs when a method does not carry exactly one verb
// marker, counted across every action naming it.
type AmbiguousActionError struct {
	Owner  reflect.Type
	Method string
	Verbs  int
}

// Error implements the [builtin.error] interface.
func (e AmbiguousActionError) Error() string {
	return fmt.Sprintf("rester: action %s.%s must have exactly one verb but has %d", e.Owner, e.Method, e.Verbs)
}

// UnknownMethodError occurs when an action names a method the rester does not have.
type UnknownMethodError struct {
	Owner  reflect.Type
	Method string
}

// Error implements the [builtin.error] interface.
func (e UnknownMethodError) Error() string {
	return fmt.Sprintf("rester: %s has no exported method named %s", e.Owner, e.Method)
}

// ActionSignatureError occurs when an action method has an unsupported signature.
type ActionSignatureError struct {
	Owner  reflect.Type
	Method string
	Reason string
}

// Error implements the [builtin.error] interface.
func (e ActionSignatureError) Error() string {
	return fmt.Sprintf("rester: unsupported signature for %s.%s: %s", e.Owner, e.Method, e.Reason)
}
