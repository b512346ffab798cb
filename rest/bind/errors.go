// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bind

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedQueryTarget is returned when the query string is bound to a
// pointer which does not point to a struct.
var ErrUnsupportedQueryTarget = errors.New("bind: query can only be bound to a struct, map or scalar")

// AmbiguousParameterBindingError occurs when a parameter has more than one source.
type AmbiguousParameterBindingError struct {
	Param   string
	Sources []Source
}

// Error implements the [builtin.error] interface.
func (e AmbiguousParameterBindingError) Error() string {
	srcs := make([]string, len(e.Sources))
	for i, src := range e.Sources {
		srcs[i] = src.String()
	}
	return fmt.Sprintf("bind: parameter %s has more than one source: %s", e.Param, strings.Join(srcs, ", "))
}

// MissingBodyContentError occurs when a required body parameter receives an empty payload.
type MissingBodyContentError struct {
	Param string
}

// Error implements the [builtin.error] interface.
func (e MissingBodyContentError) Error() string {
	return fmt.Sprintf("bind: request body is empty but required by parameter: %s", e.Param)
}

// MissingHeaderValueError occurs when a required header is absent.
type MissingHeaderValueError struct {
	Param string
	Key   string
}

// Error implements the [builtin.error] interface.
func (e MissingHeaderValueError) Error() string {
	return fmt.Sprintf("bind: missing header %s required by parameter: %s", e.Key, e.Param)
}

// MissingQueryValueError occurs when a required scalar query parameter is absent.
type MissingQueryValueError struct {
	Param string
}

// Error implements the [builtin.error] interface.
func (e MissingQueryValueError) Error() string {
	return fmt.Sprintf("bind: missing query value for parameter: %s", e.Param)
}

// UnsupportedCharsetError occurs when the request declares a charset which
// can not be transcoded to UTF-8.
type UnsupportedCharsetError struct {
	Charset string
}

// Error implements the [builtin.error] interface.
func (e UnsupportedCharsetError) Error() string {
	return fmt.Sprintf("bind: unsupported charset: %s", e.Charset)
}

// UnknownTypeError occurs when a parameter has no static type to bind into.
type UnknownTypeError struct {
	Param string
}

// Error implements the [builtin.error] interface.
func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("bind: parameter has no type: %s", e.Param)
}

// DecodeError wraps any failure to deserialize a source into its parameter.
type DecodeError struct {
	Param  string
	Source Source
	Cause  error
}

// Error implements the [builtin.error] interface.
func (e DecodeError) Error() string {
	return fmt.Sprintf("bind: failed to decode %s into parameter %s: %s", e.Source, e.Param, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e DecodeError) Unwrap() error {
	return e.Cause
}
