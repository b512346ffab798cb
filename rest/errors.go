// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrRequestClosed is returned when writing to a [RequestContext] whose
// response has already been closed.
var ErrRequestClosed = errors.New("rest: request is closed")

// StatusCoder can be implemented by any error returned from an action, or
// a middleware, to choose the HTTP status code of the error response.
//
// Errors with a status code below 500 have their message written to the
// client. Any other error is reported with the generic status text only.
type StatusCoder interface {
	StatusCode() int
}

// RouteNotFoundError occurs when no route is registered for the requested path.
type RouteNotFoundError struct {
	Path string
}

// Error implements the [builtin.error] interface.
func (e RouteNotFoundError) Error() string {
	return fmt.Sprintf("rest: no route registered for path: %s", e.Path)
}

// StatusCode implements the [StatusCoder] interface.
func (RouteNotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// VerbMismatchError occurs when a route exists for the requested path but
// it does not answer to the request method.
type VerbMismatchError struct {
	Path    string
	Method  string
	Allowed string
}

// Error implements the [builtin.error] interface.
func (e VerbMismatchError) Error() string {
	return fmt.Sprintf("rest: route %s does not answer to %s", e.Path, strings.ToUpper(e.Method))
}

// StatusCode implements the [StatusCoder] interface.
func (VerbMismatchError) StatusCode() int {
	return http.StatusNotFound
}

// ResolutionError occurs when the rester instance for an action could not
// be resolved from the service registry.
type ResolutionError struct {
	Action string
	Cause  error
}

// Error implements the [builtin.error] interface.
func (e ResolutionError) Error() string {
	return fmt.Sprintf("rest: failed to resolve rester for action %s: %s", e.Action, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ResolutionError) Unwrap() error {
	return e.Cause
}

// StatusCode implements the [StatusCoder] interface.
func (ResolutionError) StatusCode() int {
	return http.StatusInternalServerError
}

// BindingError occurs when the parameters of an action could not be bound
// from the request.
type BindingError struct {
	Action string
	Cause  error
}

// Error implements the [builtin.error] interface.
func (e BindingError) Error() string {
	return fmt.Sprintf("rest: failed to bind parameters of %s: %s", e.Action, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e BindingError) Unwrap() error {
	return e.Cause
}

// StatusCode implements the [StatusCoder] interface.
func (BindingError) StatusCode() int {
	return http.StatusBadRequest
}

// InvocationError wraps any error returned, or panic raised, by an action.
//
// The status code is decided by a [StatusCoder] in Cause, if any, and is
// 500 otherwise.
type InvocationError struct {
	Action string
	Cause  error
}

// Error implements the [builtin.error] interface.
func (e InvocationError) Error() string {
	return fmt.Sprintf("rest: action %s failed: %s", e.Action, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvocationError) Unwrap() error {
	return e.Cause
}

// ResponseEncodeError occurs when the value returned by an action could
// not be encoded as JSON.
type ResponseEncodeError struct {
	Action string
	Cause  error
}

// Error implements the [builtin.error] interface.
func (e ResponseEncodeError) Error() string {
	return fmt.Sprintf("rest: failed to encode response of %s: %s", e.Action, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ResponseEncodeError) Unwrap() error {
	return e.Cause
}

// StatusCode implements the [StatusCoder] interface.
func (ResponseEncodeError) StatusCode() int {
	return http.StatusInternalServerError
}

type errorBody struct {
	Error string `json:"error"`
}

// statusOf returns the status code and client facing message for err.
func statusOf(err error) (int, string) {
	var sc StatusCoder
	if !errors.As(err, &sc) {
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}

	status := sc.StatusCode()
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	if status >= 500 {
		return status, http.StatusText(status)
	}
	if serr, ok := sc.(error); ok {
		return status, serr.Error()
	}
	return status, http.StatusText(status)
}
