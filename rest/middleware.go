// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

// Middleware intercepts a request before it is dispatched to its route.
//
// Returning an error stops the pipeline and the error is written as the
// response. A middleware which writes a response itself also stops the
// pipeline and the request is closed without being dispatched.
type Middleware interface {
	Intercept(*RequestContext) error
}

// MiddlewareFunc is a func implementation of [Middleware].
type MiddlewareFunc func(*RequestContext) error

// Intercept implements the [Middleware] interface.
func (f MiddlewareFunc) Intercept(rc *RequestContext) error {
	return f(rc)
}
