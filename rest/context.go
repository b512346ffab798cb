// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"io"
	"net/http"

	"github.com/z5labs/tigernet/rest/route"
)

// RequestContext is the live state of a single request as it moves through
// the dispatcher. It is never shared between requests and can not be reused
// once closed.
type RequestContext struct {
	req   *http.Request
	w     *responseWriter
	path  string
	state State

	onTransition func(State)
}

func newRequestContext(w http.ResponseWriter, r *http.Request) *RequestContext {
	return &RequestContext{
		req:   r,
		w:     &responseWriter{ResponseWriter: w},
		path:  route.Normalize(r.URL.Path),
		state: StateAccepted,
	}
}

// Context returns the request context.
func (rc *RequestContext) Context() context.Context {
	return rc.req.Context()
}

// WithValue attaches a value to the request context which is visible to
// every later middleware and action.
func (rc *RequestContext) WithValue(key, val any) {
	rc.req = rc.req.WithContext(context.WithValue(rc.req.Context(), key, val))
}

// Request returns the inbound request.
func (rc *RequestContext) Request() *http.Request {
	return rc.req
}

// Method returns the request method.
func (rc *RequestContext) Method() string {
	return rc.req.Method
}

// Path returns the normalized request path.
func (rc *RequestContext) Path() string {
	return rc.path
}

// Header returns the request headers.
func (rc *RequestContext) Header() http.Header {
	return rc.req.Header
}

// Body returns the request body stream. It can only be consumed once.
func (rc *RequestContext) Body() io.Reader {
	if rc.req.Body == nil {
		return http.NoBody
	}
	return rc.req.Body
}

// ResponseWriter returns the response writer. Writes fail with
// [ErrRequestClosed] once the request has been closed.
func (rc *RequestContext) ResponseWriter() http.ResponseWriter {
	return rc.w
}

// State returns the current dispatcher state of the request.
func (rc *RequestContext) State() State {
	return rc.state
}

// Written reports whether a response status has been sent.
func (rc *RequestContext) Written() bool {
	return rc.w.wroteHeader
}

// Status returns the response status code sent to the client.
func (rc *RequestContext) Status() int {
	if !rc.w.wroteHeader {
		return http.StatusOK
	}
	return rc.w.status
}

func (rc *RequestContext) transition(s State) {
	if rc.state == StateClosed {
		return
	}
	rc.state = s
	if rc.onTransition != nil {
		rc.onTransition(s)
	}
}

func (rc *RequestContext) close() {
	rc.transition(StateClosed)
	rc.w.closed = true
}

type responseWriter struct {
	http.ResponseWriter

	status      int
	wroteHeader bool
	written     int64
	closed      bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.closed || w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.closed {
		return 0, ErrRequestClosed
	}
	if !w.wroteHeader {
		w.status = http.StatusOK
		w.wroteHeader = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// Unwrap allows [http.ResponseController] to reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
