// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package middleware provides common [rest.Middleware] implementations.
package middleware

import (
	"context"
	"log/slog"

	"github.com/z5labs/tigernet/pkg/maskslog"
	"github.com/z5labs/tigernet/pkg/slogfield"
	"github.com/z5labs/tigernet/rest"

	"github.com/google/uuid"
)

// RequestIDHeader is the header used to carry the request id.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestIDFrom returns the request id attached by [RequestID], if any.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// RequestID attaches an id to every request. An id supplied by the client
// in the X-Request-Id header is reused, otherwise a random UUID is generated.
// The id is echoed back in the response headers.
func RequestID() rest.Middleware {
	return rest.MiddlewareFunc(func(rc *rest.RequestContext) error {
		id := rc.Header().Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		rc.WithValue(requestIDKey{}, id)
		rc.ResponseWriter().Header().Set(RequestIDHeader, id)
		return nil
	})
}

// AccessLogOption configures [AccessLog].
type AccessLogOption func(*accessLog)

// MaskHeaders replaces the values of the given headers with a fixed
// placeholder before they are logged.
func MaskHeaders(headers ...string) AccessLogOption {
	return func(al *accessLog) {
		al.masked = append(al.masked, headers...)
	}
}

type accessLog struct {
	masked []string
}

// AccessLog logs every request entering the pipeline, including its headers.
// The Authorization and Cookie headers are always masked.
func AccessLog(h slog.Handler, opts ...AccessLogOption) rest.Middleware {
	al := &accessLog{
		masked: []string{"Authorization", "Cookie"},
	}
	for _, opt := range opts {
		opt(al)
	}

	maskOpts := make([]maskslog.Option, 0, len(al.masked))
	for _, header := range al.masked {
		maskOpts = append(maskOpts, maskslog.Header(header))
	}
	log := slog.New(maskslog.NewHandler(h, maskOpts...))

	return rest.MiddlewareFunc(func(rc *rest.RequestContext) error {
		attrs := []slog.Attr{
			slogfield.Method(rc.Method()),
			slogfield.Route(rc.Path()),
			maskslog.Headers(rc.Header()),
		}
		if id, ok := RequestIDFrom(rc.Context()); ok {
			attrs = append(attrs, slogfield.RequestID(id))
		}

		log.LogAttrs(rc.Context(), slog.LevelInfo, "received request", attrs...)
		return nil
	})
}
