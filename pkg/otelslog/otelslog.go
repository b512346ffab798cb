// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelslog provides a OpenTelemetry aware slog.Handler implementation.
package otelslog

import (
	"context"
	"log/slog"

	"github.com/z5labs/tigernet/pkg/slogfield"

	"go.opentelemetry.io/otel/trace"
)

// Option configures the Handler.
type Option func(*Handler)

// GoogleCloud formats the span context using the special fields understood
// by Google Cloud Logging, so log entries are correlated with Cloud Trace.
func GoogleCloud(projectID string) Option {
	return func(h *Handler) {
		h.attrs = func(sc trace.SpanContext) []slog.Attr {
			return []slog.Attr{
				slogfield.String("logging.googleapis.com/trace", "projects/"+projectID+"/traces/"+sc.TraceID().String()),
				slogfield.String("logging.googleapis.com/spanId", sc.SpanID().String()),
				slogfield.Bool("logging.googleapis.com/trace_sampled", sc.IsSampled()),
			}
		}
	}
}

// Handler is an slog.Handler which helps standardize and correlate your
// logs by automatically adding the Trace ID and Span ID to your logs.
type Handler struct {
	slog  slog.Handler
	attrs func(trace.SpanContext) []slog.Attr
}

// NewHandler wraps the given handler.
func NewHandler(h slog.Handler, opts ...Option) *Handler {
	oh := &Handler{
		slog:  h,
		attrs: otelAttrs,
	}
	for _, opt := range opts {
		opt(oh)
	}
	return oh
}

// New provides a simple wrapper for slog.New(NewHandler(h, opts...)).
func New(h slog.Handler, opts ...Option) *slog.Logger {
	return slog.New(NewHandler(h, opts...))
}

func otelAttrs(sc trace.SpanContext) []slog.Attr {
	return []slog.Attr{
		slog.Group(
			"otel",
			slogfield.String("trace_id", sc.TraceID().String()),
			slogfield.String("span_id", sc.SpanID().String()),
			slogfield.Bool("sampled", sc.IsSampled()),
		),
	}
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return h.slog.Handle(ctx, record)
	}

	r := record.Clone()
	r.AddAttrs(h.attrs(spanCtx)...)
	return h.slog.Handle(ctx, r)
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		slog:  h.slog.WithAttrs(attrs),
		attrs: h.attrs,
	}
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		slog:  h.slog.WithGroup(name),
		attrs: h.attrs,
	}
}
