// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package maskslog provides a [slog.Handler] which masks sensitive values
// such as credentials carried in request headers.
package maskslog

import (
	"context"
	"log/slog"
	"net/http"
	"net/textproto"
	"slices"
)

// HeadersKey is the group key used by [Headers].
const HeadersKey = "headers"

// Masked is the value substituted for masked attributes.
const Masked = "****"

type options struct {
	attrs   map[string]func(slog.Attr) slog.Attr
	headers map[string]struct{}
}

// Option helps configure the Handler.
type Option interface {
	applyOption(*options)
}

type optionFunc func(*options)

func (f optionFunc) applyOption(opts *options) {
	f(opts)
}

// Attr registers a function for masking a slog.Attr given its key.
// Keys are matched at any group depth.
func Attr(key string, f func(slog.Attr) slog.Attr) Option {
	return optionFunc(func(o *options) {
		o.attrs[key] = f
	})
}

// Header masks the value of the named header within a [Headers] group.
// The name is matched case-insensitively.
func Header(name string) Option {
	return optionFunc(func(o *options) {
		o.headers[textproto.CanonicalMIMEHeaderKey(name)] = struct{}{}
	})
}

// AnonymousStringAttr converts any slog.Attr into the anonymized string
// value, [Masked], regardless of its original type.
func AnonymousStringAttr(a slog.Attr) slog.Attr {
	return slog.String(a.Key, Masked)
}

// Headers returns a group attribute holding each header under its
// canonical name. Multi-valued headers are logged as lists.
func Headers(h http.Header) slog.Attr {
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	attrs := make([]any, 0, len(keys))
	for _, key := range keys {
		vals := h[key]
		if len(vals) == 1 {
			attrs = append(attrs, slog.String(textproto.CanonicalMIMEHeaderKey(key), vals[0]))
			continue
		}
		attrs = append(attrs, slog.Any(textproto.CanonicalMIMEHeaderKey(key), vals))
	}
	return slog.Group(HeadersKey, attrs...)
}

// Handler is an slog.Handler.
type Handler struct {
	slog slog.Handler
	opts *options
}

// NewHandler returns a new Handler.
func NewHandler(h slog.Handler, opts ...Option) *Handler {
	o := &options{
		attrs:   make(map[string]func(slog.Attr) slog.Attr),
		headers: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt.applyOption(o)
	}
	return &Handler{
		slog: h,
		opts: o,
	}
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if h.opts.empty() {
		return h.slog.Handle(ctx, record)
	}

	attrs := make([]slog.Attr, 0, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.opts.mask(a))
		return true
	})

	nr := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	nr.AddAttrs(attrs...)
	return h.slog.Handle(ctx, nr)
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.opts.mask(a)
	}
	return &Handler{
		slog: h.slog.WithAttrs(masked),
		opts: h.opts,
	}
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		slog: h.slog.WithGroup(name),
		opts: h.opts,
	}
}

func (o *options) empty() bool {
	return len(o.attrs) == 0 && len(o.headers) == 0
}

func (o *options) mask(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if f, ok := o.attrs[a.Key]; ok {
		return f(a)
	}
	if a.Value.Kind() != slog.KindGroup {
		return a
	}

	group := a.Value.Group()
	masked := make([]any, len(group))
	for i, sub := range group {
		if a.Key == HeadersKey {
			if _, ok := o.headers[textproto.CanonicalMIMEHeaderKey(sub.Key)]; ok {
				masked[i] = AnonymousStringAttr(sub)
				continue
			}
		}
		masked[i] = o.mask(sub)
	}
	return slog.Group(a.Key, masked...)
}
