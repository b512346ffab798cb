// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package noop provides implementations which do nothing.
package noop

import (
	"context"
	"log/slog"
)

// LogHandler is a [slog.Handler] which discards every record. It is the
// default handler for packages which only log when explicitly configured.
type LogHandler struct{}

// Enabled implements the [slog.Handler] interface. It is always false so
// callers can skip building attributes.
func (LogHandler) Enabled(_ context.Context, _ slog.Level) bool { return false }

// Handle implements the [slog.Handler] interface.
func (LogHandler) Handle(_ context.Context, _ slog.Record) error { return nil }

// WithAttrs implements the [slog.Handler] interface.
func (h LogHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

// WithGroup implements the [slog.Handler] interface.
func (h LogHandler) WithGroup(_ string) slog.Handler { return h }
