// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package slogfield provides typed [slog.Attr] constructors so log keys stay
// consistent across packages.
package slogfield

import (
	"log/slog"
	"time"
)

// Any returns an slog.Attr for the supplied value.
func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

// Bool returns an slog.Attr for a bool.
func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

// Duration returns an slog.Attr for a time.Duration.
func Duration(key string, d time.Duration) slog.Attr {
	return slog.Duration(key, d)
}

// Error returns an slog.Attr for a error.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// String returns an slog.Attr for a string.
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Strings returns an slog.Attr for a slice of strings.
func Strings(key string, values []string) slog.Attr {
	return slog.Any(key, values)
}

// Int returns an slog.Attr for an int.
func Int(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Int64 returns an slog.Attr for an int64.
func Int64(key string, n int64) slog.Attr {
	return slog.Int64(key, n)
}

// Route returns the slog.Attr for a normalized route path.
func Route(path string) slog.Attr {
	return slog.String("route", path)
}

// Method returns the slog.Attr for an HTTP method.
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Status returns the slog.Attr for an HTTP response status code.
func Status(code int) slog.Attr {
	return slog.Int("status", code)
}

// Latency returns the slog.Attr for the time taken to handle a request.
func Latency(d time.Duration) slog.Attr {
	return slog.Duration("latency", d)
}

// RequestID returns the slog.Attr for a request identifier.
func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}
