// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package route provides an exact match table from normalized paths to handlers.
//
// There is no pattern or placeholder matching. Two paths are the same route
// if, and only if, they are equal after [Normalize].
package route

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Method defines an HTTP method a route may be restricted to.
type Method string

const (
	// MethodAny matches every HTTP method.
	MethodAny Method = ""

	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// Matches reports whether a request using the given method may be served
// by a route registered with m.
func (m Method) Matches(method string) bool {
	return m == MethodAny || strings.EqualFold(string(m), method)
}

// ErrTableFrozen is returned when adding a route to a frozen [Table].
var ErrTableFrozen = errors.New("route: table is frozen")

// DuplicateRouteError occurs when two routes normalize to the same path.
type DuplicateRouteError struct {
	Path string
}

// Error implements the [builtin.error] interface.
func (e DuplicateRouteError) Error() string {
	return fmt.Sprintf("route: duplicate route registered for path: %s", e.Path)
}

// Normalize converts a request or registration path into its canonical
// form: query and fragment removed, a single leading slash, repeated slashes
// collapsed, no trailing slash (unless the path is the root) and lower-cased.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	var sb strings.Builder
	sb.Grow(len(path) + 1)
	sb.WriteByte('/')
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}
		if sb.Len() > 1 {
			sb.WriteByte('/')
		}
		sb.WriteString(segment)
	}
	return strings.ToLower(sb.String())
}

// Route is a single entry in a [Table].
type Route[H any] struct {
	Method  Method
	Path    string
	Handler H
}

// Table maps normalized paths to routes.
//
// Table is not safe for concurrent use while routes are being added.
// Once frozen it is read-only and may be shared freely.
type Table[H any] struct {
	index  map[string]int
	routes []Route[H]
	frozen bool
}

// NewTable returns an empty Table.
func NewTable[H any]() *Table[H] {
	return &Table[H]{
		index: make(map[string]int),
	}
}

// Add registers the route under its normalized path.
func (t *Table[H]) Add(r Route[H]) error {
	if t.frozen {
		return ErrTableFrozen
	}

	r.Path = Normalize(r.Path)
	if _, exists := t.index[r.Path]; exists {
		return DuplicateRouteError{Path: r.Path}
	}

	t.index[r.Path] = len(t.routes)
	t.routes = append(t.routes, r)
	return nil
}

// Lookup returns the route registered for the given path, if any.
func (t *Table[H]) Lookup(path string) (Route[H], bool) {
	i, ok := t.index[Normalize(path)]
	if !ok {
		return Route[H]{}, false
	}
	return t.routes[i], true
}

// Contains reports whether a route exists for the given path.
func (t *Table[H]) Contains(path string) bool {
	_, ok := t.index[Normalize(path)]
	return ok
}

// Routes returns every route in registration order.
func (t *Table[H]) Routes() []Route[H] {
	routes := make([]Route[H], len(t.routes))
	copy(routes, t.routes)
	return routes
}

// Len returns the number of registered routes.
func (t *Table[H]) Len() int {
	return len(t.routes)
}

// Freeze prevents any further routes from being added.
func (t *Table[H]) Freeze() {
	t.frozen = true
}
