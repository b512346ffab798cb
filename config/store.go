// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"strings"

	"github.com/z5labs/tigernet/config/key"
)

// UnknownKeyerError occurs when a source sets a value with a [key.Keyer]
// other than [key.Name] or [key.Chain].
type UnknownKeyerError struct {
	Key key.Keyer
}

// Error implements the [builtin.error] interface.
func (e UnknownKeyerError) Error() string {
	return fmt.Sprintf("config source tried setting config value with unknown key.Keyer: %s", e.Key.Key())
}

// EmptyKeyError occurs when a source sets a value without a key.
type EmptyKeyError struct {
	Value any
}

// Error implements the [builtin.error] interface.
func (e EmptyKeyError) Error() string {
	return fmt.Sprintf("attempted to set value to an empty key: %v", e.Value)
}

// UnexpectedKeyValueTypeError represents the situation when
// a source tries nesting a key under a key which already
// holds a non map value.
type UnexpectedKeyValueTypeError struct {
	Key string
}

// Error implements the [builtin.error] interface.
func (e UnexpectedKeyValueTypeError) Error() string {
	return fmt.Sprintf("expected key value to be a map[string]any: %s", e.Key)
}

// tree is the nested map every source is applied to.
type tree map[string]any

// Set implements the [Store] interface.
func (m tree) Set(k key.Keyer, v any) error {
	names, err := names(k)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return EmptyKeyError{Value: v}
	}

	cur := map[string]any(m)
	for i, name := range names[:len(names)-1] {
		name = existing(cur, name)
		next, ok := cur[name]
		if !ok {
			sub := make(map[string]any)
			cur[name] = sub
			cur = sub
			continue
		}

		sub, ok := next.(map[string]any)
		if !ok {
			return UnexpectedKeyValueTypeError{Key: key.Chain(nameKeys(names[:i+1])).Key()}
		}
		cur = sub
	}
	cur[existing(cur, names[len(names)-1])] = v
	return nil
}

// existing returns the spelling of name already present in m, ignoring
// case, so differently cased sources override each other.
func existing(m map[string]any, name string) string {
	if _, ok := m[name]; ok {
		return name
	}
	for k := range m {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	return name
}

func (m tree) get(names []string) (any, bool) {
	if len(names) == 0 {
		return nil, false
	}

	cur := map[string]any(m)
	for _, name := range names[:len(names)-1] {
		sub, ok := cur[existing(cur, name)].(map[string]any)
		if !ok {
			return nil, false
		}
		cur = sub
	}
	v, ok := cur[existing(cur, names[len(names)-1])]
	return v, ok
}

func names(k key.Keyer) ([]string, error) {
	switch x := k.(type) {
	case key.Name:
		return []string{string(x)}, nil
	case key.Chain:
		var ns []string
		for _, sub := range x {
			subNames, err := names(sub)
			if err != nil {
				return nil, err
			}
			ns = append(ns, subNames...)
		}
		return ns, nil
	default:
		return nil, UnknownKeyerError{Key: k}
	}
}

func flatten(k key.Keyer) []string {
	ns, _ := names(k)
	return ns
}

func nameKeys(ns []string) []key.Keyer {
	keys := make([]key.Keyer, len(ns))
	for i, n := range ns {
		keys[i] = key.Name(n)
	}
	return keys
}
