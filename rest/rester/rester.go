// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rester discovers routable actions on controller types.
//
// A controller, or rester, is any type implementing [ApiRester]. Its
// Actions method is the registration table describing which methods are
// reachable over HTTP, which verb each one answers to and where each of
// their parameters is read from.
package rester

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/z5labs/tigernet/internal/try"
	"github.com/z5labs/tigernet/rest/bind"
	"github.com/z5labs/tigernet/rest/route"
)

// ApiRester marks a type as a set of routable actions.
//
// Actions is called once, at discovery time, on a zero value of the type
// so it must not depend on any state of the receiver.
type ApiRester interface {
	Actions() []Action
}

// Verb marks an action with the HTTP method it answers to and an optional
// route suffix appended to the rester base path.
type Verb struct {
	Method route.Method
	Route  string
}

func verb(m route.Method, suffix []string) Verb {
	return Verb{
		Method: m,
		Route:  strings.Join(suffix, ""),
	}
}

// Getter marks an action as answering GET requests.
func Getter(suffix ...string) Verb { return verb(route.MethodGet, suffix) }

// Poster marks an action as answering POST requests.
func Poster(suffix ...string) Verb { return verb(route.MethodPost, suffix) }

// Putter marks an action as answering PUT requests.
func Putter(suffix ...string) Verb { return verb(route.MethodPut, suffix) }

// Patcher marks an action as answering PATCH requests.
func Patcher(suffix ...string) Verb { return verb(route.MethodPatch, suffix) }

// Deleter marks an action as answering DELETE requests.
func Deleter(suffix ...string) Verb { return verb(route.MethodDelete, suffix) }

// Action declares a method of the rester as routable.
type Action struct {
	// Method is the name of the Go method.
	Method string

	// Verbs must contain exactly one verb marker.
	Verbs []Verb

	// Params declares the sources of the method parameters, positionally.
	// A leading context.Context parameter is not declared here. Method
	// parameters without a declaration are not read from the request.
	Params []bind.Param
}

// On returns an Action for the named method answering to a single verb.
func On(method string, v Verb, params ...bind.Param) Action {
	return Action{
		Method: method,
		Verbs:  []Verb{v},
		Params: params,
	}
}

var (
	apiResterType = reflect.TypeFor[ApiRester]()
	contextType   = reflect.TypeFor[context.Context]()
	errorType     = reflect.TypeFor[error]()
)

// Rester is a discovered controller type with all of its actions.
type Rester struct {
	// Type is the type of the value produced by Constructor.
	Type reflect.Type

	// Constructor is the candidate the rester was discovered from, either
	// a constructor func or a value of Type.
	Constructor any

	Descriptors []Descriptor
}

// Discover selects every candidate carrying the [ApiRester] marker and
// describes each of its actions.
//
// A candidate is either a constructor func, returning T or (T, error), or
// a value of type T. Only the type of a value candidate is used, so it must
// be a zero value (or a pointer to one). Candidates whose type does not
// implement [ApiRester] are skipped. All definition errors across every candidate are returned
// joined together.
func Discover(candidates ...any) ([]Rester, error) {
	var (
		resters []Rester
		errs    []error
	)
	for _, candidate := range candidates {
		t, err := candidateType(candidate)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !t.Implements(apiResterType) {
			continue
		}
		if !zeroValued(candidate) {
			errs = append(errs, InvalidCandidateError{
				Candidate: t,
				Reason:    "value candidate must be a zero value, use a constructor to carry state",
			})
			continue
		}

		descs, err := describe(t)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		resters = append(resters, Rester{
			Type:        t,
			Constructor: candidate,
			Descriptors: descs,
		})
	}
	return resters, errors.Join(errs...)
}

func candidateType(candidate any) (reflect.Type, error) {
	if candidate == nil {
		return nil, InvalidCandidateError{Reason: "candidate must not be nil"}
	}

	t := reflect.TypeOf(candidate)
	if t.Kind() != reflect.Func {
		return t, nil
	}
	if t.NumOut() == 0 || t.NumOut() > 2 {
		return nil, InvalidCandidateError{Candidate: t, Reason: "constructor must return T or (T, error)"}
	}
	if t.NumOut() == 2 && t.Out(1) != errorType {
		return nil, InvalidCandidateError{Candidate: t, Reason: "second return value must be an error"}
	}
	if t.Out(0).Kind() == reflect.Interface {
		return nil, InvalidCandidateError{Candidate: t, Reason: "constructor must return a concrete type"}
	}
	return t.Out(0), nil
}

func describe(t reflect.Type) (descs []Descriptor, err error) {
	defer try.Recover(&err)

	actions := zero(t).Interface().(ApiRester).Actions()

	verbs := make(map[string]int, len(actions))
	for _, action := range actions {
		verbs[action.Method] += len(action.Verbs)
	}

	var errs []error
	reported := make(map[string]bool)
	for _, action := range actions {
		if n := verbs[action.Method]; n != 1 {
			if !reported[action.Method] {
				reported[action.Method] = true
				errs = append(errs, AmbiguousActionError{Owner: t, Method: action.Method, Verbs: n})
			}
			continue
		}

		desc, err := newDescriptor(t, action)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		descs = append(descs, desc)
	}
	return descs, errors.Join(errs...)
}

// zeroValued reports whether a value candidate holds nothing that would be
// lost when the rester is rebuilt from its type. Constructors always qualify.
func zeroValued(candidate any) bool {
	v := reflect.ValueOf(candidate)
	switch v.Kind() {
	case reflect.Func:
		return true
	case reflect.Pointer:
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}
	return v.IsZero()
}

func zero(t reflect.Type) reflect.Value {
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem())
	}
	return reflect.Zero(t)
}

// BasePath derives the route prefix of a rester type: its name with a single
// trailing "Controller" or "Rester" suffix removed, prefixed with a slash.
// A name without either suffix is kept whole.
func BasePath(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	name := t.Name()
	for _, suffix := range []string{"Controller", "Rester"} {
		if trimmed, ok := strings.CutSuffix(name, suffix); ok {
			name = trimmed
			break
		}
	}
	return "/" + name
}
