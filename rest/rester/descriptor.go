// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rester

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/z5labs/tigernet/internal/try"
	"github.com/z5labs/tigernet/rest/bind"
)

type returnShape int

const (
	returnsNothing returnShape = iota
	returnsError
	returnsValue
	returnsValueAndError
)

// Descriptor describes a single routable action. It is derived once at
// discovery time and is read-only afterwards.
type Descriptor struct {
	Owner  reflect.Type
	Method reflect.Method
	Verb   Verb

	// Params holds one entry per bindable method parameter, in declaration
	// order, with their static types filled in.
	Params []bind.Param

	takesContext bool
	returns      returnShape
}

func newDescriptor(owner reflect.Type, action Action) (Descriptor, error) {
	if len(action.Verbs) != 1 {
		return Descriptor{}, AmbiguousActionError{
			Owner:  owner,
			Method: action.Method,
			Verbs:  len(action.Verbs),
		}
	}

	m, ok := owner.MethodByName(action.Method)
	if !ok {
		return Descriptor{}, UnknownMethodError{Owner: owner, Method: action.Method}
	}

	desc := Descriptor{
		Owner:  owner,
		Method: m,
		Verb:   action.Verbs[0],
	}

	mt := m.Type
	if mt.IsVariadic() {
		return Descriptor{}, ActionSignatureError{Owner: owner, Method: m.Name, Reason: "variadic actions are not supported"}
	}

	// In(0) is the receiver.
	first := 1
	if mt.NumIn() > 1 && mt.In(1) == contextType {
		desc.takesContext = true
		first = 2
	}

	n := mt.NumIn() - first
	if len(action.Params) > n {
		return Descriptor{}, ActionSignatureError{
			Owner:  owner,
			Method: m.Name,
			Reason: fmt.Sprintf("declares %d parameters but the method only accepts %d", len(action.Params), n),
		}
	}

	desc.Params = make([]bind.Param, n)
	for i := range n {
		var p bind.Param
		if i < len(action.Params) {
			p = action.Params[i]
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("arg%d", i)
		}
		p.Type = mt.In(first + i)
		desc.Params[i] = p
	}

	switch {
	case mt.NumOut() == 0:
		desc.returns = returnsNothing
	case mt.NumOut() == 1 && mt.Out(0) == errorType:
		desc.returns = returnsError
	case mt.NumOut() == 1:
		desc.returns = returnsValue
	case mt.NumOut() == 2 && mt.Out(1) == errorType:
		desc.returns = returnsValueAndError
	default:
		return Descriptor{}, ActionSignatureError{
			Owner:  owner,
			Method: m.Name,
			Reason: "must return nothing, error, T or (T, error)",
		}
	}
	return desc, nil
}

// Name returns the qualified action name, e.g. UsersRester.Get.
func (d Descriptor) Name() string {
	t := d.Owner
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name() + "." + d.Method.Name
}

// Path returns the route of the action, which is the lower-cased
// concatenation of the rester base path and the verb route suffix.
func (d Descriptor) Path() string {
	return strings.ToLower(BasePath(d.Owner) + d.Verb.Route)
}

// Result is the outcome of invoking an action.
type Result struct {
	// Value is only meaningful if HasValue is true.
	Value    any
	HasValue bool
}

// Invoke calls the action on the given receiver. Any panic raised by the
// action is recovered and returned as an error.
func (d Descriptor) Invoke(ctx context.Context, recv reflect.Value, args []reflect.Value) (res Result, err error) {
	defer try.Recover(&err)

	in := make([]reflect.Value, 0, len(args)+2)
	in = append(in, recv)
	if d.takesContext {
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}
	in = append(in, args...)

	out := d.Method.Func.Call(in)
	switch d.returns {
	case returnsError:
		return Result{}, asError(out[0])
	case returnsValue:
		return Result{Value: out[0].Interface(), HasValue: true}, nil
	case returnsValueAndError:
		err := asError(out[1])
		if err != nil {
			return Result{}, err
		}
		return Result{Value: out[0].Interface(), HasValue: true}, nil
	default:
		return Result{}, nil
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	err, _ := v.Interface().(error)
	return err
}
