// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package di provides a small dependency injection container which maps
// abstractions to constructors and resolves them by recursively resolving
// every constructor parameter.
//
// Resolution never caches. Every call to [Registry.Resolve] constructs a
// brand new object graph, so there are no singleton or scoped lifetimes.
package di

import (
	"reflect"
	"slices"

	"github.com/z5labs/tigernet/internal/try"
)

var errorType = reflect.TypeFor[error]()

type binding struct {
	abstraction    reflect.Type
	implementation reflect.Type
	ctor           reflect.Value
	deps           []reflect.Type
	fallible       bool
}

// Registry holds a single binding per abstraction.
//
// Registry is not safe for concurrent registration. Once [Registry.Freeze]
// has been called it is read-only and may be shared between goroutines.
type Registry struct {
	bindings map[reflect.Type]binding
	frozen   bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[reflect.Type]binding),
	}
}

// Register binds the given abstraction to a constructor.
//
// The constructor may either be a func returning the implementation, T,
// or (T, error), or it may be a plain value of the implementation type.
// In the latter case a fresh zero value (or new(T) for pointer types) is
// constructed on every resolve. The implementation must be assignable to
// the abstraction. Registering the same abstraction twice replaces the
// previous binding.
func (r *Registry) Register(abstraction reflect.Type, constructor any) error {
	if r.frozen {
		return ErrRegistryFrozen
	}
	if abstraction == nil {
		return ErrNilAbstraction
	}

	b, err := newBinding(abstraction, constructor)
	if err != nil {
		return err
	}
	r.bindings[abstraction] = b
	return nil
}

// Register is a typed helper for [Registry.Register].
func Register[A any](r *Registry, constructor any) error {
	return r.Register(reflect.TypeFor[A](), constructor)
}

func newBinding(abstraction reflect.Type, constructor any) (binding, error) {
	if constructor == nil {
		return binding{}, InvalidConstructorError{Reason: "constructor must not be nil"}
	}

	ct := reflect.TypeOf(constructor)
	if ct.Kind() != reflect.Func {
		return valueBinding(abstraction, ct)
	}
	if ct.IsVariadic() {
		return binding{}, InvalidConstructorError{Constructor: ct, Reason: "variadic constructors are not supported"}
	}

	switch ct.NumOut() {
	case 1:
	case 2:
		if ct.Out(1) != errorType {
			return binding{}, InvalidConstructorError{Constructor: ct, Reason: "second return value must be an error"}
		}
	default:
		return binding{}, InvalidConstructorError{Constructor: ct, Reason: "must return T or (T, error)"}
	}

	impl := ct.Out(0)
	if !impl.AssignableTo(abstraction) {
		return binding{}, ImplementationMismatchError{Abstraction: abstraction, Implementation: impl}
	}

	deps := make([]reflect.Type, ct.NumIn())
	for i := range deps {
		deps[i] = ct.In(i)
	}

	b := binding{
		abstraction:    abstraction,
		implementation: impl,
		ctor:           reflect.ValueOf(constructor),
		deps:           deps,
		fallible:       ct.NumOut() == 2,
	}
	return b, nil
}

func valueBinding(abstraction, impl reflect.Type) (binding, error) {
	if !impl.AssignableTo(abstraction) {
		return binding{}, ImplementationMismatchError{Abstraction: abstraction, Implementation: impl}
	}

	ctor := reflect.MakeFunc(
		reflect.FuncOf(nil, []reflect.Type{impl}, false),
		func([]reflect.Value) []reflect.Value {
			if impl.Kind() == reflect.Pointer {
				return []reflect.Value{reflect.New(impl.Elem())}
			}
			return []reflect.Value{reflect.Zero(impl)}
		},
	)

	b := binding{
		abstraction:    abstraction,
		implementation: impl,
		ctor:           ctor,
	}
	return b, nil
}

// Freeze marks the Registry as read-only. Any subsequent call to
// [Registry.Register] fails with [ErrRegistryFrozen].
func (r *Registry) Freeze() {
	r.frozen = true
}

// Bound reports whether the given abstraction has a binding.
func (r *Registry) Bound(abstraction reflect.Type) bool {
	_, ok := r.bindings[abstraction]
	return ok
}

// Implementation returns the implementation type bound to the abstraction.
func (r *Registry) Implementation(abstraction reflect.Type) (reflect.Type, bool) {
	b, ok := r.bindings[abstraction]
	if !ok {
		return nil, false
	}
	return b.implementation, true
}

// Resolve constructs a new instance of the given abstraction.
//
// The whole dependency graph is validated before any constructor is
// invoked. If any abstraction in the graph is missing a binding an
// [UnregisteredAbstractionError] is returned and nothing is constructed.
func (r *Registry) Resolve(abstraction reflect.Type) (reflect.Value, error) {
	err := r.plan(abstraction, nil, true)
	if err != nil {
		return reflect.Value{}, err
	}
	return r.construct(abstraction)
}

// Resolve is a typed helper for [Registry.Resolve].
func Resolve[A any](r *Registry) (A, error) {
	v, err := r.Resolve(reflect.TypeFor[A]())
	if err != nil {
		var zero A
		return zero, err
	}
	a, _ := v.Interface().(A)
	return a, nil
}

// CheckCycles walks the dependency graph of the given abstraction and
// reports a [ResolutionCycleError] if it contains a cycle. Missing
// bindings are ignored since they only fail at resolve time.
func (r *Registry) CheckCycles(abstraction reflect.Type) error {
	return r.plan(abstraction, nil, false)
}

func (r *Registry) plan(t reflect.Type, path []reflect.Type, strict bool) error {
	if i := slices.Index(path, t); i >= 0 {
		cycle := append(slices.Clone(path[i:]), t)
		return ResolutionCycleError{Cycle: cycle}
	}

	b, ok := r.bindings[t]
	if !ok {
		if !strict {
			return nil
		}
		err := UnregisteredAbstractionError{Abstraction: t}
		if len(path) > 0 {
			err.RequiredBy = path[len(path)-1]
		}
		return err
	}

	path = append(path, t)
	for _, dep := range b.deps {
		err := r.plan(dep, path, strict)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) construct(t reflect.Type) (reflect.Value, error) {
	b := r.bindings[t]

	args := make([]reflect.Value, len(b.deps))
	for i, dep := range b.deps {
		v, err := r.construct(dep)
		if err != nil {
			return reflect.Value{}, err
		}
		args[i] = v
	}
	return b.call(args)
}

func (b binding) call(args []reflect.Value) (v reflect.Value, err error) {
	defer wrapConstructorError(b.implementation, &err)
	defer try.Recover(&err)

	out := b.ctor.Call(args)
	if b.fallible && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}

	v = out[0]
	if v.Type() != b.abstraction {
		v = v.Convert(b.abstraction)
	}
	return v, nil
}

func wrapConstructorError(impl reflect.Type, err *error) {
	if *err == nil {
		return
	}
	*err = ConstructorError{Implementation: impl, Cause: *err}
}
