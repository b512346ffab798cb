// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app provides helpers for common [tigernet.App] implementation patterns.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/z5labs/tigernet"
	"github.com/z5labs/tigernet/internal/try"
)

// Recover will wrap the given [tigernet.App] with panic recovery.
// A recovered panic is returned as a [try.PanicError], which unwraps
// to the panic value if it is an error.
func Recover(app tigernet.App) tigernet.App {
	return tigernet.AppFunc(func(ctx context.Context) (err error) {
		defer try.Recover(&err)

		return app.Run(ctx)
	})
}

// WithSignalNotifications wraps a given [tigernet.App] in an implementation
// that cancels the [context.Context] that's passed to app.Run if an [os.Signal]
// is received by the running process.
func WithSignalNotifications(app tigernet.App, signals ...os.Signal) tigernet.App {
	return tigernet.AppFunc(func(ctx context.Context) error {
		sigCtx, cancel := signal.NotifyContext(ctx, signals...)
		defer cancel()

		return app.Run(sigCtx)
	})
}

// LifecycleHook represents functionality that needs to be performed
// at a specific "time" relative to the execution of [tigernet.App.Run].
type LifecycleHook interface {
	Run(context.Context) error
}

// LifecycleHookFunc is a convenient helper type for implementing a [LifecycleHook]
// from just a regular func.
type LifecycleHookFunc func(context.Context) error

// Run implements the [LifecycleHook] interface.
func (f LifecycleHookFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// ComposeLifecycleHooks combines multiple [LifecycleHook]s into a single hook.
// Each hook is called sequentially, even if a previous hook failed.
// All errors are joined and returned once every hook has ran.
func ComposeLifecycleHooks(hooks ...LifecycleHook) LifecycleHook {
	return LifecycleHookFunc(func(ctx context.Context) error {
		errs := make([]error, 0, len(hooks))
		for _, hook := range hooks {
			if hook == nil {
				continue
			}
			errs = append(errs, hook.Run(ctx))
		}
		return errors.Join(errs...)
	})
}

// Lifecycle holds the hooks ran around a [tigernet.App].
type Lifecycle struct {
	// PreRun is executed before the underlying [tigernet.App]. If it fails
	// the app is never ran.
	PreRun LifecycleHook

	// PostRun is always executed regardless if the underlying [tigernet.App]
	// returns an error or panics.
	PostRun LifecycleHook
}

// WithLifecycleHooks wraps a given [tigernet.App] in an implementation
// that runs [LifecycleHook]s around the execution of app.Run.
func WithLifecycleHooks(app tigernet.App, lifecycle Lifecycle) tigernet.App {
	return tigernet.AppFunc(func(ctx context.Context) (err error) {
		defer runPostRunHook(ctx, lifecycle.PostRun, &err)

		if lifecycle.PreRun != nil {
			err = lifecycle.PreRun.Run(ctx)
			if err != nil {
				return err
			}
		}
		return app.Run(ctx)
	})
}

// PostRun is shorthand for [WithLifecycleHooks] with only a PostRun hook.
func PostRun(app tigernet.App, hook LifecycleHook) tigernet.App {
	return WithLifecycleHooks(app, Lifecycle{PostRun: hook})
}

func runPostRunHook(ctx context.Context, hook LifecycleHook, err *error) {
	if hook == nil {
		return
	}

	hookErr := hook.Run(ctx)
	*err = errors.Join(*err, hookErr)
}
