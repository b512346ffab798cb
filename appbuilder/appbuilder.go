// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package appbuilder provides [tigernet.AppBuilder] middleware.
package appbuilder

import (
	"context"

	"github.com/z5labs/tigernet"
	"github.com/z5labs/tigernet/config"
	"github.com/z5labs/tigernet/internal/try"
)

// Recover will wrap the given [tigernet.AppBuilder] with panic recovery.
func Recover[T any](builder tigernet.AppBuilder[T]) tigernet.AppBuilder[T] {
	return tigernet.AppBuilderFunc[T](func(ctx context.Context, cfg T) (_ tigernet.App, err error) {
		defer try.Recover(&err)

		return builder.Build(ctx, cfg)
	})
}

// FromConfig returns a [tigernet.AppBuilder] which unmarshals
// the given [tigernet.AppBuilder]s input type, T, from a [config.Source].
func FromConfig[T any](builder tigernet.AppBuilder[T]) tigernet.AppBuilder[config.Source] {
	return tigernet.AppBuilderFunc[config.Source](func(ctx context.Context, src config.Source) (tigernet.App, error) {
		m, err := config.Read(src)
		if err != nil {
			return nil, err
		}

		var cfg T
		err = m.Unmarshal(&cfg)
		if err != nil {
			return nil, err
		}

		return builder.Build(ctx, cfg)
	})
}
