// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package appbuilder

import (
	"context"
	"errors"
	"testing"

	"github.com/z5labs/tigernet"
	"github.com/z5labs/tigernet/config"
	"github.com/z5labs/tigernet/internal/try"

	"github.com/stretchr/testify/assert"
)

func TestRecover(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the underlying App returns an error", func(t *testing.T) {
			buildErr := errors.New("failed to build")
			builder := Recover(tigernet.AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (tigernet.App, error) {
				return nil, buildErr
			}))

			_, err := builder.Build(context.Background(), struct{}{})
			if !assert.Equal(t, buildErr, err) {
				return
			}
		})

		t.Run("if the underlying App panics with an error value", func(t *testing.T) {
			buildErr := errors.New("failed to build")
			builder := Recover(tigernet.AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (tigernet.App, error) {
				panic(buildErr)
			}))

			_, err := builder.Build(context.Background(), struct{}{})
			if !assert.ErrorIs(t, err, buildErr) {
				return
			}
		})

		t.Run("if the underlying App panics with a non-error value", func(t *testing.T) {
			builder := Recover(tigernet.AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (tigernet.App, error) {
				panic("hello world")
			}))

			_, err := builder.Build(context.Background(), struct{}{})

			var perr try.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.NotEmpty(t, perr.Error()) {
				return
			}
			if !assert.Equal(t, "hello world", perr.Value) {
				return
			}
		})
	})
}

type serverConfig struct {
	Addr string `config:"addr"`
}

func TestFromConfig(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the config source fails", func(t *testing.T) {
			srcErr := errors.New("failed to read")
			builder := FromConfig(tigernet.AppBuilderFunc[serverConfig](func(ctx context.Context, cfg serverConfig) (tigernet.App, error) {
				return nil, nil
			}))

			_, err := builder.Build(context.Background(), config.SourceFunc(func(config.Store) error {
				return srcErr
			}))
			if !assert.ErrorIs(t, err, srcErr) {
				return
			}
		})
	})

	t.Run("will unmarshal the config", func(t *testing.T) {
		t.Run("if the source is valid", func(t *testing.T) {
			var got serverConfig
			builder := FromConfig(tigernet.AppBuilderFunc[serverConfig](func(ctx context.Context, cfg serverConfig) (tigernet.App, error) {
				got = cfg
				return nil, nil
			}))

			_, err := builder.Build(context.Background(), config.Map{"addr": ":8080"})
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, ":8080", got.Addr) {
				return
			}
		})
	})
}
