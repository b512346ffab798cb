// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package tigernet provides a minimal framework for hosting web APIs.
//
// Request handling lives in the [github.com/z5labs/tigernet/rest] package,
// where controller types, called resters, are discovered and their
// actions are exposed as routes. This package is only concerned with
// bootstrapping: reading configuration, building an [App] from it and
// running the result.
//
// # Basic Usage
//
//	type Config struct {
//	    Addr string `config:"addr"`
//	}
//
//	builder := tigernet.AppBuilderFunc[Config](func(ctx context.Context, cfg Config) (tigernet.App, error) {
//	    return rest.NewApp(
//	        rest.Addr(cfg.Addr),
//	        rest.Resters(&HomeRester{}),
//	    ), nil
//	})
//
//	err := tigernet.Run(ctx, builder, config.FromEnv(config.Prefix("APP")))
package tigernet
