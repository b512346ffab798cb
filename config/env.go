// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"os"
	"strings"

	"github.com/z5labs/tigernet/config/key"
)

// EnvOption configures an [Env] source.
type EnvOption func(*Env)

// Prefix only applies environment variables starting with
// the given prefix followed by an underscore. The prefix is stripped
// and the remaining name is lower cased and split on underscores
// into nested keys, e.g. APP_HTTP_ADDR becomes http.addr.
func Prefix(prefix string) EnvOption {
	return func(e *Env) {
		e.prefix = strings.TrimSuffix(prefix, "_") + "_"
	}
}

// Env represents a Source where its underlying values
// are extracted from environment variables.
type Env struct {
	environ func() []string
	prefix  string
}

// FromEnv returns a Source which will apply its config
// from the environment variables available to the
// current process.
func FromEnv(opts ...EnvOption) Env {
	env := Env{
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(&env)
	}
	return env
}

// Apply implements the Source interface.
func (src Env) Apply(store Store) error {
	for _, pair := range src.environ() {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		if src.prefix == "" {
			err := store.Set(key.Name(k), v)
			if err != nil {
				return err
			}
			continue
		}

		name, ok := strings.CutPrefix(k, src.prefix)
		if !ok || name == "" {
			continue
		}

		chain := key.Chain{}
		for _, part := range strings.Split(strings.ToLower(name), "_") {
			if part == "" {
				continue
			}
			chain = append(chain, key.Name(part))
		}
		if len(chain) == 0 {
			continue
		}

		err := store.Set(chain, v)
		if err != nil {
			return err
		}
	}
	return nil
}
