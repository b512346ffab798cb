// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"testing"

	"github.com/z5labs/tigernet/config"
	"github.com/z5labs/tigernet/config/key"
	"github.com/z5labs/tigernet/example/restapi/app"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestFlags(t *testing.T) {
	t.Run("will override the embedded config", func(t *testing.T) {
		t.Run("if a flag is set", func(t *testing.T) {
			v := viper.New()
			cmd := newCommand(v)
			err := cmd.Flags().Parse([]string{"--addr", ":7070", "--users-broker", "http://broker:8080"})
			require.Nil(t, err)

			m, err := config.Read(
				config.FromYaml(config.NewFileReader(configDir, "config.yaml")),
				flags(v),
			)
			require.Nil(t, err)

			var cfg app.Config
			err = m.Unmarshal(&cfg)
			require.Nil(t, err)
			require.Equal(t, ":7070", cfg.HTTP.Addr)
			require.Equal(t, ":9090", cfg.HTTP.AdminAddr)
			require.Equal(t, "http://broker:8080", cfg.Users.BrokerURL)
		})
	})

	t.Run("will leave the config untouched", func(t *testing.T) {
		t.Run("if no flag is set", func(t *testing.T) {
			v := viper.New()
			cmd := newCommand(v)
			err := cmd.Flags().Parse(nil)
			require.Nil(t, err)

			m, err := config.Read(
				config.FromYaml(config.NewFileReader(configDir, "config.yaml")),
				flags(v),
			)
			require.Nil(t, err)

			addr, ok := m.Get(key.Parse("http.addr"))
			require.True(t, ok)
			require.Equal(t, ":8080", addr)
		})
	})
}
