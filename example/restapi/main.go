// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/z5labs/tigernet"
	"github.com/z5labs/tigernet/appbuilder"
	"github.com/z5labs/tigernet/config"
	"github.com/z5labs/tigernet/config/key"
	"github.com/z5labs/tigernet/example/restapi/app"
	"github.com/z5labs/tigernet/pkg/slogfield"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//go:embed config.yaml
var configDir embed.FS

func main() {
	err := newCommand(viper.New()).ExecuteContext(context.Background())
	if err != nil {
		slog.Default().Error("failed to run", slogfield.Error(err))
		os.Exit(1)
	}
}

func newCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "restapi",
		Short:         "Serve the sample users API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tigernet.Run(
				cmd.Context(),
				appbuilder.Recover(appbuilder.OTel(tigernet.AppBuilderFunc[app.Config](app.Build))),
				config.FromYaml(config.NewFileReader(configDir, "config.yaml")),
				config.FromEnv(config.Prefix("RESTAPI")),
				flags(v),
			)
		},
	}

	fs := cmd.Flags()
	fs.String("addr", "", "address the API listens on")
	fs.String("admin-addr", "", "address the metrics and health endpoints listen on")
	fs.String("log-level", "", "minimum level of emitted logs")
	fs.String("users-broker", "", "base url of a remote user broker, users are kept in memory if empty")
	fs.String("otel-exporter", "", "trace exporter: none, stdout, otlp or gcp")

	bindings := map[string]string{
		"http.addr":       "addr",
		"http.adminAddr":  "admin-addr",
		"logging.level":   "log-level",
		"users.brokerUrl": "users-broker",
		"otel.exporter":   "otel-exporter",
	}
	for k, flag := range bindings {
		err := v.BindPFlag(k, fs.Lookup(flag))
		if err != nil {
			panic(err)
		}
	}
	return cmd
}

// flags layers every explicitly set flag on top of the other sources.
func flags(v *viper.Viper) config.Source {
	return config.SourceFunc(func(store config.Store) error {
		for _, k := range v.AllKeys() {
			if !v.IsSet(k) {
				continue
			}
			err := store.Set(key.Parse(k), v.GetString(k))
			if err != nil {
				return err
			}
		}
		return nil
	})
}
