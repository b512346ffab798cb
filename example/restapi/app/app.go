// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app wires the sample API together.
package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"syscall"
	"time"

	"github.com/z5labs/tigernet"
	"github.com/z5labs/tigernet/app"
	"github.com/z5labs/tigernet/example/restapi/api"
	"github.com/z5labs/tigernet/example/restapi/user"
	"github.com/z5labs/tigernet/http/httpclient"
	"github.com/z5labs/tigernet/pkg/health"
	"github.com/z5labs/tigernet/pkg/maskslog"
	"github.com/z5labs/tigernet/pkg/otelconfig"
	"github.com/z5labs/tigernet/pkg/otelslog"
	"github.com/z5labs/tigernet/rest"
	"github.com/z5labs/tigernet/rest/middleware"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config is the full configuration of the sample API.
type Config struct {
	Logging struct {
		Level slog.Level `config:"level"`
	} `config:"logging"`

	HTTP struct {
		Addr      string `config:"addr"`
		AdminAddr string `config:"adminAddr"`
	} `config:"http"`

	Users struct {
		BrokerURL string        `config:"brokerUrl"`
		Timeout   time.Duration `config:"timeout"`
		Retries   int           `config:"retries"`
		TripAfter uint32        `config:"tripAfter"`
	} `config:"users"`

	OTel otelconfig.Config `config:"otel"`
}

// InitializeOTel implements the appbuilder.OTelInitializer interface.
func (cfg Config) InitializeOTel(ctx context.Context) error {
	return cfg.OTel.InitializeOTel(ctx)
}

// Seed is the set of users served when no remote broker is configured.
var Seed = []user.User{
	{ID: 1, Name: "Ada", Age: 36},
	{ID: 2, Name: "Linus", Age: 28},
}

// Apps holds the API and the admin apps before they are combined.
type Apps struct {
	API   *rest.App
	Admin *rest.App
	Ready *health.Binary
}

// Init builds the API and admin apps, writing logs to out.
func Init(cfg Config, out io.Writer) (*Apps, error) {
	var logOpts []otelslog.Option
	if cfg.OTel.Exporter == "gcp" {
		logOpts = append(logOpts, otelslog.GoogleCloud(cfg.OTel.ProjectID))
	}
	logHandler := otelslog.NewHandler(
		maskslog.NewHandler(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.Logging.Level}),
			maskslog.Attr("url", redactURL),
		),
		logOpts...,
	)

	users, err := entityManager(cfg, logHandler)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	apiApp := rest.NewApp(
		rest.Addr(cfg.HTTP.Addr),
		rest.LogHandler(logHandler),
		rest.Metrics(reg),
		rest.Use(
			middleware.RequestID(),
			middleware.AccessLog(logHandler),
		),
		rest.Service[user.EntityManager](func() user.EntityManager {
			return users
		}),
		rest.Resters(
			&api.HomeRester{},
			api.NewUsersRester,
		),
	)
	_, err = apiApp.Build()
	if err != nil {
		return nil, err
	}

	ready := &health.Binary{}
	adminApp := rest.NewApp(
		rest.Addr(cfg.HTTP.AdminAddr),
		rest.LogHandler(logHandler),
		rest.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		rest.Liveness(&health.Binary{}),
		rest.Readiness(ready),
	)
	_, err = adminApp.Build()
	if err != nil {
		return nil, err
	}

	apps := &Apps{
		API:   apiApp,
		Admin: adminApp,
		Ready: ready,
	}
	return apps, nil
}

// Build implements the [tigernet.AppBuilder] interface for [Config].
func Build(ctx context.Context, cfg Config) (tigernet.App, error) {
	apps, err := Init(cfg, os.Stdout)
	if err != nil {
		return nil, err
	}

	combined := tigernet.Concurrently(apps.API, apps.Admin)
	combined = app.WithLifecycleHooks(combined, app.Lifecycle{
		PostRun: app.LifecycleHookFunc(func(ctx context.Context) error {
			apps.Ready.Set(false)
			return nil
		}),
	})
	return app.WithSignalNotifications(app.Recover(combined), os.Interrupt, syscall.SIGTERM), nil
}

// redactURL hides any password embedded in a logged url.
func redactURL(a slog.Attr) slog.Attr {
	u, err := url.Parse(a.Value.String())
	if err != nil {
		return maskslog.AnonymousStringAttr(a)
	}
	return slog.String(a.Key, u.Redacted())
}

func entityManager(cfg Config, logHandler slog.Handler) (user.EntityManager, error) {
	if cfg.Users.BrokerURL == "" {
		return user.NewMemory(Seed...), nil
	}

	opts := []httpclient.Option{
		httpclient.Name("users-broker"),
		httpclient.LogHandler(logHandler),
		httpclient.Timeout(cfg.Users.Timeout),
	}
	if cfg.Users.Retries > 0 {
		opts = append(opts, httpclient.Retry(cfg.Users.Retries, 100*time.Millisecond, 2*time.Second))
	}
	if cfg.Users.TripAfter > 0 {
		opts = append(opts, httpclient.TripAfter(cfg.Users.TripAfter))
	}
	return user.NewRemote(httpclient.New(opts...), cfg.Users.BrokerURL)
}
