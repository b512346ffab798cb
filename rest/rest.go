// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rest hosts discovered resters behind an HTTP server.
//
// Every request flows through the same state machine: the middleware
// pipeline, an exact route match, rester resolution from the service
// registry, parameter binding, action invocation and finally the JSON
// response. Any failure along the way is converted into an error response
// so a client always receives a well formed reply.
package rest

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"reflect"

	"github.com/z5labs/tigernet/di"
	"github.com/z5labs/tigernet/pkg/health"
	"github.com/z5labs/tigernet/pkg/noop"
	"github.com/z5labs/tigernet/pkg/slogfield"
	"github.com/z5labs/tigernet/rest/rester"
	"github.com/z5labs/tigernet/rest/route"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// Option represents configurable attributes of [App].
type Option func(*App)

// Listener allows you to configure the [net.Listener] for
// the underlying [http.Server] to use for serving requests.
//
// If this option is not supplied, then [net.Listen] will be
// used to create a [net.Listener] for "tcp" and the configured [Addr].
func Listener(ls net.Listener) Option {
	return func(a *App) {
		a.ls = ls
	}
}

// Addr sets the address to listen on if no [Listener] is given.
// The default is ":80".
func Addr(addr string) Option {
	return func(a *App) {
		a.addr = addr
	}
}

// LogHandler sets the [slog.Handler] used for request logs.
// Nothing is logged by default.
func LogHandler(h slog.Handler) Option {
	return func(a *App) {
		a.log = slog.New(h)
	}
}

// Service binds the abstraction A to the given constructor in the service
// registry used to resolve resters and their dependencies. See
// [di.Registry.Register] for the supported constructor shapes.
func Service[A any](constructor any) Option {
	return func(a *App) {
		a.services = append(a.services, func(r *di.Registry) error {
			return di.Register[A](r, constructor)
		})
	}
}

// Resters registers candidates for rester discovery. See [rester.Discover]
// for the supported candidate shapes. Discovery runs once, when the App is built.
// Resters are rebuilt from their type on every request, so a value candidate
// carrying state is rejected; pass a constructor instead.
func Resters(candidates ...any) Option {
	return func(a *App) {
		a.candidates = append(a.candidates, candidates...)
	}
}

// Handle registers an explicit route which bypasses rester resolution and
// parameter binding. An empty method answers to every method.
func Handle(method string, path string, h http.Handler) Option {
	return func(a *App) {
		a.explicit = append(a.explicit, route.Route[handler]{
			Method:  route.Method(method),
			Path:    path,
			Handler: handler{explicit: h},
		})
	}
}

// Use appends middleware to the pipeline. Middleware run in the order
// they are registered.
func Use(mw ...Middleware) Option {
	return func(a *App) {
		a.middleware = append(a.middleware, mw...)
	}
}

// SerializeRequests makes the dispatcher handle a single request at a time.
// By default requests are dispatched concurrently.
func SerializeRequests() Option {
	return func(a *App) {
		a.serialize = true
	}
}

// Metrics registers request counters and latency histograms with the
// given [prometheus.Registerer].
func Metrics(reg prometheus.Registerer) Option {
	return func(a *App) {
		a.reg = reg
	}
}

// Liveness registers a GET /health/liveness route reporting the given metric.
func Liveness(m health.Metric) Option {
	return Handle(http.MethodGet, "/health/liveness", health.NewHandler(m))
}

// Readiness registers a GET /health/readiness route reporting the given metric.
func Readiness(m health.Metric) Option {
	return Handle(http.MethodGet, "/health/readiness", health.NewHandler(m))
}

// App hosts resters behind an [http.Server].
type App struct {
	ls     net.Listener
	addr   string
	listen func(network, addr string) (net.Listener, error)

	services   []func(*di.Registry) error
	candidates []any
	explicit   []route.Route[handler]
	middleware []Middleware

	log       *slog.Logger
	reg       prometheus.Registerer
	serialize bool

	built    http.Handler
	builtErr error
	resters  []rester.Rester
}

// NewApp initializes a [App].
func NewApp(opts ...Option) *App {
	app := &App{
		addr:   ":80",
		listen: net.Listen,
		log:    slog.New(noop.LogHandler{}),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Build discovers every rester, populates the route table and service
// registry and returns the resulting [http.Handler]. Both the route table
// and the service registry are read-only afterwards.
//
// All configuration errors are returned together. Build only does its work
// once and later calls return the same result.
func (app *App) Build() (http.Handler, error) {
	if app.built != nil || app.builtErr != nil {
		return app.built, app.builtErr
	}
	app.built, app.builtErr = app.build()
	return app.built, app.builtErr
}

func (app *App) build() (http.Handler, error) {
	registry := di.NewRegistry()
	routes := route.NewTable[handler]()

	var errs []error
	for _, register := range app.services {
		errs = append(errs, register(registry))
	}

	resters, err := rester.Discover(app.candidates...)
	errs = append(errs, err)

	for _, r := range resters {
		errs = append(errs, registry.Register(r.Type, r.Constructor))
	}
	for _, r := range resters {
		err := registry.CheckCycles(r.Type)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		for i := range r.Descriptors {
			action := &r.Descriptors[i]
			errs = append(errs, routes.Add(route.Route[handler]{
				Method:  action.Verb.Method,
				Path:    action.Path(),
				Handler: handler{action: action},
			}))
		}
	}
	for _, rt := range app.explicit {
		errs = append(errs, routes.Add(rt))
	}

	var m *metrics
	if app.reg != nil {
		m, err = newMetrics(app.reg)
		errs = append(errs, err)
	}

	err = errors.Join(errs...)
	if err != nil {
		return nil, err
	}

	registry.Freeze()
	routes.Freeze()
	app.resters = resters

	for _, rt := range routes.Routes() {
		app.log.Info("registered route",
			slogfield.Method(methodLabel(rt.Method)),
			slogfield.Route(rt.Path),
		)
	}

	d := &dispatcher{
		routes:     routes,
		registry:   registry,
		middleware: app.middleware,
		log:        app.log,
		tracer:     otel.Tracer("github.com/z5labs/tigernet/rest"),
		metrics:    m,
		serialize:  app.serialize,
	}
	return d, nil
}

func methodLabel(m route.Method) string {
	if m == route.MethodAny {
		return "*"
	}
	return string(m)
}

// Resters returns the type of every discovered rester. It is empty until
// the App has been successfully built.
func (app *App) Resters() []reflect.Type {
	types := make([]reflect.Type, len(app.resters))
	for i, r := range app.resters {
		types[i] = r.Type
	}
	return types
}

// Run builds the App and serves requests until the given context is
// cancelled, at which point the server is gracefully shut down.
func (app *App) Run(ctx context.Context) error {
	h, err := app.Build()
	if err != nil {
		return err
	}

	ls, err := app.listener()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Handler: otelhttp.NewHandler(
			h,
			"server",
			otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents),
		),
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return httpServer.Serve(ls)
	})
	eg.Go(func() error {
		<-egctx.Done()
		return httpServer.Shutdown(context.Background())
	})

	err = eg.Wait()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (app *App) listener() (net.Listener, error) {
	if app.ls != nil {
		return app.ls, nil
	}
	return app.listen("tcp", app.addr)
}
