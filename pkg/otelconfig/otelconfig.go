// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelconfig provides initializers for the OpenTelemetry tracing SDK.
package otelconfig

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Initializer creates a [trace.TracerProvider].
type Initializer interface {
	Init(context.Context) (trace.TracerProvider, error)
}

// InitializerFunc is a functional implementation of the [Initializer] interface.
type InitializerFunc func(context.Context) (trace.TracerProvider, error)

// Init implements the [Initializer] interface.
func (f InitializerFunc) Init(ctx context.Context) (trace.TracerProvider, error) {
	return f(ctx)
}

// Common holds the settings shared by every exporter.
type Common struct {
	ServiceName    string  `config:"serviceName"`
	ServiceVersion string  `config:"serviceVersion"`
	SampleRatio    float64 `config:"sampleRatio"`
}

// CommonOption configures settings shared by every exporter.
type CommonOption interface {
	GoogleCloudOption
	LocalOption
	OTLPOption
}

type commonOptionFunc func(*Common)

func (f commonOptionFunc) ApplyGCP(cfg *GoogleCloudConfig) {
	f(&cfg.Common)
}

func (f commonOptionFunc) ApplyOTLP(cfg *OTLPConfig) {
	f(&cfg.Common)
}

func (f commonOptionFunc) ApplyLocal(cfg *LocalConfig) {
	f(&cfg.Common)
}

// ServiceName sets the service.name resource attribute.
func ServiceName(name string) CommonOption {
	return commonOptionFunc(func(c *Common) {
		c.ServiceName = name
	})
}

// ServiceVersion sets the service.version resource attribute.
func ServiceVersion(version string) CommonOption {
	return commonOptionFunc(func(c *Common) {
		c.ServiceVersion = version
	})
}

// SampleRatio samples the given fraction of root spans. Child spans follow
// their parent's decision. Zero, the default, samples every span.
func SampleRatio(ratio float64) CommonOption {
	return commonOptionFunc(func(c *Common) {
		c.SampleRatio = ratio
	})
}

func (c Common) sampler() sdktrace.Sampler {
	if c.SampleRatio <= 0 || c.SampleRatio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
}

func (c Common) resource(ctx context.Context, opts ...resource.Option) (*resource.Resource, error) {
	attrs := resource.WithAttributes(
		semconv.ServiceName(c.ServiceName),
		semconv.ServiceVersion(c.ServiceVersion),
	)
	return resource.New(ctx, append([]resource.Option{resource.WithTelemetrySDK(), attrs}, opts...)...)
}

// Noop leaves tracing disabled.
var Noop Initializer = InitializerFunc(func(context.Context) (trace.TracerProvider, error) {
	return noop.NewTracerProvider(), nil
})

// LocalConfig exports spans as JSON to a writer.
type LocalConfig struct {
	Common

	Out io.Writer
}

// LocalOption configures [Local].
type LocalOption interface {
	ApplyLocal(*LocalConfig)
}

type localOptionFunc func(*LocalConfig)

func (f localOptionFunc) ApplyLocal(cfg *LocalConfig) {
	f(cfg)
}

// Writer sets where [Local] writes spans. It defaults to stdout.
func Writer(w io.Writer) LocalOption {
	return localOptionFunc(func(lc *LocalConfig) {
		lc.Out = w
	})
}

// Local returns an [Initializer] which exports spans to a writer.
func Local(opts ...LocalOption) Initializer {
	cfg := LocalConfig{
		Out: os.Stdout,
	}
	for _, opt := range opts {
		opt.ApplyLocal(&cfg)
	}
	return cfg
}

// Init implements the [Initializer] interface.
func (cfg LocalConfig) Init(ctx context.Context) (trace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(cfg.Out),
	)
	if err != nil {
		return nil, err
	}

	res, err := cfg.resource(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(cfg.sampler()),
	)
	return tp, nil
}

// Config selects and configures an exporter from config values.
type Config struct {
	Common `config:",squash"`

	// Exporter is one of "stdout", "otlp", "gcp" or "none".
	Exporter  string `config:"exporter"`
	Target    string `config:"target"`
	ProjectID string `config:"projectId"`
}

// UnknownExporterError occurs when [Config.Exporter] is not a known exporter.
type UnknownExporterError struct {
	Exporter string
}

// Error implements the [builtin.error] interface.
func (e UnknownExporterError) Error() string {
	return fmt.Sprintf("unknown otel exporter: %s", e.Exporter)
}

// Initializer returns the [Initializer] selected by the config.
func (cfg Config) Initializer() (Initializer, error) {
	common := []CommonOption{
		ServiceName(cfg.ServiceName),
		ServiceVersion(cfg.ServiceVersion),
		SampleRatio(cfg.SampleRatio),
	}

	switch cfg.Exporter {
	case "", "none":
		return Noop, nil
	case "stdout":
		opts := make([]LocalOption, len(common))
		for i, opt := range common {
			opts[i] = opt
		}
		return Local(opts...), nil
	case "otlp":
		opts := []OTLPOption{Target(cfg.Target)}
		for _, opt := range common {
			opts = append(opts, opt)
		}
		return OTLP(opts...), nil
	case "gcp":
		opts := []GoogleCloudOption{GoogleCloudProjectId(cfg.ProjectID)}
		for _, opt := range common {
			opts = append(opts, opt)
		}
		return GoogleCloud(opts...), nil
	default:
		return nil, UnknownExporterError{Exporter: cfg.Exporter}
	}
}

// InitializeOTel installs the selected tracer provider and the W3C trace
// context propagator as the otel globals.
func (cfg Config) InitializeOTel(ctx context.Context) error {
	initializer, err := cfg.Initializer()
	if err != nil {
		return err
	}

	tp, err := initializer.Init(ctx)
	if err != nil {
		return err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return nil
}
