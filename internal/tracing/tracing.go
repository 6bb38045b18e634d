// Package tracing wires OpenTelemetry spans around bootstrap phases.
//
// Tracing is off by default; a disabled Provider hands out a no-op tracer so
// callers never need to check. When enabled, spans are exported to stdout
// or appended to a file as JSON.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultServiceName = "rig"

// Config configures tracing.
type Config struct {
	Enabled bool `yaml:"enabled"`
	// Exporter is one of "stdout", "file" or "none".
	Exporter    string  `yaml:"exporter"`
	FilePath    string  `yaml:"filePath"`
	SampleRate  float64 `yaml:"sampleRate"`
	ServiceName string  `yaml:"serviceName"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		Exporter:    "stdout",
		SampleRate:  1.0,
		ServiceName: defaultServiceName,
	}
}

// Provider owns the tracer used by the bootstrap.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	closer   io.Closer
}

// NewProvider builds a provider from cfg. A disabled config yields a no-op
// provider.
func NewProvider(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: noop.NewTracerProvider().Tracer("noop")}, nil
	}

	var (
		exporter sdktrace.SpanExporter
		closer   io.Closer
		err      error
	)
	switch cfg.Exporter {
	case "stdout", "":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("filePath required for file exporter")
		}
		var f *os.File
		f, err = openTraceFile(cfg.FilePath)
		if err == nil {
			closer = f
			exporter, err = stdouttrace.New(stdouttrace.WithWriter(f))
		}
	case "none":
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Exporter, err)
	}

	opts := []sdktrace.TracerProviderOption{}
	if exporter != nil {
		opts = append(opts, sdktrace.WithSyncer(exporter))
	}
	p := newSDKProvider(cfg, opts...)
	p.closer = closer
	return p, nil
}

func newSDKProvider(cfg Config, opts ...sdktrace.TracerProviderOption) *Provider {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = defaultServiceName
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 1.0
	}

	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	}, opts...)
	tp := sdktrace.NewTracerProvider(opts...)
	return &Provider{provider: tp, tracer: tp.Tracer(serviceName)}
}

func openTraceFile(path string) (*os.File, error) {
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o750); err != nil {
		return nil, err
	}
	return os.OpenFile(clean, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- path is cleaned above
}

// Enabled reports whether spans are recorded.
func (p *Provider) Enabled() bool {
	return p.provider != nil
}

func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Start opens a span named "rig.<name>".
func (p *Provider) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "rig."+name, trace.WithAttributes(attrs...))
}

// End closes span, recording err when set.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Shutdown flushes spans and closes the trace file.
func (p *Provider) Shutdown(ctx context.Context) error {
	var err error
	if p.provider != nil {
		err = p.provider.Shutdown(ctx)
	}
	if p.closer != nil {
		if cerr := p.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
