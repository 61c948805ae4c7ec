// Package observability builds the logger, tracer and metrics registry shared
// by the engine's processes.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	ratingmetrics "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/metrics"
	"github.com/Black-And-White-Club/inhouse-bot/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const metricsNamespace = "inhouse"

// Observability groups the process-wide telemetry handles.
type Observability struct {
	Logger        *slog.Logger
	Tracer        trace.Tracer
	Registry      *prometheus.Registry
	RatingMetrics ratingmetrics.RatingMetrics

	shutdown []func(context.Context) error
}

// Init builds logging, tracing and metrics from cfg. Tracing is a no-op
// without an OTLP endpoint.
func Init(ctx context.Context, cfg config.ObservabilityConfig, out io.Writer) (*Observability, error) {
	if out == nil {
		out = os.Stdout
	}
	logger := NewLogger(cfg, out)

	obs := &Observability{Logger: logger}

	tracerProvider, err := newTracerProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if tracerProvider != nil {
		otel.SetTracerProvider(tracerProvider)
		obs.Tracer = tracerProvider.Tracer(cfg.ServiceName)
		obs.shutdown = append(obs.shutdown, tracerProvider.Shutdown)
		logger.InfoContext(ctx, "Tracing enabled", slog.String("otlp_endpoint", cfg.OTLPEndpoint))
	} else {
		obs.Tracer = noop.NewTracerProvider().Tracer(cfg.ServiceName)
	}

	obs.Registry = prometheus.NewRegistry()
	obs.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ratingMetrics, err := ratingmetrics.NewPrometheusMetrics(obs.Registry, metricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("register rating metrics: %w", err)
	}
	obs.RatingMetrics = ratingMetrics

	return obs, nil
}

// NewLogger returns a JSON logger, or a text logger in development.
func NewLogger(cfg config.ObservabilityConfig, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Environment, "development") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	return slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func newTracerProvider(ctx context.Context, cfg config.ObservabilityConfig) (*sdktrace.TracerProvider, error) {
	if cfg.OTLPEndpoint == "" {
		return nil, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP trace exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.TraceSampleRate))),
	), nil
}

// Shutdown flushes the tracer.
func (o *Observability) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range o.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
