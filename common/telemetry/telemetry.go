package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	tracer "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func String(key string, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

func Int(key string, value int) attribute.KeyValue {
	return attribute.Int(key, value)
}

func Float64(key string, value float64) attribute.KeyValue {
	return attribute.Float64(key, value)
}

func Bool(key string, value bool) attribute.KeyValue {
	return attribute.Bool(key, value)
}

// Options configures tracing. Zero values select the defaults.
type Options struct {
	ServiceName    string
	ServiceVersion string
	CollectorURL   string
	// SampleRatio is the fraction of new traces recorded. Values outside
	// (0, 1] record everything.
	SampleRatio  float64
	BatchTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.ServiceVersion == "" {
		o.ServiceVersion = "1.0.0"
	}
	if o.BatchTimeout <= 0 {
		o.BatchTimeout = 5 * time.Second
	}
	return o
}

// Sampler returns the sampler for the configured ratio. Child spans follow
// their parent's decision.
func (o Options) Sampler() trace.Sampler {
	if o.SampleRatio <= 0 || o.SampleRatio >= 1 {
		return trace.ParentBased(trace.AlwaysSample())
	}
	return trace.ParentBased(trace.TraceIDRatioBased(o.SampleRatio))
}

// InitTracer installs a global tracer provider exporting spans over OTLP gRPC.
// The returned function flushes pending spans and closes the connection.
func InitTracer(ctx context.Context, opts Options) (func(context.Context) error, error) {
	if opts.CollectorURL == "" {
		return nil, errors.New("telemetry: collector URL is required")
	}
	opts = opts.withDefaults()

	conn, err := grpc.DialContext(ctx, opts.CollectorURL, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.ServiceVersion),
		),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := trace.NewTracerProvider(
		trace.WithSampler(opts.Sampler()),
		trace.WithResource(res),
		trace.WithBatcher(exporter, trace.WithBatchTimeout(opts.BatchTimeout)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		var errs []error
		if err := provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shut down tracer provider: %w", err))
		}
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close collector connection: %w", err))
		}
		return errors.Join(errs...)
	}, nil
}

// GetTracer returns an OpenTelemetry tracer for the specified service name.
func GetTracer(serviceName string) tracer.Tracer {
	return otel.GetTracerProvider().Tracer(serviceName)
}
