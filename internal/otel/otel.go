package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rl1809/storefront/internal/log"
)

const instrumentationName = "github.com/rl1809/storefront"

var Tracer = otel.Tracer(instrumentationName)

type ShutdownFunc func(context.Context) error

// InitOtelSdk installs the global propagator and, when endpoint is set, an
// OTLP/gRPC tracer provider. The returned funcs must be passed to ShutdownOtel.
func InitOtelSdk(c context.Context, serviceName, endpoint string) ([]ShutdownFunc, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "otel InitOtelSdk").
		Logger()

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if endpoint == "" {
		logger.Debug().Msg("otel endpoint not configured, tracing disabled")
		return nil, nil
	}

	logger = logger.With().Str(log.KeyProcess, "initializing trace exporter").Logger()
	logger.Info().Msgf("initializing trace exporter endpoint=%s", endpoint)
	exporter, err := otlptracegrpc.New(
		c,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating trace exporter with error=%w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(resource.NewSchemaless(semconv.ServiceName(serviceName))),
	)
	otel.SetTracerProvider(provider)
	logger.Info().Msg("initialized tracer provider")

	return []ShutdownFunc{provider.Shutdown}, nil
}

func ShutdownOtel(c context.Context, shutdownFuncs []ShutdownFunc) error {
	var errs []error
	for _, shutdown := range shutdownFuncs {
		if err := shutdown(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
