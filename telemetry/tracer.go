package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "agentdoc"

// TracerConfig controls the OpenTelemetry setup.
type TracerConfig struct {
	Enabled  bool
	Exporter string // "stdout" or "noop"
}

// Setup initializes OpenTelemetry tracing and returns a shutdown function.
// When cfg.Enabled is false, a noop TracerProvider is used.
func Setup(ctx context.Context, cfg TracerConfig) (func(context.Context) error, error) {
	noopShutdown := func(context.Context) error { return nil }

	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return noopShutdown, nil
	}

	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.Exporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
	case "noop", "":
		otel.SetTracerProvider(noop.NewTracerProvider())
		return noopShutdown, nil
	default:
		return nil, fmt.Errorf("unsupported exporter: %s", cfg.Exporter)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// StartSpan is a convenience helper to start a named span.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// OTelSink emits each execution record as a finished span, backdated to the
// execution's actual start and end times.
type OTelSink struct {
	tracer trace.Tracer
}

var _ Sink = (*OTelSink)(nil)

// NewOTelSink constructs a sink on the globally registered TracerProvider.
func NewOTelSink() *OTelSink {
	return &OTelSink{tracer: otel.Tracer(tracerName)}
}

// Record implements Sink.
func (s *OTelSink) Record(rec Record) {
	_, span := s.tracer.Start(context.Background(), "agent.execute",
		trace.WithTimestamp(rec.Start),
		trace.WithAttributes(
			attribute.String("execution.id", rec.ExecutionID),
			attribute.String("agent.name", rec.Agent),
			attribute.String("model.requested", rec.ModelRequested),
			attribute.String("model.used", rec.ModelUsed),
			attribute.Int("tokens.input", rec.Usage.InputTokens),
			attribute.Int("tokens.output", rec.Usage.OutputTokens),
			attribute.Float64("cost.usd", rec.CostUSD),
			attribute.Int("attempts", rec.Attempts),
		),
	)
	if rec.Err != nil {
		span.RecordError(rec.Err)
		span.SetStatus(codes.Error, rec.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(rec.End))
}
