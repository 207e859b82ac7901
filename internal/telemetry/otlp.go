package telemetry

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// OTLPHooks records grid and transition events as spans and exports them
// to an OTLP endpoint.
type OTLPHooks struct {
	provider *sdktrace.TracerProvider
	tracer   oteltrace.Tracer
	now      func() time.Time
}

// NewOTLPHooks creates an exporter if OTEL_EXPORTER_OTLP_ENDPOINT is set.
// It returns nil, nil when the endpoint is not configured.
func NewOTLPHooks(ctx context.Context) (*OTLPHooks, error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		return nil, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	serviceName := os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		serviceName = "gridboard"
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return &OTLPHooks{
		provider: provider,
		tracer:   provider.Tracer("gridboard/grid"),
		now:      time.Now,
	}, nil
}

// Install registers h for both grid and transition events. A nil h leaves
// the no-op hooks in place.
func (h *OTLPHooks) Install() {
	if h == nil {
		return
	}
	SetGridHooks(h)
	SetTransitionHooks(h)
}

// Shutdown flushes and closes the exporter.
func (h *OTLPHooks) Shutdown(ctx context.Context) error {
	if h == nil {
		return nil
	}
	return h.provider.Shutdown(ctx)
}

func (h *OTLPHooks) span(ctx context.Context, name string, start, end time.Time, attrs ...attribute.KeyValue) {
	_, span := h.tracer.Start(ctx, name, oteltrace.WithTimestamp(start))
	span.SetAttributes(attrs...)
	span.End(oteltrace.WithTimestamp(end))
}

func (h *OTLPHooks) OnReconcile(ctx context.Context, s ReconcileStats) {
	end := h.now()
	h.span(ctx, "grid.reconcile", end.Add(-s.Duration), end,
		attribute.Int("gridboard.added", s.Added),
		attribute.Int("gridboard.removed", s.Removed),
		attribute.Int("gridboard.corrected", s.Corrected),
		attribute.Int("gridboard.protected", s.Protected),
	)
}

func (h *OTLPHooks) OnCommit(ctx context.Context, reason, affectedID string, widgets int) {
	now := h.now()
	h.span(ctx, "grid.commit", now, now,
		attribute.String("gridboard.reason", reason),
		attribute.String("gridboard.widget.id", affectedID),
		attribute.Int("gridboard.widgets", widgets),
	)
}

func (h *OTLPHooks) OnRejected(ctx context.Context, op string, err error) {
	now := h.now()
	_, span := h.tracer.Start(ctx, "grid.rejected", oteltrace.WithTimestamp(now))
	span.SetAttributes(attribute.String("gridboard.op", op))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End(oteltrace.WithTimestamp(now))
}

func (h *OTLPHooks) OnTransitionStart(context.Context, string) {}

func (h *OTLPHooks) OnTransitionComplete(ctx context.Context, id string, forced bool, d time.Duration) {
	end := h.now()
	h.span(ctx, "grid.drop_transition", end.Add(-d), end,
		attribute.String("gridboard.widget.id", id),
		attribute.Bool("gridboard.forced", forced),
	)
}
