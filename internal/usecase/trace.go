package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var aggregationTracer = otel.Tracer("diamond-insights/internal/usecase")

// startUsecaseSpan opens a child span only under a sampled request span, so
// background callers without a trace stay span-free.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if strings.TrimSpace(name) == "" || !parent.SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return aggregationTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
