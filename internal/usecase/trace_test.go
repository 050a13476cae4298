package usecase

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestStartUsecaseSpan_NoParentStaysSpanFree(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	got, span := startUsecaseSpan(ctx, "usecase.Test", attribute.Int("leaders.limit", 5))
	defer span.End()

	if got != ctx {
		t.Fatalf("expected context to be returned unchanged")
	}
	if span.IsRecording() || span.SpanContext().IsValid() {
		t.Fatalf("expected a non-recording span without a parent")
	}
}
