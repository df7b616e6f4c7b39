package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("github.com/riskibarqy/chit-fund/internal/usecase")

// startUsecaseSpan only nests under an existing span. Calls from untraced contexts, such as
// tests or a scheduler tick without tracing, stay span-free.
func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return usecaseTracer.Start(ctx, name)
}

// tagGroup records the group a usecase span operates on.
func tagGroup(ctx context.Context, groupID string) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("chit.group_id", groupID))
}
