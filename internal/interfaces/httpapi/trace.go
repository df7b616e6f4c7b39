package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var apiTracer = otel.Tracer("github.com/riskibarqy/chit-fund/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// startSpan opens a child span for handler methods only. Helpers, and requests the
// tracing middleware skipped, get a no-op span so they never start a root trace.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !isHandlerSpan(name) || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// startRequestSpan starts the span of an endpoint, tagged with the group and actor of r.
func startRequestSpan(r *http.Request, handler string) (context.Context, trace.Span) {
	return startSpan(r.Context(), handlerSpanPrefix+handler, requestAttributes(r)...)
}

func requestAttributes(r *http.Request) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if groupID := strings.TrimSpace(r.PathValue("groupID")); groupID != "" {
		attrs = append(attrs, attribute.String("chit.group_id", groupID))
	}
	if actorID := actorFromContext(r.Context()); actorID != "" {
		attrs = append(attrs, attribute.String("chit.actor_id", actorID))
	}
	return attrs
}

func isHandlerSpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix)
}
