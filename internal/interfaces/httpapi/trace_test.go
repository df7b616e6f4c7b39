package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestIsHandlerSpan(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "httpapi.Handler.RunDraw", want: true},
		{in: "httpapi.RequestLogging", want: false},
		{in: "httpapi.writeError", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, isHandlerSpan(tt.in))
		})
	}
}

func TestStartSpan_WithoutParentIsNoop(t *testing.T) {
	ctx, span := startSpan(context.Background(), "httpapi.Handler.RunDraw")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
	assert.Equal(t, context.Background(), ctx)
}

func TestRequestAttributes(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/groups/g-1/draws", nil)
	req.SetPathValue("groupID", "g-1")
	req = req.WithContext(withActor(req.Context(), "org-1"))

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("chit.group_id", "g-1"),
		attribute.String("chit.actor_id", "org-1"),
	}, requestAttributes(req))

	bare := httptest.NewRequest(http.MethodGet, "/v1/groups", nil)
	assert.Empty(t, requestAttributes(bare))
}
