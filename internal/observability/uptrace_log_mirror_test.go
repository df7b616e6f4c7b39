package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	assert.True(t, shouldSkipUptraceLog("http request", map[string]any{"path": "/healthz"}))
	assert.False(t, shouldSkipUptraceLog("http request", map[string]any{"path": "/v1/groups"}))
	assert.False(t, shouldSkipUptraceLog("notification send failed", map[string]any{"path": "/healthz"}))
}

func TestBuildOTelLogAttributes_SortedByKey(t *testing.T) {
	attrs := buildOTelLogAttributes(map[string]any{
		"group_id": "g-1",
		"attempt":  int64(2),
		"payload":  nil,
	})
	require.Len(t, attrs, 3)

	assert.Equal(t, "attempt", attrs[0].Key)
	assert.Equal(t, int64(2), attrs[0].Value.AsInt64())
	assert.Equal(t, "group_id", attrs[1].Key)
	assert.Equal(t, "g-1", attrs[1].Value.AsString())
	assert.Equal(t, otellog.KindEmpty, attrs[2].Value.Kind())
}

func TestToOTelLogValue_Map(t *testing.T) {
	v := toOTelLogValue(map[string]any{
		"penalties": 3,
		"closed":    true,
	}, 0)
	require.Equal(t, otellog.KindMap, v.Kind())
	assert.Len(t, v.AsMap(), 2)
}

func TestUptraceLogCore_RespectsLevel(t *testing.T) {
	core := newUptraceLogCore("test", zapcore.WarnLevel)
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	child := core.With([]zapcore.Field{zap.String("component", "reconciliation")})
	require.NoError(t, child.Write(zapcore.Entry{Level: zapcore.ErrorLevel, Message: "reconcile group failed"}, nil))
	require.NoError(t, child.Sync())
}
