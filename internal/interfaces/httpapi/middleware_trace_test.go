package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldTraceRequest(t *testing.T) {
	cases := map[string]bool{
		"/healthz":             false,
		"/health":              false,
		"/livez":               false,
		"/readyz":              false,
		" /healthz ":           false,
		"/v1/groups":           true,
		"/v1/groups/g-1/draws": true,
		"/":                    true,
		"/docs":                true,
	}

	for path, want := range cases {
		assert.Equal(t, want, shouldTraceRequest(path), "path %q", path)
	}
}
