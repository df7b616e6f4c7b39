package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/member"
	"github.com/riskibarqy/chit-fund/internal/platform/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetMember(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/u-1":
			_, _ = w.Write([]byte(`{"userEmail":"asha@example.com","userName":"Asha"}`))
		case "/api/users/u-2":
			_, _ = w.Write([]byte(`{"email":"ravi@example.com","name":"Ravi"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL + "/"}, srv.Client(), nil)
	require.NoError(t, err)

	profile, err := client.GetMember(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, member.Profile{ID: "u-1", Email: "asha@example.com", Name: "Asha"}, profile)

	profile, err = client.GetMember(context.Background(), "u-2")
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", profile.Email)
	assert.Equal(t, "Ravi", profile.Name)

	_, err = client.GetMember(context.Background(), "missing")
	require.ErrorIs(t, err, member.ErrNotFound)
}

func TestClient_BreakerCountsOnlyTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/api/users/gone" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{
		BaseURL: srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, srv.Client(), nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := client.GetMember(context.Background(), "gone")
		require.ErrorIs(t, err, member.ErrNotFound)
	}
	assert.Equal(t, resilience.CircuitStateClosed, client.breaker.State())

	for i := 0; i < 2; i++ {
		_, err := client.GetMember(context.Background(), "u-1")
		require.Error(t, err)
		assert.True(t, isCircuitFailure(err))
	}
	assert.Equal(t, resilience.CircuitStateOpen, client.breaker.State())

	before := calls.Load()
	_, err = client.GetMember(context.Background(), "u-1")
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, before, calls.Load())
}

func TestNewClient_RejectsInvalidBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "ftp://users"}, nil, nil)
	require.Error(t, err)
	_, err = NewClient(ClientConfig{}, nil, nil)
	require.Error(t, err)
}
