package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
	"github.com/Kimutaijeremy/handyproconnect/internal/session"
)

func TestNewClient(t *testing.T) {
	client := NewClient("")

	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.Equal(t, defaultUserAgent, client.userAgent)
	assert.Nil(t, client.session)
}

func TestNewClient_WithOptions(t *testing.T) {
	customClient := &http.Client{Timeout: 60 * time.Second}
	store := session.NewStore(nil)

	client := NewClient("https://api.example.com/api/v1/",
		WithHTTPClient(customClient),
		WithSession(store),
		WithUserAgent("test-agent"),
	)

	assert.Equal(t, "https://api.example.com/api/v1", client.BaseURL())
	assert.Same(t, customClient, client.httpClient)
	assert.Equal(t, "test-agent", client.userAgent)
	assert.NotNil(t, client.session)
}

func TestNewClient_WithTimeout(t *testing.T) {
	client := NewClient("", WithTimeout(5*time.Second))
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

// newTestServer creates a test server and a client bound to store.
func newTestServer(t *testing.T, store *session.Store, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts := []Option{}
	if store != nil {
		opts = append(opts, WithSession(store))
	}
	return NewClient(server.URL+"/api/v1", opts...)
}

func authenticatedStore(t *testing.T, role models.Role) *session.Store {
	t.Helper()
	store := session.NewStore(nil)
	require.NoError(t, store.CompleteAuth(&models.User{ID: 5, Email: "u@example.com", Role: role}, "test-token"))
	return store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_AttachesBearerAndRequestID(t *testing.T) {
	store := authenticatedStore(t, models.RoleCustomer)

	client := newTestServer(t, store, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		writeJSON(w, http.StatusOK, []any{})
	})

	_, err := client.ListJobs(context.Background())
	require.NoError(t, err)
}

func TestClient_NoBearerWhenAnonymous(t *testing.T) {
	client := newTestServer(t, session.NewStore(nil), func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "name": "Plumbing", "category": "plumbing"}})
	})

	services, err := client.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "Plumbing", services[0].Name)
}

func TestClient_UnauthorizedClearsSession(t *testing.T) {
	store := authenticatedStore(t, models.RoleCustomer)

	client := newTestServer(t, store, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid authentication credentials"})
	})

	_, err := client.ListJobs(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, "Invalid authentication credentials", err.Error())

	snap := store.Snapshot()
	assert.Equal(t, session.StatusAnonymous, snap.Status)
	assert.Empty(t, snap.Token)
	assert.Nil(t, snap.User)
}

func TestClient_ServerErrorIsNormalized(t *testing.T) {
	store := authenticatedStore(t, models.RoleProfessional)

	client := newTestServer(t, store, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Only professionals can view open jobs"})
	})

	_, err := client.ListOpenJobs(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSessionExpired))

	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsForbidden())
	assert.Equal(t, "Only professionals can view open jobs", apiErr.Message)
	assert.True(t, store.Authenticated(), "non-401 errors keep the session")
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(url)
	_, err := client.ListServices(context.Background())
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "list services", reqErr.Op)
}

func TestClient_MalformedResponse(t *testing.T) {
	client := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	})

	_, err := client.ListServices(context.Background())
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
}

func TestClient_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	client := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListServices(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, WithMetrics(reg))
	second := NewClient(server.URL, WithMetrics(reg))

	_, err := client.ListServices(context.Background())
	require.NoError(t, err)
	_, err = second.ListServices(context.Background())
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "handyctl_api_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "one series for code=200 method=get")

	expected := `
# HELP handyctl_api_requests_total Total number of API requests by status code and method
# TYPE handyctl_api_requests_total counter
handyctl_api_requests_total{code="200",method="get"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "handyctl_api_requests_total"))
}
