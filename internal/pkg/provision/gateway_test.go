package provision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server error", &ProviderError{Status: 503, Transient: true}, true},
		{"rate limited", &ProviderError{Status: 429, Transient: true}, true},
		{"bad request", &ProviderError{Status: 400, Transient: false}, false},
		{"plain network error", errors.New("dial tcp: i/o timeout"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	err := classify("create", 500, []byte("internal error"))
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.True(t, pe.Transient)
	assert.Equal(t, 500, pe.Status)

	err = classify("create", 422, []byte("invalid plan"))
	require.True(t, errors.As(err, &pe))
	assert.False(t, pe.Transient)
}

func TestHTTPGatewayCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/instances", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req createInstanceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "vps-2c-4g", req.Plan)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"instance":{"id":"inst-123"}}`))
	}))
	defer srv.Close()

	g := &HTTPGateway{APIBaseURL: srv.URL, APIToken: "test-token", HTTPClient: srv.Client()}

	id, err := g.Create(context.Background(), InstanceSpec{PlanSpec: "vps-2c-4g", Label: "svc-1", Region: "fra"})
	require.NoError(t, err)
	assert.Equal(t, "inst-123", id)
}

func TestHTTPGatewayCreateFatalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid region", http.StatusBadRequest)
	}))
	defer srv.Close()

	g := &HTTPGateway{APIBaseURL: srv.URL, APIToken: "test-token", HTTPClient: srv.Client()}

	_, err := g.Create(context.Background(), InstanceSpec{PlanSpec: "vps-2c-4g"})
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestHTTPGatewayFetchStatus(t *testing.T) {
	responses := map[string]string{
		"/instances/building": `{"instance":{"id":"building","status":"pending","main_ip":"0.0.0.0"}}`,
		"/instances/ready":    `{"instance":{"id":"ready","status":"active","main_ip":"203.0.113.10","default_ssh":{"user":"root","password":"s3cret"}}}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		require.True(t, ok, "unexpected path %s", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	g := &HTTPGateway{APIBaseURL: srv.URL, APIToken: "test-token", HTTPClient: srv.Client()}

	st, err := g.FetchStatus(context.Background(), "building")
	require.NoError(t, err)
	assert.False(t, st.Ready)
	assert.Empty(t, st.IPAddress)

	st, err = g.FetchStatus(context.Background(), "ready")
	require.NoError(t, err)
	assert.True(t, st.Ready)
	assert.Equal(t, "203.0.113.10", st.IPAddress)
	assert.Equal(t, "root", st.Username)
	assert.Equal(t, "s3cret", st.Password)
}

func TestHTTPGatewayDeleteMissingInstance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := &HTTPGateway{APIBaseURL: srv.URL, APIToken: "test-token", HTTPClient: srv.Client()}

	existed, err := g.Delete(context.Background(), "gone")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestPlaceholderGatewayLifecycle(t *testing.T) {
	g := NewPlaceholderGateway()
	g.PollsUntilReady = 2

	id, err := g.Create(context.Background(), InstanceSpec{PlanSpec: "vps-1c-2g", Label: "svc-9"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	st, err := g.FetchStatus(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, st.Ready)

	st, err = g.FetchStatus(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, st.Ready)

	st, err = g.FetchStatus(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, st.Ready)
	assert.NotEmpty(t, st.IPAddress)
	assert.Equal(t, "root", st.Username)

	existed, err := g.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = g.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, existed)

	_, err = g.FetchStatus(context.Background(), id)
	require.Error(t, err)
}
