package golfapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/riskibarqy/golf-league/internal/platform/resilience"
	"github.com/riskibarqy/golf-league/internal/syncapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, srv *httptest.Server, retries int, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()

	client, err := NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL + "/",
		MaxRetries:     retries,
		RetryBackoff:   time.Millisecond,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(ClientConfig{BaseURL: "  "})
	require.Error(t, err)
}

func TestClient_SyncSendsBareContract(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sync" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		var req syncapi.SyncRequest
		if err := sonic.Unmarshal(raw, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"success":true,"results":{"rounds":{"success":1,"failed":0,"errors":[],"items":[{"clientId":4,"serverId":90,"status":"success"}]},"matches":{"success":0,"failed":0,"errors":[]},"skinsGames":{"success":0,"failed":0,"errors":[]}}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 0, resilience.CircuitBreakerConfig{})
	resp, err := client.Sync(context.Background(), syncapi.SyncRequest{UserID: 3, Rounds: []syncapi.Round{{ClientID: 4, UserID: 3, CourseID: 1}}})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.Len(t, resp.Results.Rounds.Items, 1)
	assert.Equal(t, int64(90), resp.Results.Rounds.Items[0].ServerID)
}

func TestClient_EnsureUserUnwrapsEnvelope(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"apiVersion":"2.0","data":{"id":12,"name":"Restored_User_12","handicap":28,"placeholder":true}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 0, resilience.CircuitBreakerConfig{})
	u, err := client.EnsureUser(context.Background(), syncapi.EnsureUserRequest{ID: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(12), u.ID)
	assert.True(t, u.Placeholder)
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"name":"Links","holes":[]}]`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 2, resilience.CircuitBreakerConfig{})
	courses, err := client.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNewClient_LeavesTimeoutUnset(t *testing.T) {
	t.Parallel()

	client, err := NewClient(ClientConfig{BaseURL: "http://golf.test"})
	require.NoError(t, err)
	assert.Zero(t, client.httpClient.Timeout)
	assert.Zero(t, client.maxRetries)
}

func TestClient_TransientStatusNotRetriedByDefault(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 0, resilience.CircuitBreakerConfig{})
	_, err := client.ListCourses(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_WritesAreSentOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 2, resilience.CircuitBreakerConfig{})

	_, err := client.Sync(context.Background(), syncapi.SyncRequest{UserID: 3})
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, int32(1), calls.Load())

	_, err = client.CreateCourse(context.Background(), syncapi.Course{Name: "Links"})
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"apiVersion":"2.0","error":{"code":400,"message":"invalid input: name is required","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 3, resilience.CircuitBreakerConfig{})
	_, err := client.CreateCourse(context.Background(), syncapi.Course{})
	require.Error(t, err)
	assert.False(t, IsTransient(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "INVALID_ARGUMENT", apiErr.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_CircuitOpensAfterTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		Probes:           1,
	})

	for i := 0; i < 2; i++ {
		_, err := client.Activity(context.Background(), 7)
		require.Error(t, err)
		assert.True(t, IsTransient(err))
	}

	_, err := client.Activity(context.Background(), 7)
	require.True(t, crerr.Is(err, ErrUnavailable), "got %v", err)
	assert.Equal(t, int32(2), calls.Load())
}
