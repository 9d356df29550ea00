package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/taskboard-client/internal/auth"
	"github.com/aidar/taskboard-client/internal/domain"
	"github.com/aidar/taskboard-client/internal/metrics"
)

// recordingHandler запоминает заголовки входящих запросов
type recordingHandler struct {
	mu       sync.Mutex
	requests []http.Header
	status   int
	body     string
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.requests = append(h.requests, r.Header.Clone())
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if h.status != 0 {
		w.WriteHeader(h.status)
	}
	_, _ = w.Write([]byte(h.body))
}

func (h *recordingHandler) headers(i int) http.Header {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.requests[i]
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *auth.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds := auth.NewStore()
	client := NewClient(srv.URL, 5*time.Second, nil, creds,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.New(prometheus.NewRegistry()),
	)
	return client, creds
}

func TestClient_BearerInjection(t *testing.T) {
	handler := &recordingHandler{body: `{}`}
	client, creds := newTestClient(t, handler)

	// Без пары в хранилище заголовок не ставится
	require.NoError(t, client.Get(context.Background(), "/api/projects/p1", nil, nil))
	assert.Empty(t, handler.headers(0).Get("Authorization"))

	creds.Set(domain.TokenPair{AccessToken: "token-1", RefreshToken: "refresh-1"})
	require.NoError(t, client.Get(context.Background(), "/api/projects/p1", nil, nil))
	assert.Equal(t, "Bearer token-1", handler.headers(1).Get("Authorization"))
}

func TestClient_RequestIDUniquePerRequest(t *testing.T) {
	handler := &recordingHandler{body: `{}`}
	client, _ := newTestClient(t, handler)

	require.NoError(t, client.Get(context.Background(), "/api/projects", nil, nil))
	require.NoError(t, client.Get(context.Background(), "/api/projects", nil, nil))

	first := handler.headers(0).Get("X-Request-Id")
	second := handler.headers(1).Get("X-Request-Id")
	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}

func TestClient_QueryEncoding(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, 5*time.Second, nil, auth.NewStore(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.New(prometheus.NewRegistry()),
	)

	req := domain.PageRequest{PageNumber: 2, PageSize: 10, Search: "alpha"}
	_, err := client.GetList(context.Background(), "/api/projects", req.Values())
	require.NoError(t, err)

	assert.Equal(t, "2", gotQuery.Get("pageNumber"))
	assert.Equal(t, "10", gotQuery.Get("pageSize"))
	assert.Equal(t, "alpha", gotQuery.Get("search"))
}

func TestClient_ErrorMapping(t *testing.T) {
	handler := &recordingHandler{status: http.StatusNotFound, body: `{"message":"project not found"}`}
	client, _ := newTestClient(t, handler)

	err := client.Get(context.Background(), "/api/projects/missing", nil, nil)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "project not found", apiErr.Message)
}

func TestClient_DecodesEntityEnvelope(t *testing.T) {
	handler := &recordingHandler{body: `{"data":{"id":"p1","name":"Alpha","ownerId":"u1"}}`}
	client, _ := newTestClient(t, handler)

	var entity Entity[domain.Project]
	require.NoError(t, client.Get(context.Background(), "/api/projects/p1", nil, &entity))
	assert.Equal(t, "p1", entity.Value.ID)
	assert.Equal(t, "Alpha", entity.Value.Name)
}

func TestClient_DecodesFlatEntity(t *testing.T) {
	handler := &recordingHandler{body: `{"id":"p1","name":"Alpha","ownerId":"u1"}`}
	client, _ := newTestClient(t, handler)

	var entity Entity[domain.Project]
	require.NoError(t, client.Get(context.Background(), "/api/projects/p1", nil, &entity))
	assert.Equal(t, "p1", entity.Value.ID)
}
