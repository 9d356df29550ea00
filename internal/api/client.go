// Package api implements the HTTP client core: request dispatch with bearer
// injection, bounded retry, transparent token refresh and normalization of
// the backend's inconsistent listing payloads.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aidar/taskboard-client/internal/auth"
	"github.com/aidar/taskboard-client/internal/metrics"
)

// Client dispatches JSON requests against the backend.
type Client struct {
	baseURL string
	http    *http.Client
	creds   *auth.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewClient creates a Client. The transport is expected to be a
// RefreshTransport so expired-credential recovery happens below this layer.
func NewClient(baseURL string, timeout time.Duration, transport http.RoundTripper, creds *auth.Store, logger *slog.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		creds:   creds,
		logger:  logger,
		metrics: m,
	}
}

// Get выполняет GET запрос и декодирует ответ в out (если out != nil)
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decodeInto(body, out)
}

// GetList выполняет GET запрос листингового эндпоинта и возвращает сырое
// тело ответа: его форма заранее неизвестна и разбирается нормализатором
func (c *Client) GetList(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Post выполняет POST запрос с JSON телом
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := c.do(ctx, http.MethodPost, path, nil, in)
	if err != nil {
		return err
	}
	return decodeInto(body, out)
}

// Put выполняет PUT запрос с JSON телом
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	body, err := c.do(ctx, http.MethodPut, path, nil, in)
	if err != nil {
		return err
	}
	return decodeInto(body, out)
}

// Delete выполняет DELETE запрос
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// do собирает и выполняет один HTTP запрос.
// Access токен подставляется непосредственно перед отправкой, если он есть
// в хранилище; ответы с кодом >= 400 преобразуются в *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.creds.AccessToken(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.RequestsTotal.WithLabelValues(method).Inc()
	c.metrics.RequestDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newError(resp.StatusCode, body)
		c.logger.Warn("api request failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return nil, apiErr
	}

	return body, nil
}

// decodeInto декодирует тело ответа в out; nil out означает что тело
// вызывающему не нужно
func decodeInto(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
