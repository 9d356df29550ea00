package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/aidar/taskboard-client/internal/auth"
	"github.com/aidar/taskboard-client/internal/domain"
	"github.com/aidar/taskboard-client/internal/metrics"
)

// replayHeader marks a request that has already been replayed after a
// refresh. A marked request is never refreshed again, which bounds the
// state machine to one refresh and one replay per logical request.
const replayHeader = "X-Taskboard-Replay"

// exemptSuffixes lists the authentication endpoints that must never trigger
// a refresh: a 401 from them is a real credential problem, not expiry.
var exemptSuffixes = []string{
	"/login",
	"/login-google",
	"/register",
	"/forgot-password",
	"/reset-password",
	"/refresh-token",
}

// RefreshTransport is an http.RoundTripper that transparently recovers from
// an expired access credential: on an eligible 401 it exchanges the stored
// pair for a new one, installs it and replays the original request once.
// Irrecoverable failures force a process-wide logout.
//
// By default concurrent 401s each run their own refresh (the last writer
// wins in the credential store). SingleFlight collapses them into one
// shared refresh call instead.
type RefreshTransport struct {
	Base         http.RoundTripper
	Credentials  *auth.Store
	RefreshURL   string
	SingleFlight bool
	Logger       *slog.Logger
	Metrics      *metrics.Metrics

	group singleflight.Group
}

func (t *RefreshTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip dispatches the request and, when eligible, runs the refresh
// state machine described above.
func (t *RefreshTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base().RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// Not eligible: exempted auth endpoint or already-replayed request.
	// The 401 propagates to the caller as-is.
	if isExemptPath(req.URL.Path) || req.Header.Get(replayHeader) != "" {
		return resp, nil
	}

	pair, ok := t.Credentials.Pair()
	if !ok || !pair.IsComplete() {
		// Cannot refresh without both credentials.
		drainBody(resp)
		t.forceLogout("missing credentials")
		return nil, fmt.Errorf("cannot refresh: %w", domain.ErrSessionExpired)
	}

	drainBody(resp)

	newPair, err := t.refresh(req.Context(), pair)
	if err != nil {
		t.Metrics.Refreshes.WithLabelValues(metrics.RefreshFailed).Inc()
		t.forceLogout(err.Error())
		return nil, fmt.Errorf("token refresh failed: %w", domain.ErrSessionExpired)
	}

	// Clear-then-install happens under one lock so no concurrent request
	// can read a half-updated pair.
	t.Credentials.Replace(newPair)
	t.Metrics.Refreshes.WithLabelValues(metrics.RefreshOK).Inc()
	t.Logger.Info("access token refreshed", "path", req.URL.Path)

	replay, err := cloneForReplay(req, newPair.AccessToken)
	if err != nil {
		return nil, err
	}
	// The replay's outcome is final: the marker set above keeps a second
	// 401 from starting another refresh.
	return t.base().RoundTrip(replay)
}

// refresh exchanges the current pair for a new one, optionally deduplicating
// concurrent refreshes through a single in-flight call.
func (t *RefreshTransport) refresh(ctx context.Context, pair domain.TokenPair) (domain.TokenPair, error) {
	if !t.SingleFlight {
		return t.doRefresh(ctx, pair)
	}
	v, err, _ := t.group.Do("refresh", func() (any, error) {
		return t.doRefresh(ctx, pair)
	})
	if err != nil {
		return domain.TokenPair{}, err
	}
	return v.(domain.TokenPair), nil
}

// refreshResponse tolerates both a flat token pair and the enveloped form.
type refreshResponse struct {
	domain.TokenPair
	Data *domain.TokenPair `json:"data"`
}

// doRefresh calls the refresh endpoint with both current credentials. The
// response must contain a complete new pair or the refresh counts as failed.
func (t *RefreshTransport) doRefresh(ctx context.Context, pair domain.TokenPair) (domain.TokenPair, error) {
	payload, err := json.Marshal(pair)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.RefreshURL, bytes.NewReader(payload))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return domain.TokenPair{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to read refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.TokenPair{}, newError(resp.StatusCode, body)
	}

	var parsed refreshResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.TokenPair{}, domain.ErrInvalidRefreshResponse
	}
	newPair := parsed.TokenPair
	if !newPair.IsComplete() && parsed.Data != nil {
		newPair = *parsed.Data
	}
	if !newPair.IsComplete() {
		return domain.TokenPair{}, domain.ErrInvalidRefreshResponse
	}
	return newPair, nil
}

// forceLogout runs the terminal failure path: credentials are cleared, the
// default authorization state is gone with them, and logout subscribers are
// notified so the whole application transitions to logged-out.
func (t *RefreshTransport) forceLogout(reason string) {
	t.Metrics.ForcedLogouts.Inc()
	t.Logger.Error("forcing logout", "reason", reason)
	t.Credentials.ForceLogout()
}

// cloneForReplay rebuilds the original request with the new access token
// and the replay marker set.
func cloneForReplay(req *http.Request, accessToken string) (*http.Request, error) {
	replay := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		replay.Body = body
	}
	replay.Header.Set("Authorization", "Bearer "+accessToken)
	replay.Header.Set(replayHeader, "1")
	return replay, nil
}

// isExemptPath reports whether the path belongs to an exempted auth endpoint.
func isExemptPath(path string) bool {
	for _, suffix := range exemptSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// drainBody releases a response we are about to replace.
func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
