package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/aidar/taskboard-client/internal/metrics"
)

// Retryer executes a single side-effecting operation with bounded retry and
// linear backoff. It is stateless between calls: every Do starts a fresh
// attempt counter.
type Retryer struct {
	MaxAttempts int
	BaseDelay   time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
	wait    func(ctx context.Context, d time.Duration) error
}

// NewRetryer creates a Retryer. maxAttempts counts the initial attempt plus
// retries; baseDelay is multiplied by the retry index (1s, 2s, ...).
func NewRetryer(maxAttempts int, baseDelay time.Duration, logger *slog.Logger, m *metrics.Metrics) *Retryer {
	return &Retryer{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		logger:      logger,
		metrics:     m,
		wait:        sleepCtx,
	}
}

// Do runs op up to MaxAttempts times. Before each retry (never before the
// first attempt) it waits retryIndex * BaseDelay. A 401 aborts immediately:
// authentication failures are never transient from this wrapper's point of
// view, the refresh transport owns that recovery. On exhaustion the last
// observed error is returned.
func (r *Retryer) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := time.Duration(attempt-1) * r.BaseDelay
			r.metrics.RetryAttempts.Inc()
			r.logger.Warn("retrying operation",
				"operation", name,
				"attempt", attempt,
				"delay", delay,
				"error", lastErr,
			)
			if err := r.wait(ctx, delay); err != nil {
				return err
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if IsUnauthorized(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
