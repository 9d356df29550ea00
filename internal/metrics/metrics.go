package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the sync client.
type Metrics struct {
	RetryAttempts       prometheus.Counter
	Refreshes           *prometheus.CounterVec
	ForcedLogouts       prometheus.Counter
	NormalizerFallbacks prometheus.Counter
	RequestsTotal       *prometheus.CounterVec
	RequestDurationMs   prometheus.Histogram
}

// Refresh outcomes used as label values on the Refreshes counter.
const (
	RefreshOK     = "ok"
	RefreshFailed = "failed"
)

// New registers and returns client metrics collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RetryAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_retry_attempts_total",
			Help: "Total number of retried API calls",
		}),
		Refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_token_refreshes_total",
			Help: "Total number of token refresh attempts by outcome",
		}, []string{"outcome"}),
		ForcedLogouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_forced_logouts_total",
			Help: "Total number of forced logouts after irrecoverable auth failures",
		}),
		NormalizerFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_normalizer_fallbacks_total",
			Help: "Total number of listing payloads that matched none of the known shapes",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_api_requests_total",
			Help: "Total number of API requests by method",
		}, []string{"method"}),
		RequestDurationMs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskboard_api_request_duration_ms",
			Help:    "Duration of API requests in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
	}
}
