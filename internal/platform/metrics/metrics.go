package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-wide Prometheus metrics. Domain packages register
// their own metrics next to their services.
type Metrics struct {
	RequestLatency *prometheus.HistogramVec
}

// New creates and registers all platform metrics.
func New() *Metrics {
	return &Metrics{
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "itsg33_http_request_duration_seconds",
			Help:    "HTTP request latency by path and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "status"}),
	}
}

// ObserveRequest records one request observation.
func (m *Metrics) ObserveRequest(path, status string, d time.Duration) {
	m.RequestLatency.WithLabelValues(path, status).Observe(d.Seconds())
}
