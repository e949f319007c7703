package core

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records client-side request statistics per operation.
type Metrics struct {
	requests *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client collectors on reg. A nil reg uses a fresh
// private registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrapybara_client_requests_total",
			Help: "HTTP attempts issued by the client, by operation and response status.",
		}, []string{"operation", "status"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrapybara_client_retries_total",
			Help: "Retries scheduled by the client, by operation and triggering status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scrapybara_client_request_duration_seconds",
			Help:    "Duration of logical calls including retries.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"operation"}),
	}
	reg.MustRegister(m.requests, m.retries, m.duration)
	return m
}

func (m *Metrics) observeAttempt(operation string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, statusLabel(status)).Inc()
}

func (m *Metrics) observeRetry(operation string, status int) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(operation, statusLabel(status)).Inc()
}

func (m *Metrics) observeCall(operation string, dur time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(dur.Seconds())
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
