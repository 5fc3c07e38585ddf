package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcome labels
const (
	OutcomeLive     = "live"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

type ProviderMetricsCollector struct {
	Fetches *prometheus.CounterVec
	Latency *prometheus.HistogramVec
}

// Registered at package init so concurrent first fetches cannot race on
// collector creation.
var providerCollector = &ProviderMetricsCollector{
	Fetches: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finboard_provider_fetches_total",
			Help: "The total number of upstream fetches by outcome",
		},
		[]string{"provider", "outcome"},
	),
	Latency: promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finboard_provider_fetch_duration_seconds",
			Help:    "Upstream fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	),
}

type ProviderMetrics struct {
	provider  string
	collector *ProviderMetricsCollector
}

func NewProviderMetrics(provider string) *ProviderMetrics {
	return &ProviderMetrics{
		provider:  provider,
		collector: providerCollector,
	}
}

func (m *ProviderMetrics) RecordFetch(outcome string) {
	m.collector.Fetches.WithLabelValues(m.provider, outcome).Inc()
}

func (m *ProviderMetrics) RecordLatency(duration float64) {
	m.collector.Latency.WithLabelValues(m.provider).Observe(duration)
}
