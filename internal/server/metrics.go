package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metricsRegistry struct {
	registry            *prometheus.Registry
	createsTotal        *prometheus.CounterVec
	purchasesTotal      *prometheus.CounterVec
	oracleFallbackTotal prometheus.Counter
	workflowDuration    *prometheus.HistogramVec
}

func newMetricsRegistry() *metricsRegistry {
	creates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assetrails_create_asset_total",
		Help: "Total number of create-asset requests by outcome",
	}, []string{"outcome"})

	purchases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assetrails_purchase_fraction_total",
		Help: "Total number of purchase-fraction requests by outcome",
	}, []string{"outcome"})

	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assetrails_oracle_price_fallback_total",
		Help: "Purchases priced from metadata because the oracle read failed",
	})

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assetrails_workflow_duration_seconds",
		Help:    "End-to-end workflow latency",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"workflow"})

	r := prometheus.NewRegistry()
	r.MustRegister(creates, purchases, fallbacks, durations)

	return &metricsRegistry{
		registry:            r,
		createsTotal:        creates,
		purchasesTotal:      purchases,
		oracleFallbackTotal: fallbacks,
		workflowDuration:    durations,
	}
}

func (m *metricsRegistry) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metricsRegistry) incCreate(outcome string) {
	m.createsTotal.WithLabelValues(outcome).Inc()
}

func (m *metricsRegistry) incPurchase(outcome string) {
	m.purchasesTotal.WithLabelValues(outcome).Inc()
}

func (m *metricsRegistry) incOracleFallback() {
	m.oracleFallbackTotal.Inc()
}

func (m *metricsRegistry) observeWorkflow(workflow string, elapsed time.Duration) {
	m.workflowDuration.WithLabelValues(workflow).Observe(elapsed.Seconds())
}
