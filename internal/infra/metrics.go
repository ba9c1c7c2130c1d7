package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	JobsCreatedTotal   prometheus.Counter
	JobsCompletedTotal prometheus.Counter
	JobsFailedTotal    prometheus.Counter
	GenerationSeconds  prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates and registers the service metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		JobsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itinerary_jobs_created_total",
			Help: "Total itinerary jobs accepted.",
		}),
		JobsCompletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itinerary_jobs_completed_total",
			Help: "Total itinerary jobs that reached the completed state.",
		}),
		JobsFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itinerary_jobs_failed_total",
			Help: "Total itinerary jobs that reached the failed state.",
		}),
		GenerationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "itinerary_generation_duration_seconds",
			Help:    "Wall time spent producing itinerary content per job.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.JobsCreatedTotal,
		m.JobsCompletedTotal,
		m.JobsFailedTotal,
		m.GenerationSeconds,
	)

	return m
}

// Handler returns the scrape endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
