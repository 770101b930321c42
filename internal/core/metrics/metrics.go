// Package metrics exposes the lookup pipeline counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric.
const Namespace = "gel"

// Metrics holds the scrape pipeline metrics.
type Metrics struct {
	ScrapeRequestsTotal *prometheus.CounterVec
	ScrapeDuration      *prometheus.HistogramVec
	StageFailuresTotal  *prometheus.CounterVec
	CacheHitsTotal      prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers the scrape metrics on reg.
// A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	factory := promauto.With(reg)

	return &Metrics{
		ScrapeRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "scrape_requests_total",
				Help:      "Total number of tracking lookups by outcome",
			},
			[]string{"outcome"},
		),
		ScrapeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "scrape_duration_seconds",
				Help:      "Duration of tracking lookups in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s to ~64s
			},
			[]string{"outcome"},
		),
		StageFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "scrape_stage_failures_total",
				Help:      "Total number of failed lookups by pipeline stage",
			},
			[]string{"stage"},
		),
		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "scrape_cache_hits_total",
				Help:      "Total number of lookups answered from the result cache",
			},
		),
		gatherer: reg,
	}
}

// ObserveScrape records a finished lookup.
func (m *Metrics) ObserveScrape(outcome string, duration time.Duration) {
	m.ScrapeRequestsTotal.WithLabelValues(outcome).Inc()
	m.ScrapeDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveStageFailure records the stage a lookup failed at.
func (m *Metrics) ObserveStageFailure(stage string) {
	m.StageFailuresTotal.WithLabelValues(stage).Inc()
}

// ObserveCacheHit records a lookup answered from the cache.
func (m *Metrics) ObserveCacheHit() {
	m.CacheHitsTotal.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
