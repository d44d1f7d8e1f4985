// Package metrics defines the Prometheus collectors for lint evaluations and
// scans, and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	FlaggedTotal       *prometheus.CounterVec
	ScansTotal         *prometheus.CounterVec
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
	ScanInProgress     prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg gets a
// fresh private registry, which keeps tests and repeated construction from
// colliding on the default registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meshlint_evaluations_total",
				Help: "Object evaluations by outcome (lint_free, has_lint, errored, skipped).",
			},
			[]string{"outcome"},
		),
		EvaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "meshlint_evaluation_duration_seconds",
				Help:    "Time to index and check one object.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		FlaggedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meshlint_flagged_elements_total",
				Help: "Flagged elements by check.",
			},
			[]string{"check"},
		),
		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meshlint_scans_total",
				Help: "Scene scans by mode and terminal state.",
			},
			[]string{"mode", "state"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "meshlint_report_cache_hits_total",
				Help: "Re-evaluations answered from the report cache.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "meshlint_report_cache_misses_total",
				Help: "Re-evaluations that had to run the checks.",
			},
		),
		ScanInProgress: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "meshlint_scan_in_progress",
				Help: "1 while a scene scan is running.",
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.FlaggedTotal,
		m.ScansTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.ScanInProgress,
	)

	return m
}

// ObserveEvaluation records one object evaluation. flagged maps check IDs to
// flagged element counts.
func (m *Metrics) ObserveEvaluation(outcome string, d time.Duration, flagged map[string]int) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.WithLabelValues(outcome).Inc()
	m.EvaluationDuration.Observe(d.Seconds())
	for check, n := range flagged {
		if n > 0 {
			m.FlaggedTotal.WithLabelValues(check).Add(float64(n))
		}
	}
}

// ScanStarted marks a scan as running.
func (m *Metrics) ScanStarted() {
	if m == nil {
		return
	}
	m.ScanInProgress.Set(1)
}

// ScanFinished records a completed scan.
func (m *Metrics) ScanFinished(mode, state string) {
	if m == nil {
		return
	}
	m.ScanInProgress.Set(0)
	m.ScansTotal.WithLabelValues(mode, state).Inc()
}

// CacheHit records a report cache hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// CacheMiss records a report cache miss.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

// Handler returns the Prometheus scrape HTTP handler for the registry the
// collectors were registered with.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
