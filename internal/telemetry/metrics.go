// Package telemetry counts syntheses on a private Prometheus registry.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics are the report counters. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	Reports             *prometheus.CounterVec
	MissingPlaceholders *prometheus.CounterVec
	NarrativeOutcomes   *prometheus.CounterVec
	SynthesisDuration   prometheus.Histogram
}

// NewMetrics registers the collectors on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Reports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pulsedeck",
				Name:      "reports_total",
				Help:      "Report syntheses by final status.",
			},
			[]string{"status"},
		),
		MissingPlaceholders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pulsedeck",
				Name:      "missing_placeholders_total",
				Help:      "Tokens that could not be filled, by token.",
			},
			[]string{"token"},
		),
		NarrativeOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pulsedeck",
				Name:      "narrative_requests_total",
				Help:      "Narrative analysis calls by outcome.",
			},
			[]string{"outcome"},
		),
		SynthesisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pulsedeck",
			Name:      "synthesis_duration_seconds",
			Help:      "Wall time of one report synthesis.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}

	m.registry.MustRegister(
		m.Reports,
		m.MissingPlaceholders,
		m.NarrativeOutcomes,
		m.SynthesisDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveReport records one finished synthesis
func (m *Metrics) ObserveReport(status string, elapsed time.Duration, missing []string) {
	if m == nil {
		return
	}
	m.Reports.WithLabelValues(status).Inc()
	m.SynthesisDuration.Observe(elapsed.Seconds())
	for _, token := range missing {
		m.MissingPlaceholders.WithLabelValues(token).Inc()
	}
}

// ObserveNarrative records one narrative outcome
func (m *Metrics) ObserveNarrative(outcome string) {
	if m == nil {
		return
	}
	m.NarrativeOutcomes.WithLabelValues(outcome).Inc()
}

// WriteTextfile dumps every metric in the node-exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
