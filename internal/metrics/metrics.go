// Package metrics exposes scan and inventory counters in Prometheus format.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Scans         *prometheus.CounterVec
	ScanDuration  prometheus.Histogram
	ScanCacheHits prometheus.Counter
	Changes       *prometheus.CounterVec
	Items         *prometheus.GaugeVec
}

// New creates and registers all collectors.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "motoinvent_scans_total",
			Help: "Label scans by outcome.",
		}, []string{"outcome"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "motoinvent_scan_duration_seconds",
			Help:    "Time spent preparing and recognizing a frame.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
		}),
		ScanCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "motoinvent_scan_cache_hits_total",
			Help: "Scans answered from a previous recognition of the same frame.",
		}),
		Changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "motoinvent_inventory_changes_total",
			Help: "Inventory mutations by model and action.",
		}, []string{"model", "action"}),
		Items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "motoinvent_inventory_items",
			Help: "Number of items per model.",
		}, []string{"model"}),
	}

	for _, c := range []prometheus.Collector{m.Scans, m.ScanDuration, m.ScanCacheHits, m.Changes, m.Items} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return m, nil
}

// ObserveScan counts a finished scan. Busy scans have no duration.
func (m *Metrics) ObserveScan(outcome string, d time.Duration) {
	m.Scans.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.ScanDuration.Observe(d.Seconds())
	}
}

// ScanCacheHit counts a scan served from the result cache.
func (m *Metrics) ScanCacheHit() {
	m.ScanCacheHits.Inc()
}

// ObserveChange counts an inventory mutation and records the model's size.
func (m *Metrics) ObserveChange(modelID, action string, items int) {
	m.Changes.WithLabelValues(modelID, action).Inc()
	m.SetItems(modelID, items)
}

// SetItems records the number of items of a model.
func (m *Metrics) SetItems(modelID string, n int) {
	m.Items.WithLabelValues(modelID).Set(float64(n))
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
