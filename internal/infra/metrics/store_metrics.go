package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsConfig holds configuration for exporting metrics.
type MetricsConfig struct {
	// Textfile is the path metrics are written to on shutdown, in the node_exporter
	// textfile collector format. Empty disables the export.
	Textfile string `env:"TEXTFILE" default:""`
}

// StoreMetrics records record store activity per store name.
type StoreMetrics struct {
	records       *prometheus.GaugeVec
	skipped       *prometheus.CounterVec
	writes        *prometheus.CounterVec
	writeDuration *prometheus.HistogramVec
}

// NewStoreMetrics registers the store metrics on the provided registerer.
// A nil registerer yields metrics that record nothing.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}

	records := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "shop",
		Name:      "store_records",
		Help:      "Number of records held by a store.",
	}, []string{"store"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Name:      "store_skipped_lines_total",
		Help:      "Lines skipped while loading a store.",
	}, []string{"store"})
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Name:      "store_writes_total",
		Help:      "Full rewrites of a store backend.",
	}, []string{"store", "result"})
	writeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shop",
		Name:      "store_write_duration_seconds",
		Help:      "Duration of store rewrites in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"store"})

	reg.MustRegister(records, skipped, writes, writeDuration)

	return &StoreMetrics{
		records:       records,
		skipped:       skipped,
		writes:        writes,
		writeDuration: writeDuration,
	}
}

// SetRecords records the current size of the named store.
func (m *StoreMetrics) SetRecords(store string, n int) {
	if m == nil || m.records == nil {
		return
	}

	m.records.WithLabelValues(store).Set(float64(n))
}

// IncSkipped counts a line the named store could not load.
func (m *StoreMetrics) IncSkipped(store string) {
	if m == nil || m.skipped == nil {
		return
	}

	m.skipped.WithLabelValues(store).Inc()
}

// ObserveWrite records one rewrite of the named store and its outcome.
func (m *StoreMetrics) ObserveWrite(store string, duration time.Duration, err error) {
	if m == nil || m.writes == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "failure"
	}

	m.writes.WithLabelValues(store, result).Inc()
	m.writeDuration.WithLabelValues(store).Observe(duration.Seconds())
}

// WriteTextfile exports everything gathered by g to the configured textfile.
func WriteTextfile(cfg MetricsConfig, g prometheus.Gatherer) error {
	if cfg.Textfile == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(cfg.Textfile, g); err != nil {
		return fmt.Errorf("write to textfile: %w", err)
	}

	return nil
}
