// Package metrics instruments the record manager with Prometheus
// collectors: algorithm runs and their work counters, visualization
// steps, collection size and import outcomes.
//
// There is no scrape endpoint. The host writes the registry to a
// node-exporter textfile on shutdown (see WriteTextfile).
//
// A nil *Metrics is valid and records nothing, so components can take an
// optional metrics dependency without nil checks at every call site.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "student_records"

// Algorithm families used as the "kind" label.
const (
	KindSearch = "search"
	KindSort   = "sort"
)

// Metrics holds every collector the application exports.
type Metrics struct {
	runs           *prometheus.CounterVec
	comparisons    *prometheus.CounterVec
	swaps          *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	visualSteps    *prometheus.CounterVec
	collectionSize prometheus.Gauge
	importItems    *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. Pass a fresh
// prometheus.NewRegistry() in tests to keep them isolated.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "algorithm",
				Name:      "runs_total",
				Help:      "Search and sort runs by kind and algorithm",
			},
			[]string{"kind", "algorithm"},
		),
		comparisons: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "algorithm",
				Name:      "comparisons_total",
				Help:      "Comparisons performed by kind and algorithm",
			},
			[]string{"kind", "algorithm"},
		),
		swaps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "algorithm",
				Name:      "swaps_total",
				Help:      "Swaps performed by sort algorithm",
			},
			[]string{"algorithm"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "algorithm",
				Name:      "run_duration_seconds",
				Help:      "Wall time of one search or sort run",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"kind", "algorithm"},
		),
		visualSteps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "visual",
				Name:      "steps_total",
				Help:      "Visualization steps emitted by step kind",
			},
			[]string{"step"},
		),
		collectionSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "collection",
				Name:      "records",
				Help:      "Number of records currently in the collection",
			},
		),
		importItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "collection",
				Name:      "import_items_total",
				Help:      "Imported items by outcome",
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.runs, m.comparisons, m.swaps, m.runDuration,
		m.visualSteps, m.collectionSize, m.importItems,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics.New: register: %w", err)
		}
	}

	return m, nil
}

// ObserveSearch records one search run.
func (m *Metrics) ObserveSearch(algorithm string, comparisons int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(KindSearch, algorithm).Inc()
	m.comparisons.WithLabelValues(KindSearch, algorithm).Add(float64(comparisons))
	m.runDuration.WithLabelValues(KindSearch, algorithm).Observe(elapsed.Seconds())
}

// ObserveSort records one sort run.
func (m *Metrics) ObserveSort(algorithm string, comparisons, swaps int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(KindSort, algorithm).Inc()
	m.comparisons.WithLabelValues(KindSort, algorithm).Add(float64(comparisons))
	m.swaps.WithLabelValues(algorithm).Add(float64(swaps))
	m.runDuration.WithLabelValues(KindSort, algorithm).Observe(elapsed.Seconds())
}

// ObserveStep counts one visualization step of the given kind.
func (m *Metrics) ObserveStep(step string) {
	if m == nil {
		return
	}
	m.visualSteps.WithLabelValues(step).Inc()
}

// SetCollectionSize publishes the current record count.
func (m *Metrics) SetCollectionSize(n int) {
	if m == nil {
		return
	}
	m.collectionSize.Set(float64(n))
}

// ObserveImport records the outcome of one import.
func (m *Metrics) ObserveImport(succeeded, failed int) {
	if m == nil {
		return
	}
	m.importItems.WithLabelValues("succeeded").Add(float64(succeeded))
	m.importItems.WithLabelValues("failed").Add(float64(failed))
}

// WriteTextfile dumps everything g gathers to path in the Prometheus text
// exposition format, atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("metrics.WriteTextfile: %w", err)
	}
	return nil
}
