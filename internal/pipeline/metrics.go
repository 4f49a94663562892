package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "dimu"
	metricsSubsystem = "pipeline"
)

// Metrics holds the worker diagnostics. All operations are thread-safe.
type Metrics struct {
	// EventsTotal counts events by worker and outcome (accepted, rejected).
	EventsTotal *prometheus.CounterVec

	// PairsTotal counts visited pairs by worker and outcome (recorded,
	// filtered).
	PairsTotal *prometheus.CounterVec

	// FillsTotal counts histogram fills by worker and result (filled,
	// dropped).
	FillsTotal *prometheus.CounterVec

	// ObjectsCreatedTotal counts lazily created objects by worker and name.
	ObjectsCreatedTotal *prometheus.CounterVec

	// ErrorsTotal counts skipped entities, pairs and objects by worker and
	// stage.
	ErrorsTotal *prometheus.CounterVec

	// CollectionBytes is the estimated size of each worker's collection.
	CollectionBytes *prometheus.GaugeVec
}

// NewMetrics creates the metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "events_total",
				Help:      "Events processed by worker and outcome",
			},
			[]string{"worker", "outcome"},
		),
		PairsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "pairs_total",
				Help:      "Particle pairs visited by worker and outcome",
			},
			[]string{"worker", "outcome"},
		),
		FillsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "fills_total",
				Help:      "Histogram fills by worker and result",
			},
			[]string{"worker", "result"},
		),
		ObjectsCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "objects_created_total",
				Help:      "Collection objects created by worker and object name",
			},
			[]string{"worker", "name"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "errors_total",
				Help:      "Skipped items by worker and stage",
			},
			[]string{"worker", "stage"},
		),
		CollectionBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "collection_bytes",
				Help:      "Estimated collection size in bytes by worker",
			},
			[]string{"worker"},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.EventsTotal, m.PairsTotal, m.FillsTotal,
			m.ObjectsCreatedTotal, m.ErrorsTotal, m.CollectionBytes,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// The helpers below are nil-safe so processors without metrics pay nothing.

func (m *Metrics) event(worker, outcome string) {
	if m != nil {
		m.EventsTotal.WithLabelValues(worker, outcome).Inc()
	}
}

func (m *Metrics) pair(worker, outcome string) {
	if m != nil {
		m.PairsTotal.WithLabelValues(worker, outcome).Inc()
	}
}

func (m *Metrics) fill(worker, result string) {
	if m != nil {
		m.FillsTotal.WithLabelValues(worker, result).Inc()
	}
}

func (m *Metrics) created(worker, name string, size int64) {
	if m != nil {
		m.ObjectsCreatedTotal.WithLabelValues(worker, name).Inc()
		m.CollectionBytes.WithLabelValues(worker).Set(float64(size))
	}
}

func (m *Metrics) failed(worker, stage string) {
	if m != nil {
		m.ErrorsTotal.WithLabelValues(worker, stage).Inc()
	}
}
