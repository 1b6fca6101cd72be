package naminglint

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics exported by the naming-lint
// component.
type Metrics struct {
	BatchesTotal             *prometheus.CounterVec
	DeclarationsCheckedTotal prometheus.Counter
	ViolationsTotal          *prometheus.CounterVec
}

// NewMetrics creates and registers the naming-lint metrics.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		BatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "namelint_batches_total",
				Help: "Total number of declaration batches processed",
			},
			[]string{"status"},
		),
		DeclarationsCheckedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "namelint_declarations_checked_total",
				Help: "Total number of declarations checked",
			},
		),
		ViolationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "namelint_violations_total",
				Help: "Total number of naming violations found",
			},
			[]string{"rule", "severity"},
		),
	}

	registry.MustRegister(
		m.BatchesTotal,
		m.DeclarationsCheckedTotal,
		m.ViolationsTotal,
	)

	return m
}
