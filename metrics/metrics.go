// Package metrics counts the outcome of each selection stage with
// Prometheus collectors, so that a cut flow can be exported next to the
// histograms.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CutFlow implements selection.Observer.
type CutFlow struct {
	Registry *prometheus.Registry

	Accepts     *prometheus.CounterVec
	Rejects     *prometheus.CounterVec
	Directories *prometheus.CounterVec
	Records     prometheus.Counter
	Collisions  prometheus.Counter
	Daughters   *prometheus.CounterVec
}

// New creates the collectors and registers them on a private registry.
func New() *CutFlow {
	m := &CutFlow{
		Registry: prometheus.NewRegistry(),
		Accepts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "femto_selection_accepted_total",
				Help: "Records accepted per selection stage.",
			},
			[]string{"stage"},
		),
		Rejects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "femto_selection_rejected_total",
				Help: "Records rejected per selection stage and cut.",
			},
			[]string{"stage", "cut"},
		),
		Directories: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "femto_directories_total",
				Help: "Run directories by outcome (processed, skipped).",
			},
			[]string{"outcome"},
		),
		Records: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "femto_records_total",
				Help: "Track records read.",
			},
		),
		Collisions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "femto_collisions_total",
				Help: "Distinct collisions filled into the event histograms.",
			},
		),
		Daughters: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "femto_v0_daughter_links_total",
				Help: "V0 candidates by daughter link outcome (linked, broken).",
			},
			[]string{"outcome"},
		),
	}
	m.Registry.MustRegister(
		m.Accepts,
		m.Rejects,
		m.Directories,
		m.Records,
		m.Collisions,
		m.Daughters,
	)
	return m
}

func (m *CutFlow) Rejected(stage, cut string) {
	m.Rejects.WithLabelValues(stage, cut).Inc()
}

func (m *CutFlow) Accepted(stage string) {
	m.Accepts.WithLabelValues(stage).Inc()
}

// WriteFile writes the current values in the Prometheus text format, for
// the node exporter textfile collector.
func (m *CutFlow) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
