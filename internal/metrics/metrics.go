// Package metrics counts what translation runs produce, for scraping through
// the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"modgen/internal/translate"
)

// Set is the collection of modgen counters.
type Set struct {
	Declarations *prometheus.CounterVec
	Diagnostics  *prometheus.CounterVec
	Units        *prometheus.CounterVec
	Evaluations  prometheus.Counter
}

// New creates unregistered counters.
func New() *Set {
	return &Set{
		Declarations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modgen_declarations_total",
				Help: "The number of target declarations emitted.",
			},
			[]string{"kind"},
		),
		Diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modgen_diagnostics_total",
				Help: "The number of diagnostics reported.",
			},
			[]string{"code", "severity"},
		),
		Units: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modgen_units_total",
				Help: "The number of units processed, by outcome.",
			},
			[]string{"outcome"},
		),
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "modgen_macro_evaluations_total",
			Help: "The number of macro bodies evaluated.",
		}),
	}
}

// Register adds every counter to reg.
func (s *Set) Register(reg prometheus.Registerer) error {
	for i, coll := range []prometheus.Collector{s.Declarations, s.Diagnostics, s.Units, s.Evaluations} {
		if err := reg.Register(coll); err != nil {
			return fmt.Errorf("%w (metric %d)", err, i)
		}
	}
	return nil
}

// Outcome labels for Units.
const (
	OutcomeTranslated = "translated"
	OutcomeCached     = "cached"
	OutcomeFailed     = "failed"
)

// ObserveResult counts the declarations and diagnostics of res, and the unit
// as translated or failed.
func (s *Set) ObserveResult(res *translate.Result) {
	if s == nil || res == nil {
		return
	}
	for _, d := range res.Decls {
		s.Declarations.WithLabelValues(d.Kind.String()).Inc()
	}
	for _, d := range res.Bag.Items() {
		s.Diagnostics.WithLabelValues(d.Code.ID(), d.Severity.String()).Inc()
	}
	s.Evaluations.Add(float64(res.Evaluations))
	outcome := OutcomeTranslated
	if res.Err != nil || res.Bag.HasErrors() {
		outcome = OutcomeFailed
	}
	s.Units.WithLabelValues(outcome).Inc()
}

// ObserveUnit counts a unit that was not translated in this run.
func (s *Set) ObserveUnit(outcome string) {
	if s == nil {
		return
	}
	s.Units.WithLabelValues(outcome).Inc()
}

// Write renders everything gathered by g in the Prometheus text format.
func Write(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes the text format to path via a temporary file, so a
// collector never reads a partial file.
func WriteFile(path string, g prometheus.Gatherer) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".modgen-metrics-*")
	if err != nil {
		return err
	}
	if err := Write(tmp, g); err != nil {
		_ = tmp.Close()           //nolint:errcheck
		_ = os.Remove(tmp.Name()) //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name()) //nolint:errcheck
		return err
	}
	return os.Rename(tmp.Name(), path)
}
