package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/derekprior/fixturegen/internal/model"
	"github.com/derekprior/fixturegen/internal/solver"
)

// Common metric label keys.
const (
	LabelComponent = "component"
	LabelStatus    = "status"
	LabelTerm      = "term"
)

// Recorder collects solver and schedule metrics in a private prometheus
// registry. A nil *Recorder is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	solves       *prometheus.CounterVec
	nodes        *prometheus.CounterVec
	moves        *prometheus.CounterVec
	improvements *prometheus.CounterVec
	objective    *prometheus.GaugeVec
	duration     *prometheus.HistogramVec
	matches      prometheus.Gauge
	penalty      *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixturegen",
			Name:      "solves_total",
			Help:      "Constraint system solves by outcome.",
		}, []string{LabelComponent, LabelStatus}),
		nodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixturegen",
			Name:      "search_nodes_total",
			Help:      "Feasibility search nodes explored by the winning worker.",
		}, []string{LabelComponent}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixturegen",
			Name:      "search_moves_total",
			Help:      "Local search moves proposed by the winning worker.",
		}, []string{LabelComponent}),
		improvements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixturegen",
			Name:      "search_improvements_total",
			Help:      "Local search moves that lowered the best penalty.",
		}, []string{LabelComponent}),
		objective: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fixturegen",
			Name:      "objective",
			Help:      "Weighted soft-constraint penalty of the best schedule.",
		}, []string{LabelComponent}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fixturegen",
			Name:      "solve_duration_seconds",
			Help:      "Wall time of a solve.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{LabelComponent}),
		matches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fixturegen",
			Name:      "matches",
			Help:      "Matches in the generated fixture list.",
		}),
		penalty: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fixturegen",
			Name:      "penalty_count",
			Help:      "Soft-constraint violations in the generated fixture list.",
		}, []string{LabelTerm}),
	}
	r.reg.MustRegister(r.solves, r.nodes, r.moves, r.improvements, r.objective, r.duration, r.matches, r.penalty)
	return r
}

// RecordSolve adds the outcome of one solver call for a component, named
// like "division Premier" or, for divisions scheduled together,
// "divisions Premier, Reserves".
func (r *Recorder) RecordSolve(component string, res *solver.Result) {
	if r == nil || res == nil {
		return
	}
	r.solves.WithLabelValues(component, res.Status.String()).Inc()
	r.nodes.WithLabelValues(component).Add(float64(res.Stats.Nodes))
	r.moves.WithLabelValues(component).Add(float64(res.Stats.Moves))
	r.improvements.WithLabelValues(component).Add(float64(res.Stats.Improvements))
	r.duration.WithLabelValues(component).Observe(res.Stats.Elapsed.Seconds())
	if res.Assignment != nil {
		r.objective.WithLabelValues(component).Set(res.Objective)
	}
}

// RecordSchedule stores the size and soft-constraint counts of the final
// fixture list.
func (r *Recorder) RecordSchedule(matches int, p model.Penalty) {
	if r == nil {
		return
	}
	r.matches.Set(float64(matches))
	r.penalty.WithLabelValues("home_away_balance").Set(float64(p.HomeAwayBalance))
	r.penalty.WithLabelValues("bye_clusters").Set(float64(p.ByeClusters))
	r.penalty.WithLabelValues("repeat_streaks").Set(float64(p.RepeatStreaks))
}

// Gatherer exposes the registry, e.g. for tests or an HTTP handler.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.reg
}

// WriteTextfile writes every metric in the text exposition format, for the
// node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
