package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/derekprior/fixturegen/internal/league"
	"github.com/derekprior/fixturegen/internal/metrics"
	"github.com/derekprior/fixturegen/internal/model"
	"github.com/derekprior/fixturegen/internal/solver"
)

// Options configure a generation run.
type Options struct {
	Seed      int64
	TimeLimit time.Duration
	Workers   int
	NodeLimit int
	MoveLimit int
	Weights   model.Weights

	Solver   solver.Solver // nil = solver.Search
	Logger   *zerolog.Logger
	Recorder *metrics.Recorder
	Dates    []time.Time // optional match date per round
}

// DefaultOptions mirrors solver.DefaultParams with equal soft weights.
func DefaultOptions() Options {
	p := solver.DefaultParams()
	return Options{
		Seed:      p.Seed,
		TimeLimit: p.TimeLimit,
		Workers:   p.Workers,
		NodeLimit: p.NodeLimit,
		MoveLimit: p.MoveLimit,
		Weights:   model.DefaultWeights(),
	}
}

// Result is a generated season.
type Result struct {
	Fixtures  *FixtureList
	Status    solver.Status
	Objective float64
	Report    *Report
	Solves    []*solver.Result // one per independent component
	Elapsed   time.Duration
}

// Generate builds the constraint systems for the league, solves them and
// returns a verified fixture list. Independent divisions are solved
// concurrently.
func Generate(ctx context.Context, l *league.League, opts Options) (*Result, error) {
	start := time.Now()
	log := opts.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	backend := opts.Solver
	if backend == nil {
		backend = solver.Search{}
	}

	systems, err := model.Build(l, model.Options{Seed: opts.Seed, Weights: opts.Weights})
	if err != nil {
		return nil, err
	}
	if len(opts.Dates) > 0 && len(opts.Dates) < l.TotalRounds() {
		return nil, &league.ModelError{Reason: fmt.Sprintf("%d match dates for %d rounds", len(opts.Dates), l.TotalRounds())}
	}
	for _, sys := range systems {
		if reason := sys.Diagnose(); reason != "" {
			return nil, &InfeasibleError{Reason: reason}
		}
	}

	params := solver.Params{
		Seed:      opts.Seed,
		TimeLimit: opts.TimeLimit,
		NodeLimit: opts.NodeLimit,
		MoveLimit: opts.MoveLimit,
		Workers:   opts.Workers,
		Logger:    log,
	}
	results := make([]*solver.Result, len(systems))
	g, gctx := errgroup.WithContext(ctx)
	for i, sys := range systems {
		i, sys := i, sys
		g.Go(func() error {
			res, err := backend.Solve(gctx, sys, params)
			if err != nil {
				return fmt.Errorf("solving %s: %w", component(sys), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status := solver.Optimal
	objective := 0.0
	assignments := make([][]bool, len(systems))
	for i, res := range results {
		name := component(systems[i])
		opts.Recorder.RecordSolve(name, res)
		log.Info().
			Str("component", name).
			Str("status", res.Status.String()).
			Float64("objective", res.Objective).
			Int("nodes", res.Stats.Nodes).
			Int("moves", res.Stats.Moves).
			Dur("elapsed", res.Stats.Elapsed).
			Msg("component solved")

		switch {
		case res.Status == solver.Infeasible:
			return nil, &InfeasibleError{Reason: fmt.Sprintf("%s admits no schedule satisfying every hard rule", name)}
		case res.Assignment == nil:
			return nil, &SearchTimedOutError{Component: name, Elapsed: res.Stats.Elapsed}
		}
		status = worse(status, res.Status)
		objective += res.Objective
		assignments[i] = res.Assignment
	}

	fl, err := Materialize(l, systems, assignments)
	if err != nil {
		return nil, err
	}
	AttachDates(fl, opts.Dates)

	report := BuildReport(l, fl, opts.Weights)
	opts.Recorder.RecordSchedule(fl.MatchCount(), report.Penalty)

	res := &Result{
		Fixtures:  fl,
		Status:    status,
		Objective: objective,
		Report:    report,
		Solves:    results,
		Elapsed:   time.Since(start),
	}
	log.Info().
		Str("status", status.String()).
		Int("matches", fl.MatchCount()).
		Int("rounds", len(fl.Rounds)).
		Float64("objective", objective).
		Dur("elapsed", res.Elapsed).
		Msg("fixture list generated")
	return res, nil
}

func component(sys *model.System) string {
	if len(sys.Divisions) == 1 {
		return "division " + sys.League.Divisions[sys.Divisions[0]].Name
	}
	names := make([]string, len(sys.Divisions))
	for i, d := range sys.Divisions {
		names[i] = sys.League.Divisions[d].Name
	}
	return "divisions " + strings.Join(names, ", ")
}

// worse combines component statuses: a single timed-out component makes
// the whole run timed out.
func worse(a, b solver.Status) solver.Status {
	rank := map[solver.Status]int{solver.Optimal: 0, solver.Feasible: 1, solver.TimedOut: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
