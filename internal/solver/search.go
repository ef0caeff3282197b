package solver

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/derekprior/fixturegen/internal/model"
)

// errProved stops the other workers once one of them has exhausted the
// search tree without finding a solution.
var errProved = errors.New("search tree exhausted")

// errBudget ends a dive that ran out of nodes or time.
var errBudget = errors.New("search budget exhausted")

// Search is the built-in backend. Each worker runs a complete depth-first
// search with cardinality propagation to find a first schedule and then
// improves it by local search. Workers differ only in their seed.
type Search struct{}

// Solve runs Workers searches concurrently and returns the best.
func (Search) Solve(ctx context.Context, sys *model.System, p Params) (*Result, error) {
	start := time.Now()
	if p.Workers < 1 {
		p.Workers = 1
	}
	if p.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.TimeLimit)
		defer cancel()
	}
	log := p.logger()

	outcomes := make([]*outcome, p.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < p.Workers; w++ {
		w := w
		g.Go(func() error {
			out, err := newWorker(sys, p, w).run(gctx)
			outcomes[w] = out
			return err
		})
	}
	err := g.Wait()

	if errors.Is(err, errProved) {
		log.Debug().Int("vars", len(sys.Vars)).Int("constraints", len(sys.Constraints)).Msg("search proved infeasible")
		return &Result{Status: Infeasible, Stats: Stats{Elapsed: time.Since(start)}}, nil
	}
	if err != nil {
		return nil, err
	}

	var best *outcome
	for _, out := range outcomes {
		if out == nil || out.assignment == nil {
			continue
		}
		if best == nil || out.penalty.Total < best.penalty.Total {
			best = out
		}
	}
	if best == nil {
		log.Debug().Msg("no schedule found within budget")
		return &Result{Status: TimedOut, Stats: Stats{Elapsed: time.Since(start)}}, nil
	}

	res := &Result{
		Assignment: best.assignment,
		Objective:  best.penalty.Total,
		Penalty:    best.penalty,
		Stats:      best.stats,
	}
	res.Stats.Elapsed = time.Since(start)
	switch {
	case best.penalty.Total == 0:
		res.Status = Optimal
	case best.timedOut:
		res.Status = TimedOut
	default:
		res.Status = Feasible
	}
	log.Debug().
		Str("status", res.Status.String()).
		Float64("objective", res.Objective).
		Int("worker", best.stats.Worker).
		Int("nodes", best.stats.Nodes).
		Int("moves", best.stats.Moves).
		Msg("search finished")
	return res, nil
}

type outcome struct {
	assignment []bool
	penalty    model.Penalty
	stats      Stats
	timedOut   bool
}

type worker struct {
	id      int
	sys     *model.System
	params  Params
	rng     *rand.Rand
	st      *state
	useHint bool
	keys    []int64
	stats   Stats
}

func newWorker(sys *model.System, p Params, id int) *worker {
	rng := rand.New(rand.NewSource(p.Seed + int64(id)))
	keys := make([]int64, len(sys.Vars))
	for i := range keys {
		keys[i] = rng.Int63()
	}
	return &worker{
		id:      id,
		sys:     sys,
		params:  p,
		rng:     rng,
		st:      newState(sys),
		useHint: id%2 == 0,
		keys:    keys,
		stats:   Stats{Worker: id},
	}
}

func (w *worker) run(ctx context.Context) (*outcome, error) {
	log := w.params.logger()
	all := make([]int, len(w.sys.Constraints))
	for c := range all {
		all[c] = c
	}
	found := false
	var err error
	if w.st.propagate(all) {
		found, err = w.dive(ctx)
	}
	switch {
	case err != nil:
		log.Debug().Int("worker", w.id).Int("nodes", w.stats.Nodes).Msg("dive stopped without a schedule")
		return &outcome{stats: w.stats, timedOut: true}, nil
	case !found:
		return &outcome{stats: w.stats}, errProved
	}

	im := newImprover(w.sys, w.st.assignment(), w.rng)
	timedOut := im.run(ctx, w.params.MoveLimit)
	w.stats.Moves = im.moves
	w.stats.Improvements = im.improvements
	log.Debug().
		Int("worker", w.id).
		Int("nodes", w.stats.Nodes).
		Int("backtracks", w.stats.Backtracks).
		Int("moves", im.moves).
		Float64("objective", im.best.Total).
		Msg("worker finished")
	return &outcome{
		assignment: im.bestAssignment,
		penalty:    im.best,
		stats:      w.stats,
		timedOut:   timedOut,
	}, nil
}

// dive branches on one variable of the most constrained open pairing,
// trying it in the match first. It reports whether every pairing was placed.
func (w *worker) dive(ctx context.Context) (bool, error) {
	if w.params.NodeLimit > 0 && w.stats.Nodes >= w.params.NodeLimit {
		return false, errBudget
	}
	if w.stats.Nodes%256 == 0 && ctx.Err() != nil {
		return false, errBudget
	}
	c := w.st.open()
	if c < 0 {
		return true, nil
	}
	v := w.choose(c)
	for _, x := range []int8{1, 0} {
		w.stats.Nodes++
		mark := len(w.st.trail)
		w.st.assign(v, x)
		if w.st.propagate(w.sys.Occurrences(v)) {
			ok, err := w.dive(ctx)
			if ok || err != nil {
				return ok, err
			}
		}
		w.st.undo(mark)
		w.stats.Backtracks++
	}
	return false, nil
}

// choose picks the free variable of constraint c to try next: hinted
// variables first, then by the worker's random key.
func (w *worker) choose(c int) int {
	vars := slices.Clone(w.sys.Constraints[c].Vars)
	vars = slices.DeleteFunc(vars, func(v int) bool { return w.st.val[v] != unset })
	return slices.MinFunc(vars, func(a, b int) int {
		if w.useHint && w.sys.Hint[a] != w.sys.Hint[b] {
			if w.sys.Hint[a] {
				return -1
			}
			return 1
		}
		switch {
		case w.keys[a] < w.keys[b]:
			return -1
		case w.keys[a] > w.keys[b]:
			return 1
		}
		return a - b
	})
}
