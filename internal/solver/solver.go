package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/derekprior/fixturegen/internal/model"
)

// Status is the outcome of a solve.
type Status int

const (
	Unknown Status = iota
	Optimal
	Feasible
	Infeasible
	TimedOut
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Feasible:
		return "FEASIBLE"
	case Infeasible:
		return "INFEASIBLE"
	case TimedOut:
		return "TIMED_OUT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// HasSolution reports whether a result with this status may carry an assignment.
func (s Status) HasSolution() bool {
	return s == Optimal || s == Feasible || s == TimedOut
}

// Params bound a single solve.
type Params struct {
	Seed      int64
	TimeLimit time.Duration // 0 = no deadline
	NodeLimit int           // per worker, feasibility search nodes
	MoveLimit int           // per worker, local-search proposals
	Workers   int
	Logger    *zerolog.Logger
}

// DefaultParams returns the budget used when the run configuration is silent.
func DefaultParams() Params {
	return Params{
		Seed:      1,
		TimeLimit: 30 * time.Second,
		NodeLimit: 200000,
		MoveLimit: 20000,
		Workers:   4,
	}
}

func (p Params) logger() *zerolog.Logger {
	if p.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return p.Logger
}

// Stats describe the work done by the winning worker.
type Stats struct {
	Worker       int
	Nodes        int
	Backtracks   int
	Moves        int
	Improvements int
	Elapsed      time.Duration
}

// Result is what a solver returns for one system. Assignment is nil unless
// Status.HasSolution and a solution was found.
type Result struct {
	Status     Status
	Assignment []bool
	Objective  float64
	Penalty    model.Penalty
	Stats      Stats
}

// Solver finds a minimum-penalty assignment for a constraint system.
type Solver interface {
	Solve(ctx context.Context, sys *model.System, p Params) (*Result, error)
}
