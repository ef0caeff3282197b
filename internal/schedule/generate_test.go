package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/fixturegen/internal/league"
	"github.com/derekprior/fixturegen/internal/metrics"
	"github.com/derekprior/fixturegen/internal/model"
	"github.com/derekprior/fixturegen/internal/solver"
)

func teams(prefix string, n int) []league.Team {
	out := make([]league.Team, n)
	for i := range out {
		out[i] = league.Team{ID: fmt.Sprintf("%s%d", prefix, i+1)}
	}
	return out
}

func singleDivision(t *testing.T, n, meetings int) *league.League {
	t.Helper()
	l, err := league.New(league.League{Divisions: []league.Division{{Name: "Premier", Meetings: meetings, Teams: teams("T", n)}}})
	require.NoError(t, err)
	return l
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.TimeLimit = 0
	opts.Workers = 2
	opts.MoveLimit = 3000
	return opts
}

func TestGenerateFourTeams(t *testing.T) {
	res, err := Generate(context.Background(), singleDivision(t, 4, 1), testOptions())
	require.NoError(t, err)
	fl := res.Fixtures

	assert.Equal(t, 6, fl.MatchCount())
	require.Len(t, fl.Rounds, 3)
	for _, r := range fl.Rounds {
		assert.Len(t, r.Matches, 2, "round %d", r.Index+1)
		assert.Empty(t, r.Byes, "round %d", r.Index+1)
	}
	assert.Contains(t, []solver.Status{solver.Optimal, solver.Feasible}, res.Status)
}

func TestGenerateFiveTeams(t *testing.T) {
	res, err := Generate(context.Background(), singleDivision(t, 5, 1), testOptions())
	require.NoError(t, err)
	fl := res.Fixtures

	assert.Equal(t, 10, fl.MatchCount())
	require.Len(t, fl.Rounds, 5)
	byes := make(map[string]int)
	for _, r := range fl.Rounds {
		assert.Len(t, r.Matches, 2)
		require.Len(t, r.Byes, 1)
		byes[r.Byes[0].Team]++
	}
	assert.Len(t, byes, 5)
	for team, n := range byes {
		assert.Equal(t, 1, n, "%s byes", team)
	}
	for _, m := range res.Report.Teams {
		assert.Equal(t, 4, m.Games)
		assert.Equal(t, 1, m.Byes)
	}
}

func TestGenerateDoubleRoundRobin(t *testing.T) {
	for _, n := range []int{4, 5, 6} {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			res, err := Generate(context.Background(), singleDivision(t, n, 2), testOptions())
			require.NoError(t, err)

			seen := make(map[[2]string]int)
			for _, m := range res.Fixtures.Matches() {
				seen[[2]string{m.Home, m.Away}]++
			}
			assert.Len(t, seen, n*(n-1))
			for pair, count := range seen {
				assert.Equal(t, 1, count, "%s v %s", pair[0], pair[1])
			}
			for _, m := range res.Report.Teams {
				assert.Equal(t, 2*(n-1), m.Games)
				assert.InDelta(t, m.Home, m.Away, 1, m.Team)
			}
			assert.Zero(t, res.Report.Penalty.HomeAwayBalance)
		})
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	l, err := league.New(league.League{Divisions: []league.Division{
		{Name: "Premier", Meetings: 2, Teams: teams("P", 6)},
		{Name: "Championship", Meetings: 1, Teams: teams("C", 7)},
	}})
	require.NoError(t, err)

	a, err := Generate(context.Background(), l, testOptions())
	require.NoError(t, err)
	b, err := Generate(context.Background(), l, testOptions())
	require.NoError(t, err)

	assert.Equal(t, a.Fixtures, b.Fixtures)
	assert.Equal(t, a.Objective, b.Objective)
	require.Len(t, a.Solves, 2)
}

func TestGenerateExplicitRoundsTooFew(t *testing.T) {
	_, err := league.New(league.League{Divisions: []league.Division{{Name: "Premier", Meetings: 1, Teams: teams("T", 4), Rounds: 2}}})
	var me *league.ModelError
	require.ErrorAs(t, err, &me)
	assert.Contains(t, err.Error(), "needs at least 3 rounds, only 2 configured")
}

func TestGenerateLongerSeason(t *testing.T) {
	l, err := league.New(league.League{Rounds: 5, Divisions: []league.Division{{Name: "Premier", Meetings: 1, Teams: teams("T", 4)}}})
	require.NoError(t, err)
	res, err := Generate(context.Background(), l, testOptions())
	require.NoError(t, err)

	require.Len(t, res.Fixtures.Rounds, 5)
	assert.Equal(t, 6, res.Fixtures.MatchCount())
}

func TestGenerateSharedVenues(t *testing.T) {
	one := teams("A", 4)
	two := teams("B", 4)
	one[0].Venue, one[1].Venue = "North", "South"
	two[0].Venue, two[1].Venue = "North", "South"
	l, err := league.New(league.League{
		SharedResources:    true,
		MaxMatchesPerRound: 4,
		Venues:             []league.Venue{{Name: "North", Capacity: 1}, {Name: "South", Capacity: 1, Unavailable: []int{0}}},
		Divisions: []league.Division{
			{Name: "One", Meetings: 1, Teams: one},
			{Name: "Two", Meetings: 1, Teams: two},
		},
		Rounds: 4,
	})
	require.NoError(t, err)

	res, err := Generate(context.Background(), l, testOptions())
	require.NoError(t, err)
	require.Len(t, res.Solves, 1, "shared resources are solved jointly")

	for _, r := range res.Fixtures.Rounds {
		hosted := make(map[string]int)
		for _, m := range r.Matches {
			div := l.Divisions[l.DivisionIndex(m.Division)]
			if v := div.Teams[div.TeamIndex(m.Home)].Venue; v != "" {
				hosted[v]++
			}
		}
		assert.LessOrEqual(t, hosted["North"], 1, "round %d", r.Index+1)
		assert.LessOrEqual(t, hosted["South"], 1, "round %d", r.Index+1)
		if r.Index == 0 {
			assert.Zero(t, hosted["South"])
		}
	}
}

func TestGenerateInfeasibleAvailability(t *testing.T) {
	ts := teams("T", 4)
	ts[2].Unavailable = []int{0, 2}
	l, err := league.New(league.League{Divisions: []league.Division{{Name: "Premier", Meetings: 1, Teams: ts}}})
	require.NoError(t, err)

	_, err = Generate(context.Background(), l, testOptions())
	var ie *InfeasibleError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, err.Error(), "team T3 in division Premier is available in only 1 of 3 rounds, needs 3")
}

func TestGenerateAttachesDates(t *testing.T) {
	opts := testOptions()
	day := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	opts.Dates = []time.Time{day, day.AddDate(0, 0, 7), day.AddDate(0, 0, 14)}

	res, err := Generate(context.Background(), singleDivision(t, 4, 1), opts)
	require.NoError(t, err)
	assert.Equal(t, day.AddDate(0, 0, 14), res.Fixtures.Rounds[2].Date)

	opts.Dates = opts.Dates[:2]
	_, err = Generate(context.Background(), singleDivision(t, 4, 1), opts)
	var me *league.ModelError
	assert.ErrorAs(t, err, &me)
}

func TestGenerateRecordsMetrics(t *testing.T) {
	opts := testOptions()
	opts.Recorder = metrics.NewRecorder()
	_, err := Generate(context.Background(), singleDivision(t, 4, 1), opts)
	require.NoError(t, err)

	families, err := opts.Recorder.Gatherer().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	var components []string
	for _, f := range families {
		names = append(names, f.GetName())
		if f.GetName() != "fixturegen_solves_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == metrics.LabelComponent {
					components = append(components, lp.GetValue())
				}
			}
		}
	}
	assert.Contains(t, names, "fixturegen_solves_total")
	assert.Contains(t, names, "fixturegen_matches")
	assert.Equal(t, []string{"division Premier"}, components)
}

// stubSolver returns a canned result for every system.
type stubSolver struct {
	result func(sys *model.System) *solver.Result
}

func (s stubSolver) Solve(_ context.Context, sys *model.System, _ solver.Params) (*solver.Result, error) {
	return s.result(sys), nil
}

func TestGenerateSolverOutcomes(t *testing.T) {
	t.Run("timed out without a schedule", func(t *testing.T) {
		opts := testOptions()
		opts.Solver = stubSolver{func(*model.System) *solver.Result { return &solver.Result{Status: solver.TimedOut} }}
		_, err := Generate(context.Background(), singleDivision(t, 4, 1), opts)
		var te *SearchTimedOutError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "division Premier", te.Component)
	})

	t.Run("proved infeasible", func(t *testing.T) {
		opts := testOptions()
		opts.Solver = stubSolver{func(*model.System) *solver.Result { return &solver.Result{Status: solver.Infeasible} }}
		_, err := Generate(context.Background(), singleDivision(t, 4, 1), opts)
		var ie *InfeasibleError
		require.ErrorAs(t, err, &ie)
	})

	t.Run("timed out with a schedule", func(t *testing.T) {
		opts := testOptions()
		opts.Solver = stubSolver{func(sys *model.System) *solver.Result {
			return &solver.Result{Status: solver.TimedOut, Assignment: sys.Hint, Objective: 1}
		}}
		res, err := Generate(context.Background(), singleDivision(t, 4, 1), opts)
		require.NoError(t, err)
		assert.Equal(t, solver.TimedOut, res.Status)
		assert.Equal(t, 6, res.Fixtures.MatchCount())
	})

	t.Run("defective assignment", func(t *testing.T) {
		opts := testOptions()
		opts.Solver = stubSolver{func(sys *model.System) *solver.Result {
			all := make([]bool, len(sys.Vars))
			for i := range all {
				all[i] = true
			}
			return &solver.Result{Status: solver.Feasible, Assignment: all}
		}}
		_, err := Generate(context.Background(), singleDivision(t, 4, 1), opts)
		var iv *InvariantViolation
		require.True(t, errors.As(err, &iv), "got %v", err)
		assert.NotEmpty(t, iv.Problems)
	})
}
