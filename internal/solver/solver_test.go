package solver

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/fixturegen/internal/league"
	"github.com/derekprior/fixturegen/internal/model"
)

func buildSystem(t *testing.T, in league.League) *model.System {
	t.Helper()
	l, err := league.New(in)
	require.NoError(t, err)
	systems, err := model.Build(l, model.Options{Seed: 1, Weights: model.DefaultWeights()})
	require.NoError(t, err)
	require.Len(t, systems, 1)
	return systems[0]
}

func division(name string, meetings, n int) league.Division {
	d := league.Division{Name: name, Meetings: meetings}
	for i := 0; i < n; i++ {
		d.Teams = append(d.Teams, league.Team{ID: fmt.Sprintf("T%d", i+1)})
	}
	return d
}

func testParams() Params {
	p := DefaultParams()
	p.TimeLimit = 0
	p.Workers = 2
	p.MoveLimit = 2000
	return p
}

func requireFeasible(t *testing.T, sys *model.System, assignment []bool) {
	t.Helper()
	require.Len(t, assignment, len(sys.Vars))
	for _, c := range sys.Constraints {
		n := 0
		for _, v := range c.Vars {
			if assignment[v] {
				n++
			}
		}
		require.GreaterOrEqual(t, n, c.Lo, "%s %s", c.Kind, c.Name)
		require.LessOrEqual(t, n, c.Hi, "%s %s", c.Kind, c.Name)
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "OPTIMAL", Optimal.String())
	assert.Equal(t, "FEASIBLE", Feasible.String())
	assert.Equal(t, "INFEASIBLE", Infeasible.String())
	assert.Equal(t, "TIMED_OUT", TimedOut.String())
	assert.Equal(t, "UNKNOWN(0)", Unknown.String())
	assert.True(t, TimedOut.HasSolution())
	assert.False(t, Infeasible.HasSolution())
}

func TestSolveFindsFeasibleSchedules(t *testing.T) {
	for _, tc := range []struct {
		meetings, teams int
	}{
		{1, 2}, {1, 4}, {1, 5}, {1, 8}, {2, 4}, {2, 5}, {2, 6},
	} {
		t.Run(fmt.Sprintf("%d teams x%d", tc.teams, tc.meetings), func(t *testing.T) {
			sys := buildSystem(t, league.League{Divisions: []league.Division{division("D", tc.meetings, tc.teams)}})
			res, err := Search{}.Solve(context.Background(), sys, testParams())
			require.NoError(t, err)
			require.Contains(t, []Status{Optimal, Feasible}, res.Status)
			requireFeasible(t, sys, res.Assignment)

			p := model.Evaluate(sys.Timeline(res.Assignment), sys.Weights)
			assert.Equal(t, p.Total, res.Objective)
			assert.Equal(t, p, res.Penalty)
		})
	}
}

func TestSolveNeverWorsensTheHint(t *testing.T) {
	sys := buildSystem(t, league.League{Divisions: []league.Division{division("D", 2, 6)}})
	p := testParams()
	p.Workers = 1
	res, err := Search{}.Solve(context.Background(), sys, p)
	require.NoError(t, err)

	hinted := model.Evaluate(sys.Timeline(sys.Hint), sys.Weights)
	assert.LessOrEqual(t, res.Objective, hinted.Total)
}

func TestSolveIsDeterministic(t *testing.T) {
	sys := buildSystem(t, league.League{Divisions: []league.Division{division("D", 2, 7)}})
	a, err := Search{}.Solve(context.Background(), sys, testParams())
	require.NoError(t, err)
	b, err := Search{}.Solve(context.Background(), sys, testParams())
	require.NoError(t, err)

	assert.Equal(t, a.Status, b.Status)
	assert.Equal(t, a.Assignment, b.Assignment)
	assert.Equal(t, a.Objective, b.Objective)
	assert.Equal(t, a.Stats.Worker, b.Stats.Worker)
}

func TestSolveRespectsAvailability(t *testing.T) {
	d := division("D", 1, 6)
	d.Teams[0].Unavailable = []int{0}
	d.Teams[3].Unavailable = []int{4}
	sys := buildSystem(t, league.League{Divisions: []league.Division{d}, Rounds: 6})

	res, err := Search{}.Solve(context.Background(), sys, testParams())
	require.NoError(t, err)
	require.True(t, res.Status.HasSolution())
	requireFeasible(t, sys, res.Assignment)
	for v, on := range res.Assignment {
		if !on {
			continue
		}
		x := sys.Vars[v]
		for _, team := range []int{x.Home, x.Away} {
			assert.True(t, d.Teams[team].Available(x.Round), "%s plays in round %d", d.Teams[team].ID, x.Round)
		}
	}
}

func TestSolveSharedVenueCapacity(t *testing.T) {
	one := division("One", 1, 4)
	two := division("Two", 1, 4)
	one.Teams[0].Venue = "Park"
	two.Teams[0].Venue = "Park"
	sys := buildSystem(t, league.League{
		Divisions:       []league.Division{one, two},
		Venues:          []league.Venue{{Name: "Park", Capacity: 1}},
		SharedResources: true,
		Rounds:          4,
	})

	res, err := Search{}.Solve(context.Background(), sys, testParams())
	require.NoError(t, err)
	require.True(t, res.Status.HasSolution())
	requireFeasible(t, sys, res.Assignment)
}

func TestSolveProvesInfeasibility(t *testing.T) {
	d := division("D", 1, 4)
	d.Teams[0].Unavailable = []int{0, 1}
	sys := buildSystem(t, league.League{Divisions: []league.Division{d}})

	res, err := Search{}.Solve(context.Background(), sys, testParams())
	require.NoError(t, err)
	assert.Equal(t, Infeasible, res.Status)
	assert.Nil(t, res.Assignment)
}

func TestSolveCancelledBeforeSearch(t *testing.T) {
	sys := buildSystem(t, league.League{Divisions: []league.Division{division("D", 1, 6)}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Search{}.Solve(ctx, sys, testParams())
	require.NoError(t, err)
	assert.Equal(t, TimedOut, res.Status)
	assert.Nil(t, res.Assignment)
}

func TestPropagateForcesBounds(t *testing.T) {
	sys := buildSystem(t, league.League{Divisions: []league.Division{division("D", 1, 2)}})
	// two teams, one round: home and away orientation of the only pairing
	require.Len(t, sys.Vars, 2)
	st := newState(sys)
	st.assign(0, 0)
	require.True(t, st.propagate(sys.Occurrences(0)))
	assert.Equal(t, int8(1), st.val[1])

	st.undo(0)
	assert.Equal(t, unset, st.val[0])
	assert.Equal(t, unset, st.val[1])
	assert.Empty(t, st.trail)

	st.assign(0, 1)
	st.assign(1, 1)
	assert.False(t, st.propagate(sys.Occurrences(1)))
}
