package schedule

import (
	"fmt"
	"sort"

	"github.com/derekprior/fixturegen/internal/league"
	"github.com/derekprior/fixturegen/internal/model"
)

// Materialize turns solver assignments, one per system, into a fixture list
// and verifies it against the league.
func Materialize(l *league.League, systems []*model.System, assignments [][]bool) (*FixtureList, error) {
	if len(assignments) != len(systems) {
		return nil, newInvariantViolation([]string{
			fmt.Sprintf("%d assignments for %d constraint systems", len(assignments), len(systems)),
		})
	}

	fl := &FixtureList{Rounds: make([]Round, l.TotalRounds())}
	for i := range fl.Rounds {
		fl.Rounds[i].Index = i
	}
	var problems []string
	for s, sys := range systems {
		if len(assignments[s]) != len(sys.Vars) {
			problems = append(problems, fmt.Sprintf("assignment has %d values for %d variables", len(assignments[s]), len(sys.Vars)))
			continue
		}
		for v, on := range assignments[s] {
			if !on {
				continue
			}
			x := sys.Vars[v]
			div := l.Divisions[x.Division]
			if x.Round >= len(fl.Rounds) {
				problems = append(problems, fmt.Sprintf("match in round %d beyond the season", x.Round+1))
				continue
			}
			fl.Rounds[x.Round].Matches = append(fl.Rounds[x.Round].Matches, Match{
				Division: div.Name,
				Home:     div.Teams[x.Home].ID,
				Away:     div.Teams[x.Away].ID,
				Round:    x.Round,
			})
		}
	}
	if len(problems) > 0 {
		return nil, newInvariantViolation(problems)
	}

	for i := range fl.Rounds {
		sortMatches(l, fl.Rounds[i].Matches)
	}
	WithByes(l, fl)
	if err := Verify(l, fl); err != nil {
		return nil, err
	}
	return fl, nil
}

// sortMatches orders a round by division, then by home team, in league order.
func sortMatches(l *league.League, matches []Match) {
	key := func(m Match) (int, int) {
		d := l.DivisionIndex(m.Division)
		return d, l.Divisions[d].TeamIndex(m.Home)
	}
	sort.Slice(matches, func(i, j int) bool {
		di, hi := key(matches[i])
		dj, hj := key(matches[j])
		if di != dj {
			return di < dj
		}
		return hi < hj
	})
}
