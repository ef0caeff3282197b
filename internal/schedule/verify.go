package schedule

import (
	"fmt"
	"sort"

	"github.com/derekprior/fixturegen/internal/league"
)

// Verify re-checks every hard rule of the league against a fixture list,
// independently of how the list was produced.
func Verify(l *league.League, fl *FixtureList) error {
	if problems := Check(l, fl); len(problems) > 0 {
		return newInvariantViolation(problems)
	}
	return nil
}

type orderedPair struct {
	division   string
	home, away string
}

// Check returns a description of every hard rule the fixture list breaks.
func Check(l *league.League, fl *FixtureList) []string {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if got, want := len(fl.Rounds), l.TotalRounds(); got != want {
		add("fixture list has %d rounds, league needs %d", got, want)
	}

	meetings := make(map[orderedPair]int)
	for i, r := range fl.Rounds {
		if r.Index != i {
			add("round at position %d is numbered %d", i+1, r.Index+1)
		}
		busy := make(map[Bye]int)
		hosted := make(map[string]int)

		for _, m := range r.Matches {
			where := fmt.Sprintf("round %d: %s v %s", i+1, m.Home, m.Away)
			d := l.DivisionIndex(m.Division)
			if d < 0 {
				add("%s: unknown division %q", where, m.Division)
				continue
			}
			div := l.Divisions[d]
			if m.Round != i {
				add("%s in division %s is filed under round %d", where, div.Name, m.Round+1)
			}
			if m.Home == m.Away {
				add("%s: %s plays itself", where, m.Home)
				continue
			}
			hi, ai := div.TeamIndex(m.Home), div.TeamIndex(m.Away)
			if hi < 0 || ai < 0 {
				add("%s: team not in division %s", where, div.Name)
				continue
			}
			if i >= l.SeasonRounds(d) {
				add("%s: division %s plays only %d rounds", where, div.Name, l.SeasonRounds(d))
			}
			home, away := div.Teams[hi], div.Teams[ai]
			for _, t := range []league.Team{home, away} {
				if !t.Available(i) {
					add("%s: %s is unavailable", where, t.ID)
				}
			}
			if !l.CanHost(home, i) {
				add("%s: venue %s cannot host", where, home.Venue)
			}
			if home.Venue != "" {
				hosted[home.Venue]++
			}
			busy[Bye{div.Name, m.Home}]++
			busy[Bye{div.Name, m.Away}]++
			meetings[orderedPair{div.Name, m.Home, m.Away}]++
		}

		for _, team := range sortedKeys(busy) {
			if n := busy[team]; n > 1 {
				add("round %d: %s in division %s plays %d matches", i+1, team.Team, team.Division, n)
			}
		}

		if l.SharedResources {
			for _, v := range l.Venues {
				if hosted[v.Name] > v.Capacity {
					add("round %d: venue %s hosts %d matches, capacity %d", i+1, v.Name, hosted[v.Name], v.Capacity)
				}
			}
			if limit := l.MaxMatchesPerRound; limit > 0 && len(r.Matches) > limit {
				add("round %d: %d matches, at most %d allowed", i+1, len(r.Matches), limit)
			}
		}

		problems = append(problems, checkByes(l, i, r, busy)...)
	}

	for d, div := range l.Divisions {
		for _, p := range l.Pairings(d) {
			a, b := div.Teams[p.A].ID, div.Teams[p.B].ID
			ab := meetings[orderedPair{div.Name, a, b}]
			ba := meetings[orderedPair{div.Name, b, a}]
			switch p.Meetings {
			case 1:
				if ab+ba != 1 {
					add("division %s: %s and %s meet %d times, want 1", div.Name, a, b, ab+ba)
				}
			default:
				if ab != 1 || ba != 1 {
					add("division %s: %s hosts %s %d times and visits %d times, want once each", div.Name, a, b, ab, ba)
				}
			}
		}
	}
	return problems
}

func checkByes(l *league.League, i int, r Round, busy map[Bye]int) []string {
	var problems []string
	listed := make(map[Bye]bool)
	for _, b := range r.Byes {
		d := l.DivisionIndex(b.Division)
		switch {
		case d < 0 || l.Divisions[d].TeamIndex(b.Team) < 0:
			problems = append(problems, fmt.Sprintf("round %d: bye for unknown team %s in division %s", i+1, b.Team, b.Division))
			continue
		case i >= l.SeasonRounds(d):
			problems = append(problems, fmt.Sprintf("round %d: bye for %s after division %s has finished", i+1, b.Team, b.Division))
		case busy[b] > 0:
			problems = append(problems, fmt.Sprintf("round %d: %s is on bye but plays", i+1, b.Team))
		case listed[b]:
			problems = append(problems, fmt.Sprintf("round %d: %s is on bye twice", i+1, b.Team))
		}
		listed[b] = true
	}
	for d, div := range l.Divisions {
		if i >= l.SeasonRounds(d) {
			continue
		}
		for _, t := range div.Teams {
			b := Bye{div.Name, t.ID}
			if busy[b] == 0 && !listed[b] {
				problems = append(problems, fmt.Sprintf("round %d: %s in division %s neither plays nor has a bye", i+1, t.ID, div.Name))
			}
		}
	}
	return problems
}

func sortedKeys(m map[Bye]int) []Bye {
	keys := make([]Bye, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Division != keys[j].Division {
			return keys[i].Division < keys[j].Division
		}
		return keys[i].Team < keys[j].Team
	})
	return keys
}
