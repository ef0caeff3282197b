package model

import (
	"fmt"

	"github.com/derekprior/fixturegen/internal/league"
)

// Var is a boolean decision: division Division plays Home v Away in Round.
// Home and Away are team indexes within the division.
type Var struct {
	Division int
	Pairing  int // index into System.Pairings
	Home     int
	Away     int
	Round    int
}

// Kind categorizes a hard constraint.
type Kind int

const (
	Coverage  Kind = iota // a pairing meets the required number of times
	TeamRound             // a team plays at most once per round
	VenueRound            // a venue hosts at most its capacity per round
	RoundCap              // at most MaxMatchesPerRound matches per round
)

func (k Kind) String() string {
	switch k {
	case Coverage:
		return "coverage"
	case TeamRound:
		return "team-round"
	case VenueRound:
		return "venue-round"
	case RoundCap:
		return "round-cap"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Constraint bounds the number of true variables in Vars to [Lo, Hi].
type Constraint struct {
	Kind Kind
	Name string
	Vars []int
	Lo   int
	Hi   int
}

// Weights scale the soft-constraint penalty counts into a single objective.
type Weights struct {
	HomeAwayBalance float64
	ByeDistribution float64
	RepeatStreak    float64
}

// DefaultWeights weighs every soft constraint equally.
func DefaultWeights() Weights {
	return Weights{HomeAwayBalance: 1, ByeDistribution: 1, RepeatStreak: 1}
}

// Options control how a constraint system is built.
type Options struct {
	Seed    int64 // tie-break for the solution hint
	Weights Weights
}

// TeamKey identifies a team by division and index within it.
type TeamKey struct {
	Division int
	Team     int
}

// System is a constraint system for one or more divisions that share no
// resources with divisions outside it.
type System struct {
	League      *league.League
	Divisions   []int
	Rounds      int
	Pairings    []league.Pairing
	Vars        []Var
	Constraints []Constraint
	Hint        []bool
	Weights     Weights

	teams []TeamKey
	rows  map[TeamKey]int
	index map[Var]int
	occur [][]int
}

// Build translates the league into constraint systems. Divisions are returned
// as independent systems unless the league shares resources across them, in
// which case a single joint system is returned.
func Build(l *league.League, opts Options) ([]*System, error) {
	if l == nil {
		return nil, &league.ModelError{Reason: "league is required"}
	}
	if opts.Weights.HomeAwayBalance < 0 || opts.Weights.ByeDistribution < 0 || opts.Weights.RepeatStreak < 0 {
		return nil, &league.ModelError{Reason: "soft constraint weights must not be negative"}
	}

	var groups [][]int
	if l.SharedResources {
		var all []int
		for d := range l.Divisions {
			all = append(all, d)
		}
		groups = append(groups, all)
	} else {
		for d := range l.Divisions {
			groups = append(groups, []int{d})
		}
	}

	systems := make([]*System, 0, len(groups))
	for _, divs := range groups {
		systems = append(systems, build(l, divs, opts))
	}
	return systems, nil
}

func build(l *league.League, divs []int, opts Options) *System {
	s := &System{
		League:    l,
		Divisions: divs,
		Rounds:    l.TotalRounds(),
		Weights:   opts.Weights,
		rows:      make(map[TeamKey]int),
		index:     make(map[Var]int),
	}
	for _, d := range divs {
		for t := range l.Divisions[d].Teams {
			key := TeamKey{Division: d, Team: t}
			s.rows[key] = len(s.teams)
			s.teams = append(s.teams, key)
		}
	}

	s.addCoverage()
	s.addTeamRounds()
	if l.SharedResources {
		s.addVenueRounds()
		if l.MaxMatchesPerRound > 0 {
			s.addRoundCaps()
		}
	}
	s.index = make(map[Var]int, len(s.Vars))
	for i, v := range s.Vars {
		s.index[Var{Division: v.Division, Home: v.Home, Away: v.Away, Round: v.Round}] = i
	}
	s.occur = make([][]int, len(s.Vars))
	for c, con := range s.Constraints {
		for _, v := range con.Vars {
			s.occur[v] = append(s.occur[v], c)
		}
	}
	s.Hint = s.hint(opts.Seed)
	return s
}

// addCoverage creates the variables for every pairing and the constraint that
// it is played the required number of times. Variables are only created for
// rounds in which both teams are available and the home ground can host.
func (s *System) addCoverage() {
	l := s.League
	for _, d := range s.Divisions {
		div := l.Divisions[d]
		season := l.SeasonRounds(d)
		for _, p := range l.Pairings(d) {
			pi := len(s.Pairings)
			s.Pairings = append(s.Pairings, p)

			var perOrientation [][]int
			for _, o := range p.Orientations() {
				home, away := div.Teams[o[0]], div.Teams[o[1]]
				var vars []int
				for r := 0; r < season; r++ {
					if !home.Available(r) || !away.Available(r) || !l.CanHost(home, r) {
						continue
					}
					vars = append(vars, len(s.Vars))
					s.Vars = append(s.Vars, Var{Division: d, Pairing: pi, Home: o[0], Away: o[1], Round: r})
				}
				perOrientation = append(perOrientation, vars)
			}

			if p.Meetings == 2 {
				for i, vars := range perOrientation {
					o := p.Orientations()[i]
					s.Constraints = append(s.Constraints, Constraint{
						Kind: Coverage,
						Name: fmt.Sprintf("%s: %s v %s", div.Name, div.Teams[o[0]].ID, div.Teams[o[1]].ID),
						Vars: vars,
						Lo:   1,
						Hi:   1,
					})
				}
				continue
			}
			s.Constraints = append(s.Constraints, Constraint{
				Kind: Coverage,
				Name: fmt.Sprintf("%s: %s v %s", div.Name, div.Teams[p.A].ID, div.Teams[p.B].ID),
				Vars: append(perOrientation[0], perOrientation[1]...),
				Lo:   1,
				Hi:   1,
			})
		}
	}
}

func (s *System) addTeamRounds() {
	byTeamRound := make(map[[2]int][]int) // (row, round) -> vars
	for i, v := range s.Vars {
		for _, t := range []int{v.Home, v.Away} {
			k := [2]int{s.rows[TeamKey{v.Division, t}], v.Round}
			byTeamRound[k] = append(byTeamRound[k], i)
		}
	}
	for row, key := range s.teams {
		team := s.League.Divisions[key.Division].Teams[key.Team]
		for r := 0; r < s.Rounds; r++ {
			vars := byTeamRound[[2]int{row, r}]
			if len(vars) < 2 {
				continue
			}
			s.Constraints = append(s.Constraints, Constraint{
				Kind: TeamRound,
				Name: fmt.Sprintf("%s: %s round %d", s.League.Divisions[key.Division].Name, team.ID, r+1),
				Vars: vars,
				Lo:   0,
				Hi:   1,
			})
		}
	}
}

func (s *System) addVenueRounds() {
	l := s.League
	byVenueRound := make(map[[2]int][]int)
	for i, v := range s.Vars {
		home := l.Divisions[v.Division].Teams[v.Home]
		if home.Venue == "" {
			continue
		}
		k := [2]int{l.VenueIndex(home.Venue), v.Round}
		byVenueRound[k] = append(byVenueRound[k], i)
	}
	for vi, venue := range l.Venues {
		for r := 0; r < s.Rounds; r++ {
			vars := byVenueRound[[2]int{vi, r}]
			if len(vars) <= venue.Capacity {
				continue
			}
			s.Constraints = append(s.Constraints, Constraint{
				Kind: VenueRound,
				Name: fmt.Sprintf("%s round %d", venue.Name, r+1),
				Vars: vars,
				Lo:   0,
				Hi:   venue.Capacity,
			})
		}
	}
}

func (s *System) addRoundCaps() {
	byRound := make([][]int, s.Rounds)
	for i, v := range s.Vars {
		byRound[v.Round] = append(byRound[v.Round], i)
	}
	for r, vars := range byRound {
		if len(vars) <= s.League.MaxMatchesPerRound {
			continue
		}
		s.Constraints = append(s.Constraints, Constraint{
			Kind: RoundCap,
			Name: fmt.Sprintf("round %d", r+1),
			Vars: vars,
			Lo:   0,
			Hi:   s.League.MaxMatchesPerRound,
		})
	}
}

// Lookup returns the variable for a division playing home v away in a round.
func (s *System) Lookup(div, home, away, round int) (int, bool) {
	i, ok := s.index[Var{Division: div, Home: home, Away: away, Round: round}]
	return i, ok
}

// Occurrences returns the indexes of the constraints that mention the variable.
func (s *System) Occurrences(v int) []int {
	return s.occur[v]
}

// Teams lists the teams covered by the system in row order.
func (s *System) Teams() []TeamKey {
	return s.teams
}

// Row returns the timeline row of a team, or -1 if the system does not cover it.
func (s *System) Row(div, team int) int {
	if r, ok := s.rows[TeamKey{Division: div, Team: team}]; ok {
		return r
	}
	return -1
}

// Timeline projects an assignment onto a per-team, per-round grid.
func (s *System) Timeline(assignment []bool) *Timeline {
	tl := s.EmptyTimeline()
	for i, on := range assignment {
		if !on {
			continue
		}
		v := s.Vars[i]
		tl.Set(s.Row(v.Division, v.Home), v.Round, Home)
		tl.Set(s.Row(v.Division, v.Away), v.Round, Away)
	}
	return tl
}

// EmptyTimeline returns a grid with every in-season round idle.
func (s *System) EmptyTimeline() *Timeline {
	season := make([]int, len(s.teams))
	for row, key := range s.teams {
		season[row] = s.League.SeasonRounds(key.Division)
	}
	return NewTimeline(s.Rounds, season)
}
