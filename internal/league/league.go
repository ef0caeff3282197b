package league

import (
	"fmt"
	"slices"
)

// Team is a member of a single division.
type Team struct {
	ID          string
	Name        string
	Venue       string // home ground; teams of one club may share it
	Unavailable []int  // rounds in which the team cannot play at all
}

// DisplayName returns Name, falling back to ID.
func (t Team) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// Division is a group of teams that play each other Meetings times.
type Division struct {
	Name     string
	Teams    []Team
	Meetings int // 1 = single round-robin, 2 = double round-robin
	Rounds   int // explicit season length in rounds, 0 = derived
}

// TeamIndex returns the index of the team with the given ID, or -1.
func (d Division) TeamIndex(id string) int {
	for i, t := range d.Teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// MinRounds is the fewest rounds that fit every required meeting with one
// match per team per round.
func (d Division) MinRounds() int {
	n := len(d.Teams)
	if n%2 == 1 {
		return d.Meetings * n
	}
	return d.Meetings * (n - 1)
}

// MatchesPerTeam is the number of matches each team plays in a season.
func (d Division) MatchesPerTeam() int {
	return d.Meetings * (len(d.Teams) - 1)
}

// Venue is a home ground. Capacity and unavailable rounds apply to every team
// that plays its home matches there.
type Venue struct {
	Name        string
	Capacity    int // home matches hosted per round
	Unavailable []int
}

// League is the immutable input to a scheduling run. Build one with New and
// do not modify it afterwards.
type League struct {
	Divisions          []Division
	Venues             []Venue
	Rounds             int // explicit league-wide round count, 0 = derived
	SharedResources    bool
	MaxMatchesPerRound int // 0 = unlimited; requires SharedResources
}

// New validates the league description and returns a private copy of it.
func New(in League) (*League, error) {
	l := in.clone()
	if err := l.validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l League) clone() *League {
	out := &League{
		Rounds:             l.Rounds,
		SharedResources:    l.SharedResources,
		MaxMatchesPerRound: l.MaxMatchesPerRound,
	}
	for _, d := range l.Divisions {
		nd := d
		nd.Teams = make([]Team, len(d.Teams))
		for i, t := range d.Teams {
			t.Unavailable = slices.Clone(t.Unavailable)
			nd.Teams[i] = t
		}
		out.Divisions = append(out.Divisions, nd)
	}
	for _, v := range l.Venues {
		v.Unavailable = slices.Clone(v.Unavailable)
		out.Venues = append(out.Venues, v)
	}
	return out
}

func (l *League) validate() error {
	if len(l.Divisions) == 0 {
		return &ModelError{Reason: "at least one division is required"}
	}
	if l.Rounds < 0 {
		return &ModelError{Reason: fmt.Sprintf("round count %d must not be negative", l.Rounds)}
	}
	if l.MaxMatchesPerRound < 0 {
		return &ModelError{Reason: fmt.Sprintf("max matches per round %d must not be negative", l.MaxMatchesPerRound)}
	}
	if l.MaxMatchesPerRound > 0 && !l.SharedResources {
		return &ModelError{Reason: "max matches per round couples divisions and requires shared resources across divisions"}
	}

	venues := make(map[string]bool)
	for _, v := range l.Venues {
		if v.Name == "" {
			return &ModelError{Reason: "venue name is required"}
		}
		if venues[v.Name] {
			return &ModelError{Reason: fmt.Sprintf("venue %q is declared twice", v.Name)}
		}
		venues[v.Name] = true
		if l.SharedResources && v.Capacity < 1 {
			return &ModelError{Reason: fmt.Sprintf("venue %q: capacity must be at least 1, got %d", v.Name, v.Capacity)}
		}
		if err := checkRounds(v.Unavailable); err != nil {
			return &ModelError{Reason: fmt.Sprintf("venue %q: %s", v.Name, err)}
		}
	}

	divisions := make(map[string]bool)
	for _, d := range l.Divisions {
		if d.Name == "" {
			return &ModelError{Reason: "division name is required"}
		}
		if divisions[d.Name] {
			return &ModelError{Reason: fmt.Sprintf("division %q is declared twice", d.Name)}
		}
		divisions[d.Name] = true

		if len(d.Teams) < 2 {
			return &ModelError{Division: d.Name, Reason: fmt.Sprintf("needs at least 2 teams, has %d", len(d.Teams))}
		}
		if d.Meetings != 1 && d.Meetings != 2 {
			return &ModelError{Division: d.Name, Reason: fmt.Sprintf("meeting count must be 1 or 2, got %d", d.Meetings)}
		}
		if d.Rounds < 0 {
			return &ModelError{Division: d.Name, Reason: fmt.Sprintf("round count %d must not be negative", d.Rounds)}
		}
		if d.Rounds > 0 && d.Rounds < d.MinRounds() {
			return &ModelError{Division: d.Name, Reason: fmt.Sprintf("needs at least %d rounds, only %d configured", d.MinRounds(), d.Rounds)}
		}

		seen := make(map[string]bool)
		for _, t := range d.Teams {
			if t.ID == "" {
				return &ModelError{Division: d.Name, Reason: "team id is required"}
			}
			if seen[t.ID] {
				return &ModelError{Division: d.Name, Reason: fmt.Sprintf("team %q appears twice", t.ID)}
			}
			seen[t.ID] = true
			if t.Venue != "" && !venues[t.Venue] {
				return &ModelError{Division: d.Name, Reason: fmt.Sprintf("team %q plays at unknown venue %q", t.ID, t.Venue)}
			}
			if err := checkRounds(t.Unavailable); err != nil {
				return &ModelError{Division: d.Name, Reason: fmt.Sprintf("team %q: %s", t.ID, err)}
			}
		}
	}

	if l.Rounds > 0 {
		for _, d := range l.Divisions {
			need := d.MinRounds()
			if d.Rounds > need {
				need = d.Rounds
			}
			if l.Rounds < need {
				return &ModelError{Division: d.Name, Reason: fmt.Sprintf("needs at least %d rounds, only %d configured", need, l.Rounds)}
			}
		}
	}
	return nil
}

func checkRounds(rounds []int) error {
	for _, r := range rounds {
		if r < 0 {
			return fmt.Errorf("unavailable round %d must not be negative", r)
		}
	}
	return nil
}

// TotalRounds is the number of rounds in the season, common to all divisions.
func (l *League) TotalRounds() int {
	if l.Rounds > 0 {
		return l.Rounds
	}
	total := 0
	for _, d := range l.Divisions {
		need := d.MinRounds()
		if d.Rounds > need {
			need = d.Rounds
		}
		total = max(total, need)
	}
	return total
}

// SeasonRounds is the number of leading rounds the division may use.
func (l *League) SeasonRounds(div int) int {
	if d := l.Divisions[div]; d.Rounds > 0 {
		return d.Rounds
	}
	return l.TotalRounds()
}

// DivisionIndex returns the index of the named division, or -1.
func (l *League) DivisionIndex(name string) int {
	for i, d := range l.Divisions {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// VenueIndex returns the index of the named venue, or -1.
func (l *League) VenueIndex(name string) int {
	for i, v := range l.Venues {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// TeamCount returns the number of teams across all divisions.
func (l *League) TeamCount() int {
	n := 0
	for _, d := range l.Divisions {
		n += len(d.Teams)
	}
	return n
}

// Available reports whether a team can play in the round.
func (t Team) Available(round int) bool {
	return !slices.Contains(t.Unavailable, round)
}

// CanHost reports whether the team's home ground can host a match in the round.
func (l *League) CanHost(t Team, round int) bool {
	if t.Venue == "" {
		return true
	}
	v := l.VenueIndex(t.Venue)
	return v < 0 || !slices.Contains(l.Venues[v].Unavailable, round)
}
