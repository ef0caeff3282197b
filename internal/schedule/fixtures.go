package schedule

import (
	"time"

	"github.com/derekprior/fixturegen/internal/league"
)

// Match is one fixture: Home hosts Away in Round. Teams are identified by
// their ID within Division.
type Match struct {
	Division string
	Home     string
	Away     string
	Round    int
}

// Bye records a team that does not play in a round.
type Bye struct {
	Division string
	Team     string
}

// Round groups the matches and byes of one round.
type Round struct {
	Index   int
	Date    time.Time // zero when no calendar is configured
	Matches []Match
	Byes    []Bye
}

// FixtureList is a season of rounds.
type FixtureList struct {
	Rounds []Round
}

// Matches returns every match in round order.
func (fl *FixtureList) Matches() []Match {
	var out []Match
	for _, r := range fl.Rounds {
		out = append(out, r.Matches...)
	}
	return out
}

// MatchCount returns the number of matches in the season.
func (fl *FixtureList) MatchCount() int {
	n := 0
	for _, r := range fl.Rounds {
		n += len(r.Matches)
	}
	return n
}

// WithByes fills in the byes of every round from its matches: a team of a
// division is on bye in each in-season round it does not play.
func WithByes(l *league.League, fl *FixtureList) {
	for i := range fl.Rounds {
		r := &fl.Rounds[i]
		playing := make(map[Bye]bool)
		for _, m := range r.Matches {
			playing[Bye{m.Division, m.Home}] = true
			playing[Bye{m.Division, m.Away}] = true
		}
		r.Byes = nil
		for d, div := range l.Divisions {
			if r.Index >= l.SeasonRounds(d) {
				continue
			}
			for _, t := range div.Teams {
				if b := (Bye{div.Name, t.ID}); !playing[b] {
					r.Byes = append(r.Byes, b)
				}
			}
		}
	}
}

// AttachDates sets the date of each round from dates[round].
func AttachDates(fl *FixtureList, dates []time.Time) {
	for i := range fl.Rounds {
		if i < len(dates) {
			fl.Rounds[i].Date = dates[i]
		}
	}
}
