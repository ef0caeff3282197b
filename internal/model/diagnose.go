package model

import (
	"fmt"
	"slices"
)

// Diagnose looks for a capacity shortfall that rules out every schedule
// before any search is attempted. It returns "" when none is found; the
// system may still be infeasible.
func (s *System) Diagnose() string {
	l := s.League
	for _, c := range s.Constraints {
		if c.Kind == Coverage && len(c.Vars) < c.Lo {
			return fmt.Sprintf("pairing %s has no available round", c.Name)
		}
	}

	for _, key := range s.teams {
		div := l.Divisions[key.Division]
		team := div.Teams[key.Team]
		season := l.SeasonRounds(key.Division)
		avail := 0
		for r := 0; r < season; r++ {
			if team.Available(r) {
				avail++
			}
		}
		if need := div.MatchesPerTeam(); avail < need {
			return fmt.Sprintf("team %s in division %s is available in only %d of %d rounds, needs %d",
				team.ID, div.Name, avail, season, need)
		}
	}

	if !l.SharedResources {
		return ""
	}

	if limit := l.MaxMatchesPerRound; limit > 0 {
		total := 0
		for _, d := range s.Divisions {
			total += l.Divisions[d].MatchCount()
		}
		if total > limit*s.Rounds {
			return fmt.Sprintf("league needs %d matches but %d rounds of at most %d matches hold only %d",
				total, s.Rounds, limit, limit*s.Rounds)
		}
	}

	// A double round-robin fixes every team's home count, so venue demand is known.
	for _, venue := range l.Venues {
		demand := 0
		for _, d := range s.Divisions {
			div := l.Divisions[d]
			if div.Meetings != 2 {
				continue
			}
			for _, t := range div.Teams {
				if t.Venue == venue.Name {
					demand += len(div.Teams) - 1
				}
			}
		}
		hostable := 0
		for r := 0; r < s.Rounds; r++ {
			if !slices.Contains(venue.Unavailable, r) {
				hostable++
			}
		}
		if demand > venue.Capacity*hostable {
			return fmt.Sprintf("venue %s must host %d home matches but %d rounds at capacity %d hold only %d",
				venue.Name, demand, hostable, venue.Capacity, venue.Capacity*hostable)
		}
	}
	return ""
}
