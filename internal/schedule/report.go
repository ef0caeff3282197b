package schedule

import (
	"fmt"

	"github.com/derekprior/fixturegen/internal/league"
	"github.com/derekprior/fixturegen/internal/model"
)

// TeamMetrics holds per-team schedule statistics.
type TeamMetrics struct {
	Division   string
	Team       string
	Games      int
	Home       int
	Away       int
	Byes       int
	LongestRun int
	Violations []string
}

// Report summarises the soft-constraint quality of a fixture list.
type Report struct {
	Penalty  model.Penalty
	Teams    []*TeamMetrics // league order
	Warnings []string
}

// Team returns the metrics for a team, or nil.
func (r *Report) Team(division, team string) *TeamMetrics {
	for _, m := range r.Teams {
		if m.Division == division && m.Team == team {
			return m
		}
	}
	return nil
}

// Timeline projects a fixture list onto per-team rows in league order.
func Timeline(l *league.League, fl *FixtureList) *model.Timeline {
	var season []int
	rows := make(map[Bye]int)
	for d, div := range l.Divisions {
		for _, t := range div.Teams {
			rows[Bye{div.Name, t.ID}] = len(season)
			season = append(season, l.SeasonRounds(d))
		}
	}
	tl := model.NewTimeline(len(fl.Rounds), season)
	for _, r := range fl.Rounds {
		for _, m := range r.Matches {
			if row, ok := rows[Bye{m.Division, m.Home}]; ok {
				tl.Set(row, r.Index, model.Home)
			}
			if row, ok := rows[Bye{m.Division, m.Away}]; ok {
				tl.Set(row, r.Index, model.Away)
			}
		}
	}
	return tl
}

// BuildReport scores a fixture list with the given weights and lists the
// guideline breaches per team.
func BuildReport(l *league.League, fl *FixtureList, w model.Weights) *Report {
	tl := Timeline(l, fl)
	rep := &Report{Penalty: model.Evaluate(tl, w)}

	row := 0
	for _, div := range l.Divisions {
		for _, t := range div.Teams {
			slots := tl.Slots[row]
			st := model.RowStats(slots)
			m := &TeamMetrics{
				Division:   div.Name,
				Team:       t.ID,
				Games:      st.Games,
				Home:       st.Home,
				Away:       st.Away,
				Byes:       st.Byes,
				LongestRun: st.LongestRun,
			}
			name := t.DisplayName()

			for _, run := range runs(slots) {
				if run.length > 2 {
					m.Violations = append(m.Violations, fmt.Sprintf("%s plays %d %s matches in a row: rounds %d-%d",
						name, run.length, run.venue, run.first+1, run.last+1))
				}
			}
			for r := 1; r < len(slots); r++ {
				if slots[r] == model.Idle && slots[r-1] == model.Idle {
					m.Violations = append(m.Violations, fmt.Sprintf("%s has byes in consecutive rounds %d and %d", name, r, r+1))
				}
			}
			if diff := st.Home - st.Away; diff > 1 || diff < -1 {
				m.Violations = append(m.Violations, fmt.Sprintf("%s home/away imbalance: %d home, %d away", name, st.Home, st.Away))
			}

			rep.Warnings = append(rep.Warnings, m.Violations...)
			rep.Teams = append(rep.Teams, m)
			row++
		}
	}

	// Bye balance within a division
	for _, div := range l.Divisions {
		maxByes, minByes := 0, -1
		for _, m := range rep.Teams {
			if m.Division != div.Name {
				continue
			}
			maxByes = max(maxByes, m.Byes)
			if minByes < 0 || m.Byes < minByes {
				minByes = m.Byes
			}
		}
		if maxByes-minByes > 1 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf(
				"%s bye imbalance: min %d, max %d across teams", div.Name, minByes, maxByes))
		}
	}
	return rep
}

type run struct {
	venue       string
	length      int
	first, last int
}

// runs lists same-venue runs of matches. Byes do not end a run.
func runs(slots []model.Slot) []run {
	var out []run
	for r, s := range slots {
		if s != model.Home && s != model.Away {
			continue
		}
		venue := "home"
		if s == model.Away {
			venue = "away"
		}
		if n := len(out); n > 0 && out[n-1].venue == venue {
			out[n-1].length++
			out[n-1].last = r
			continue
		}
		out = append(out, run{venue: venue, length: 1, first: r, last: r})
	}
	return out
}
