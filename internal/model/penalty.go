package model

// Slot is what a team does in a round.
type Slot int8

const (
	Idle Slot = iota // bye
	Home
	Away
	Off // outside the team's season
)

// Timeline is a per-team, per-round grid of slots.
type Timeline struct {
	Rounds int
	Slots  [][]Slot
}

// NewTimeline returns a grid with len(season) rows; row i is idle for its
// first season[i] rounds and off afterwards.
func NewTimeline(rounds int, season []int) *Timeline {
	tl := &Timeline{Rounds: rounds, Slots: make([][]Slot, len(season))}
	for i, s := range season {
		row := make([]Slot, rounds)
		for r := s; r < rounds; r++ {
			row[r] = Off
		}
		tl.Slots[i] = row
	}
	return tl
}

// Set records the slot for a team row in a round.
func (tl *Timeline) Set(row, round int, s Slot) {
	tl.Slots[row][round] = s
}

// Penalty counts soft-constraint violations.
type Penalty struct {
	HomeAwayBalance int // home matches beyond the nearest balanced count, summed over teams
	ByeClusters     int // pairs of consecutive bye rounds
	RepeatStreaks   int // matches beyond the second in a same-venue run
	Total           float64
	PerTeam         []float64
}

// Evaluate scores the timeline. Byes do not interrupt a home/away run.
func Evaluate(tl *Timeline, w Weights) Penalty {
	p := Penalty{PerTeam: make([]float64, len(tl.Slots))}
	for row, slots := range tl.Slots {
		balance, byes, streaks := scoreRow(slots)
		p.HomeAwayBalance += balance
		p.ByeClusters += byes
		p.RepeatStreaks += streaks
		p.PerTeam[row] = w.HomeAwayBalance*float64(balance) +
			w.ByeDistribution*float64(byes) +
			w.RepeatStreak*float64(streaks)
	}
	p.Total = w.HomeAwayBalance*float64(p.HomeAwayBalance) +
		w.ByeDistribution*float64(p.ByeClusters) +
		w.RepeatStreak*float64(p.RepeatStreaks)
	return p
}

func scoreRow(slots []Slot) (balance, byes, streaks int) {
	home, played := 0, 0
	run, last := 0, Idle
	for r, s := range slots {
		switch s {
		case Home, Away:
			played++
			if s == Home {
				home++
			}
			if s == last {
				run++
			} else {
				run, last = 1, s
			}
			if run > 2 {
				streaks++
			}
		case Idle:
			if r+1 < len(slots) && slots[r+1] == Idle {
				byes++
			}
		}
	}
	dev := 2*home - played
	if dev < 0 {
		dev = -dev
	}
	balance = (dev - played%2) / 2
	return balance, byes, streaks
}

// Stats summarises one team row of a timeline.
type Stats struct {
	Games      int
	Home       int
	Away       int
	Byes       int
	LongestRun int // longest run of same-venue matches
}

// RowStats returns per-team counts for a timeline row.
func RowStats(slots []Slot) Stats {
	var st Stats
	run, last := 0, Idle
	for _, s := range slots {
		switch s {
		case Home, Away:
			st.Games++
			if s == Home {
				st.Home++
			} else {
				st.Away++
			}
			if s == last {
				run++
			} else {
				run, last = 1, s
			}
			st.LongestRun = max(st.LongestRun, run)
		case Idle:
			st.Byes++
		}
	}
	return st
}
