package solver

import (
	"context"
	"math/rand"
	"slices"

	"github.com/mroth/weightedrand/v2"

	"github.com/derekprior/fixturegen/internal/model"
)

type change struct {
	v  int
	on bool
}

// improver runs a local search over complete schedules. Every move keeps
// the schedule feasible; moves that do not raise the penalty are kept.
type improver struct {
	sys *model.System
	rng *rand.Rand

	on    []bool
	ones  []int
	tl    *model.Timeline
	at    [][]int // row, round -> variable in play, or -1
	delta []int

	current        model.Penalty
	best           model.Penalty
	bestAssignment []bool
	moves          int
	improvements   int
}

func newImprover(sys *model.System, assignment []bool, rng *rand.Rand) *improver {
	im := &improver{
		sys:   sys,
		rng:   rng,
		on:    slices.Clone(assignment),
		ones:  make([]int, len(sys.Constraints)),
		tl:    sys.Timeline(assignment),
		at:    make([][]int, len(sys.Teams())),
		delta: make([]int, len(sys.Constraints)),
	}
	for row := range im.at {
		im.at[row] = make([]int, sys.Rounds)
		for r := range im.at[row] {
			im.at[row][r] = -1
		}
	}
	for v, on := range assignment {
		if !on {
			continue
		}
		for _, c := range sys.Occurrences(v) {
			im.ones[c]++
		}
		x := sys.Vars[v]
		im.at[sys.Row(x.Division, x.Home)][x.Round] = v
		im.at[sys.Row(x.Division, x.Away)][x.Round] = v
	}
	im.current = model.Evaluate(im.tl, sys.Weights)
	im.best = im.current
	im.bestAssignment = slices.Clone(im.on)
	return im
}

// run proposes up to limit moves. It reports whether the context ended the
// search before the limit was reached.
func (im *improver) run(ctx context.Context, limit int) bool {
	for im.moves < limit && im.best.Total > 0 {
		if im.moves%64 == 0 && ctx.Err() != nil {
			return true
		}
		im.moves++
		changes := im.propose()
		if changes == nil || !im.feasible(changes) {
			continue
		}
		im.apply(changes)
		p := model.Evaluate(im.tl, im.sys.Weights)
		if p.Total > im.current.Total {
			im.apply(invert(changes))
			continue
		}
		im.current = p
		if p.Total < im.best.Total {
			im.best = p
			im.bestAssignment = slices.Clone(im.on)
			im.improvements++
		}
	}
	return false
}

// pickRow draws a team with probability growing with its share of the
// penalty.
func (im *improver) pickRow() int {
	choices := make([]weightedrand.Choice[int, int64], len(im.current.PerTeam))
	for row, p := range im.current.PerTeam {
		choices[row] = weightedrand.NewChoice(row, int64(p*10)+1)
	}
	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return im.rng.Intn(len(choices))
	}
	return chooser.PickSource(im.rng)
}

func (im *improver) propose() []change {
	if len(im.at) == 0 {
		return nil
	}
	row := im.pickRow()
	var played []int
	for r, v := range im.at[row] {
		if v >= 0 {
			played = append(played, r)
		}
	}
	if len(played) == 0 {
		return nil
	}
	v := im.at[row][played[im.rng.Intn(len(played))]]
	x := im.sys.Vars[v]

	switch im.rng.Intn(3) {
	case 0:
		return im.flip(v, x)
	case 1:
		return im.swap(x)
	default:
		return im.relocate(v, x)
	}
}

// flip reverses the venue of a single meeting.
func (im *improver) flip(v int, x model.Var) []change {
	if im.sys.Pairings[x.Pairing].Meetings != 1 {
		return nil
	}
	to, ok := im.sys.Lookup(x.Division, x.Away, x.Home, x.Round)
	if !ok {
		return nil
	}
	return []change{{v, false}, {to, true}}
}

// swap exchanges two rounds of the match's division.
func (im *improver) swap(x model.Var) []change {
	season := im.sys.League.SeasonRounds(x.Division)
	other := im.rng.Intn(season)
	if other == x.Round {
		return nil
	}
	var offs, ons []change
	for _, pair := range [][2]int{{x.Round, other}, {other, x.Round}} {
		from, to := pair[0], pair[1]
		for t := range im.sys.League.Divisions[x.Division].Teams {
			v := im.at[im.sys.Row(x.Division, t)][from]
			if v < 0 || im.sys.Vars[v].Home != t {
				continue
			}
			m := im.sys.Vars[v]
			moved, ok := im.sys.Lookup(m.Division, m.Home, m.Away, to)
			if !ok {
				return nil
			}
			offs = append(offs, change{v, false})
			ons = append(ons, change{moved, true})
		}
	}
	return append(offs, ons...)
}

// relocate moves a match to another round, reversing a single meeting's
// venue half of the time.
func (im *improver) relocate(v int, x model.Var) []change {
	season := im.sys.League.SeasonRounds(x.Division)
	round := im.rng.Intn(season)
	if round == x.Round {
		return nil
	}
	home, away := x.Home, x.Away
	if im.sys.Pairings[x.Pairing].Meetings == 1 && im.rng.Intn(2) == 1 {
		home, away = away, home
	}
	to, ok := im.sys.Lookup(x.Division, home, away, round)
	if !ok {
		return nil
	}
	return []change{{v, false}, {to, true}}
}

func (im *improver) feasible(changes []change) bool {
	var touched []int
	for _, ch := range changes {
		d := -1
		if ch.on {
			d = 1
		}
		for _, c := range im.sys.Occurrences(ch.v) {
			if im.delta[c] == 0 {
				touched = append(touched, c)
			}
			im.delta[c] += d
		}
	}
	ok := true
	for _, c := range touched {
		n := im.ones[c] + im.delta[c]
		con := im.sys.Constraints[c]
		if n < con.Lo || n > con.Hi {
			ok = false
		}
		im.delta[c] = 0
	}
	return ok
}

// apply expects changes that turn variables off before turning others on.
func (im *improver) apply(changes []change) {
	for _, ch := range changes {
		x := im.sys.Vars[ch.v]
		home, away := im.sys.Row(x.Division, x.Home), im.sys.Row(x.Division, x.Away)
		d := -1
		if ch.on {
			d = 1
		}
		for _, c := range im.sys.Occurrences(ch.v) {
			im.ones[c] += d
		}
		im.on[ch.v] = ch.on
		if ch.on {
			im.tl.Set(home, x.Round, model.Home)
			im.tl.Set(away, x.Round, model.Away)
			im.at[home][x.Round] = ch.v
			im.at[away][x.Round] = ch.v
		} else {
			im.tl.Set(home, x.Round, model.Idle)
			im.tl.Set(away, x.Round, model.Idle)
			im.at[home][x.Round] = -1
			im.at[away][x.Round] = -1
		}
	}
}

func invert(changes []change) []change {
	out := make([]change, len(changes))
	for i, ch := range changes {
		out[len(changes)-1-i] = change{ch.v, !ch.on}
	}
	return out
}
