package model

import "math/rand"

// hint builds a preferred assignment: a circle-method round-robin for each
// division, with teams shuffled by the seed and venues alternated so runs
// stay short. Matches that cannot be placed as hinted are left out.
func (s *System) hint(seed int64) []bool {
	hint := make([]bool, len(s.Vars))
	for _, d := range s.Divisions {
		div := s.League.Divisions[d]
		rng := rand.New(rand.NewSource(seed + int64(d)))
		order := rng.Perm(len(div.Teams))
		for _, m := range circle(order, div.Meetings) {
			if v, ok := s.Lookup(d, m[0], m[1], m[2]); ok {
				hint[v] = true
			}
		}
	}
	return hint
}

// circle returns (home, away, round) triples of a round-robin over the given
// team order. An odd team count adds a phantom opponent that means a bye.
// The second meeting mirrors the first with venues reversed.
func circle(order []int, meetings int) [][3]int {
	teams := append([]int(nil), order...)
	if len(teams)%2 == 1 {
		teams = append(teams, -1)
	}
	n := len(teams)
	rounds := n - 1

	var out [][3]int
	for r := 0; r < rounds; r++ {
		for i := 0; i < n/2; i++ {
			a, b := teams[i], teams[n-1-i]
			if a < 0 || b < 0 {
				continue
			}
			home, away := a, b
			if (i == 0 && r%2 == 1) || (i > 0 && (r+i)%2 == 1) {
				home, away = b, a
			}
			out = append(out, [3]int{home, away, r})
			if meetings == 2 {
				out = append(out, [3]int{away, home, r + rounds})
			}
		}
		// keep teams[0] fixed and rotate the rest clockwise
		last := teams[n-1]
		copy(teams[2:], teams[1:n-1])
		teams[1] = last
	}
	return out
}
