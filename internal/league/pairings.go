package league

// Pairing is a required meeting between two teams of a division. A and B are
// team indexes within the division with A < B.
type Pairing struct {
	Division int
	A, B     int
	Meetings int
}

// Orientations returns the (home, away) orderings the pairing may be played in.
// A double round-robin plays each ordering exactly once.
func (p Pairing) Orientations() [][2]int {
	return [][2]int{{p.A, p.B}, {p.B, p.A}}
}

// Pairings lists every required meeting of the division, in team order.
func (l *League) Pairings(div int) []Pairing {
	d := l.Divisions[div]
	var pairings []Pairing
	for i := 0; i < len(d.Teams); i++ {
		for j := i + 1; j < len(d.Teams); j++ {
			pairings = append(pairings, Pairing{
				Division: div,
				A:        i,
				B:        j,
				Meetings: d.Meetings,
			})
		}
	}
	return pairings
}

// MatchCount is the number of matches the division plays in a season.
func (d Division) MatchCount() int {
	n := len(d.Teams)
	return d.Meetings * n * (n - 1) / 2
}
