package schedule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/fixturegen/internal/league"
)

func fourTeamLeague(t *testing.T) *league.League {
	t.Helper()
	l, err := league.New(league.League{Divisions: []league.Division{{
		Name:     "Premier",
		Meetings: 1,
		Teams:    []league.Team{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}},
	}}})
	require.NoError(t, err)
	return l
}

func match(r int, home, away string) Match {
	return Match{Division: "Premier", Home: home, Away: away, Round: r}
}

func validFourTeam() *FixtureList {
	return &FixtureList{Rounds: []Round{
		{Index: 0, Matches: []Match{match(0, "A", "B"), match(0, "C", "D")}},
		{Index: 1, Matches: []Match{match(1, "C", "A"), match(1, "B", "D")}},
		{Index: 2, Matches: []Match{match(2, "A", "D"), match(2, "B", "C")}},
	}}
}

func TestVerifyAcceptsValidList(t *testing.T) {
	l := fourTeamLeague(t)
	fl := validFourTeam()
	WithByes(l, fl)
	assert.NoError(t, Verify(l, fl))
}

func TestVerifyRejectsBrokenLists(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(fl *FixtureList)
		want   string
	}{
		{
			name:   "self play",
			mutate: func(fl *FixtureList) { fl.Rounds[0].Matches[0].Away = "A" },
			want:   "A plays itself",
		},
		{
			name: "team plays twice in a round",
			mutate: func(fl *FixtureList) {
				fl.Rounds[0].Matches[1] = match(0, "A", "C")
			},
			want: "round 1: A in division Premier plays 2 matches",
		},
		{
			name: "missing match",
			mutate: func(fl *FixtureList) {
				fl.Rounds[2].Matches = fl.Rounds[2].Matches[:1]
				fl.Rounds[2].Byes = []Bye{{"Premier", "B"}, {"Premier", "C"}}
			},
			want: "B and C meet 0 times, want 1",
		},
		{
			name: "pair meets twice",
			mutate: func(fl *FixtureList) {
				fl.Rounds[2].Matches[1] = match(2, "B", "A")
				fl.Rounds[2].Matches[0] = match(2, "C", "D")
			},
			want: "A and B meet 2 times, want 1",
		},
		{
			name:   "unknown team",
			mutate: func(fl *FixtureList) { fl.Rounds[0].Matches[1].Away = "Z" },
			want:   "team not in division Premier",
		},
		{
			name:   "unknown division",
			mutate: func(fl *FixtureList) { fl.Rounds[1].Matches[0].Division = "Other" },
			want:   `unknown division "Other"`,
		},
		{
			name:   "bye for a playing team",
			mutate: func(fl *FixtureList) { fl.Rounds[0].Byes = []Bye{{"Premier", "A"}} },
			want:   "A is on bye but plays",
		},
		{
			name:   "missing round",
			mutate: func(fl *FixtureList) { fl.Rounds = fl.Rounds[:2] },
			want:   "fixture list has 2 rounds, league needs 3",
		},
		{
			name:   "match filed under another round",
			mutate: func(fl *FixtureList) { fl.Rounds[1].Matches[1].Round = 2 },
			want:   "is filed under round 3",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := fourTeamLeague(t)
			fl := validFourTeam()
			tc.mutate(fl)
			err := Verify(l, fl)
			var iv *InvariantViolation
			require.True(t, errors.As(err, &iv), "got %v", err)
			assert.Contains(t, err.Error(), tc.want)
			assert.Contains(t, iv.Trace(), "fixture list failed verification")
		})
	}
}

func TestVerifyAvailabilityAndVenues(t *testing.T) {
	l, err := league.New(league.League{
		SharedResources:    true,
		MaxMatchesPerRound: 1,
		Venues:             []league.Venue{{Name: "Park", Capacity: 1, Unavailable: []int{1}}},
		Divisions: []league.Division{{
			Name:     "Premier",
			Meetings: 1,
			Teams:    []league.Team{{ID: "A", Venue: "Park"}, {ID: "B", Venue: "Park", Unavailable: []int{0}}, {ID: "C"}, {ID: "D"}},
		}},
		Rounds: 3,
	})
	require.NoError(t, err)

	fl := &FixtureList{Rounds: []Round{
		{Index: 0, Matches: []Match{match(0, "A", "B"), match(0, "C", "D")}},
		{Index: 1, Matches: []Match{match(1, "A", "C"), match(1, "B", "D")}},
		{Index: 2, Matches: []Match{match(2, "A", "D"), match(2, "C", "B")}},
	}}
	WithByes(l, fl)
	problems := Check(l, fl)

	assert.Contains(t, problems, "round 1: A v B: B is unavailable")
	assert.Contains(t, problems, "round 2: A v C: venue Park cannot host")
	assert.Contains(t, problems, "round 2: venue Park hosts 2 matches, capacity 1")
	assert.Contains(t, problems, "round 1: 2 matches, at most 1 allowed")
}

func TestWithByes(t *testing.T) {
	l, err := league.New(league.League{Divisions: []league.Division{
		{Name: "Premier", Meetings: 1, Teams: []league.Team{{ID: "A"}, {ID: "B"}, {ID: "C"}}},
		{Name: "Junior", Meetings: 1, Rounds: 1, Teams: []league.Team{{ID: "X"}, {ID: "Y"}}},
	}})
	require.NoError(t, err)

	fl := &FixtureList{Rounds: []Round{
		{Index: 0, Matches: []Match{match(0, "A", "B"), {Division: "Junior", Home: "X", Away: "Y"}}},
		{Index: 1, Matches: []Match{match(1, "C", "A")}},
		{Index: 2, Matches: []Match{match(2, "B", "C")}},
	}}
	WithByes(l, fl)

	assert.Equal(t, []Bye{{"Premier", "C"}}, fl.Rounds[0].Byes)
	assert.Equal(t, []Bye{{"Premier", "B"}}, fl.Rounds[1].Byes, "Junior has finished after round 1")
	assert.Equal(t, []Bye{{"Premier", "A"}}, fl.Rounds[2].Byes)
	assert.NoError(t, Verify(l, fl))
}
