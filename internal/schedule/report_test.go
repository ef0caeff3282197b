package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/fixturegen/internal/model"
)

func TestBuildReport(t *testing.T) {
	l := fourTeamLeague(t)
	fl := &FixtureList{Rounds: []Round{
		{Index: 0, Matches: []Match{match(0, "A", "B"), match(0, "C", "D")}},
		{Index: 1, Matches: []Match{match(1, "A", "C"), match(1, "D", "B")}},
		{Index: 2, Matches: []Match{match(2, "A", "D"), match(2, "B", "C")}},
	}}
	WithByes(l, fl)
	require.NoError(t, Verify(l, fl))

	rep := BuildReport(l, fl, model.DefaultWeights())

	a := rep.Team("Premier", "A")
	require.NotNil(t, a)
	assert.Equal(t, 3, a.Games)
	assert.Equal(t, 3, a.Home)
	assert.Equal(t, 3, a.LongestRun)
	assert.Contains(t, a.Violations, "A plays 3 home matches in a row: rounds 1-3")
	assert.Contains(t, a.Violations, "A home/away imbalance: 3 home, 0 away")

	b := rep.Team("Premier", "B")
	assert.Equal(t, 1, b.Home)
	assert.Empty(t, b.Violations)

	assert.Equal(t, 1, rep.Penalty.RepeatStreaks)
	assert.Equal(t, 1, rep.Penalty.HomeAwayBalance)
	assert.Len(t, rep.Warnings, 2)
	assert.Nil(t, rep.Team("Premier", "Z"))
}

func TestBuildReportByeWarnings(t *testing.T) {
	l := fourTeamLeague(t)
	l.Rounds = 5
	fl := &FixtureList{Rounds: []Round{
		{Index: 0, Matches: []Match{match(0, "A", "B"), match(0, "C", "D")}},
		{Index: 1, Matches: []Match{match(1, "C", "A"), match(1, "B", "D")}},
		{Index: 2, Matches: []Match{match(2, "A", "D"), match(2, "B", "C")}},
		{Index: 3},
		{Index: 4},
	}}
	WithByes(l, fl)
	rep := BuildReport(l, fl, model.DefaultWeights())

	assert.Contains(t, rep.Team("Premier", "A").Violations, "A has byes in consecutive rounds 4 and 5")
	assert.Equal(t, 4, rep.Penalty.ByeClusters)
}
