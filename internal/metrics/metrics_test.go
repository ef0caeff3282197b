package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/fixturegen/internal/model"
	"github.com/derekprior/fixturegen/internal/solver"
)

func family(t *testing.T, r *Recorder, name string) *dto.MetricFamily {
	t.Helper()
	families, err := r.Gatherer().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

func TestRecordSolve(t *testing.T) {
	rec := NewRecorder()
	res := &solver.Result{
		Status:     solver.Feasible,
		Assignment: []bool{true},
		Objective:  3,
		Stats:      solver.Stats{Nodes: 40, Moves: 100, Improvements: 2, Elapsed: 20 * time.Millisecond},
	}
	rec.RecordSolve("Premier", res)
	rec.RecordSolve("Premier", res)

	solves := family(t, rec, "fixturegen_solves_total")
	require.Len(t, solves.GetMetric(), 1)
	assert.Equal(t, 2.0, solves.GetMetric()[0].GetCounter().GetValue())

	nodes := family(t, rec, "fixturegen_search_nodes_total")
	assert.Equal(t, 80.0, nodes.GetMetric()[0].GetCounter().GetValue())

	objective := family(t, rec, "fixturegen_objective")
	assert.Equal(t, 3.0, objective.GetMetric()[0].GetGauge().GetValue())

	duration := family(t, rec, "fixturegen_solve_duration_seconds")
	assert.Equal(t, uint64(2), duration.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestRecordSchedule(t *testing.T) {
	rec := NewRecorder()
	rec.RecordSchedule(45, model.Penalty{HomeAwayBalance: 1, RepeatStreaks: 4})

	assert.Equal(t, 45.0, family(t, rec, "fixturegen_matches").GetMetric()[0].GetGauge().GetValue())
	penalty := family(t, rec, "fixturegen_penalty_count")
	assert.Len(t, penalty.GetMetric(), 3)
}

func TestWriteTextfile(t *testing.T) {
	rec := NewRecorder()
	rec.RecordSolve("league", &solver.Result{Status: solver.Optimal, Assignment: []bool{}})

	path := filepath.Join(t.TempDir(), "fixturegen.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `fixturegen_solves_total{component="league",status="OPTIMAL"} 1`)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordSolve("x", &solver.Result{})
	rec.RecordSchedule(1, model.Penalty{})
	assert.NoError(t, rec.WriteTextfile(filepath.Join(t.TempDir(), "none.prom")))
	families, err := rec.Gatherer().Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}
