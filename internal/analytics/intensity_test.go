package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/liftlog/internal/models"
)

func withRIR(s models.WorkoutSet, rir int) models.WorkoutSet {
	s.RIR = intPtr(rir)
	return s
}

// TestTrainingIntensity checks the RIR bands, the failure rate over
// tracked sets and the per-exercise summary.
func TestTrainingIntensity(t *testing.T) {
	exercises := map[string]models.Exercise{"bench": {ID: "bench", Name: "Bench"}}
	workouts := []models.Workout{
		workout("w1", day(2), true,
			entry("bench",
				withRIR(set("bench", 100, 5, true), 0),
				withRIR(set("bench", 100, 5, true), 1),
				withRIR(set("bench", 90, 8, true), 2),
				withRIR(set("bench", 80, 8, false), 0),
			),
			entry("row",
				set("row", 60, 10, true),
				withRIR(set("row", 60, 10, true), 5),
			),
		),
		workout("draft", day(3), false, entry("bench", withRIR(set("bench", 100, 5, true), 0))),
	}

	r := TrainingIntensity(workouts, exercises, Window{})
	assert.Equal(t, 5, r.TotalSets)
	assert.Equal(t, 4, r.TrackedSets)
	assert.InDelta(t, 50.0, r.FailureRatePct, 0.001)

	bands := make(map[string]int)
	for _, b := range r.RIRDistribution {
		bands[b.Band] = b.Sets
	}
	assert.Equal(t, map[string]int{"failure": 1, "near_failure": 1, "moderate": 1, "very_easy": 1, "untracked": 1}, bands)
	assert.InDelta(t, 20.0, r.RIRDistribution[0].Pct, 0.001)

	require.Len(t, r.Exercises, 2)
	bench := r.Exercises[0]
	assert.Equal(t, "Bench", bench.Name)
	assert.Equal(t, 3, bench.TotalSets)
	assert.Equal(t, 18, bench.TotalReps)
	assert.Equal(t, 1720.0, bench.Tonnage)
	assert.Equal(t, 100.0, bench.MaxWeight)
	require.NotNil(t, bench.AvgRIR)
	assert.InDelta(t, 1.0, *bench.AvgRIR, 0.001)

	row := r.Exercises[1]
	assert.Equal(t, "row", row.Name, "unknown exercises fall back to their id")
	assert.InDelta(t, 5.0, *row.AvgRIR, 0.001)
}

// TestTrainingIntensity_Empty checks an empty log yields no failure rate.
func TestTrainingIntensity_Empty(t *testing.T) {
	r := TrainingIntensity(nil, nil, Window{})
	assert.Zero(t, r.FailureRatePct)
	assert.Empty(t, r.RIRDistribution)
	assert.Empty(t, r.Exercises)
}
