package storage

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/liftlog/internal/models"
)

func populate(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	f := gofakeit.New(31)

	_, err := db.EnsureProfile(ctx, "Athlete")
	require.NoError(t, err)
	a := mustExercise(t, db, fakeExercise(f, 0))
	b := mustExercise(t, db, fakeExercise(f, 1))
	wid := mustWorkout(t, db, workoutWith(testNow.AddDate(0, 0, -3), true, a, b))
	mustWorkout(t, db, workoutWith(testNow.AddDate(0, 0, -1), false, b))
	_, err = db.CreateSession(ctx, models.TrainingSession{
		WorkoutID: wid, ExerciseID: a, Date: testNow.AddDate(0, 0, -3),
		Pump: 4, Soreness: 2, Fatigue: 3, Performance: models.PerformanceGood, Notes: "solid",
	})
	require.NoError(t, err)
	_, err = db.CreateMesocycle(ctx, testMesocycle("Block", models.StatusActive, a))
	require.NoError(t, err)
}

// TestReplaceAll_RestoresSnapshot verifies clear then replace reproduces
// every record with its identifiers and timestamps.
func TestReplaceAll_RestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	populate(t, db)

	before, err := db.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		TableProfiles: 1, TableExercises: 2, TableWorkouts: 2, TableSessions: 1, TableMesocycles: 1,
	}, before.Counts())

	require.NoError(t, db.ClearAll(ctx))
	empty, err := db.Snapshot(ctx)
	require.NoError(t, err)
	for table, n := range empty.Counts() {
		assert.Zero(t, n, table)
	}

	require.NoError(t, db.ReplaceAll(ctx, *before))
	after, err := db.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// TestReplaceAll_FailureKeepsExistingData verifies a replacement that
// fails midway leaves the previous content untouched.
func TestReplaceAll_FailureKeepsExistingData(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	populate(t, db)
	before, err := db.Snapshot(ctx)
	require.NoError(t, err)

	bad := Snapshot{Exercises: []models.Exercise{before.Exercises[0], before.Exercises[0]}}
	require.Error(t, db.ReplaceAll(ctx, bad))

	after, err := db.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Counts(), after.Counts())
}
