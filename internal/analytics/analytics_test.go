package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/liftlog/internal/models"
)

func intPtr(n int) *int { return &n }

func set(exerciseID string, weight float64, reps int, completed bool) models.WorkoutSet {
	return models.WorkoutSet{ExerciseID: exerciseID, TargetReps: reps, ActualReps: intPtr(reps), Weight: weight, Completed: completed}
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 18, 0, 0, 0, time.UTC)
}

func workout(id string, date time.Time, completed bool, entries ...models.WorkoutExercise) models.Workout {
	return models.Workout{ID: id, Date: date, Completed: completed, Exercises: entries}
}

func entry(exerciseID string, sets ...models.WorkoutSet) models.WorkoutExercise {
	return models.WorkoutExercise{ExerciseID: exerciseID, Sets: sets}
}

// TestOneRepMaxFormulas pins the estimates for common inputs.
func TestOneRepMaxFormulas(t *testing.T) {
	tests := []struct {
		name    string
		weight  float64
		reps    int
		epley   float64
		brzycki float64
	}{
		{"ten reps", 100, 10, 133.333, 133.333},
		{"five reps", 100, 5, 116.667, 112.5},
		{"single", 140, 1, 140, 140},
		{"zero reps", 100, 0, 0, 0},
		{"zero weight", 0, 5, 0, 0},
		{"brzycki limit", 50, 37, 50 * (1 + 37.0/30), 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.epley, Epley(tt.weight, tt.reps), 0.001)
			assert.InDelta(t, tt.brzycki, Brzycki(tt.weight, tt.reps), 0.001)
		})
	}
}

// TestOneRepMaxCrossover checks Epley runs above Brzycki below ten reps,
// meets it at ten and falls below it from eleven up to the Brzycki limit.
func TestOneRepMaxCrossover(t *testing.T) {
	for reps := 2; reps < 10; reps++ {
		assert.Greater(t, Epley(100, reps), Brzycki(100, reps), "reps %d", reps)
	}
	assert.InDelta(t, Epley(100, 10), Brzycki(100, 10), 0.001)
	for reps := 11; reps <= 36; reps++ {
		assert.Less(t, Epley(100, reps), Brzycki(100, reps), "reps %d", reps)
	}
}

// TestVolume checks only completed sets count and actual reps win.
func TestVolume(t *testing.T) {
	missed := set("a", 100, 10, false)
	short := models.WorkoutSet{TargetReps: 10, ActualReps: intPtr(6), Weight: 50, Completed: true}
	planned := models.WorkoutSet{TargetReps: 8, Weight: 40, Completed: true}
	w := workout("w", day(2), true,
		entry("a", set("a", 100, 10, true), missed),
		entry("b", short, planned),
	)
	assert.Equal(t, 300.0, SetVolume(short))
	assert.Equal(t, 320.0, SetVolume(planned))
	assert.Equal(t, 1000.0, ExerciseVolume(w.Exercises[0]))
	assert.Equal(t, 1620.0, WorkoutVolume(w))
}

// TestWindowContains checks the half-open bounds.
func TestWindowContains(t *testing.T) {
	w := Window{Start: day(2), End: day(9)}
	assert.True(t, w.Contains(day(2)))
	assert.True(t, w.Contains(day(8)))
	assert.False(t, w.Contains(day(9)))
	assert.False(t, w.Contains(day(1)))
	assert.True(t, Window{}.Contains(day(30)))
}

// TestPersonalRecords checks bucketing, ties, and that drafts are ignored.
func TestPersonalRecords(t *testing.T) {
	workouts := []models.Workout{
		workout("w3", day(10), true, entry("bench", set("bench", 105, 5, true))),
		workout("w1", day(2), true, entry("bench", set("bench", 100, 5, true), set("bench", 120, 1, true))),
		workout("w2", day(6), true, entry("bench", set("bench", 105, 4, true), set("bench", 80, 10, true))),
		workout("draft", day(11), false, entry("bench", set("bench", 200, 1, true))),
		workout("w4", day(12), true, entry("bench", set("bench", 300, 50, true), set("bench", 130, 1, false))),
	}
	prs := PersonalRecords(workouts, "bench")
	require.Len(t, prs, 3)

	assert.Equal(t, "1RM", prs[0].Bucket)
	assert.Equal(t, 120.0, prs[0].Weight)
	assert.Equal(t, "w1", prs[0].WorkoutID)

	assert.Equal(t, "5RM", prs[1].Bucket)
	assert.Equal(t, 105.0, prs[1].Weight)
	assert.Equal(t, "w2", prs[1].WorkoutID, "earliest set wins a tie")
	assert.Equal(t, 4, prs[1].Reps)
	assert.InDelta(t, 119.0, prs[1].EstimatedOneRM, 0.001)

	assert.Equal(t, "10RM", prs[2].Bucket)
	assert.Equal(t, 80.0, prs[2].Weight)

	assert.Empty(t, PersonalRecords(workouts, "squat"))
}

// TestProgressTrend checks one point per workout holding the best set.
func TestProgressTrend(t *testing.T) {
	workouts := []models.Workout{
		workout("w2", day(9), true, entry("squat", set("squat", 100, 5, true), set("squat", 90, 8, true))),
		workout("w1", day(2), true, entry("squat", set("squat", 80, 8, true))),
		workout("w0", day(1), true, entry("bench", set("bench", 60, 8, true))),
	}
	points := ProgressTrend(workouts, "squat")
	require.Len(t, points, 2)
	assert.Equal(t, "w1", points[0].WorkoutID)
	assert.Equal(t, "w2", points[1].WorkoutID)
	assert.Equal(t, 90.0, points[1].Weight)
	assert.Equal(t, 720.0, points[1].Volume)
	assert.InDelta(t, Epley(90, 8), points[1].EstimatedOneRM, 0.001)
}

// TestMuscleGroupVolumes checks full volume is credited to each tagged
// group and unknown exercises are reported.
func TestMuscleGroupVolumes(t *testing.T) {
	exercises := map[string]models.Exercise{
		"bench": {ID: "bench", Name: "Bench", MuscleGroups: []models.MuscleGroup{models.MuscleChest, models.MuscleTriceps}},
		"dip":   {ID: "dip", Name: "Dip", MuscleGroups: []models.MuscleGroup{models.MuscleTriceps}},
	}
	workouts := []models.Workout{
		workout("w1", day(2), true,
			entry("bench", set("bench", 100, 10, true), set("bench", 100, 10, false)),
			entry("dip", set("dip", 20, 10, true)),
			entry("gone", set("gone", 50, 5, true)),
		),
		workout("old", day(1), true, entry("bench", set("bench", 100, 10, true))),
	}
	report := MuscleGroupVolumes(workouts, exercises, Window{Start: day(2)})
	require.Len(t, report.Groups, 2)
	assert.Equal(t, MuscleGroupVolume{Group: models.MuscleTriceps, Volume: 1200, Sets: 2}, report.Groups[0])
	assert.Equal(t, MuscleGroupVolume{Group: models.MuscleChest, Volume: 1000, Sets: 1}, report.Groups[1])
	assert.Equal(t, []string{"gone"}, report.UnknownExercises)
}

// TestStreaks checks current and longest runs of consecutive days.
func TestStreaks(t *testing.T) {
	tests := []struct {
		name             string
		days             []int
		today            int
		current, longest int
	}{
		{"broken run", []int{1, 2, 3, 10}, 10, 1, 3},
		{"run ending yesterday", []int{7, 8, 9}, 10, 3, 3},
		{"run ended two days ago", []int{7, 8}, 10, 0, 2},
		{"same day twice", []int{9, 9, 10}, 10, 2, 2},
		{"unsorted", []int{10, 3, 9, 2}, 10, 2, 2},
		{"empty", nil, 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dates []time.Time
			for _, d := range tt.days {
				dates = append(dates, day(d))
			}
			current, longest := Streaks(dates, day(tt.today), time.UTC)
			assert.Equal(t, tt.current, current)
			assert.Equal(t, tt.longest, longest)
		})
	}
}

// TestComputeStats checks totals, averages and the weekly rate.
func TestComputeStats(t *testing.T) {
	w1 := workout("w1", day(2), true, entry("a", set("a", 100, 10, true), set("a", 100, 10, false)))
	w1.DurationMinutes = intPtr(60)
	w2 := workout("w2", day(9), true, entry("a", set("a", 50, 10, true)))
	w2.DurationMinutes = intPtr(40)
	w3 := workout("w3", day(10), true)
	draft := workout("draft", day(11), false, entry("a", set("a", 500, 10, true)))

	st := ComputeStats([]models.Workout{draft, w3, w2, w1}, day(10), time.UTC)
	assert.Equal(t, 4, st.TotalWorkouts)
	assert.Equal(t, 3, st.CompletedWorkouts)
	assert.Equal(t, 2, st.TotalSets)
	assert.Equal(t, 1500.0, st.TotalVolume)
	assert.Equal(t, 50.0, st.AverageDurationMinutes)
	assert.InDelta(t, 3.0/(8.0/7), st.WorkoutsPerWeek, 0.0001)
	assert.Equal(t, 2, st.CurrentStreak)
	assert.Equal(t, 2, st.LongestStreak)
	require.NotNil(t, st.FirstWorkout)
	assert.Equal(t, day(2), *st.FirstWorkout)
	assert.Equal(t, day(10), *st.LastWorkout)
}

// TestComputeStats_SingleDay checks a log trained on one day counts as a
// one-day span.
func TestComputeStats_SingleDay(t *testing.T) {
	st := ComputeStats([]models.Workout{workout("w", day(2), true)}, day(2), time.UTC)
	assert.InDelta(t, 7.0, st.WorkoutsPerWeek, 0.0001)

	twice := ComputeStats([]models.Workout{workout("am", day(2).Add(-8*time.Hour), true), workout("pm", day(2), true)}, day(2), time.UTC)
	assert.InDelta(t, 14.0, twice.WorkoutsPerWeek, 0.0001)

	empty := ComputeStats(nil, day(2), time.UTC)
	assert.Zero(t, empty.WorkoutsPerWeek)
	assert.Nil(t, empty.FirstWorkout)
}

// TestCalendar checks grouping by local calendar day.
func TestCalendar(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	workouts := []models.Workout{
		workout("late", time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC), true),
		workout("a", time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), true),
		workout("b", time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), true),
		workout("draft", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), false),
		workout("outside", time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC), true),
	}
	days := Calendar(workouts, day(1), day(31), loc)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-03-02", days[0].Date)
	assert.Equal(t, 1, days[0].Count)
	assert.Equal(t, "2026-03-03", days[1].Date)
	assert.Equal(t, 2, days[1].Count)
	assert.Equal(t, "late", days[1].Workouts[0].ID)
}
