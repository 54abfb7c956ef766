package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/liftlog/internal/models"
)

// blockStart is a Monday.
var blockStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func fourWeekBlock() models.Mesocycle {
	return models.Mesocycle{
		ID:            "meso-1",
		Name:          "Block",
		StartDate:     blockStart,
		EndDate:       blockStart.AddDate(0, 0, 27),
		DurationWeeks: 4,
		CurrentWeek:   1,
		DeloadWeek:    4,
		TrainingSplit: models.SplitPushPullLegs,
		Status:        models.StatusActive,
		SplitDays: []models.MesocycleSplitDay{
			{ID: "legs", Name: "Legs", DayOrder: 2},
			{ID: "push", Name: "Push", DayOrder: 0},
			{ID: "pull", Name: "Pull", DayOrder: 1},
		},
	}
}

// TestCalculateWeek checks the week boundaries of a four week block.
func TestCalculateWeek(t *testing.T) {
	m := fourWeekBlock()
	tests := []struct {
		name string
		date time.Time
		week int
		ok   bool
	}{
		{"start day", blockStart, 1, true},
		{"end of first week", blockStart.AddDate(0, 0, 6).Add(23 * time.Hour), 1, true},
		{"first day of week two", blockStart.AddDate(0, 0, 7), 2, true},
		{"last week window", blockStart.AddDate(0, 0, 22), 4, true},
		{"end day", m.EndDate.Add(20 * time.Hour), 4, true},
		{"day before start", blockStart.AddDate(0, 0, -1), 0, false},
		{"day after end", m.EndDate.AddDate(0, 0, 1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week, ok := CalculateWeek(m, tt.date, time.UTC)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.week, week)
		})
	}
}

// TestCalculateWeek_EveryDay checks floor(days/7)+1 for every day of the
// block.
func TestCalculateWeek_EveryDay(t *testing.T) {
	m := fourWeekBlock()
	for offset := 0; offset < 28; offset++ {
		week, ok := CalculateWeek(m, blockStart.AddDate(0, 0, offset).Add(9*time.Hour), time.UTC)
		require.True(t, ok, "offset %d", offset)
		assert.Equal(t, offset/7+1, week, "offset %d", offset)
	}
}

// TestCalculateWeek_ClampsToDuration checks an end date past the planned
// duration never yields a week beyond it.
func TestCalculateWeek_ClampsToDuration(t *testing.T) {
	m := fourWeekBlock()
	m.EndDate = blockStart.AddDate(0, 0, 34)
	week, ok := CalculateWeek(m, blockStart.AddDate(0, 0, 30), time.UTC)
	require.True(t, ok)
	assert.Equal(t, 4, week)
}

// TestCalculateWeek_UsesLocalCalendarDay checks dates are compared as
// calendar days in the given location.
func TestCalculateWeek_UsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	m := fourWeekBlock()
	m.StartDate = time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	m.EndDate = m.StartDate.AddDate(0, 0, 27)

	// 23:30 UTC on the 1st is already the 2nd in loc.
	week, ok := CalculateWeek(m, time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC), loc)
	require.True(t, ok)
	assert.Equal(t, 1, week)

	_, ok = CalculateWeek(m, time.Date(2026, 3, 1, 21, 30, 0, 0, time.UTC), loc)
	assert.False(t, ok)
}

// TestWeekStart checks both week start conventions.
func TestWeekStart(t *testing.T) {
	sunday := time.Date(2026, 3, 8, 15, 0, 0, 0, time.UTC)
	wednesday := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), WeekStart(sunday, time.UTC, models.WeekStartsMonday))
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), WeekStart(sunday, time.UTC, models.WeekStartsSunday))
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), WeekStart(wednesday, time.UTC, models.WeekStartsMonday))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), WeekStart(wednesday, time.UTC, models.WeekStartsSunday))
}

func completedOn(day time.Time, splitDayID string) models.Workout {
	return models.Workout{Date: day, MesocycleID: "meso-1", SplitDayID: splitDayID, Completed: true}
}

// TestNextSplitDay checks the weekly rotation over ordered split days.
func TestNextSplitDay(t *testing.T) {
	m := fourWeekBlock()
	now := time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC) // Friday of week two
	thisWeek := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	lastWeek := time.Date(2026, 3, 5, 18, 0, 0, 0, time.UTC)

	draft := completedOn(thisWeek, "push")
	draft.Completed = false
	otherBlock := completedOn(thisWeek, "push")
	otherBlock.MesocycleID = "meso-2"

	tests := []struct {
		name     string
		workouts []models.Workout
		want     string
	}{
		{"nothing trained", nil, "push"},
		{"push done", []models.Workout{completedOn(thisWeek, "push")}, "pull"},
		{"push and pull done", []models.Workout{completedOn(thisWeek, "pull"), completedOn(thisWeek, "push")}, "legs"},
		{"every day done cycles to first", []models.Workout{
			completedOn(thisWeek, "push"), completedOn(thisWeek, "pull"), completedOn(thisWeek, "legs"),
		}, "push"},
		{"last week does not count", []models.Workout{completedOn(lastWeek, "push")}, "push"},
		{"drafts do not count", []models.Workout{draft}, "push"},
		{"other mesocycle does not count", []models.Workout{otherBlock}, "push"},
		{"out of order completion", []models.Workout{completedOn(thisWeek, "pull")}, "push"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextSplitDay(m, tt.workouts, now, time.UTC, models.WeekStartsMonday)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

// TestNextSplitDay_WeekStartPreference checks a Saturday completion counts
// for a Monday-start week but not for the Sunday-start week beginning the
// next day.
func TestNextSplitDay_WeekStartPreference(t *testing.T) {
	m := fourWeekBlock()
	saturday := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC) // Sunday
	workouts := []models.Workout{completedOn(saturday, "push")}

	assert.Equal(t, "pull", NextSplitDay(m, workouts, now, time.UTC, models.WeekStartsMonday).ID)
	assert.Equal(t, "push", NextSplitDay(m, workouts, now, time.UTC, models.WeekStartsSunday).ID)
}

// TestNextSplitDay_NoSplitDays checks an empty template yields nil.
func TestNextSplitDay_NoSplitDays(t *testing.T) {
	m := fourWeekBlock()
	m.SplitDays = nil
	assert.Nil(t, NextSplitDay(m, nil, blockStart, time.UTC, models.WeekStartsMonday))
}

// TestDeloadAndTargetReps checks set reduction and rep targets.
func TestDeloadAndTargetReps(t *testing.T) {
	for sets, want := range map[int]int{1: 1, 2: 1, 3: 1, 4: 2, 5: 3, 10: 6} {
		assert.Equal(t, want, deloadSets(sets), "sets %d", sets)
	}
	assert.Equal(t, 10, targetReps(8, 12))
	assert.Equal(t, 6, targetReps(5, 8))
	assert.Equal(t, 10, targetReps(0, 0))
	assert.Equal(t, 10, targetReps(0, 1))
}
