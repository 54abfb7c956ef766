package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func validExercise() Exercise {
	return Exercise{
		Name:         "Bench Press",
		Category:     CategoryBarbell,
		MuscleGroups: []MuscleGroup{MuscleChest, MuscleTriceps},
	}
}

func validMesocycle() Mesocycle {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	return Mesocycle{
		Name:          "Hypertrophy A",
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 5*7-1),
		DurationWeeks: 5,
		CurrentWeek:   1,
		DeloadWeek:    5,
		TrainingSplit: SplitUpperLower,
		Status:        StatusPlanned,
		SplitDays: []MesocycleSplitDay{{
			ID:       "upper",
			Name:     "Upper",
			DayOrder: 1,
			Exercises: []MesocycleExercise{
				{ExerciseID: "bench", Order: 1, TargetSets: 3, RepsMin: 8, RepsMax: 12, RestSeconds: 120},
			},
		}},
	}
}

// TestExerciseValidate_CollectsAllViolations verifies that validation never
// stops at the first failed rule.
func TestExerciseValidate_CollectsAllViolations(t *testing.T) {
	e := Exercise{
		Name:         "   ",
		Category:     "spaceship",
		MuscleGroups: []MuscleGroup{"chest", "wings", "chest"},
		Notes:        strings.Repeat("n", 1001),
	}
	err := e.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "exercise", verr.Entity)
	assert.True(t, verr.Has("name", RuleRequired))
	assert.True(t, verr.Has("category", RuleEnum))
	assert.True(t, verr.Has("muscleGroups[1]", RuleEnum))
	assert.True(t, verr.Has("muscleGroups[2]", RuleUnique))
	assert.True(t, verr.Has("notes", RuleMaxLength))
	assert.Len(t, Violations(err), 5)
}

// TestExerciseValidate_EmptyMuscleGroups verifies the non-empty rule.
func TestExerciseValidate_EmptyMuscleGroups(t *testing.T) {
	e := validExercise()
	e.MuscleGroups = nil
	err := e.Validate()
	require.Error(t, err)
	assert.True(t, err.(*ValidationError).Has("muscleGroups", RuleNonEmpty))

	e = validExercise()
	assert.NoError(t, e.Validate())
}

// TestNameLengthCountsRunes verifies that limits count characters, not bytes.
func TestNameLengthCountsRunes(t *testing.T) {
	p := UserProfile{
		Name:            strings.Repeat("é", 100),
		ExperienceLevel: ExperienceBeginner,
		Preferences:     DefaultPreferences(),
	}
	assert.NoError(t, p.Validate())

	p.Name = strings.Repeat("é", 101)
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, err.(*ValidationError).Has("name", RuleMaxLength))
}

// TestNameLengthCountsEnteredCharacters verifies a name at the limit still
// passes once the store has escaped it.
func TestNameLengthCountsEnteredCharacters(t *testing.T) {
	e := validExercise()
	e.Name = "Row & Press " + strings.Repeat("x", 188)
	require.NoError(t, e.Validate())

	e.Sanitize()
	require.Contains(t, e.Name, "&amp;")
	assert.NoError(t, e.Validate())

	e.Name += "x"
	err := e.Validate()
	require.Error(t, err)
	assert.True(t, err.(*ValidationError).Has("name", RuleMaxLength))
}

// TestProfileValidate_Preferences verifies the preference enums and the
// rest timer bounds.
func TestProfileValidate_Preferences(t *testing.T) {
	p := UserProfile{Name: "Sam", ExperienceLevel: "expert", Preferences: Preferences{
		Units:          "stones",
		Theme:          ThemeDark,
		FirstDayOfWeek: "friday",
		RestTimer:      RestTimer{DefaultSeconds: 601},
	}}
	err := p.Validate()
	require.Error(t, err)
	verr := err.(*ValidationError)
	assert.True(t, verr.Has("experienceLevel", RuleEnum))
	assert.True(t, verr.Has("preferences.units", RuleEnum))
	assert.True(t, verr.Has("preferences.firstDayOfWeek", RuleEnum))
	assert.True(t, verr.Has("preferences.restTimer.defaultSeconds", RuleRange))
	assert.False(t, verr.Has("preferences.theme", ""))
}

// TestWorkoutValidate_SetRules verifies the per-set numeric ranges.
func TestWorkoutValidate_SetRules(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	w := Workout{
		Date: now.Add(-time.Hour),
		Exercises: []WorkoutExercise{{
			ExerciseID: "bench",
			Sets: []WorkoutSet{
				{SetNumber: 1, TargetReps: 0, Weight: -5},
				{SetNumber: 2, TargetReps: 10, ActualReps: intPtr(101), RIR: intPtr(11)},
				{SetNumber: 3, TargetReps: 100, ActualReps: intPtr(1), RIR: intPtr(0), Weight: 0},
			},
		}},
		DurationMinutes: intPtr(721),
	}
	err := w.Validate(now)
	require.Error(t, err)
	verr := err.(*ValidationError)
	assert.True(t, verr.Has("exercises[0].sets[0].targetReps", RuleRange))
	assert.True(t, verr.Has("exercises[0].sets[0].weight", RuleRange))
	assert.True(t, verr.Has("exercises[0].sets[1].actualReps", RuleRange))
	assert.True(t, verr.Has("exercises[0].sets[1].rir", RuleRange))
	assert.False(t, verr.Has("exercises[0].sets[2].targetReps", ""))
	assert.True(t, verr.Has("durationMinutes", RuleRange))
}

// TestWorkoutValidate_FutureTolerance verifies the clock-skew allowance on
// the workout date.
func TestWorkoutValidate_FutureTolerance(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		date    time.Time
		wantErr bool
	}{
		{"past", now.Add(-24 * time.Hour), false},
		{"now", now, false},
		{"within tolerance", now.Add(59 * time.Second), false},
		{"beyond tolerance", now.Add(2 * time.Minute), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := Workout{Date: tc.date}
			err := w.Validate(now)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, err.(*ValidationError).Has("date", RuleFuture))
				return
			}
			assert.NoError(t, err)
		})
	}
}

// TestWorkoutValidate_Feedback verifies the optional feedback ratings.
func TestWorkoutValidate_Feedback(t *testing.T) {
	now := time.Now()
	w := Workout{Date: now, Feedback: &WorkoutFeedback{Pump: 0, Soreness: 6, Fatigue: 3, Performance: "meh"}}
	err := w.Validate(now)
	require.Error(t, err)
	verr := err.(*ValidationError)
	assert.True(t, verr.Has("feedback.pump", RuleRange))
	assert.True(t, verr.Has("feedback.soreness", RuleRange))
	assert.True(t, verr.Has("feedback.performance", RuleEnum))
	assert.False(t, verr.Has("feedback.fatigue", ""))
}

// TestWorkoutNormalize verifies that sets inherit the entry exercise id and
// their position as set number.
func TestWorkoutNormalize(t *testing.T) {
	w := Workout{Exercises: []WorkoutExercise{{
		ExerciseID: "squat",
		Sets:       []WorkoutSet{{TargetReps: 5}, {TargetReps: 5, SetNumber: 7}},
	}}}
	w.Normalize()
	assert.Equal(t, "squat", w.Exercises[0].Sets[0].ExerciseID)
	assert.Equal(t, 1, w.Exercises[0].Sets[0].SetNumber)
	assert.Equal(t, 7, w.Exercises[0].Sets[1].SetNumber)
	assert.True(t, w.References("squat"))
	assert.False(t, w.References("bench"))
}

// TestSessionValidate verifies ratings and required references.
func TestSessionValidate(t *testing.T) {
	s := TrainingSession{Pump: 1, Soreness: 5, Fatigue: 9}
	err := s.Validate()
	require.Error(t, err)
	verr := err.(*ValidationError)
	assert.True(t, verr.Has("workoutId", RuleRequired))
	assert.True(t, verr.Has("exerciseId", RuleRequired))
	assert.True(t, verr.Has("date", RuleRequired))
	assert.True(t, verr.Has("fatigue", RuleRange))
	assert.True(t, verr.Has("performance", RuleEnum))
}

// TestMesocycleValidate verifies the structural and cross-field rules.
func TestMesocycleValidate(t *testing.T) {
	m := validMesocycle()
	require.NoError(t, m.Validate())

	m.DurationWeeks = 7
	m.CurrentWeek = 8
	m.DeloadWeek = 0
	m.EndDate = m.StartDate
	m.SplitDays[0].Exercises[0].TargetSets = 11
	m.SplitDays[0].Exercises[0].RepsMin = 12
	m.SplitDays[0].Exercises[0].RepsMax = 8
	m.SplitDays[0].Exercises[0].RestSeconds = 601

	err := m.Validate()
	require.Error(t, err)
	verr := err.(*ValidationError)
	assert.True(t, verr.Has("durationWeeks", RuleRange))
	assert.True(t, verr.Has("currentWeek", RuleRange))
	assert.True(t, verr.Has("deloadWeek", RuleRange))
	assert.True(t, verr.Has("endDate", RuleOrder))
	assert.True(t, verr.Has("splitDays[0].exercises[0].targetSets", RuleRange))
	assert.True(t, verr.Has("splitDays[0].exercises[0].repsMax", RuleOrder))
	assert.True(t, verr.Has("splitDays[0].exercises[0].restSeconds", RuleRange))
}

// TestMesocycleOrderedSplitDays verifies ordering by day order.
func TestMesocycleOrderedSplitDays(t *testing.T) {
	m := Mesocycle{SplitDays: []MesocycleSplitDay{
		{ID: "c", DayOrder: 3}, {ID: "a", DayOrder: 1}, {ID: "b", DayOrder: 2},
	}}
	ordered := m.OrderedSplitDays()
	assert.Equal(t, "a", ordered[0].ID)
	assert.Equal(t, "b", ordered[1].ID)
	assert.Equal(t, "c", ordered[2].ID)
	assert.Equal(t, "c", m.SplitDays[0].ID, "stored order must not change")

	d, ok := m.SplitDay("b")
	assert.True(t, ok)
	assert.Equal(t, 2, d.DayOrder)
	_, ok = m.SplitDay("zzz")
	assert.False(t, ok)
}

// TestSanitizeText verifies trimming and escaping of markup characters.
func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;bold&lt;/b&gt; &amp; &#34;quoted&#34;", SanitizeText("  <b>bold</b> & \"quoted\"\n"))
	assert.Equal(t, "", SanitizeText("   "))
}

// TestPatchSanitizeChangedOnly verifies that an update does not re-escape
// text the patch left alone.
func TestPatchSanitizeChangedOnly(t *testing.T) {
	e := validExercise()
	e.Notes = "a & b"
	e.Sanitize()
	require.Equal(t, "a &amp; b", e.Notes)

	name := " Incline <Bench> "
	p := ExercisePatch{Name: &name}
	p.Apply(&e)
	p.SanitizeChanged(&e)
	assert.Equal(t, "Incline &lt;Bench&gt;", e.Name)
	assert.Equal(t, "a &amp; b", e.Notes)
}
