package analytics

import (
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// SetVolume is reps × weight, using actual reps when recorded.
func SetVolume(s models.WorkoutSet) float64 {
	return float64(s.Reps()) * s.Weight
}

// ExerciseVolume sums the volume of the completed sets of one entry.
func ExerciseVolume(we models.WorkoutExercise) float64 {
	var v float64
	for _, s := range we.Sets {
		if s.Completed {
			v += SetVolume(s)
		}
	}
	return v
}

// WorkoutVolume sums ExerciseVolume over every entry of w.
func WorkoutVolume(w models.Workout) float64 {
	var v float64
	for _, we := range w.Exercises {
		v += ExerciseVolume(we)
	}
	return v
}

// Window is a half-open time range. A zero bound is unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

// setExercise returns the exercise a set was performed with.
func setExercise(we models.WorkoutExercise, s models.WorkoutSet) string {
	if s.ExerciseID != "" {
		return s.ExerciseID
	}
	return we.ExerciseID
}

// completedAscending returns the completed workouts sorted by date. Equal
// dates keep their input order.
func completedAscending(workouts []models.Workout) []models.Workout {
	out := make([]models.Workout, 0, len(workouts))
	for _, w := range workouts {
		if w.Completed {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// exerciseSets calls fn for every completed set of exerciseID in w.
func exerciseSets(w models.Workout, exerciseID string, fn func(models.WorkoutSet)) {
	for _, we := range w.Exercises {
		for _, s := range we.Sets {
			if s.Completed && setExercise(we, s) == exerciseID {
				fn(s)
			}
		}
	}
}
