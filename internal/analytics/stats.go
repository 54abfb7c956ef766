package analytics

import (
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// singleDaySpanWeeks is one day in weeks. The workouts-per-week span never
// drops below it, so a log trained on a single day counts as one day.
const singleDaySpanWeeks = 1.0 / 7

// Stats summarizes a training log.
type Stats struct {
	TotalWorkouts          int        `json:"totalWorkouts"`
	CompletedWorkouts      int        `json:"completedWorkouts"`
	TotalSets              int        `json:"totalSets"`
	TotalVolume            float64    `json:"totalVolume"`
	AverageDurationMinutes float64    `json:"averageDurationMinutes"`
	WorkoutsPerWeek        float64    `json:"workoutsPerWeek"`
	CurrentStreak          int        `json:"currentStreak"`
	LongestStreak          int        `json:"longestStreak"`
	FirstWorkout           *time.Time `json:"firstWorkout,omitempty"`
	LastWorkout            *time.Time `json:"lastWorkout,omitempty"`
}

// ComputeStats summarizes workouts as of now. Calendar days are taken in
// loc.
func ComputeStats(workouts []models.Workout, now time.Time, loc *time.Location) Stats {
	if loc == nil {
		loc = time.Local
	}
	st := Stats{TotalWorkouts: len(workouts)}
	completed := completedAscending(workouts)
	st.CompletedWorkouts = len(completed)
	if len(completed) == 0 {
		return st
	}

	var (
		minutes, timed int
		dates          = make([]time.Time, 0, len(completed))
	)
	for _, w := range completed {
		for _, we := range w.Exercises {
			for _, s := range we.Sets {
				if s.Completed {
					st.TotalSets++
				}
			}
		}
		st.TotalVolume += WorkoutVolume(w)
		if w.DurationMinutes != nil {
			minutes += *w.DurationMinutes
			timed++
		}
		dates = append(dates, w.Date)
	}
	if timed > 0 {
		st.AverageDurationMinutes = float64(minutes) / float64(timed)
	}

	first, last := completed[0].Date, completed[len(completed)-1].Date
	st.FirstWorkout, st.LastWorkout = &first, &last
	span := float64(calendarDays(first, last, loc)) / 7
	st.WorkoutsPerWeek = float64(len(completed)) / max(span, singleDaySpanWeeks)
	st.CurrentStreak, st.LongestStreak = Streaks(dates, now, loc)
	return st
}

// Streaks computes consecutive-day training streaks. Several workouts on
// one day count once. The current streak is the final run when the last
// workout was today or yesterday, and 0 otherwise.
func Streaks(dates []time.Time, today time.Time, loc *time.Location) (current, longest int) {
	if len(dates) == 0 {
		return 0, 0
	}
	if loc == nil {
		loc = time.Local
	}
	days := make([]time.Time, len(dates))
	for i, d := range dates {
		days[i] = dayOf(d, loc)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		switch gap := calendarDays(days[i-1], days[i], loc); {
		case gap == 0:
		case gap == 1:
			run++
		default:
			longest = max(longest, run)
			run = 1
		}
	}
	longest = max(longest, run)

	if since := calendarDays(days[len(days)-1], dayOf(today, loc), loc); since == 0 || since == 1 {
		current = run
	}
	return current, longest
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// calendarDays counts calendar days from a to b in loc.
func calendarDays(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
