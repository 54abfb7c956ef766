package progression

import (
	"time"

	"github.com/claude/liftlog/internal/models"
)

// localMidnight returns the start of t's calendar day in loc.
func localMidnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// daysBetween counts calendar days from a to b. Both must be midnights in
// the same location; the count is DST safe.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// CalculateWeek returns the 1-based mesocycle week date falls in. Dates are
// compared as calendar days in loc. ok is false outside [start, end].
func CalculateWeek(m models.Mesocycle, date time.Time, loc *time.Location) (week int, ok bool) {
	if loc == nil {
		loc = time.Local
	}
	start := localMidnight(m.StartDate, loc)
	end := localMidnight(m.EndDate, loc)
	day := localMidnight(date, loc)
	if day.Before(start) || day.After(end) {
		return 0, false
	}
	week = daysBetween(start, day)/7 + 1
	if m.DurationWeeks > 0 && week > m.DurationWeeks {
		week = m.DurationWeeks
	}
	return week, true
}

// WeekStart returns the first day of the calendar week containing t.
func WeekStart(t time.Time, loc *time.Location, first models.FirstDayOfWeek) time.Time {
	if loc == nil {
		loc = time.Local
	}
	day := localMidnight(t, loc)
	firstWeekday := time.Monday
	if first == models.WeekStartsSunday {
		firstWeekday = time.Sunday
	}
	offset := (int(day.Weekday()) - int(firstWeekday) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// NextSplitDay picks the split day to train next: the first one, by day
// order, without a completed workout in the current calendar week. When
// every day has been trained this week the rotation starts over. It
// returns nil when the mesocycle has no split days.
func NextSplitDay(m models.Mesocycle, workouts []models.Workout, now time.Time, loc *time.Location, first models.FirstDayOfWeek) *models.MesocycleSplitDay {
	days := m.OrderedSplitDays()
	if len(days) == 0 {
		return nil
	}
	weekStart := WeekStart(now, loc, first)
	weekEnd := weekStart.AddDate(0, 0, 7)

	done := make(map[string]bool)
	for _, w := range workouts {
		if !w.Completed || w.SplitDayID == "" {
			continue
		}
		if w.MesocycleID != "" && w.MesocycleID != m.ID {
			continue
		}
		if w.Date.Before(weekStart) || !w.Date.Before(weekEnd) {
			continue
		}
		done[w.SplitDayID] = true
	}
	for i := range days {
		if !done[days[i].ID] {
			return &days[i]
		}
	}
	return &days[0]
}

// deloadSets scales a set count for a deload week.
func deloadSets(sets int) int {
	return max(1, sets*6/10)
}

// targetReps is the midpoint of a rep range, or the default when the range
// is unset.
func targetReps(repsMin, repsMax int) int {
	if r := (repsMin + repsMax) / 2; r > 0 {
		return r
	}
	return defaultTargetReps
}
