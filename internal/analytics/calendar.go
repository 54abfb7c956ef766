package analytics

import (
	"time"

	"github.com/claude/liftlog/internal/models"
)

// CalendarDay groups the completed workouts of one calendar day.
type CalendarDay struct {
	Date     string           `json:"date"`
	Count    int              `json:"count"`
	Workouts []models.Workout `json:"workouts"`
}

// Calendar buckets completed workouts dated in [start, end) by their
// calendar day in loc, oldest day first. Days without workouts are omitted.
func Calendar(workouts []models.Workout, start, end time.Time, loc *time.Location) []CalendarDay {
	if loc == nil {
		loc = time.Local
	}
	window := Window{Start: start, End: end}
	var days []CalendarDay
	index := make(map[string]int)
	for _, w := range completedAscending(workouts) {
		if !window.Contains(w.Date) {
			continue
		}
		key := w.Date.In(loc).Format(time.DateOnly)
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, CalendarDay{Date: key})
		}
		days[i].Count++
		days[i].Workouts = append(days[i].Workouts, w)
	}
	return days
}
