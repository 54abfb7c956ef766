package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Period buckets for VolumeByPeriod.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// PeriodSummary aggregates the completed sets of one period.
type PeriodSummary struct {
	Period            string  `json:"period"`
	WorkingSets       int     `json:"workingSets"`
	TotalReps         int     `json:"totalReps"`
	Tonnage           float64 `json:"tonnage"`
	Sessions          int     `json:"sessions"`
	AvgSetsPerSession float64 `json:"avgSetsPerSession"`
}

// periodStart returns the first day of t's bucket in loc.
func periodStart(t time.Time, bucket string, loc *time.Location, first models.FirstDayOfWeek) time.Time {
	day := dayOf(t, loc)
	if bucket == PeriodMonth {
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc)
	}
	start := time.Monday
	if first == models.WeekStartsSunday {
		start = time.Sunday
	}
	offset := (int(day.Weekday()) - int(start) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// VolumeByPeriod groups completed workouts into week or month buckets,
// newest first. A bucket is labelled with its first day. Workouts without
// a completed set are not counted as sessions.
func VolumeByPeriod(workouts []models.Workout, bucket string, window Window, loc *time.Location, first models.FirstDayOfWeek) ([]PeriodSummary, error) {
	if bucket != PeriodWeek && bucket != PeriodMonth {
		return nil, fmt.Errorf("unknown period %q: want %s or %s", bucket, PeriodWeek, PeriodMonth)
	}
	if loc == nil {
		loc = time.Local
	}
	byPeriod := make(map[time.Time]*PeriodSummary)
	for _, w := range completedAscending(workouts) {
		if !window.Contains(w.Date) {
			continue
		}
		key := periodStart(w.Date, bucket, loc, first)
		sets, reps, tonnage := 0, 0, 0.0
		for _, we := range w.Exercises {
			for _, s := range we.Sets {
				if !s.Completed {
					continue
				}
				sets++
				reps += s.Reps()
				tonnage += SetVolume(s)
			}
		}
		if sets == 0 {
			continue
		}
		p, ok := byPeriod[key]
		if !ok {
			p = &PeriodSummary{Period: key.Format(time.DateOnly)}
			byPeriod[key] = p
		}
		p.WorkingSets += sets
		p.TotalReps += reps
		p.Tonnage += tonnage
		p.Sessions++
	}

	keys := make([]time.Time, 0, len(byPeriod))
	for k := range byPeriod {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].After(keys[j]) })
	out := make([]PeriodSummary, 0, len(keys))
	for _, k := range keys {
		p := byPeriod[k]
		p.AvgSetsPerSession = float64(p.WorkingSets) / float64(p.Sessions)
		out = append(out, *p)
	}
	return out, nil
}
