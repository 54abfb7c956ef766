package analytics

import (
	"time"

	"github.com/claude/liftlog/internal/models"
)

// RepBucket is a rep range personal records are tracked in.
type RepBucket struct {
	Label string
	Min   int
	Max   int
}

// RepBuckets lists the tracked rep ranges from heaviest to lightest.
var RepBuckets = []RepBucket{
	{"1RM", 1, 1},
	{"3RM", 2, 3},
	{"5RM", 4, 6},
	{"8RM", 7, 9},
	{"10RM", 10, 12},
	{"15RM", 13, 15},
	{"20RM", 16, 30},
}

func bucketFor(reps int) int {
	for i, b := range RepBuckets {
		if reps >= b.Min && reps <= b.Max {
			return i
		}
	}
	return -1
}

// PersonalRecord is the heaviest set logged within one rep bucket.
type PersonalRecord struct {
	Bucket         string    `json:"bucket"`
	Weight         float64   `json:"weight"`
	Reps           int       `json:"reps"`
	EstimatedOneRM float64   `json:"estimatedOneRm"`
	Date           time.Time `json:"date"`
	WorkoutID      string    `json:"workoutId"`
}

// PersonalRecords returns, per rep bucket, the heaviest completed set of
// exerciseID across completed workouts. Workouts are scanned oldest first
// so the earliest set wins a tie. Empty buckets are omitted.
func PersonalRecords(workouts []models.Workout, exerciseID string) []PersonalRecord {
	best := make([]*PersonalRecord, len(RepBuckets))
	for _, w := range completedAscending(workouts) {
		exerciseSets(w, exerciseID, func(s models.WorkoutSet) {
			reps := s.Reps()
			i := bucketFor(reps)
			if i < 0 {
				return
			}
			if best[i] != nil && s.Weight <= best[i].Weight {
				return
			}
			best[i] = &PersonalRecord{
				Bucket:         RepBuckets[i].Label,
				Weight:         s.Weight,
				Reps:           reps,
				EstimatedOneRM: Epley(s.Weight, reps),
				Date:           w.Date,
				WorkoutID:      w.ID,
			}
		})
	}
	out := make([]PersonalRecord, 0, len(best))
	for _, r := range best {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// TrendPoint is one workout's best set of an exercise.
type TrendPoint struct {
	Date           time.Time `json:"date"`
	WorkoutID      string    `json:"workoutId"`
	Weight         float64   `json:"weight"`
	Reps           int       `json:"reps"`
	Volume         float64   `json:"volume"`
	EstimatedOneRM float64   `json:"estimatedOneRm"`
}

// ProgressTrend returns, for each completed workout that contains
// exerciseID, the completed set with the greatest volume, oldest first.
func ProgressTrend(workouts []models.Workout, exerciseID string) []TrendPoint {
	var points []TrendPoint
	for _, w := range completedAscending(workouts) {
		var (
			best  models.WorkoutSet
			found bool
		)
		exerciseSets(w, exerciseID, func(s models.WorkoutSet) {
			if !found || SetVolume(s) > SetVolume(best) {
				best, found = s, true
			}
		})
		if !found {
			continue
		}
		points = append(points, TrendPoint{
			Date:           w.Date,
			WorkoutID:      w.ID,
			Weight:         best.Weight,
			Reps:           best.Reps(),
			Volume:         SetVolume(best),
			EstimatedOneRM: Epley(best.Weight, best.Reps()),
		})
	}
	return points
}
