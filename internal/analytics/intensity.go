package analytics

import (
	"sort"

	"github.com/claude/liftlog/internal/models"
)

// RIRBand holds the count and share of sets in one reps-in-reserve range.
type RIRBand struct {
	Band     string  `json:"band"`
	RIRRange string  `json:"rirRange"`
	Sets     int     `json:"sets"`
	Pct      float64 `json:"pct"`
}

// ExerciseSummary aggregates the completed sets of one exercise.
type ExerciseSummary struct {
	ExerciseID string   `json:"exerciseId"`
	Name       string   `json:"name"`
	TotalSets  int      `json:"totalSets"`
	TotalReps  int      `json:"totalReps"`
	Tonnage    float64  `json:"tonnage"`
	MaxWeight  float64  `json:"maxWeight"`
	AvgRIR     *float64 `json:"avgRir,omitempty"`
}

// IntensityReport is the effort analysis of a set of workouts.
type IntensityReport struct {
	RIRDistribution []RIRBand         `json:"rirDistribution"`
	FailureRatePct  float64           `json:"failureRatePct"`
	TotalSets       int               `json:"totalSets"`
	TrackedSets     int               `json:"trackedSets"`
	Exercises       []ExerciseSummary `json:"exercises"`
}

var rirBands = []struct{ band, rng string }{
	{"failure", "0"},
	{"near_failure", "1"},
	{"moderate", "2"},
	{"easy", "3"},
	{"very_easy", ">3"},
	{"untracked", "untracked"},
}

func rirBandIndex(rir *int) int {
	switch {
	case rir == nil:
		return 5
	case *rir <= 0:
		return 0
	case *rir <= 3:
		return *rir
	default:
		return 4
	}
}

// TrainingIntensity reports the RIR distribution, the failure rate over
// sets with a recorded RIR, and a per-exercise summary ordered by tonnage.
// Only completed sets of completed workouts inside window count.
func TrainingIntensity(workouts []models.Workout, exercises map[string]models.Exercise, window Window) IntensityReport {
	counts := make([]int, len(rirBands))
	type acc struct {
		ExerciseSummary
		rirSum, rirN int
	}
	byExercise := make(map[string]*acc)

	for _, w := range completedAscending(workouts) {
		if !window.Contains(w.Date) {
			continue
		}
		for _, we := range w.Exercises {
			for _, s := range we.Sets {
				if !s.Completed {
					continue
				}
				counts[rirBandIndex(s.RIR)]++

				id := setExercise(we, s)
				a, ok := byExercise[id]
				if !ok {
					a = &acc{ExerciseSummary: ExerciseSummary{ExerciseID: id, Name: exercises[id].Name}}
					if a.Name == "" {
						a.Name = id
					}
					byExercise[id] = a
				}
				a.TotalSets++
				a.TotalReps += s.Reps()
				a.Tonnage += SetVolume(s)
				a.MaxWeight = max(a.MaxWeight, s.Weight)
				if s.RIR != nil {
					a.rirSum += *s.RIR
					a.rirN++
				}
			}
		}
	}

	var r IntensityReport
	failures := 0
	for i, n := range counts {
		r.TotalSets += n
		if rirBands[i].band != "untracked" {
			r.TrackedSets += n
		}
		if i <= 1 {
			failures += n
		}
	}
	r.RIRDistribution = []RIRBand{}
	for i, n := range counts {
		if n == 0 {
			continue
		}
		r.RIRDistribution = append(r.RIRDistribution, RIRBand{
			Band:     rirBands[i].band,
			RIRRange: rirBands[i].rng,
			Sets:     n,
			Pct:      float64(n) / float64(r.TotalSets) * 100,
		})
	}
	if r.TrackedSets > 0 {
		r.FailureRatePct = float64(failures) / float64(r.TrackedSets) * 100
	}

	r.Exercises = make([]ExerciseSummary, 0, len(byExercise))
	for _, a := range byExercise {
		if a.rirN > 0 {
			avg := float64(a.rirSum) / float64(a.rirN)
			a.AvgRIR = &avg
		}
		r.Exercises = append(r.Exercises, a.ExerciseSummary)
	}
	sort.Slice(r.Exercises, func(i, j int) bool {
		if r.Exercises[i].Tonnage != r.Exercises[j].Tonnage {
			return r.Exercises[i].Tonnage > r.Exercises[j].Tonnage
		}
		return r.Exercises[i].Name < r.Exercises[j].Name
	})
	return r
}
