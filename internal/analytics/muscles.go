package analytics

import (
	"sort"

	"github.com/claude/liftlog/internal/models"
)

// MuscleGroupVolume is the training volume credited to one muscle group.
type MuscleGroupVolume struct {
	Group  models.MuscleGroup `json:"group"`
	Volume float64            `json:"volume"`
	Sets   int                `json:"sets"`
}

// MuscleGroupReport is the per-group breakdown of a set of workouts.
type MuscleGroupReport struct {
	Groups []MuscleGroupVolume `json:"groups"`
	// UnknownExercises lists referenced exercise ids missing from the
	// library; their volume is not credited.
	UnknownExercises []string `json:"unknownExercises,omitempty"`
}

// MuscleGroupVolumes credits each workout entry's full volume to every
// muscle group its exercise is tagged with. Volume is not split between
// groups, so the sum over groups can exceed the total lifted.
func MuscleGroupVolumes(workouts []models.Workout, exercises map[string]models.Exercise, window Window) MuscleGroupReport {
	byGroup := make(map[models.MuscleGroup]*MuscleGroupVolume)
	unknown := make(map[string]bool)
	var report MuscleGroupReport

	for _, w := range workouts {
		if !window.Contains(w.Date) {
			continue
		}
		for _, we := range w.Exercises {
			ex, ok := exercises[we.ExerciseID]
			if !ok {
				if !unknown[we.ExerciseID] {
					unknown[we.ExerciseID] = true
					report.UnknownExercises = append(report.UnknownExercises, we.ExerciseID)
				}
				continue
			}
			volume := ExerciseVolume(we)
			sets := 0
			for _, s := range we.Sets {
				if s.Completed {
					sets++
				}
			}
			for _, g := range ex.MuscleGroups {
				mv, ok := byGroup[g]
				if !ok {
					mv = &MuscleGroupVolume{Group: g}
					byGroup[g] = mv
				}
				mv.Volume += volume
				mv.Sets += sets
			}
		}
	}

	report.Groups = make([]MuscleGroupVolume, 0, len(byGroup))
	for _, mv := range byGroup {
		report.Groups = append(report.Groups, *mv)
	}
	sort.Slice(report.Groups, func(i, j int) bool {
		if report.Groups[i].Volume != report.Groups[j].Volume {
			return report.Groups[i].Volume > report.Groups[j].Volume
		}
		return report.Groups[i].Group < report.Groups[j].Group
	})
	return report
}
