package alpha

import (
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// categoryFor maps the export's equipment label to a library category.
func categoryFor(equipment string) models.ExerciseCategory {
	e := strings.ToLower(equipment)
	switch {
	case strings.Contains(e, "barbell"), strings.Contains(e, "ez bar"), strings.Contains(e, "trap bar"):
		return models.CategoryBarbell
	case strings.Contains(e, "dumbbell"):
		return models.CategoryDumbbell
	case strings.Contains(e, "machine"), strings.Contains(e, "smith"):
		return models.CategoryMachine
	case strings.Contains(e, "cable"):
		return models.CategoryCable
	case strings.Contains(e, "bodyweight"):
		return models.CategoryBodyweight
	case strings.Contains(e, "kettlebell"):
		return models.CategoryKettlebell
	case strings.Contains(e, "band"):
		return models.CategoryBand
	default:
		return models.CategoryOther
	}
}

// muscleKeywords is checked in order; the first matching entry wins.
var muscleKeywords = []struct {
	keyword string
	groups  []models.MuscleGroup
}{
	{"calf", []models.MuscleGroup{models.MuscleCalves}},
	{"hyperextension", []models.MuscleGroup{models.MuscleLowerBack, models.MuscleGlutes}},
	{"romanian", []models.MuscleGroup{models.MuscleHamstrings, models.MuscleGlutes}},
	{"deadlift", []models.MuscleGroup{models.MuscleHamstrings, models.MuscleLowerBack, models.MuscleGlutes}},
	{"leg curl", []models.MuscleGroup{models.MuscleHamstrings}},
	{"hip thrust", []models.MuscleGroup{models.MuscleGlutes}},
	{"glute", []models.MuscleGroup{models.MuscleGlutes}},
	{"squat", []models.MuscleGroup{models.MuscleQuads, models.MuscleGlutes}},
	{"lunge", []models.MuscleGroup{models.MuscleQuads, models.MuscleGlutes}},
	{"leg press", []models.MuscleGroup{models.MuscleQuads, models.MuscleGlutes}},
	{"leg extension", []models.MuscleGroup{models.MuscleQuads}},
	{"leg raise", []models.MuscleGroup{models.MuscleAbs}},
	{"crunch", []models.MuscleGroup{models.MuscleAbs}},
	{"plank", []models.MuscleGroup{models.MuscleAbs}},
	{"twist", []models.MuscleGroup{models.MuscleObliques}},
	{"shrug", []models.MuscleGroup{models.MuscleTraps}},
	{"lateral raise", []models.MuscleGroup{models.MuscleShoulders}},
	{"face pull", []models.MuscleGroup{models.MuscleShoulders, models.MuscleTraps}},
	{"overhead press", []models.MuscleGroup{models.MuscleShoulders, models.MuscleTriceps}},
	{"shoulder press", []models.MuscleGroup{models.MuscleShoulders, models.MuscleTriceps}},
	{"bench", []models.MuscleGroup{models.MuscleChest, models.MuscleTriceps}},
	{"chest", []models.MuscleGroup{models.MuscleChest}},
	{"fly", []models.MuscleGroup{models.MuscleChest}},
	{"dip", []models.MuscleGroup{models.MuscleChest, models.MuscleTriceps}},
	{"push-up", []models.MuscleGroup{models.MuscleChest, models.MuscleTriceps}},
	{"pulldown", []models.MuscleGroup{models.MuscleLats, models.MuscleBiceps}},
	{"pull-up", []models.MuscleGroup{models.MuscleLats, models.MuscleBiceps}},
	{"chin-up", []models.MuscleGroup{models.MuscleLats, models.MuscleBiceps}},
	{"row", []models.MuscleGroup{models.MuscleBack, models.MuscleLats}},
	{"pushdown", []models.MuscleGroup{models.MuscleTriceps}},
	{"tricep", []models.MuscleGroup{models.MuscleTriceps}},
	{"skull", []models.MuscleGroup{models.MuscleTriceps}},
	{"curl", []models.MuscleGroup{models.MuscleBiceps}},
	{"wrist", []models.MuscleGroup{models.MuscleForearms}},
}

// guessMuscleGroups tags an exercise created on import. Names with no known
// keyword are tagged back.
func guessMuscleGroups(name string) []models.MuscleGroup {
	n := strings.ToLower(name)
	for _, k := range muscleKeywords {
		if strings.Contains(n, k.keyword) {
			return append([]models.MuscleGroup(nil), k.groups...)
		}
	}
	return []models.MuscleGroup{models.MuscleBack}
}
