package models

// ExperienceLevel is the user's self-reported training experience.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

var experienceLevels = []string{"beginner", "intermediate", "advanced"}

func (l ExperienceLevel) Valid() bool { return contains(experienceLevels, string(l)) }

// Units selects how weights are displayed. Stored weights are unit-less.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

var unitValues = []string{"metric", "imperial"}

func (u Units) Valid() bool { return contains(unitValues, string(u)) }

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

var themes = []string{"light", "dark", "system"}

func (t Theme) Valid() bool { return contains(themes, string(t)) }

// FirstDayOfWeek decides where calendar weeks start.
type FirstDayOfWeek string

const (
	WeekStartsSunday FirstDayOfWeek = "sunday"
	WeekStartsMonday FirstDayOfWeek = "monday"
)

var firstDays = []string{"sunday", "monday"}

func (d FirstDayOfWeek) Valid() bool { return contains(firstDays, string(d)) }

// ExerciseCategory is the equipment family of an exercise.
type ExerciseCategory string

const (
	CategoryBarbell    ExerciseCategory = "barbell"
	CategoryDumbbell   ExerciseCategory = "dumbbell"
	CategoryMachine    ExerciseCategory = "machine"
	CategoryCable      ExerciseCategory = "cable"
	CategoryBodyweight ExerciseCategory = "bodyweight"
	CategoryKettlebell ExerciseCategory = "kettlebell"
	CategoryBand       ExerciseCategory = "band"
	CategoryOther      ExerciseCategory = "other"
)

var categories = []string{"barbell", "dumbbell", "machine", "cable", "bodyweight", "kettlebell", "band", "other"}

func (c ExerciseCategory) Valid() bool { return contains(categories, string(c)) }

// MuscleGroup is one of the recognized muscle groups an exercise can target.
type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "chest"
	MuscleBack       MuscleGroup = "back"
	MuscleLats       MuscleGroup = "lats"
	MuscleTraps      MuscleGroup = "traps"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleTriceps    MuscleGroup = "triceps"
	MuscleForearms   MuscleGroup = "forearms"
	MuscleAbs        MuscleGroup = "abs"
	MuscleObliques   MuscleGroup = "obliques"
	MuscleLowerBack  MuscleGroup = "lower_back"
	MuscleGlutes     MuscleGroup = "glutes"
	MuscleQuads      MuscleGroup = "quads"
	MuscleHamstrings MuscleGroup = "hamstrings"
	MuscleCalves     MuscleGroup = "calves"
)

var muscleGroups = []string{
	"chest", "back", "lats", "traps", "shoulders", "biceps", "triceps", "forearms",
	"abs", "obliques", "lower_back", "glutes", "quads", "hamstrings", "calves",
}

func (m MuscleGroup) Valid() bool { return contains(muscleGroups, string(m)) }

// AllMuscleGroups lists every recognized muscle group.
func AllMuscleGroups() []MuscleGroup {
	out := make([]MuscleGroup, len(muscleGroups))
	for i, m := range muscleGroups {
		out[i] = MuscleGroup(m)
	}
	return out
}

// PerformanceRating is the qualitative self-assessment of a session.
type PerformanceRating string

const (
	PerformancePoor      PerformanceRating = "poor"
	PerformanceAverage   PerformanceRating = "average"
	PerformanceGood      PerformanceRating = "good"
	PerformanceExcellent PerformanceRating = "excellent"
)

var performanceRatings = []string{"poor", "average", "good", "excellent"}

func (p PerformanceRating) Valid() bool { return contains(performanceRatings, string(p)) }

// TrainingSplit is the way a mesocycle distributes muscle groups over days.
type TrainingSplit string

const (
	SplitFullBody     TrainingSplit = "full_body"
	SplitUpperLower   TrainingSplit = "upper_lower"
	SplitPushPullLegs TrainingSplit = "push_pull_legs"
	SplitBro          TrainingSplit = "bro_split"
	SplitCustom       TrainingSplit = "custom"
)

var trainingSplits = []string{"full_body", "upper_lower", "push_pull_legs", "bro_split", "custom"}

func (s TrainingSplit) Valid() bool { return contains(trainingSplits, string(s)) }

// MesocycleStatus is the lifecycle state of a training block.
type MesocycleStatus string

const (
	StatusPlanned   MesocycleStatus = "planned"
	StatusActive    MesocycleStatus = "active"
	StatusCompleted MesocycleStatus = "completed"
	StatusAbandoned MesocycleStatus = "abandoned"
)

var statuses = []string{"planned", "active", "completed", "abandoned"}

func (s MesocycleStatus) Valid() bool { return contains(statuses, string(s)) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
