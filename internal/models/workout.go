package models

import (
	"fmt"
	"time"
)

const (
	MinReps            = 1
	MaxReps            = 100
	MaxRIR             = 10
	MaxDurationMinutes = 720
	MinRating          = 1
	MaxRating          = 5

	// FutureTolerance absorbs clock skew for "log now" actions.
	FutureTolerance = time.Minute
)

// WorkoutSet is one logged set.
type WorkoutSet struct {
	ID         string  `json:"id"`
	ExerciseID string  `json:"exerciseId"`
	SetNumber  int     `json:"setNumber"`
	TargetReps int     `json:"targetReps"`
	ActualReps *int    `json:"actualReps,omitempty"`
	Weight     float64 `json:"weight"`
	RIR        *int    `json:"rir,omitempty"`
	Completed  bool    `json:"completed"`
}

// Reps returns the performed reps, falling back to the target.
func (s WorkoutSet) Reps() int {
	if s.ActualReps != nil {
		return *s.ActualReps
	}
	return s.TargetReps
}

// WorkoutExercise is one exercise performed within a workout.
type WorkoutExercise struct {
	ExerciseID string       `json:"exerciseId"`
	Sets       []WorkoutSet `json:"sets"`
	Notes      string       `json:"notes,omitempty"`
}

// WorkoutFeedback is the optional post-workout self assessment.
type WorkoutFeedback struct {
	Pump        int               `json:"pump"`
	Soreness    int               `json:"soreness"`
	Fatigue     int               `json:"fatigue"`
	Performance PerformanceRating `json:"performance,omitempty"`
	Notes       string            `json:"notes,omitempty"`
}

// Workout is a single training session as logged.
type Workout struct {
	ID              string            `json:"id"`
	Date            time.Time         `json:"date"`
	MesocycleID     string            `json:"mesocycleId,omitempty"`
	WeekNumber      int               `json:"weekNumber,omitempty"`
	SplitDayID      string            `json:"splitDayId,omitempty"`
	Exercises       []WorkoutExercise `json:"exercises"`
	Notes           string            `json:"notes,omitempty"`
	Completed       bool              `json:"completed"`
	DurationMinutes *int              `json:"durationMinutes,omitempty"`
	Feedback        *WorkoutFeedback  `json:"feedback,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// References reports whether any entry of the workout uses exerciseID.
func (w *Workout) References(exerciseID string) bool {
	for _, we := range w.Exercises {
		if we.ExerciseID == exerciseID {
			return true
		}
		for _, s := range we.Sets {
			if s.ExerciseID == exerciseID {
				return true
			}
		}
	}
	return false
}

// Normalize fills set exercise ids and set numbers left empty by callers.
func (w *Workout) Normalize() {
	for i := range w.Exercises {
		we := &w.Exercises[i]
		for j := range we.Sets {
			if we.Sets[j].ExerciseID == "" {
				we.Sets[j].ExerciseID = we.ExerciseID
			}
			if we.Sets[j].SetNumber == 0 {
				we.Sets[j].SetNumber = j + 1
			}
		}
	}
}

// Validate checks every workout rule against the current time.
func (w *Workout) Validate(now time.Time) error {
	v := newValidator("workout")
	if w.Date.IsZero() {
		v.add("date", RuleRequired, "is required")
	} else if w.Date.After(now.Add(FutureTolerance)) {
		v.add("date", RuleFuture, "must not be in the future")
	}
	if w.MesocycleID != "" && w.WeekNumber < 0 {
		v.add("weekNumber", RuleRange, "must not be negative")
	}
	for i, we := range w.Exercises {
		prefix := fmt.Sprintf("exercises[%d]", i)
		if we.ExerciseID == "" {
			v.add(prefix+".exerciseId", RuleRequired, "is required")
		}
		v.maxLen(prefix+".notes", we.Notes, maxNotesLen)
		for j, s := range we.Sets {
			validateSet(v, fmt.Sprintf("%s.sets[%d]", prefix, j), s)
		}
	}
	v.maxLen("notes", w.Notes, maxNotesLen)
	if w.DurationMinutes != nil {
		v.intRange("durationMinutes", *w.DurationMinutes, 0, MaxDurationMinutes)
	}
	if w.Feedback != nil {
		validateRatings(v, "feedback.", w.Feedback.Pump, w.Feedback.Soreness, w.Feedback.Fatigue)
		if w.Feedback.Performance != "" {
			v.enum("feedback.performance", w.Feedback.Performance.Valid(), string(w.Feedback.Performance), performanceRatings)
		}
		v.maxLen("feedback.notes", w.Feedback.Notes, maxNotesLen)
	}
	return v.err()
}

func validateSet(v *validator, prefix string, s WorkoutSet) {
	if s.SetNumber < 1 {
		v.add(prefix+".setNumber", RuleRange, "must be at least 1")
	}
	v.intRange(prefix+".targetReps", s.TargetReps, MinReps, MaxReps)
	if s.ActualReps != nil {
		v.intRange(prefix+".actualReps", *s.ActualReps, MinReps, MaxReps)
	}
	if s.Weight < 0 {
		v.add(prefix+".weight", RuleRange, "must not be negative")
	}
	if s.RIR != nil {
		v.intRange(prefix+".rir", *s.RIR, 0, MaxRIR)
	}
}

func validateRatings(v *validator, prefix string, pump, soreness, fatigue int) {
	v.intRange(prefix+"pump", pump, MinRating, MaxRating)
	v.intRange(prefix+"soreness", soreness, MinRating, MaxRating)
	v.intRange(prefix+"fatigue", fatigue, MinRating, MaxRating)
}

// Sanitize cleans every free-text field.
func (w *Workout) Sanitize() {
	w.Notes = SanitizeText(w.Notes)
	sanitizeEntries(w.Exercises)
	if w.Feedback != nil {
		w.Feedback.Notes = SanitizeText(w.Feedback.Notes)
	}
}

func sanitizeEntries(entries []WorkoutExercise) {
	for i := range entries {
		entries[i].Notes = SanitizeText(entries[i].Notes)
	}
}

// WorkoutPatch is a partial workout update. Nil fields are left unchanged.
type WorkoutPatch struct {
	Date            *time.Time         `json:"date,omitempty"`
	MesocycleID     *string            `json:"mesocycleId,omitempty"`
	WeekNumber      *int               `json:"weekNumber,omitempty"`
	SplitDayID      *string            `json:"splitDayId,omitempty"`
	Exercises       *[]WorkoutExercise `json:"exercises,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
	Completed       *bool              `json:"completed,omitempty"`
	DurationMinutes *int               `json:"durationMinutes,omitempty"`
	Feedback        *WorkoutFeedback   `json:"feedback,omitempty"`
}

// Apply merges the patch onto w.
func (p WorkoutPatch) Apply(w *Workout) {
	if p.Date != nil {
		w.Date = *p.Date
	}
	if p.MesocycleID != nil {
		w.MesocycleID = *p.MesocycleID
	}
	if p.WeekNumber != nil {
		w.WeekNumber = *p.WeekNumber
	}
	if p.SplitDayID != nil {
		w.SplitDayID = *p.SplitDayID
	}
	if p.Exercises != nil {
		w.Exercises = append([]WorkoutExercise(nil), (*p.Exercises)...)
	}
	if p.Notes != nil {
		w.Notes = *p.Notes
	}
	if p.Completed != nil {
		w.Completed = *p.Completed
	}
	if p.DurationMinutes != nil {
		d := *p.DurationMinutes
		w.DurationMinutes = &d
	}
	if p.Feedback != nil {
		fb := *p.Feedback
		w.Feedback = &fb
	}
}

// SanitizeChanged re-sanitizes only the text fields the patch set.
func (p WorkoutPatch) SanitizeChanged(w *Workout) {
	if p.Notes != nil {
		w.Notes = SanitizeText(w.Notes)
	}
	if p.Exercises != nil {
		sanitizeEntries(w.Exercises)
	}
	if p.Feedback != nil && w.Feedback != nil {
		w.Feedback.Notes = SanitizeText(w.Feedback.Notes)
	}
}
