package models

import "time"

// TrainingSession is per-exercise feedback recorded for a workout. It is
// owned by its workout and removed with it.
type TrainingSession struct {
	ID          string            `json:"id"`
	WorkoutID   string            `json:"workoutId"`
	ExerciseID  string            `json:"exerciseId"`
	Date        time.Time         `json:"date"`
	Pump        int               `json:"pump"`
	Soreness    int               `json:"soreness"`
	Fatigue     int               `json:"fatigue"`
	Performance PerformanceRating `json:"performance"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Validate checks every session rule and reports all violations.
func (s *TrainingSession) Validate() error {
	v := newValidator("training session")
	if s.WorkoutID == "" {
		v.add("workoutId", RuleRequired, "is required")
	}
	if s.ExerciseID == "" {
		v.add("exerciseId", RuleRequired, "is required")
	}
	if s.Date.IsZero() {
		v.add("date", RuleRequired, "is required")
	}
	validateRatings(v, "", s.Pump, s.Soreness, s.Fatigue)
	v.enum("performance", s.Performance.Valid(), string(s.Performance), performanceRatings)
	v.maxLen("notes", s.Notes, maxNotesLen)
	return v.err()
}

// Sanitize cleans every free-text field.
func (s *TrainingSession) Sanitize() {
	s.Notes = SanitizeText(s.Notes)
}

// SessionPatch is a partial session update. Nil fields are left unchanged.
type SessionPatch struct {
	Pump        *int               `json:"pump,omitempty"`
	Soreness    *int               `json:"soreness,omitempty"`
	Fatigue     *int               `json:"fatigue,omitempty"`
	Performance *PerformanceRating `json:"performance,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
}

// Apply merges the patch onto s.
func (p SessionPatch) Apply(s *TrainingSession) {
	if p.Pump != nil {
		s.Pump = *p.Pump
	}
	if p.Soreness != nil {
		s.Soreness = *p.Soreness
	}
	if p.Fatigue != nil {
		s.Fatigue = *p.Fatigue
	}
	if p.Performance != nil {
		s.Performance = *p.Performance
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
}

// SanitizeChanged re-sanitizes only the text fields the patch set.
func (p SessionPatch) SanitizeChanged(s *TrainingSession) {
	if p.Notes != nil {
		s.Notes = SanitizeText(s.Notes)
	}
}
