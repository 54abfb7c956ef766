package models

import (
	"fmt"
	"time"
)

const (
	maxExerciseNameLen = 200
	maxNotesLen        = 1000
	maxEquipmentLen    = 100
)

// Exercise is an entry in the exercise library.
type Exercise struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Category     ExerciseCategory `json:"category"`
	MuscleGroups []MuscleGroup    `json:"muscleGroups"`
	Equipment    string           `json:"equipment,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	IsCustom     bool             `json:"isCustom"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Targets reports whether the exercise is tagged with group.
func (e *Exercise) Targets(group MuscleGroup) bool {
	for _, g := range e.MuscleGroups {
		if g == group {
			return true
		}
	}
	return false
}

// Validate checks every exercise rule and reports all violations.
func (e *Exercise) Validate() error {
	v := newValidator("exercise")
	v.name("name", e.Name, maxExerciseNameLen)
	v.enum("category", e.Category.Valid(), string(e.Category), categories)
	if len(e.MuscleGroups) == 0 {
		v.add("muscleGroups", RuleNonEmpty, "must list at least one muscle group")
	}
	seen := make(map[MuscleGroup]bool, len(e.MuscleGroups))
	for i, g := range e.MuscleGroups {
		field := fmt.Sprintf("muscleGroups[%d]", i)
		v.enum(field, g.Valid(), string(g), muscleGroups)
		if seen[g] {
			v.add(field, RuleUnique, "%q is listed more than once", g)
		}
		seen[g] = true
	}
	v.maxLen("equipment", e.Equipment, maxEquipmentLen)
	v.maxLen("notes", e.Notes, maxNotesLen)
	return v.err()
}

// Sanitize cleans every free-text field.
func (e *Exercise) Sanitize() {
	e.Name = SanitizeText(e.Name)
	e.Equipment = SanitizeText(e.Equipment)
	e.Notes = SanitizeText(e.Notes)
}

// ExercisePatch is a partial exercise update. Nil fields are left unchanged.
type ExercisePatch struct {
	Name         *string           `json:"name,omitempty"`
	Category     *ExerciseCategory `json:"category,omitempty"`
	MuscleGroups *[]MuscleGroup    `json:"muscleGroups,omitempty"`
	Equipment    *string           `json:"equipment,omitempty"`
	Notes        *string           `json:"notes,omitempty"`
	IsCustom     *bool             `json:"isCustom,omitempty"`
}

// Apply merges the patch onto e.
func (p ExercisePatch) Apply(e *Exercise) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.MuscleGroups != nil {
		e.MuscleGroups = append([]MuscleGroup(nil), (*p.MuscleGroups)...)
	}
	if p.Equipment != nil {
		e.Equipment = *p.Equipment
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.IsCustom != nil {
		e.IsCustom = *p.IsCustom
	}
}

// SanitizeChanged re-sanitizes only the text fields the patch set.
func (p ExercisePatch) SanitizeChanged(e *Exercise) {
	if p.Name != nil {
		e.Name = SanitizeText(e.Name)
	}
	if p.Equipment != nil {
		e.Equipment = SanitizeText(e.Equipment)
	}
	if p.Notes != nil {
		e.Notes = SanitizeText(e.Notes)
	}
}
