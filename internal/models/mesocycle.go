package models

import (
	"fmt"
	"sort"
	"time"
)

const (
	maxMesocycleNameLen = 100
	maxSplitDayNameLen  = 100
	MinDurationWeeks    = 4
	MaxDurationWeeks    = 6
	MaxTargetSets       = 10
)

// MesocycleExercise is one configured exercise of a split day.
type MesocycleExercise struct {
	ExerciseID  string `json:"exerciseId"`
	Order       int    `json:"order"`
	TargetSets  int    `json:"targetSets"`
	RepsMin     int    `json:"repsMin"`
	RepsMax     int    `json:"repsMax"`
	RestSeconds int    `json:"restSeconds"`
	Notes       string `json:"notes,omitempty"`
}

// MesocycleSplitDay is a named training day template within a mesocycle.
type MesocycleSplitDay struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	DayOrder  int                 `json:"dayOrder"`
	Exercises []MesocycleExercise `json:"exercises"`
}

// Mesocycle is a multi-week training block.
type Mesocycle struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	StartDate     time.Time           `json:"startDate"`
	EndDate       time.Time           `json:"endDate"`
	DurationWeeks int                 `json:"durationWeeks"`
	CurrentWeek   int                 `json:"currentWeek"`
	DeloadWeek    int                 `json:"deloadWeek"`
	TrainingSplit TrainingSplit       `json:"trainingSplit"`
	SplitDays     []MesocycleSplitDay `json:"splitDays"`
	Status        MesocycleStatus     `json:"status"`
	Notes         string              `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// OrderedSplitDays returns the split days sorted by DayOrder. Ties keep
// their stored order.
func (m *Mesocycle) OrderedSplitDays() []MesocycleSplitDay {
	days := append([]MesocycleSplitDay(nil), m.SplitDays...)
	sort.SliceStable(days, func(i, j int) bool { return days[i].DayOrder < days[j].DayOrder })
	return days
}

// SplitDay looks up a split day by id.
func (m *Mesocycle) SplitDay(id string) (MesocycleSplitDay, bool) {
	for _, d := range m.SplitDays {
		if d.ID == id {
			return d, true
		}
	}
	return MesocycleSplitDay{}, false
}

// Validate checks every mesocycle rule and reports all violations.
func (m *Mesocycle) Validate() error {
	v := newValidator("mesocycle")
	v.name("name", m.Name, maxMesocycleNameLen)
	if m.StartDate.IsZero() {
		v.add("startDate", RuleRequired, "is required")
	}
	if m.EndDate.IsZero() {
		v.add("endDate", RuleRequired, "is required")
	}
	if !m.StartDate.IsZero() && !m.EndDate.IsZero() && !m.EndDate.After(m.StartDate) {
		v.add("endDate", RuleOrder, "must be after the start date")
	}
	v.intRange("durationWeeks", m.DurationWeeks, MinDurationWeeks, MaxDurationWeeks)
	upper := m.DurationWeeks
	if upper < 1 {
		upper = 1
	}
	v.intRange("currentWeek", m.CurrentWeek, 1, upper)
	v.intRange("deloadWeek", m.DeloadWeek, 1, upper)
	v.enum("trainingSplit", m.TrainingSplit.Valid(), string(m.TrainingSplit), trainingSplits)
	v.enum("status", m.Status.Valid(), string(m.Status), statuses)
	v.maxLen("notes", m.Notes, maxNotesLen)

	for i, d := range m.SplitDays {
		prefix := fmt.Sprintf("splitDays[%d]", i)
		v.name(prefix+".name", d.Name, maxSplitDayNameLen)
		if d.DayOrder < 0 {
			v.add(prefix+".dayOrder", RuleRange, "must not be negative")
		}
		for j, ex := range d.Exercises {
			ep := fmt.Sprintf("%s.exercises[%d]", prefix, j)
			if ex.ExerciseID == "" {
				v.add(ep+".exerciseId", RuleRequired, "is required")
			}
			v.intRange(ep+".targetSets", ex.TargetSets, 1, MaxTargetSets)
			v.intRange(ep+".repsMin", ex.RepsMin, 0, MaxReps)
			v.intRange(ep+".repsMax", ex.RepsMax, 0, MaxReps)
			if ex.RepsMin > ex.RepsMax {
				v.add(ep+".repsMax", RuleOrder, "must be at least repsMin (%d)", ex.RepsMin)
			}
			v.intRange(ep+".restSeconds", ex.RestSeconds, 0, maxRestSeconds)
			v.maxLen(ep+".notes", ex.Notes, maxNotesLen)
		}
	}
	return v.err()
}

// Sanitize cleans every free-text field.
func (m *Mesocycle) Sanitize() {
	m.Name = SanitizeText(m.Name)
	m.Notes = SanitizeText(m.Notes)
	sanitizeSplitDays(m.SplitDays)
}

func sanitizeSplitDays(days []MesocycleSplitDay) {
	for i := range days {
		days[i].Name = SanitizeText(days[i].Name)
		for j := range days[i].Exercises {
			days[i].Exercises[j].Notes = SanitizeText(days[i].Exercises[j].Notes)
		}
	}
}

// MesocyclePatch is a partial mesocycle update. Nil fields are left unchanged.
type MesocyclePatch struct {
	Name          *string              `json:"name,omitempty"`
	StartDate     *time.Time           `json:"startDate,omitempty"`
	EndDate       *time.Time           `json:"endDate,omitempty"`
	DurationWeeks *int                 `json:"durationWeeks,omitempty"`
	CurrentWeek   *int                 `json:"currentWeek,omitempty"`
	DeloadWeek    *int                 `json:"deloadWeek,omitempty"`
	TrainingSplit *TrainingSplit       `json:"trainingSplit,omitempty"`
	SplitDays     *[]MesocycleSplitDay `json:"splitDays,omitempty"`
	Status        *MesocycleStatus     `json:"status,omitempty"`
	Notes         *string              `json:"notes,omitempty"`
}

// Apply merges the patch onto m.
func (p MesocyclePatch) Apply(m *Mesocycle) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.StartDate != nil {
		m.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		m.EndDate = *p.EndDate
	}
	if p.DurationWeeks != nil {
		m.DurationWeeks = *p.DurationWeeks
	}
	if p.CurrentWeek != nil {
		m.CurrentWeek = *p.CurrentWeek
	}
	if p.DeloadWeek != nil {
		m.DeloadWeek = *p.DeloadWeek
	}
	if p.TrainingSplit != nil {
		m.TrainingSplit = *p.TrainingSplit
	}
	if p.SplitDays != nil {
		m.SplitDays = append([]MesocycleSplitDay(nil), (*p.SplitDays)...)
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
}

// SanitizeChanged re-sanitizes only the text fields the patch set.
func (p MesocyclePatch) SanitizeChanged(m *Mesocycle) {
	if p.Name != nil {
		m.Name = SanitizeText(m.Name)
	}
	if p.Notes != nil {
		m.Notes = SanitizeText(m.Notes)
	}
	if p.SplitDays != nil {
		sanitizeSplitDays(m.SplitDays)
	}
}
