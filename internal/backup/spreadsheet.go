package backup

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/claude/liftlog/internal/models"
)

// Sheet names of the spreadsheet export.
const (
	SheetWorkouts   = "Workouts"
	SheetExercises  = "Exercises"
	SheetMesocycles = "Mesocycles"
	SheetSessions   = "Sessions"
)

var (
	workoutHeader   = []any{"Date", "Workout", "Exercise", "Set", "Target reps", "Actual reps", "Weight", "RIR", "Completed", "Mesocycle week"}
	exerciseHeader  = []any{"ID", "Name", "Category", "Muscle groups", "Equipment", "Custom"}
	mesocycleHeader = []any{"ID", "Name", "Start", "End", "Weeks", "Current week", "Deload week", "Split", "Status"}
	sessionHeader   = []any{"Date", "Workout", "Exercise", "Pump", "Soreness", "Fatigue", "Performance", "Notes"}
)

// WriteSpreadsheet renders doc as an XLSX workbook with one sheet per
// collection. Workouts are flattened to one row per set.
func WriteSpreadsheet(doc *Document, w io.Writer) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetWorkouts); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	for _, name := range []string{SheetExercises, SheetMesocycles, SheetSessions} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("adding sheet %s: %w", name, err)
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F4E79"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	names := make(map[string]string, len(doc.Exercises))
	for _, e := range doc.Exercises {
		names[e.ID] = e.Name
	}
	exerciseName := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	var workoutRows [][]any
	for _, wo := range doc.Workouts {
		for _, we := range wo.Exercises {
			for _, s := range we.Sets {
				id := s.ExerciseID
				if id == "" {
					id = we.ExerciseID
				}
				workoutRows = append(workoutRows, []any{
					wo.Date.Format(time.DateTime), wo.ID, exerciseName(id), s.SetNumber,
					s.TargetReps, optional(s.ActualReps), s.Weight, optional(s.RIR), s.Completed, optionalWeek(wo),
				})
			}
		}
	}
	var exerciseRows [][]any
	for _, e := range doc.Exercises {
		groups := make([]string, len(e.MuscleGroups))
		for i, g := range e.MuscleGroups {
			groups[i] = string(g)
		}
		exerciseRows = append(exerciseRows, []any{e.ID, e.Name, string(e.Category), strings.Join(groups, ", "), e.Equipment, e.IsCustom})
	}
	var mesocycleRows [][]any
	for _, m := range doc.Mesocycles {
		mesocycleRows = append(mesocycleRows, []any{
			m.ID, m.Name, m.StartDate.Format(time.DateOnly), m.EndDate.Format(time.DateOnly),
			m.DurationWeeks, m.CurrentWeek, m.DeloadWeek, string(m.TrainingSplit), string(m.Status),
		})
	}
	var sessionRows [][]any
	for _, s := range doc.TrainingSessions {
		sessionRows = append(sessionRows, []any{
			s.Date.Format(time.DateTime), s.WorkoutID, exerciseName(s.ExerciseID),
			s.Pump, s.Soreness, s.Fatigue, string(s.Performance), s.Notes,
		})
	}

	sheets := []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{SheetWorkouts, workoutHeader, workoutRows},
		{SheetExercises, exerciseHeader, exerciseRows},
		{SheetMesocycles, mesocycleHeader, mesocycleRows},
		{SheetSessions, sessionHeader, sessionRows},
	}
	for _, sh := range sheets {
		if err := writeSheet(f, sh.name, headerStyle, sh.header, sh.rows); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func optional(n *int) any {
	if n == nil {
		return ""
	}
	return *n
}

func optionalWeek(w models.Workout) any {
	if w.WeekNumber == 0 {
		return ""
	}
	return w.WeekNumber
}
