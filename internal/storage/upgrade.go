package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/schema"
)

// Legacy JSON shapes. Identifiers may be JSON numbers (integer keys) or
// strings, so they decode into any and are remapped.

type legacySet struct {
	ExerciseID any     `json:"exerciseId"`
	SetNumber  int     `json:"setNumber"`
	Reps       *int    `json:"reps"`
	TargetReps *int    `json:"targetReps"`
	ActualReps *int    `json:"actualReps"`
	Weight     float64 `json:"weight"`
	RIR        *int    `json:"rir"`
	Completed  bool    `json:"completed"`
}

type legacyEntry struct {
	ExerciseID any         `json:"exerciseId"`
	Sets       []legacySet `json:"sets"`
	Notes      string      `json:"notes"`
}

type legacyMesocycleExercise struct {
	ExerciseID  any    `json:"exerciseId"`
	Order       int    `json:"order"`
	TargetSets  int    `json:"targetSets"`
	RepsMin     int    `json:"repsMin"`
	RepsMax     int    `json:"repsMax"`
	RestSeconds int    `json:"restSeconds"`
	Notes       string `json:"notes"`
}

type legacySplitDay struct {
	ID        any                       `json:"id"`
	Name      string                    `json:"name"`
	DayOrder  int                       `json:"dayOrder"`
	Exercises []legacyMesocycleExercise `json:"exercises"`
}

const defaultLegacyReps = 10

// keyUpgrade moves the integer-keyed tables to their text-keyed shadows.
type keyUpgrade struct {
	logger    *slog.Logger
	now       time.Time
	exercises map[int64]string
	workouts  map[int64]string
}

func newKeyUpgrade(logger *slog.Logger) *keyUpgrade {
	return &keyUpgrade{logger: logger}
}

func (u *keyUpgrade) run(ctx context.Context, tx *schema.Tx) error {
	u.now = time.Now()
	u.exercises = map[int64]string{}
	u.workouts = map[int64]string{}

	steps := []struct {
		name string
		fn   func(context.Context, *schema.Tx) error
	}{
		{"profiles", u.copyProfiles},
		{"exercises", u.copyExercises},
		{"workouts", u.copyWorkouts},
		{"sessions", u.copySessions},
		{"mesocycles", u.remapMesocycles},
	}
	for _, s := range steps {
		if err := s.fn(ctx, tx); err != nil {
			return fmt.Errorf("upgrading %s: %w", s.name, err)
		}
	}

	// Legacy tables are emptied here and dropped by a later version.
	for _, name := range []string{"training_sessions", "workouts", "exercises", "user_profiles"} {
		t, err := tx.Table(ctx, name)
		if err != nil {
			return err
		}
		if err := t.Clear(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (u *keyUpgrade) tables(ctx context.Context, tx *schema.Tx, legacy, shadow string) ([]schema.Row, *schema.Table, error) {
	src, err := tx.Table(ctx, legacy)
	if err != nil {
		return nil, nil, err
	}
	rows, err := src.All(ctx)
	if err != nil {
		return nil, nil, err
	}
	dst, err := tx.Table(ctx, shadow)
	if err != nil {
		return nil, nil, err
	}
	return rows, dst, nil
}

func (u *keyUpgrade) copyProfiles(ctx context.Context, tx *schema.Tx) error {
	rows, dst, err := u.tables(ctx, tx, "user_profiles", TableProfiles)
	if err != nil {
		return err
	}
	for _, r := range rows {
		prefs := models.DefaultPreferences()
		if err := decodeJSON(r.String("preferences"), &prefs); err != nil {
			u.logger.Warn("legacy profile preferences unreadable, using defaults", "id", r.Int("id"), "error", err)
			prefs = models.DefaultPreferences()
		}
		level := models.ExperienceLevel(r.String("experience_level"))
		if !level.Valid() {
			level = models.ExperienceBeginner
		}
		prefsJSON, err := encodeJSON(prefs)
		if err != nil {
			return err
		}
		created := u.legacyTime(r.String("created_at"))
		if err := dst.Insert(ctx, schema.Row{
			"id":               uuid.NewString(),
			"name":             r.String("name"),
			"experience_level": string(level),
			"preferences":      prefsJSON,
			"created_at":       created,
			"updated_at":       created,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (u *keyUpgrade) copyExercises(ctx context.Context, tx *schema.Tx) error {
	rows, dst, err := u.tables(ctx, tx, "exercises", TableExercises)
	if err != nil {
		return err
	}
	for _, r := range rows {
		id := uuid.NewString()
		u.exercises[r.Int("id")] = id
		groups := r.String("muscle_groups")
		if groups == "" {
			groups = "[]"
		}
		created := u.legacyTime(r.String("created_at"))
		if err := dst.Insert(ctx, schema.Row{
			"id":            id,
			"name":          r.String("name"),
			"name_key":      nameKey(r.String("name")),
			"category":      r.String("category"),
			"muscle_groups": groups,
			"equipment":     r.String("equipment"),
			"notes":         r.String("notes"),
			"is_custom":     r.Int("is_custom"),
			"created_at":    created,
			"updated_at":    created,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (u *keyUpgrade) copyWorkouts(ctx context.Context, tx *schema.Tx) error {
	rows, dst, err := u.tables(ctx, tx, "workouts", TableWorkouts)
	if err != nil {
		return err
	}
	for _, r := range rows {
		id := uuid.NewString()
		u.workouts[r.Int("id")] = id

		var legacy []legacyEntry
		if err := decodeJSON(r.String("exercises"), &legacy); err != nil {
			return fmt.Errorf("decoding exercises of workout %d: %w", r.Int("id"), err)
		}
		entries := u.convertEntries(legacy)
		entriesJSON, err := encodeJSON(entries)
		if err != nil {
			return err
		}

		created := u.legacyTime(r.String("created_at"))
		row := schema.Row{
			"id":           id,
			"date":         u.legacyTime(r.String("date")),
			"mesocycle_id": r.String("mesocycle_id"),
			"week_number":  r.Int("week_number"),
			"split_day_id": r.String("split_day_id"),
			"exercises":    entriesJSON,
			"notes":        r.String("notes"),
			"completed":    r.Int("completed"),
			"created_at":   created,
			"updated_at":   created,
		}
		if r["duration_minutes"] != nil {
			row["duration_minutes"] = r.Int("duration_minutes")
		}
		if fb := r.String("feedback"); fb != "" {
			row["feedback"] = fb
		}
		if err := dst.Insert(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// convertEntries fills the fields the legacy set shape lacks: set ids,
// set numbers, target and actual reps.
func (u *keyUpgrade) convertEntries(legacy []legacyEntry) []models.WorkoutExercise {
	entries := make([]models.WorkoutExercise, 0, len(legacy))
	for _, le := range legacy {
		exID := u.remap(le.ExerciseID, u.exercises)
		we := models.WorkoutExercise{ExerciseID: exID, Notes: le.Notes, Sets: make([]models.WorkoutSet, 0, len(le.Sets))}
		for i, ls := range le.Sets {
			set := models.WorkoutSet{
				ID:         uuid.NewString(),
				ExerciseID: exID,
				SetNumber:  ls.SetNumber,
				Weight:     ls.Weight,
				RIR:        ls.RIR,
				Completed:  ls.Completed,
			}
			if ls.ExerciseID != nil {
				set.ExerciseID = u.remap(ls.ExerciseID, u.exercises)
			}
			if set.SetNumber < 1 {
				set.SetNumber = i + 1
			}
			switch {
			case ls.TargetReps != nil && *ls.TargetReps > 0:
				set.TargetReps = *ls.TargetReps
			case ls.Reps != nil && *ls.Reps > 0:
				set.TargetReps = *ls.Reps
			default:
				set.TargetReps = defaultLegacyReps
			}
			switch {
			case ls.ActualReps != nil:
				set.ActualReps = ls.ActualReps
			case ls.Reps != nil && ls.Completed:
				reps := *ls.Reps
				set.ActualReps = &reps
			}
			we.Sets = append(we.Sets, set)
		}
		entries = append(entries, we)
	}
	return entries
}

func (u *keyUpgrade) copySessions(ctx context.Context, tx *schema.Tx) error {
	rows, dst, err := u.tables(ctx, tx, "training_sessions", TableSessions)
	if err != nil {
		return err
	}
	for _, r := range rows {
		workoutID, ok := u.workouts[r.Int("workout_id")]
		if !ok {
			u.logger.Warn("dropping legacy session of missing workout",
				"session", r.Int("id"), "workout", r.Int("workout_id"))
			continue
		}
		perf := models.PerformanceRating(r.String("performance"))
		if !perf.Valid() {
			perf = models.PerformanceAverage
		}
		if err := dst.Insert(ctx, schema.Row{
			"id":          uuid.NewString(),
			"workout_id":  workoutID,
			"exercise_id": u.remap(r["exercise_id"], u.exercises),
			"date":        u.legacyTime(r.String("date")),
			"pump":        legacyRating(r.Int("pump")),
			"soreness":    legacyRating(r.Int("soreness")),
			"fatigue":     legacyRating(r.Int("fatigue")),
			"performance": string(perf),
			"notes":       r.String("notes"),
			"created_at":  u.legacyTime(r.String("created_at")),
		}); err != nil {
			return err
		}
	}
	return nil
}

// remapMesocycles rewrites integer exercise references nested in split days.
func (u *keyUpgrade) remapMesocycles(ctx context.Context, tx *schema.Tx) error {
	t, err := tx.Table(ctx, TableMesocycles)
	if err != nil {
		return err
	}
	rows, err := t.All(ctx)
	if err != nil {
		return err
	}
	for _, r := range rows {
		var legacy []legacySplitDay
		if err := decodeJSON(r.String("split_days"), &legacy); err != nil {
			return fmt.Errorf("decoding split days of mesocycle %s: %w", r.String("id"), err)
		}
		days := make([]models.MesocycleSplitDay, 0, len(legacy))
		for _, ld := range legacy {
			day := models.MesocycleSplitDay{ID: legacyKey(ld.ID), Name: ld.Name, DayOrder: ld.DayOrder}
			if day.ID == "" {
				day.ID = uuid.NewString()
			}
			for _, le := range ld.Exercises {
				day.Exercises = append(day.Exercises, models.MesocycleExercise{
					ExerciseID:  u.remap(le.ExerciseID, u.exercises),
					Order:       le.Order,
					TargetSets:  le.TargetSets,
					RepsMin:     le.RepsMin,
					RepsMax:     le.RepsMax,
					RestSeconds: le.RestSeconds,
					Notes:       le.Notes,
				})
			}
			days = append(days, day)
		}
		daysJSON, err := encodeJSON(days)
		if err != nil {
			return err
		}
		if err := tx.Exec(ctx, `UPDATE mesocycles SET split_days = ? WHERE id = ?`, daysJSON, r.String("id")); err != nil {
			return err
		}
	}
	return nil
}

// remap resolves a legacy integer reference through m. Unknown integers
// and string ids pass through as text so dangling references stay weak.
func (u *keyUpgrade) remap(v any, m map[int64]string) string {
	key := legacyKey(v)
	if n, err := strconv.ParseInt(key, 10, 64); err == nil {
		if id, ok := m[n]; ok {
			return id
		}
	}
	return key
}

func legacyKey(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func legacyRating(v int64) int64 {
	if v < models.MinRating || v > models.MaxRating {
		return 3
	}
	return v
}

func (u *keyUpgrade) legacyTime(s string) string {
	t, err := parseTime(s)
	if err != nil || t.IsZero() {
		return formatTime(u.now)
	}
	return formatTime(t)
}
