package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/claude/liftlog/internal/models"
)

// Snapshot is the full content of the store.
type Snapshot struct {
	Profiles   []models.UserProfile
	Exercises  []models.Exercise
	Workouts   []models.Workout
	Sessions   []models.TrainingSession
	Mesocycles []models.Mesocycle
}

// Counts returns the number of records per table.
func (s Snapshot) Counts() map[string]int {
	return map[string]int{
		TableProfiles:   len(s.Profiles),
		TableExercises:  len(s.Exercises),
		TableWorkouts:   len(s.Workouts),
		TableSessions:   len(s.Sessions),
		TableMesocycles: len(s.Mesocycles),
	}
}

// Snapshot reads every collection inside one transaction.
func (db *DB) Snapshot(ctx context.Context) (_ *Snapshot, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning snapshot: %w", err)
	}
	defer func() { err = multierr.Append(err, tx.Rollback()) }()

	var s Snapshot
	if s.Profiles, err = queryProfiles(ctx, tx, `SELECT `+profileColumns+` FROM user_profiles_v2 ORDER BY created_at, id`); err != nil {
		return nil, err
	}
	if s.Exercises, err = queryExercises(ctx, tx, `SELECT `+exerciseColumns+` FROM exercises_v2 ORDER BY created_at, id`); err != nil {
		return nil, err
	}
	if s.Workouts, err = queryWorkouts(ctx, tx, `SELECT `+workoutColumns+` FROM workouts_v2 ORDER BY date, id`); err != nil {
		return nil, err
	}
	if s.Sessions, err = querySessions(ctx, tx, `SELECT `+sessionColumns+` FROM training_sessions_v2 ORDER BY date, id`); err != nil {
		return nil, err
	}
	if s.Mesocycles, err = queryMesocycles(ctx, tx, `SELECT `+mesocycleColumns+` FROM mesocycles ORDER BY start_date, id`); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReplaceAll swaps the whole store content for s in one transaction.
// Records keep their identifiers and timestamps; missing identifiers are
// generated.
func (db *DB) ReplaceAll(ctx context.Context, s Snapshot) error {
	return db.write(ctx, "store", "replace", AllTables, func(tx *sql.Tx) error {
		if err := clearTables(ctx, tx); err != nil {
			return err
		}
		for _, p := range s.Profiles {
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			if err := insertProfile(ctx, tx, p); err != nil {
				return err
			}
		}
		for _, e := range s.Exercises {
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
			if err := insertExercise(ctx, tx, e); err != nil {
				return err
			}
		}
		for _, w := range s.Workouts {
			if w.ID == "" {
				w.ID = uuid.NewString()
			}
			if w.Exercises == nil {
				w.Exercises = []models.WorkoutExercise{}
			}
			if err := insertWorkout(ctx, tx, w); err != nil {
				return err
			}
		}
		for _, ts := range s.Sessions {
			if ts.ID == "" {
				ts.ID = uuid.NewString()
			}
			if err := insertSession(ctx, tx, ts); err != nil {
				return err
			}
		}
		for _, m := range s.Mesocycles {
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
			if m.SplitDays == nil {
				m.SplitDays = []models.MesocycleSplitDay{}
			}
			if err := insertMesocycle(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearAll deletes every record of every collection.
func (db *DB) ClearAll(ctx context.Context) error {
	err := db.write(ctx, "store", "clear", AllTables, func(tx *sql.Tx) error {
		return clearTables(ctx, tx)
	})
	if err == nil {
		db.logger.Warn("all local data cleared")
	}
	return err
}

func clearTables(ctx context.Context, tx *sql.Tx) error {
	for _, t := range AllTables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %q", t)); err != nil {
			return fmt.Errorf("clearing %s: %w", t, err)
		}
	}
	return nil
}
