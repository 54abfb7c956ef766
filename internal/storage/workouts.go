package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
)

const workoutColumns = `id, date, mesocycle_id, week_number, split_day_id, exercises, notes, completed,
	duration_minutes, feedback, created_at, updated_at`

// Associator links a new workout on date to a mesocycle. It returns an
// empty id when there is nothing to link to.
type Associator func(ctx context.Context, date time.Time) (mesocycleID string, week int, err error)

// SetAssociator registers the lookup used to link new workouts to the
// active mesocycle.
func (db *DB) SetAssociator(a Associator) {
	db.hookMu.Lock()
	db.associate = a
	db.hookMu.Unlock()
}

func scanWorkout(s scanner) (models.Workout, error) {
	var (
		w                models.Workout
		date, entries    string
		created, updated string
		duration         sql.NullInt64
		feedback         sql.NullString
	)
	if err := s.Scan(&w.ID, &date, &w.MesocycleID, &w.WeekNumber, &w.SplitDayID, &entries, &w.Notes,
		&w.Completed, &duration, &feedback, &created, &updated); err != nil {
		return w, err
	}
	if err := decodeJSON(entries, &w.Exercises); err != nil {
		return w, fmt.Errorf("decoding exercises of workout %s: %w", w.ID, err)
	}
	if w.Exercises == nil {
		w.Exercises = []models.WorkoutExercise{}
	}
	w.DurationMinutes = intPtr(duration)
	if feedback.Valid && feedback.String != "" {
		w.Feedback = &models.WorkoutFeedback{}
		if err := decodeJSON(feedback.String, w.Feedback); err != nil {
			return w, fmt.Errorf("decoding feedback of workout %s: %w", w.ID, err)
		}
	}
	var err error
	if w.Date, err = parseTime(date); err != nil {
		return w, err
	}
	if w.CreatedAt, err = parseTime(created); err != nil {
		return w, err
	}
	if w.UpdatedAt, err = parseTime(updated); err != nil {
		return w, err
	}
	return w, nil
}

// workoutArgs returns the column values in workoutColumns order.
func workoutArgs(w models.Workout) ([]any, error) {
	entries, err := encodeJSON(w.Exercises)
	if err != nil {
		return nil, fmt.Errorf("encoding workout exercises: %w", err)
	}
	var feedback sql.NullString
	if w.Feedback != nil {
		fb, err := encodeJSON(w.Feedback)
		if err != nil {
			return nil, fmt.Errorf("encoding workout feedback: %w", err)
		}
		feedback = sql.NullString{String: fb, Valid: true}
	}
	return []any{
		w.ID, formatTime(w.Date), w.MesocycleID, w.WeekNumber, w.SplitDayID, entries, w.Notes, w.Completed,
		nullInt(w.DurationMinutes), feedback, formatTime(w.CreatedAt), formatTime(w.UpdatedAt),
	}, nil
}

func insertWorkout(ctx context.Context, q querier, w models.Workout) error {
	args, err := workoutArgs(w)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO workouts_v2 (`+workoutColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	return nil
}

func queryWorkouts(ctx context.Context, q querier, query string, args ...any) ([]models.Workout, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var out []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// assignSetIDs gives every set without an id a fresh one.
func assignSetIDs(w *models.Workout) {
	for i := range w.Exercises {
		for j := range w.Exercises[i].Sets {
			if w.Exercises[i].Sets[j].ID == "" {
				w.Exercises[i].Sets[j].ID = uuid.NewString()
			}
		}
	}
}

func getWorkout(ctx context.Context, q querier, id string) (*models.Workout, error) {
	w, err := scanWorkout(q.QueryRowContext(ctx,
		`SELECT `+workoutColumns+` FROM workouts_v2 WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "workout", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout %s: %w", id, err)
	}
	return &w, nil
}

// GetWorkout returns the workout with id.
func (db *DB) GetWorkout(ctx context.Context, id string) (*models.Workout, error) {
	return getWorkout(ctx, db.sql, id)
}

// ListWorkouts returns every workout, newest first.
func (db *DB) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	return queryWorkouts(ctx, db.sql, `SELECT `+workoutColumns+` FROM workouts_v2 ORDER BY date DESC, id`)
}

// RecentWorkouts returns up to limit workouts, newest first.
func (db *DB) RecentWorkouts(ctx context.Context, limit int) ([]models.Workout, error) {
	return queryWorkouts(ctx, db.sql,
		`SELECT `+workoutColumns+` FROM workouts_v2 ORDER BY date DESC, id LIMIT ?`, limit)
}

// WorkoutsInRange returns workouts dated in [start, end), oldest first.
func (db *DB) WorkoutsInRange(ctx context.Context, start, end time.Time) ([]models.Workout, error) {
	return queryWorkouts(ctx, db.sql,
		`SELECT `+workoutColumns+` FROM workouts_v2 WHERE date >= ? AND date < ? ORDER BY date, id`,
		formatTime(start), formatTime(end))
}

// WorkoutsByMesocycle returns the workouts linked to a mesocycle, oldest first.
func (db *DB) WorkoutsByMesocycle(ctx context.Context, mesocycleID string) ([]models.Workout, error) {
	return queryWorkouts(ctx, db.sql,
		`SELECT `+workoutColumns+` FROM workouts_v2 WHERE mesocycle_id = ? ORDER BY date, id`, mesocycleID)
}

// CompletedWorkouts returns every completed workout, oldest first.
func (db *DB) CompletedWorkouts(ctx context.Context) ([]models.Workout, error) {
	return queryWorkouts(ctx, db.sql,
		`SELECT `+workoutColumns+` FROM workouts_v2 WHERE completed = 1 ORDER BY date, id`)
}

// CompletedWorkoutsWithExercise returns up to limit completed workouts with
// an entry for exerciseID, newest first.
func (db *DB) CompletedWorkoutsWithExercise(ctx context.Context, exerciseID string, limit int) ([]models.Workout, error) {
	return queryWorkouts(ctx, db.sql,
		`SELECT `+workoutColumns+` FROM workouts_v2 w
		 WHERE completed = 1 AND EXISTS (
		   SELECT 1 FROM json_each(w.exercises) e WHERE json_extract(e.value, '$.exerciseId') = ?)
		 ORDER BY date DESC, id LIMIT ?`, exerciseID, limit)
}

// CreateWorkout validates and stores a new workout. A workout without a
// mesocycle is linked to the active one when the registered associator
// finds a match.
func (db *DB) CreateWorkout(ctx context.Context, w models.Workout) (string, error) {
	w.Normalize()
	if err := w.Validate(db.now()); err != nil {
		return "", db.invalid("workout", err)
	}

	if w.MesocycleID == "" {
		db.hookMu.RLock()
		associate := db.associate
		db.hookMu.RUnlock()
		if associate != nil {
			id, week, err := associate(ctx, w.Date)
			if err != nil {
				return "", fmt.Errorf("associating workout with mesocycle: %w", err)
			}
			if id != "" {
				w.MesocycleID, w.WeekNumber = id, week
			}
		}
	}

	now := db.now()
	w.ID = uuid.NewString()
	w.CreatedAt, w.UpdatedAt = now, now
	if w.Exercises == nil {
		w.Exercises = []models.WorkoutExercise{}
	}
	assignSetIDs(&w)
	w.Sanitize()

	err := db.write(ctx, "workout", "create", []string{TableWorkouts}, func(tx *sql.Tx) error {
		return insertWorkout(ctx, tx, w)
	})
	if err != nil {
		return "", err
	}
	db.fireCompletion(ctx, w)
	return w.ID, nil
}

// UpdateWorkout merges patch onto the stored workout and re-validates the
// merged record. Reading, merging and writing happen in one transaction.
func (db *DB) UpdateWorkout(ctx context.Context, id string, patch models.WorkoutPatch) error {
	var saved models.Workout
	err := db.write(ctx, "workout", "update", []string{TableWorkouts}, func(tx *sql.Tx) error {
		w, err := getWorkout(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(w)
		w.Normalize()
		if err := w.Validate(db.now()); err != nil {
			return db.invalid("workout", err)
		}
		assignSetIDs(w)
		patch.SanitizeChanged(w)
		w.UpdatedAt = db.now()

		args, err := workoutArgs(*w)
		if err != nil {
			return err
		}
		// args[0] is the id; move it to the WHERE clause.
		res, err := tx.ExecContext(ctx,
			`UPDATE workouts_v2 SET date = ?, mesocycle_id = ?, week_number = ?, split_day_id = ?, exercises = ?,
			 notes = ?, completed = ?, duration_minutes = ?, feedback = ?, created_at = ?, updated_at = ?
			 WHERE id = ?`, append(args[1:], args[0])...)
		if err != nil {
			return fmt.Errorf("updating workout %s: %w", id, err)
		}
		if err := expectRow(res, "workout", id); err != nil {
			return err
		}
		saved = *w
		return nil
	})
	if err != nil {
		return err
	}
	db.fireCompletion(ctx, saved)
	return nil
}

// DeleteWorkout removes a workout and its training sessions in one
// transaction.
func (db *DB) DeleteWorkout(ctx context.Context, id string) error {
	return db.write(ctx, "workout", "delete", []string{TableWorkouts, TableSessions}, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM workouts_v2 WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting workout %s: %w", id, err)
		}
		if err := expectRow(res, "workout", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM training_sessions_v2 WHERE workout_id = ?`, id); err != nil {
			return fmt.Errorf("deleting sessions of workout %s: %w", id, err)
		}
		return nil
	})
}
