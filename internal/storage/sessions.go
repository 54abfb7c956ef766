package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
)

const sessionColumns = `id, workout_id, exercise_id, date, pump, soreness, fatigue, performance, notes, created_at, updated_at`

func scanSession(s scanner) (models.TrainingSession, error) {
	var (
		ts                           models.TrainingSession
		date, perf, created, updated string
	)
	if err := s.Scan(&ts.ID, &ts.WorkoutID, &ts.ExerciseID, &date, &ts.Pump, &ts.Soreness, &ts.Fatigue,
		&perf, &ts.Notes, &created, &updated); err != nil {
		return ts, err
	}
	ts.Performance = models.PerformanceRating(perf)
	var err error
	if ts.Date, err = parseTime(date); err != nil {
		return ts, err
	}
	if ts.CreatedAt, err = parseTime(created); err != nil {
		return ts, err
	}
	if ts.UpdatedAt, err = parseTime(updated); err != nil {
		return ts, err
	}
	return ts, nil
}

func insertSession(ctx context.Context, q querier, s models.TrainingSession) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO training_sessions_v2 (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.WorkoutID, s.ExerciseID, formatTime(s.Date), s.Pump, s.Soreness, s.Fatigue,
		string(s.Performance), s.Notes, formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting training session: %w", err)
	}
	return nil
}

func querySessions(ctx context.Context, q querier, query string, args ...any) ([]models.TrainingSession, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying training sessions: %w", err)
	}
	defer rows.Close()

	var out []models.TrainingSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning training session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func getSession(ctx context.Context, q querier, id string) (*models.TrainingSession, error) {
	s, err := scanSession(q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM training_sessions_v2 WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "training session", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("querying training session %s: %w", id, err)
	}
	return &s, nil
}

// GetSession returns the training session with id.
func (db *DB) GetSession(ctx context.Context, id string) (*models.TrainingSession, error) {
	return getSession(ctx, db.sql, id)
}

// ListSessions returns every training session, newest first.
func (db *DB) ListSessions(ctx context.Context) ([]models.TrainingSession, error) {
	return querySessions(ctx, db.sql, `SELECT `+sessionColumns+` FROM training_sessions_v2 ORDER BY date DESC, id`)
}

// SessionsByWorkout returns the sessions recorded for a workout.
func (db *DB) SessionsByWorkout(ctx context.Context, workoutID string) ([]models.TrainingSession, error) {
	return querySessions(ctx, db.sql,
		`SELECT `+sessionColumns+` FROM training_sessions_v2 WHERE workout_id = ? ORDER BY created_at, id`, workoutID)
}

// SessionsByExercise returns the sessions recorded for an exercise, oldest first.
func (db *DB) SessionsByExercise(ctx context.Context, exerciseID string) ([]models.TrainingSession, error) {
	return querySessions(ctx, db.sql,
		`SELECT `+sessionColumns+` FROM training_sessions_v2 WHERE exercise_id = ? ORDER BY date, id`, exerciseID)
}

// CreateSession stores feedback for one exercise of an existing workout.
func (db *DB) CreateSession(ctx context.Context, s models.TrainingSession) (string, error) {
	if err := s.Validate(); err != nil {
		return "", db.invalid("training session", err)
	}
	s.ID = uuid.NewString()
	s.CreatedAt = db.now()
	s.UpdatedAt = s.CreatedAt
	s.Sanitize()

	err := db.write(ctx, "session", "create", []string{TableSessions}, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts_v2 WHERE id = ?`, s.WorkoutID).Scan(&n); err != nil {
			return fmt.Errorf("checking workout %s: %w", s.WorkoutID, err)
		}
		if n == 0 {
			return &NotFoundError{Entity: "workout", ID: s.WorkoutID}
		}
		return insertSession(ctx, tx, s)
	})
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

// UpdateSession merges patch onto the stored session, re-validates it and
// bumps its update time, all in one transaction.
func (db *DB) UpdateSession(ctx context.Context, id string, patch models.SessionPatch) error {
	return db.write(ctx, "session", "update", []string{TableSessions}, func(tx *sql.Tx) error {
		s, err := getSession(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(s)
		if err := s.Validate(); err != nil {
			return db.invalid("training session", err)
		}
		patch.SanitizeChanged(s)
		s.UpdatedAt = db.now()

		res, err := tx.ExecContext(ctx,
			`UPDATE training_sessions_v2 SET pump = ?, soreness = ?, fatigue = ?, performance = ?, notes = ?, updated_at = ?
			 WHERE id = ?`,
			s.Pump, s.Soreness, s.Fatigue, string(s.Performance), s.Notes, formatTime(s.UpdatedAt), id)
		if err != nil {
			return fmt.Errorf("updating training session %s: %w", id, err)
		}
		return expectRow(res, "training session", id)
	})
}

// DeleteSession removes one training session.
func (db *DB) DeleteSession(ctx context.Context, id string) error {
	return db.write(ctx, "session", "delete", []string{TableSessions}, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM training_sessions_v2 WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting training session %s: %w", id, err)
		}
		return expectRow(res, "training session", id)
	})
}
