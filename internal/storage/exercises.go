package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/claude/liftlog/internal/models"
)

const exerciseColumns = `id, name, category, muscle_groups, equipment, notes, is_custom, created_at, updated_at`

// nameKey is the case-folded form exercise names are compared by.
func nameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func scanExercise(s scanner) (models.Exercise, error) {
	var (
		e                models.Exercise
		category, groups string
		created, updated string
	)
	if err := s.Scan(&e.ID, &e.Name, &category, &groups, &e.Equipment, &e.Notes, &e.IsCustom, &created, &updated); err != nil {
		return e, err
	}
	e.Category = models.ExerciseCategory(category)
	if err := decodeJSON(groups, &e.MuscleGroups); err != nil {
		return e, fmt.Errorf("decoding muscle groups of exercise %s: %w", e.ID, err)
	}
	var err error
	if e.CreatedAt, err = parseTime(created); err != nil {
		return e, err
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return e, err
	}
	return e, nil
}

func insertExercise(ctx context.Context, q querier, e models.Exercise) error {
	groups, err := encodeJSON(e.MuscleGroups)
	if err != nil {
		return fmt.Errorf("encoding muscle groups: %w", err)
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO exercises_v2 (id, name, name_key, category, muscle_groups, equipment, notes, is_custom, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, nameKey(e.Name), string(e.Category), groups, e.Equipment, e.Notes, e.IsCustom,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting exercise: %w", err)
	}
	return nil
}

func queryExercises(ctx context.Context, q querier, query string, args ...any) ([]models.Exercise, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var out []models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func getExercise(ctx context.Context, q querier, id string) (*models.Exercise, error) {
	e, err := scanExercise(q.QueryRowContext(ctx,
		`SELECT `+exerciseColumns+` FROM exercises_v2 WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "exercise", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise %s: %w", id, err)
	}
	return &e, nil
}

// GetExercise returns the exercise with id.
func (db *DB) GetExercise(ctx context.Context, id string) (*models.Exercise, error) {
	return getExercise(ctx, db.sql, id)
}

// ListExercises returns the whole library ordered by name.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	return queryExercises(ctx, db.sql, `SELECT `+exerciseColumns+` FROM exercises_v2 ORDER BY name_key, id`)
}

// ExercisesByCategory returns the exercises of one category ordered by name.
func (db *DB) ExercisesByCategory(ctx context.Context, category models.ExerciseCategory) ([]models.Exercise, error) {
	return queryExercises(ctx, db.sql,
		`SELECT `+exerciseColumns+` FROM exercises_v2 WHERE category = ? ORDER BY name_key, id`, string(category))
}

// ExerciseIndex returns the library keyed by id.
func (db *DB) ExerciseIndex(ctx context.Context) (map[string]models.Exercise, error) {
	list, err := db.ListExercises(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]models.Exercise, len(list))
	for _, e := range list {
		idx[e.ID] = e
	}
	return idx, nil
}

// duplicateName reports whether another exercise already uses name.
func duplicateName(ctx context.Context, q querier, name, exceptID string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM exercises_v2 WHERE name_key = ? AND id != ?`,
		nameKey(models.SanitizeText(name)), exceptID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking exercise name: %w", err)
	}
	return n > 0, nil
}

// checkName adds a uniqueness violation to verr when another exercise
// already uses e's name.
func checkName(ctx context.Context, q querier, e *models.Exercise, verr error) error {
	if strings.TrimSpace(e.Name) == "" {
		return verr
	}
	dup, err := duplicateName(ctx, q, e.Name, e.ID)
	if err != nil {
		return err
	}
	if dup {
		return withViolation(verr, "exercise", duplicateNameViolation(e.Name))
	}
	return verr
}

// CreateExercise validates, sanitizes and stores a new exercise. The name
// check and the insert share one transaction.
func (db *DB) CreateExercise(ctx context.Context, e models.Exercise) (string, error) {
	verr := e.Validate()

	now := db.now()
	e.ID = uuid.NewString()
	e.CreatedAt, e.UpdatedAt = now, now

	err := db.write(ctx, "exercise", "create", []string{TableExercises}, func(tx *sql.Tx) error {
		if err := checkName(ctx, tx, &e, verr); err != nil {
			return db.invalid("exercise", err)
		}
		e.Sanitize()
		return insertExercise(ctx, tx, e)
	})
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// UpdateExercise merges patch onto the stored exercise and re-validates the
// merged record. Reading, merging and writing happen in one transaction.
func (db *DB) UpdateExercise(ctx context.Context, id string, patch models.ExercisePatch) error {
	return db.write(ctx, "exercise", "update", []string{TableExercises}, func(tx *sql.Tx) error {
		e, err := getExercise(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(e)
		verr := e.Validate()
		if patch.Name != nil {
			verr = checkName(ctx, tx, e, verr)
		}
		if verr != nil {
			return db.invalid("exercise", verr)
		}
		patch.SanitizeChanged(e)
		e.UpdatedAt = db.now()

		groups, err := encodeJSON(e.MuscleGroups)
		if err != nil {
			return fmt.Errorf("encoding muscle groups: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE exercises_v2 SET name = ?, name_key = ?, category = ?, muscle_groups = ?, equipment = ?,
			 notes = ?, is_custom = ?, updated_at = ? WHERE id = ?`,
			e.Name, nameKey(e.Name), string(e.Category), groups, e.Equipment, e.Notes, e.IsCustom,
			formatTime(e.UpdatedAt), id)
		if err != nil {
			return fmt.Errorf("updating exercise %s: %w", id, err)
		}
		return expectRow(res, "exercise", id)
	})
}

// DeleteExercise removes an exercise that no workout or training session
// references. A referenced exercise is left untouched and a
// ReferentialIntegrityError lists the referencing records.
func (db *DB) DeleteExercise(ctx context.Context, id string) error {
	return db.write(ctx, "exercise", "delete", []string{TableExercises}, func(tx *sql.Tx) error {
		refs, err := exerciseReferences(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(refs) > 0 {
			return &ReferentialIntegrityError{
				Entity:     "exercise",
				ID:         id,
				Reason:     "exercise is used by logged workouts or training sessions",
				References: refs,
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM exercises_v2 WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting exercise %s: %w", id, err)
		}
		return expectRow(res, "exercise", id)
	})
}

// exerciseReferences scans workout entries, their nested sets, and training
// sessions for id.
func exerciseReferences(ctx context.Context, q querier, id string) ([]string, error) {
	var refs []string
	collect := func(prefix, query string, args ...any) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("scanning %s references: %w", prefix, err)
		}
		defer rows.Close()
		for rows.Next() {
			var ref string
			if err := rows.Scan(&ref); err != nil {
				return err
			}
			refs = append(refs, prefix+":"+ref)
		}
		return rows.Err()
	}

	err := collect("workout",
		`SELECT w.id FROM workouts_v2 w
		 WHERE EXISTS (
		   SELECT 1 FROM json_each(w.exercises) e
		   WHERE json_extract(e.value, '$.exerciseId') = ?
		      OR EXISTS (
		        SELECT 1 FROM json_each(e.value, '$.sets') s
		        WHERE json_extract(s.value, '$.exerciseId') = ?))
		 ORDER BY w.date`, id, id)
	if err != nil {
		return nil, err
	}
	err = collect("session",
		`SELECT id FROM training_sessions_v2 WHERE exercise_id = ? ORDER BY date`, id)
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func duplicateNameViolation(name string) models.Violation {
	return models.Violation{
		Field:   "name",
		Rule:    models.RuleUnique,
		Message: fmt.Sprintf("an exercise named %q already exists", strings.TrimSpace(name)),
	}
}

// withViolation adds v to the violations carried by err, creating the
// ValidationError when err is nil.
func withViolation(err error, entity string, v models.Violation) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		verr.Violations = append(verr.Violations, v)
		return verr
	}
	return &models.ValidationError{Entity: entity, Violations: []models.Violation{v}}
}
