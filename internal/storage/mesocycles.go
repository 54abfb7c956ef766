package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
)

const mesocycleColumns = `id, name, start_date, end_date, duration_weeks, current_week, deload_week,
	training_split, split_days, status, notes, created_at, updated_at`

func scanMesocycle(s scanner) (models.Mesocycle, error) {
	var (
		m                   models.Mesocycle
		start, end          string
		split, days, status string
		created, updated    string
	)
	if err := s.Scan(&m.ID, &m.Name, &start, &end, &m.DurationWeeks, &m.CurrentWeek, &m.DeloadWeek,
		&split, &days, &status, &m.Notes, &created, &updated); err != nil {
		return m, err
	}
	m.TrainingSplit = models.TrainingSplit(split)
	m.Status = models.MesocycleStatus(status)
	if err := decodeJSON(days, &m.SplitDays); err != nil {
		return m, fmt.Errorf("decoding split days of mesocycle %s: %w", m.ID, err)
	}
	if m.SplitDays == nil {
		m.SplitDays = []models.MesocycleSplitDay{}
	}
	var err error
	if m.StartDate, err = parseTime(start); err != nil {
		return m, err
	}
	if m.EndDate, err = parseTime(end); err != nil {
		return m, err
	}
	if m.CreatedAt, err = parseTime(created); err != nil {
		return m, err
	}
	if m.UpdatedAt, err = parseTime(updated); err != nil {
		return m, err
	}
	return m, nil
}

func mesocycleArgs(m models.Mesocycle) ([]any, error) {
	days, err := encodeJSON(m.SplitDays)
	if err != nil {
		return nil, fmt.Errorf("encoding split days: %w", err)
	}
	return []any{
		m.ID, m.Name, formatTime(m.StartDate), formatTime(m.EndDate), m.DurationWeeks, m.CurrentWeek, m.DeloadWeek,
		string(m.TrainingSplit), days, string(m.Status), m.Notes, formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	}, nil
}

func insertMesocycle(ctx context.Context, q querier, m models.Mesocycle) error {
	args, err := mesocycleArgs(m)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO mesocycles (`+mesocycleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
		return fmt.Errorf("inserting mesocycle: %w", err)
	}
	return nil
}

func queryMesocycles(ctx context.Context, q querier, query string, args ...any) ([]models.Mesocycle, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying mesocycles: %w", err)
	}
	defer rows.Close()

	var out []models.Mesocycle
	for rows.Next() {
		m, err := scanMesocycle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning mesocycle: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// assignSplitDayIDs gives every split day without an id a fresh one.
func assignSplitDayIDs(m *models.Mesocycle) {
	for i := range m.SplitDays {
		if m.SplitDays[i].ID == "" {
			m.SplitDays[i].ID = uuid.NewString()
		}
		if m.SplitDays[i].Exercises == nil {
			m.SplitDays[i].Exercises = []models.MesocycleExercise{}
		}
	}
}

func getMesocycle(ctx context.Context, q querier, id string) (*models.Mesocycle, error) {
	m, err := scanMesocycle(q.QueryRowContext(ctx,
		`SELECT `+mesocycleColumns+` FROM mesocycles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "mesocycle", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("querying mesocycle %s: %w", id, err)
	}
	return &m, nil
}

// GetMesocycle returns the mesocycle with id.
func (db *DB) GetMesocycle(ctx context.Context, id string) (*models.Mesocycle, error) {
	return getMesocycle(ctx, db.sql, id)
}

// ListMesocycles returns every mesocycle, most recent start first.
func (db *DB) ListMesocycles(ctx context.Context) ([]models.Mesocycle, error) {
	return queryMesocycles(ctx, db.sql, `SELECT `+mesocycleColumns+` FROM mesocycles ORDER BY start_date DESC, id`)
}

// MesocyclesByStatus returns the mesocycles in one status.
func (db *DB) MesocyclesByStatus(ctx context.Context, status models.MesocycleStatus) ([]models.Mesocycle, error) {
	return queryMesocycles(ctx, db.sql,
		`SELECT `+mesocycleColumns+` FROM mesocycles WHERE status = ? ORDER BY start_date DESC, id`, string(status))
}

// ActiveMesocycle returns the single active mesocycle, or nil when no
// mesocycle is active.
func (db *DB) ActiveMesocycle(ctx context.Context) (*models.Mesocycle, error) {
	list, err := db.MesocyclesByStatus(ctx, models.StatusActive)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// otherActive fails when a mesocycle other than id is already active.
func otherActive(ctx context.Context, q querier, id string) error {
	var other string
	err := q.QueryRowContext(ctx,
		`SELECT id FROM mesocycles WHERE status = 'active' AND id != ? LIMIT 1`, id).Scan(&other)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking active mesocycle: %w", err)
	}
	return &ReferentialIntegrityError{
		Entity:     "mesocycle",
		ID:         id,
		Reason:     "another mesocycle is already active",
		References: []string{"mesocycle:" + other},
	}
}

// CreateMesocycle validates and stores a new mesocycle. Only one mesocycle
// may be active at a time.
func (db *DB) CreateMesocycle(ctx context.Context, m models.Mesocycle) (string, error) {
	if m.CurrentWeek == 0 {
		m.CurrentWeek = 1
	}
	if m.Status == "" {
		m.Status = models.StatusPlanned
	}
	if err := m.Validate(); err != nil {
		return "", db.invalid("mesocycle", err)
	}
	now := db.now()
	m.ID = uuid.NewString()
	m.CreatedAt, m.UpdatedAt = now, now
	if m.SplitDays == nil {
		m.SplitDays = []models.MesocycleSplitDay{}
	}
	assignSplitDayIDs(&m)
	m.Sanitize()

	err := db.write(ctx, "mesocycle", "create", []string{TableMesocycles}, func(tx *sql.Tx) error {
		if m.Status == models.StatusActive {
			if err := otherActive(ctx, tx, m.ID); err != nil {
				return err
			}
		}
		return insertMesocycle(ctx, tx, m)
	})
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

// UpdateMesocycle merges patch onto the stored mesocycle, re-validates the
// merged record and enforces the single-active rule, all in one
// transaction.
func (db *DB) UpdateMesocycle(ctx context.Context, id string, patch models.MesocyclePatch) error {
	return db.write(ctx, "mesocycle", "update", []string{TableMesocycles}, func(tx *sql.Tx) error {
		m, err := getMesocycle(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(m)
		if err := m.Validate(); err != nil {
			return db.invalid("mesocycle", err)
		}
		assignSplitDayIDs(m)
		patch.SanitizeChanged(m)
		m.UpdatedAt = db.now()

		if m.Status == models.StatusActive {
			if err := otherActive(ctx, tx, id); err != nil {
				return err
			}
		}
		args, err := mesocycleArgs(*m)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE mesocycles SET name = ?, start_date = ?, end_date = ?, duration_weeks = ?, current_week = ?,
			 deload_week = ?, training_split = ?, split_days = ?, status = ?, notes = ?, created_at = ?, updated_at = ?
			 WHERE id = ?`, append(args[1:], args[0])...)
		if err != nil {
			return fmt.Errorf("updating mesocycle %s: %w", id, err)
		}
		return expectRow(res, "mesocycle", id)
	})
}

// DeleteMesocycle removes a mesocycle. Workouts keep their now dangling
// mesocycle reference.
func (db *DB) DeleteMesocycle(ctx context.Context, id string) error {
	return db.write(ctx, "mesocycle", "delete", []string{TableMesocycles}, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM mesocycles WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting mesocycle %s: %w", id, err)
		}
		return expectRow(res, "mesocycle", id)
	})
}
