package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
)

const profileColumns = `id, name, experience_level, preferences, created_at, updated_at`

func scanProfile(s scanner) (models.UserProfile, error) {
	var (
		p                models.UserProfile
		level, prefs     string
		created, updated string
	)
	if err := s.Scan(&p.ID, &p.Name, &level, &prefs, &created, &updated); err != nil {
		return p, err
	}
	p.ExperienceLevel = models.ExperienceLevel(level)
	p.Preferences = models.DefaultPreferences()
	if err := decodeJSON(prefs, &p.Preferences); err != nil {
		return p, fmt.Errorf("decoding preferences of profile %s: %w", p.ID, err)
	}
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return p, err
	}
	return p, nil
}

func insertProfile(ctx context.Context, q querier, p models.UserProfile) error {
	prefs, err := encodeJSON(p.Preferences)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO user_profiles_v2 (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(p.ExperienceLevel), prefs, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

// Profile returns the device's profile, the oldest one if several exist.
func (db *DB) Profile(ctx context.Context) (*models.UserProfile, error) {
	p, err := scanProfile(db.sql.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles_v2 ORDER BY created_at, id LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "profile", ID: "default"}
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &p, nil
}

func getProfile(ctx context.Context, q querier, id string) (*models.UserProfile, error) {
	p, err := scanProfile(q.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles_v2 WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "profile", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile %s: %w", id, err)
	}
	return &p, nil
}

// GetProfile returns the profile with id.
func (db *DB) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	return getProfile(ctx, db.sql, id)
}

func queryProfiles(ctx context.Context, q querier, query string, args ...any) ([]models.UserProfile, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var out []models.UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateProfile stores the single on-device profile. Unset preferences
// take their defaults.
func (db *DB) CreateProfile(ctx context.Context, p models.UserProfile) (string, error) {
	if p.Preferences == (models.Preferences{}) {
		p.Preferences = models.DefaultPreferences()
	}
	if err := p.Validate(); err != nil {
		return "", db.invalid("profile", err)
	}
	now := db.now()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Sanitize()

	err := db.write(ctx, "profile", "create", []string{TableProfiles}, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_profiles_v2`).Scan(&n); err != nil {
			return fmt.Errorf("counting profiles: %w", err)
		}
		if n > 0 {
			return &ReferentialIntegrityError{Entity: "profile", ID: p.ID, Reason: "a profile already exists on this device"}
		}
		return insertProfile(ctx, tx, p)
	})
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// EnsureProfile returns the existing profile, creating a default one named
// name on first run.
func (db *DB) EnsureProfile(ctx context.Context, name string) (*models.UserProfile, error) {
	p, err := db.Profile(ctx)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		return p, err
	}
	id, err := db.CreateProfile(ctx, models.UserProfile{
		Name:            name,
		ExperienceLevel: models.ExperienceBeginner,
		Preferences:     models.DefaultPreferences(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating default profile: %w", err)
	}
	db.logger.Info("created default profile", "id", id)
	return db.GetProfile(ctx, id)
}

// UpdateProfile merges patch onto the stored profile and re-validates it
// inside one transaction.
func (db *DB) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) error {
	return db.write(ctx, "profile", "update", []string{TableProfiles}, func(tx *sql.Tx) error {
		p, err := getProfile(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(p)
		if err := p.Validate(); err != nil {
			return db.invalid("profile", err)
		}
		patch.SanitizeChanged(p)
		p.UpdatedAt = db.now()

		prefs, err := encodeJSON(p.Preferences)
		if err != nil {
			return fmt.Errorf("encoding preferences: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE user_profiles_v2 SET name = ?, experience_level = ?, preferences = ?, updated_at = ? WHERE id = ?`,
			p.Name, string(p.ExperienceLevel), prefs, formatTime(p.UpdatedAt), id)
		if err != nil {
			return fmt.Errorf("updating profile %s: %w", id, err)
		}
		return expectRow(res, "profile", id)
	})
}

// DeleteProfile removes the profile with id.
func (db *DB) DeleteProfile(ctx context.Context, id string) error {
	return db.write(ctx, "profile", "delete", []string{TableProfiles}, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM user_profiles_v2 WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting profile %s: %w", id, err)
		}
		return expectRow(res, "profile", id)
	})
}

// expectRow turns a write that matched nothing into a NotFoundError.
func expectRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s %s: %w", entity, id, err)
	}
	if n == 0 {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return nil
}
