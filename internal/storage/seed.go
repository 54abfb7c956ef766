package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/claude/liftlog/internal/models"
)

//go:embed seed/exercises.yaml
var seedCatalog []byte

type catalogEntry struct {
	Name         string                  `yaml:"name"`
	Category     models.ExerciseCategory `yaml:"category"`
	MuscleGroups []models.MuscleGroup    `yaml:"muscle_groups"`
	Equipment    string                  `yaml:"equipment"`
	Notes        string                  `yaml:"notes"`
}

// DefaultExercises parses the built-in exercise catalog.
func DefaultExercises() ([]models.Exercise, error) {
	var doc struct {
		Exercises []catalogEntry `yaml:"exercises"`
	}
	if err := yaml.Unmarshal(seedCatalog, &doc); err != nil {
		return nil, fmt.Errorf("parsing exercise catalog: %w", err)
	}
	out := make([]models.Exercise, 0, len(doc.Exercises))
	for _, c := range doc.Exercises {
		e := models.Exercise{
			Name:         c.Name,
			Category:     c.Category,
			MuscleGroups: c.MuscleGroups,
			Equipment:    c.Equipment,
			Notes:        c.Notes,
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", c.Name, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// SeedExercises installs the built-in catalog when the exercise library is
// empty and returns the number of exercises added.
func (db *DB) SeedExercises(ctx context.Context) (int, error) {
	catalog, err := DefaultExercises()
	if err != nil {
		return 0, err
	}
	added := 0
	err = db.write(ctx, "exercise", "seed", []string{TableExercises}, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM exercises_v2`).Scan(&n); err != nil {
			return fmt.Errorf("counting exercises: %w", err)
		}
		if n > 0 {
			return nil
		}
		now := db.now()
		for _, e := range catalog {
			e.ID = uuid.NewString()
			e.CreatedAt, e.UpdatedAt = now, now
			e.Sanitize()
			if err := insertExercise(ctx, tx, e); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seeding exercises: %w", err)
	}
	if added > 0 {
		db.logger.Info("seeded exercise library", "count", added)
	}
	return added, nil
}
