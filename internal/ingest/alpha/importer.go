package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

const importedNote = "Imported from Alpha Progression"

// Result summarises one import.
type Result struct {
	SessionsReceived  int      `json:"sessionsReceived"`
	WorkoutsCreated   int      `json:"workoutsCreated"`
	SessionsSkipped   int      `json:"sessionsSkipped"`
	SetsImported      int      `json:"setsImported"`
	WarmupSetsSkipped int      `json:"warmupSetsSkipped"`
	ExercisesCreated  []string `json:"exercisesCreated,omitempty"`
}

// Importer turns Alpha Progression exports into completed workouts.
type Importer struct {
	db  *storage.DB
	log *slog.Logger
	loc *time.Location
}

// NewImporter creates an Importer. Session start times in the export are
// read as wall-clock time in loc.
func NewImporter(db *storage.DB, log *slog.Logger, loc *time.Location) *Importer {
	if loc == nil {
		loc = time.Local
	}
	return &Importer{db: db, log: log, loc: loc}
}

// Ingest parses an export and stores one completed workout per session.
// Exercises are matched to the library by name, ignoring case, and created
// when missing. A session whose start time already holds a workout is
// skipped, so importing the same export twice changes nothing. Warmup sets
// are not stored.
func (im *Importer) Ingest(ctx context.Context, r io.Reader) (*Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, err
	}
	result := &Result{SessionsReceived: len(sessions)}

	library, err := im.libraryIndex(ctx)
	if err != nil {
		return nil, err
	}

	for _, s := range sessions {
		date := time.Date(s.Started.Year(), s.Started.Month(), s.Started.Day(),
			s.Started.Hour(), s.Started.Minute(), 0, 0, im.loc)

		existing, err := im.db.WorkoutsInRange(ctx, date, date.Add(time.Minute))
		if err != nil {
			return result, fmt.Errorf("checking for an imported session at %s: %w", date.Format(time.RFC3339), err)
		}
		if len(existing) > 0 {
			result.SessionsSkipped++
			continue
		}

		w := models.Workout{
			Date:            date,
			Completed:       true,
			DurationMinutes: clampDuration(s.DurationMinutes),
			Notes:           s.Name,
		}
		for _, ex := range s.Exercises {
			result.WarmupSetsSkipped += len(ex.Warmups)
			if len(ex.Sets) == 0 {
				continue
			}
			id, err := im.exerciseID(ctx, library, ex, result)
			if err != nil {
				return result, err
			}
			w.Exercises = append(w.Exercises, workoutExercise(id, ex))
			result.SetsImported += len(ex.Sets)
		}
		if len(w.Exercises) == 0 {
			result.SessionsSkipped++
			continue
		}

		if _, err := im.db.CreateWorkout(ctx, w); err != nil {
			return result, fmt.Errorf("storing session %q of %s: %w", s.Name, date.Format(time.DateOnly), err)
		}
		result.WorkoutsCreated++
	}

	im.log.Info("alpha import complete",
		"sessions", result.SessionsReceived,
		"created", result.WorkoutsCreated,
		"skipped", result.SessionsSkipped,
		"new_exercises", len(result.ExercisesCreated),
	)
	return result, nil
}

func foldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func (im *Importer) libraryIndex(ctx context.Context) (map[string]string, error) {
	list, err := im.db.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading exercise library: %w", err)
	}
	index := make(map[string]string, len(list))
	for _, e := range list {
		index[foldName(e.Name)] = e.ID
	}
	return index, nil
}

func (im *Importer) exerciseID(ctx context.Context, library map[string]string, ex Exercise, result *Result) (string, error) {
	key := foldName(ex.Name)
	if id, ok := library[key]; ok {
		return id, nil
	}
	id, err := im.db.CreateExercise(ctx, models.Exercise{
		Name:         ex.Name,
		Category:     categoryFor(ex.Equipment),
		MuscleGroups: guessMuscleGroups(ex.Name),
		Equipment:    ex.Equipment,
		Notes:        importedNote,
		IsCustom:     true,
	})
	if err != nil {
		return "", fmt.Errorf("creating exercise %q: %w", ex.Name, err)
	}
	library[key] = id
	result.ExercisesCreated = append(result.ExercisesCreated, ex.Name)
	im.log.Debug("created exercise from alpha import", "name", ex.Name, "id", id)
	return id, nil
}

// workoutExercise converts the working sets of ex. A set logged with no
// reps is kept as not completed.
func workoutExercise(exerciseID string, ex Exercise) models.WorkoutExercise {
	target := clampReps(ex.TargetReps)
	we := models.WorkoutExercise{ExerciseID: exerciseID, Sets: make([]models.WorkoutSet, 0, len(ex.Sets))}
	for i, s := range ex.Sets {
		set := models.WorkoutSet{
			ExerciseID: exerciseID,
			SetNumber:  i + 1,
			TargetReps: target,
			Weight:     s.Weight,
		}
		if s.Reps >= models.MinReps {
			reps := clampReps(s.Reps)
			set.ActualReps = &reps
			set.Completed = true
		}
		if s.RIR != nil {
			rir := min(max(int(math.Round(*s.RIR)), 0), models.MaxRIR)
			set.RIR = &rir
		}
		we.Sets = append(we.Sets, set)
	}
	return we
}

func clampReps(n int) int {
	return min(max(n, models.MinReps), models.MaxReps)
}

func clampDuration(d *int) *int {
	if d == nil {
		return nil
	}
	v := min(max(*d, 0), models.MaxDurationMinutes)
	return &v
}
