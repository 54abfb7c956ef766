package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

const defaultTargetReps = 10

// Options configures an Engine.
type Options struct {
	// Location decides calendar days. Defaults to time.Local.
	Location *time.Location
	// FirstDayOfWeek is used when no profile is stored. Defaults to Monday.
	FirstDayOfWeek models.FirstDayOfWeek
}

// Engine keeps mesocycles in step with the workouts logged against them.
type Engine struct {
	db       *storage.DB
	logger   *slog.Logger
	loc      *time.Location
	firstDay models.FirstDayOfWeek
}

// Association links a workout date to a mesocycle week.
type Association struct {
	MesocycleID string `json:"mesocycleId"`
	WeekNumber  int    `json:"weekNumber"`
}

// New creates an Engine over db.
func New(db *storage.DB, logger *slog.Logger, opts Options) *Engine {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if !opts.FirstDayOfWeek.Valid() {
		opts.FirstDayOfWeek = models.WeekStartsMonday
	}
	return &Engine{db: db, logger: logger, loc: opts.Location, firstDay: opts.FirstDayOfWeek}
}

// Attach registers the engine with the store: new workouts are linked to
// the active mesocycle and completed workouts advance it.
func (e *Engine) Attach() {
	e.db.SetAssociator(e.associate)
	e.db.SetCompletionHook(e.OnWorkoutSaved)
}

func (e *Engine) associate(ctx context.Context, date time.Time) (string, int, error) {
	a, err := e.AutoAssociate(ctx, date)
	if err != nil || a == nil {
		return "", 0, err
	}
	return a.MesocycleID, a.WeekNumber, nil
}

// AutoAssociate returns the active mesocycle week date falls in, or nil when
// there is no active mesocycle or date is outside it.
func (e *Engine) AutoAssociate(ctx context.Context, date time.Time) (*Association, error) {
	m, err := e.db.ActiveMesocycle(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading active mesocycle: %w", err)
	}
	if m == nil {
		return nil, nil
	}
	week, ok := CalculateWeek(*m, date, e.loc)
	if !ok {
		return nil, nil
	}
	return &Association{MesocycleID: m.ID, WeekNumber: week}, nil
}

// UpdateProgress sets the current week of an active mesocycle from its most
// recent completed workout. Calling it again without new workouts changes
// nothing.
func (e *Engine) UpdateProgress(ctx context.Context, mesocycleID string) error {
	m, err := e.db.GetMesocycle(ctx, mesocycleID)
	if err != nil {
		return err
	}
	if m.Status != models.StatusActive {
		return nil
	}
	workouts, err := e.db.WorkoutsByMesocycle(ctx, mesocycleID)
	if err != nil {
		return fmt.Errorf("loading workouts of mesocycle %s: %w", mesocycleID, err)
	}
	latest := latestCompleted(workouts)
	if latest == nil {
		return nil
	}
	week, ok := CalculateWeek(*m, latest.Date, e.loc)
	if !ok || week == m.CurrentWeek {
		return nil
	}
	if err := e.db.UpdateMesocycle(ctx, mesocycleID, models.MesocyclePatch{CurrentWeek: &week}); err != nil {
		return fmt.Errorf("advancing mesocycle %s: %w", mesocycleID, err)
	}
	e.logger.Info("mesocycle week updated", "mesocycle", mesocycleID, "from", m.CurrentWeek, "to", week)
	return nil
}

func latestCompleted(workouts []models.Workout) *models.Workout {
	var latest *models.Workout
	for i := range workouts {
		w := &workouts[i]
		if !w.Completed {
			continue
		}
		if latest == nil || w.Date.After(latest.Date) {
			latest = w
		}
	}
	return latest
}

// CheckCompletion moves an active mesocycle to completed once the current
// day is past its end date. It reports whether the status changed.
func (e *Engine) CheckCompletion(ctx context.Context, mesocycleID string) (bool, error) {
	m, err := e.db.GetMesocycle(ctx, mesocycleID)
	if err != nil {
		return false, err
	}
	if m.Status != models.StatusActive {
		return false, nil
	}
	today := localMidnight(e.db.Now(), e.loc)
	if !today.After(localMidnight(m.EndDate, e.loc)) {
		return false, nil
	}
	completed := models.StatusCompleted
	if err := e.db.UpdateMesocycle(ctx, mesocycleID, models.MesocyclePatch{Status: &completed}); err != nil {
		return false, fmt.Errorf("completing mesocycle %s: %w", mesocycleID, err)
	}
	e.logger.Info("mesocycle completed", "mesocycle", mesocycleID, "end", m.EndDate.Format(time.DateOnly))
	return true, nil
}

// CheckActiveCompletion runs CheckCompletion for the active mesocycle.
func (e *Engine) CheckActiveCompletion(ctx context.Context) (bool, error) {
	m, err := e.db.ActiveMesocycle(ctx)
	if err != nil || m == nil {
		return false, err
	}
	return e.CheckCompletion(ctx, m.ID)
}

// OnWorkoutSaved is the store's completion hook.
func (e *Engine) OnWorkoutSaved(ctx context.Context, w models.Workout) {
	if err := e.UpdateProgress(ctx, w.MesocycleID); err != nil {
		var nf *storage.NotFoundError
		if errors.As(err, &nf) {
			e.logger.Warn("workout references missing mesocycle", "workout", w.ID, "mesocycle", w.MesocycleID)
			return
		}
		e.logger.Error("updating mesocycle progress", "mesocycle", w.MesocycleID, "error", err)
		return
	}
	if _, err := e.CheckCompletion(ctx, w.MesocycleID); err != nil {
		e.logger.Error("checking mesocycle completion", "mesocycle", w.MesocycleID, "error", err)
	}
}

// Location is the zone calendar days are taken in.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// FirstDayOfWeek returns the profile's week start, falling back to the
// engine default.
func (e *Engine) FirstDayOfWeek(ctx context.Context) models.FirstDayOfWeek {
	p, err := e.db.Profile(ctx)
	if err != nil {
		var nf *storage.NotFoundError
		if !errors.As(err, &nf) {
			e.logger.Warn("reading profile for week start", "error", err)
		}
		return e.firstDay
	}
	if !p.Preferences.FirstDayOfWeek.Valid() {
		return e.firstDay
	}
	return p.Preferences.FirstDayOfWeek
}

// NextSplitDayFor loads a mesocycle and its workouts and returns the split
// day to train next, or nil when it has no split days.
func (e *Engine) NextSplitDayFor(ctx context.Context, mesocycleID string) (*models.MesocycleSplitDay, error) {
	m, err := e.db.GetMesocycle(ctx, mesocycleID)
	if err != nil {
		return nil, err
	}
	workouts, err := e.db.WorkoutsByMesocycle(ctx, mesocycleID)
	if err != nil {
		return nil, fmt.Errorf("loading workouts of mesocycle %s: %w", mesocycleID, err)
	}
	return NextSplitDay(*m, workouts, e.db.Now(), e.loc, e.FirstDayOfWeek(ctx)), nil
}

// StartWorkoutFromSplit builds an unsaved workout from a split day. Each
// configured exercise gets its target sets, reduced in the deload week, and
// a starting weight taken from the heaviest completed set of its most
// recent completed workout. Exercises missing from the library are skipped.
func (e *Engine) StartWorkoutFromSplit(ctx context.Context, mesocycleID, splitDayID string) (*models.Workout, error) {
	m, err := e.db.GetMesocycle(ctx, mesocycleID)
	if err != nil {
		return nil, err
	}
	day, ok := m.SplitDay(splitDayID)
	if !ok {
		return nil, &storage.NotFoundError{Entity: "split day", ID: splitDayID}
	}

	now := e.db.Now()
	week, ok := CalculateWeek(*m, now, e.loc)
	if !ok {
		week = m.CurrentWeek
	}
	deload := week == m.DeloadWeek

	configured := append([]models.MesocycleExercise(nil), day.Exercises...)
	sort.SliceStable(configured, func(i, j int) bool { return configured[i].Order < configured[j].Order })

	w := &models.Workout{
		Date:        now,
		MesocycleID: m.ID,
		WeekNumber:  week,
		SplitDayID:  day.ID,
		Exercises:   make([]models.WorkoutExercise, 0, len(configured)),
	}
	for _, ce := range configured {
		if _, err := e.db.GetExercise(ctx, ce.ExerciseID); err != nil {
			var nf *storage.NotFoundError
			if errors.As(err, &nf) {
				e.logger.Warn("skipping missing exercise in split day",
					"mesocycle", m.ID, "split_day", day.ID, "exercise", ce.ExerciseID)
				continue
			}
			return nil, err
		}
		weight, err := e.lastWeight(ctx, ce.ExerciseID)
		if err != nil {
			return nil, err
		}
		sets := ce.TargetSets
		if deload {
			sets = deloadSets(sets)
		}
		reps := targetReps(ce.RepsMin, ce.RepsMax)
		entry := models.WorkoutExercise{ExerciseID: ce.ExerciseID, Notes: ce.Notes, Sets: make([]models.WorkoutSet, 0, sets)}
		for i := 0; i < sets; i++ {
			entry.Sets = append(entry.Sets, models.WorkoutSet{
				ExerciseID: ce.ExerciseID,
				SetNumber:  i + 1,
				TargetReps: reps,
				Weight:     weight,
			})
		}
		w.Exercises = append(w.Exercises, entry)
	}
	return w, nil
}

// lastWeight returns the heaviest completed set weight for exerciseID in the
// most recent completed workout that contains it, or 0.
func (e *Engine) lastWeight(ctx context.Context, exerciseID string) (float64, error) {
	recent, err := e.db.CompletedWorkoutsWithExercise(ctx, exerciseID, 1)
	if err != nil {
		return 0, fmt.Errorf("loading history of exercise %s: %w", exerciseID, err)
	}
	if len(recent) == 0 {
		return 0, nil
	}
	var heaviest float64
	for _, we := range recent[0].Exercises {
		if we.ExerciseID != exerciseID {
			continue
		}
		for _, s := range we.Sets {
			if s.Completed && s.Weight > heaviest {
				heaviest = s.Weight
			}
		}
	}
	return heaviest, nil
}
