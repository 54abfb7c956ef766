package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/progression"
	"github.com/claude/liftlog/internal/storage"
)

// DataSource is the read-only view of a training log the MCP tools query.
// Local reads the store directly; HTTPClient reads a running liftlog
// server.
type DataSource interface {
	Stats(ctx context.Context) (*analytics.Stats, error)
	Exercises(ctx context.Context) ([]models.Exercise, error)
	PersonalRecords(ctx context.Context, exerciseID string) ([]analytics.PersonalRecord, error)
	ProgressTrend(ctx context.Context, exerciseID string) ([]analytics.TrendPoint, error)
	MuscleGroupVolume(ctx context.Context, start, end time.Time) (*analytics.MuscleGroupReport, error)
	Workouts(ctx context.Context, start, end time.Time) ([]models.Workout, error)
	RecentWorkouts(ctx context.Context, limit int) ([]models.Workout, error)
	// ActiveMesocycle returns nil when no mesocycle is active.
	ActiveMesocycle(ctx context.Context) (*models.Mesocycle, error)
	// Profile returns nil when no profile has been created.
	Profile(ctx context.Context) (*models.UserProfile, error)
	TrainingSummary(ctx context.Context, period string, start, end time.Time) ([]analytics.PeriodSummary, error)
	TrainingIntensity(ctx context.Context, start, end time.Time) (*analytics.IntensityReport, error)
}

// Local answers queries from an open store.
type Local struct {
	db     *storage.DB
	engine *progression.Engine
}

var _ DataSource = (*Local)(nil)

// NewLocal returns a DataSource over db. The engine supplies the calendar
// location and week start.
func NewLocal(db *storage.DB, engine *progression.Engine) *Local {
	return &Local{db: db, engine: engine}
}

func (l *Local) Stats(ctx context.Context) (*analytics.Stats, error) {
	workouts, err := l.db.ListWorkouts(ctx)
	if err != nil {
		return nil, err
	}
	stats := analytics.ComputeStats(workouts, l.db.Now(), l.engine.Location())
	return &stats, nil
}

func (l *Local) Exercises(ctx context.Context) ([]models.Exercise, error) {
	return l.db.ListExercises(ctx)
}

func (l *Local) PersonalRecords(ctx context.Context, exerciseID string) ([]analytics.PersonalRecord, error) {
	workouts, err := l.db.CompletedWorkouts(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.PersonalRecords(workouts, exerciseID), nil
}

func (l *Local) ProgressTrend(ctx context.Context, exerciseID string) ([]analytics.TrendPoint, error) {
	workouts, err := l.db.CompletedWorkouts(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ProgressTrend(workouts, exerciseID), nil
}

func (l *Local) MuscleGroupVolume(ctx context.Context, start, end time.Time) (*analytics.MuscleGroupReport, error) {
	workouts, err := l.db.WorkoutsInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	index, err := l.db.ExerciseIndex(ctx)
	if err != nil {
		return nil, err
	}
	report := analytics.MuscleGroupVolumes(workouts, index, analytics.Window{Start: start, End: end})
	return &report, nil
}

func (l *Local) Workouts(ctx context.Context, start, end time.Time) ([]models.Workout, error) {
	return l.db.WorkoutsInRange(ctx, start, end)
}

func (l *Local) RecentWorkouts(ctx context.Context, limit int) ([]models.Workout, error) {
	return l.db.RecentWorkouts(ctx, limit)
}

func (l *Local) ActiveMesocycle(ctx context.Context) (*models.Mesocycle, error) {
	return l.db.ActiveMesocycle(ctx)
}

func (l *Local) Profile(ctx context.Context) (*models.UserProfile, error) {
	p, err := l.db.Profile(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	return p, err
}

func (l *Local) TrainingSummary(ctx context.Context, period string, start, end time.Time) ([]analytics.PeriodSummary, error) {
	workouts, err := l.db.CompletedWorkouts(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.VolumeByPeriod(workouts, period, analytics.Window{Start: start, End: end},
		l.engine.Location(), l.engine.FirstDayOfWeek(ctx))
}

func (l *Local) TrainingIntensity(ctx context.Context, start, end time.Time) (*analytics.IntensityReport, error) {
	workouts, err := l.db.CompletedWorkouts(ctx)
	if err != nil {
		return nil, err
	}
	index, err := l.db.ExerciseIndex(ctx)
	if err != nil {
		return nil, err
	}
	report := analytics.TrainingIntensity(workouts, index, analytics.Window{Start: start, End: end})
	return &report, nil
}

func isNotFound(err error) bool {
	var nf *storage.NotFoundError
	return errors.As(err, &nf)
}
