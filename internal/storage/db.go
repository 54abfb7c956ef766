package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/schema"
)

// Table names of the live collections.
const (
	TableProfiles   = "user_profiles_v2"
	TableExercises  = "exercises_v2"
	TableWorkouts   = "workouts_v2"
	TableSessions   = "training_sessions_v2"
	TableMesocycles = "mesocycles"
)

// AllTables lists every live collection.
var AllTables = []string{TableProfiles, TableExercises, TableWorkouts, TableSessions, TableMesocycles}

// Options configures Open.
type Options struct {
	// KeepCorruptBackup keeps a copy of a store that had to be reset.
	KeepCorruptBackup bool
	// SeedExercises fills an empty exercise library from the built-in catalog.
	SeedExercises bool
	// Now overrides the clock used for timestamps and date validation.
	Now     func() time.Time
	Metrics *metrics.Manager
}

// CompletionHook is called after a completed workout that belongs to a
// mesocycle has been committed.
type CompletionHook func(ctx context.Context, w models.Workout)

// DB is the on-device store. One DB is created at startup and shared by
// every component; all writes are serialized through it.
type DB struct {
	sql     *sql.DB
	logger  *slog.Logger
	metrics *metrics.Manager
	schema  *schema.Manager
	now     func() time.Time

	writeMu sync.Mutex

	hookMu    sync.RWMutex
	hook      CompletionHook
	associate Associator

	live *hub
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens the store at path, migrating or resetting it as needed.
func Open(ctx context.Context, path string, logger *slog.Logger, opts Options) (*DB, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewTestManager()
	}

	mgr, err := schema.NewManager(Versions(logger), logger, schema.Options{
		KeepCorruptBackup: opts.KeepCorruptBackup,
		OnReset: func(e *schema.MigrationError) {
			opts.Metrics.CounterStoreResets.WithLabelValues(string(e.Kind)).Inc()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("building schema manager: %w", err)
	}
	sqlDB, err := mgr.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	db := &DB{
		sql:     sqlDB,
		logger:  logger,
		metrics: opts.Metrics,
		schema:  mgr,
		now:     opts.Now,
		live:    newHub(opts.Metrics),
	}
	if opts.SeedExercises {
		if _, err := db.SeedExercises(ctx); err != nil {
			return nil, multierr.Append(err, db.Close())
		}
	}
	return db, nil
}

// Close stops live subscriptions and closes the store.
func (db *DB) Close() error {
	db.live.close()
	return db.sql.Close()
}

// SchemaVersion reports the store's recorded schema version.
func (db *DB) SchemaVersion(ctx context.Context) (int, bool, error) {
	return db.schema.Status(ctx, db.sql)
}

// LatestSchemaVersion is the version this build creates and migrates to.
func (db *DB) LatestSchemaVersion() int {
	return db.schema.Latest()
}

// Now returns the store's clock reading.
func (db *DB) Now() time.Time {
	return db.now()
}

// Metrics returns the collectors the store reports to.
func (db *DB) Metrics() *metrics.Manager {
	return db.metrics
}

// SetCompletionHook registers the completed-workout side effect.
func (db *DB) SetCompletionHook(h CompletionHook) {
	db.hookMu.Lock()
	db.hook = h
	db.hookMu.Unlock()
}

func (db *DB) fireCompletion(ctx context.Context, w models.Workout) {
	if !w.Completed || w.MesocycleID == "" {
		return
	}
	db.hookMu.RLock()
	h := db.hook
	db.hookMu.RUnlock()
	if h != nil {
		h(ctx, w)
	}
}

// write runs fn in one transaction under the store-wide write lock and
// notifies live subscribers of tables after commit. fn must only use tx.
func (db *DB) write(ctx context.Context, entity, op string, tables []string, fn func(tx *sql.Tx) error) error {
	db.writeMu.Lock()
	err := db.inTx(ctx, fn)
	db.writeMu.Unlock()
	if err != nil {
		return err
	}
	db.metrics.CounterWrites.WithLabelValues(entity, op).Inc()
	db.live.notify(tables)
	return nil
}

func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		return multierr.Append(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// invalid counts a validation failure and passes the error through.
func (db *DB) invalid(entity string, err error) error {
	if models.Violations(err) != nil {
		db.metrics.CounterValidationFails.WithLabelValues(entity).Inc()
	}
	return err
}
