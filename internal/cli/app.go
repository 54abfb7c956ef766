package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/progression"
	"github.com/claude/liftlog/internal/storage"
)

// app is the set of long-lived components a command runs against.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	registry *prometheus.Registry
	db       *storage.DB
	engine   *progression.Engine

	logCloser io.Closer
}

// newLogger writes to a rotating file when log.file is set, otherwise to
// fallback.
func newLogger(cfg config.LogConfig, fallback io.Writer) (*slog.Logger, io.Closer) {
	var out io.Writer = fallback
	var closer io.Closer
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		out, closer = lj, lj
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.SlogLevel()})), closer
}

// loadConfig reads the config and builds the logger.
func loadConfig(opts *RootOptions, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log, closer := newLogger(cfg.Log, logOut)
	return &app{cfg: cfg, log: log, logCloser: closer}, nil
}

// openApp loads the config, opens the store and attaches the progression
// engine.
func openApp(ctx context.Context, opts *RootOptions, logOut io.Writer) (*app, error) {
	a, err := loadConfig(opts, logOut)
	if err != nil {
		return nil, err
	}

	loc, err := a.cfg.Progression.Location()
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("loading timezone: %w", err), a.Close())
	}

	a.registry = metrics.Setup()
	db, err := storage.Open(ctx, a.cfg.Store.Path, a.log, storage.Options{
		KeepCorruptBackup: a.cfg.Store.KeepCorruptBackup,
		SeedExercises:     a.cfg.Store.SeedExercises,
		Metrics:           metrics.NewManager("liftlog", "", a.registry),
	})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("opening store %s: %w", a.cfg.Store.Path, err), a.Close())
	}
	a.db = db

	a.engine = progression.New(db, a.log, progression.Options{
		Location:       loc,
		FirstDayOfWeek: models.FirstDayOfWeek(a.cfg.Progression.FirstDayOfWeek),
	})
	a.engine.Attach()
	return a, nil
}

// Close closes the store and the log file.
func (a *app) Close() error {
	var err error
	if a.db != nil {
		err = multierr.Append(err, a.db.Close())
	}
	if a.logCloser != nil {
		err = multierr.Append(err, a.logCloser.Close())
	}
	return err
}
