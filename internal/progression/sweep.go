package progression

import (
	"context"
	"fmt"

	"github.com/robfig/cron"
)

// DefaultCompletionSchedule runs the completion sweep once an hour.
const DefaultCompletionSchedule = "@hourly"

// Sweeper periodically completes an active mesocycle whose end date has
// passed, so blocks finish even when no workout is logged.
type Sweeper struct {
	engine *Engine
	cron   *cron.Cron
}

// NewSweeper schedules the completion check on spec (cron syntax or a
// descriptor such as @hourly).
func NewSweeper(engine *Engine, spec string) (*Sweeper, error) {
	if spec == "" {
		spec = DefaultCompletionSchedule
	}
	s := &Sweeper{engine: engine, cron: cron.New()}
	if err := s.cron.AddFunc(spec, s.Run); err != nil {
		return nil, fmt.Errorf("scheduling completion sweep %q: %w", spec, err)
	}
	return s, nil
}

// Run performs one sweep.
func (s *Sweeper) Run() {
	done, err := s.engine.CheckActiveCompletion(context.Background())
	if err != nil {
		s.engine.logger.Error("completion sweep failed", "error", err)
		return
	}
	if done {
		s.engine.logger.Info("completion sweep closed the active mesocycle")
	}
}

// Start runs the schedule in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}
