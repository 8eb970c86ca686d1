/*
scheduler.go - Periodic travel window generation

PURPOSE:
  Runs a full generation pass on a fixed interval while the API is
  serving, so users added through the API get windows without a manual
  POST /api/generate.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start
  - Users that already have windows are skipped by the planner itself,
    so repeated runs are cheap and idempotent
  - A run in progress is never overlapped by the next tick

CONFIGURATION:
  - Interval: How often to run (planner.schedule_interval, default 24h)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewGenerationScheduler(planner, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunGeneration endpoint (manual run)
  - planner/planner.go: Run
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/travel-windows/planner"
)

// Runner is the part of planner.Planner the scheduler drives.
type Runner interface {
	Run(ctx context.Context) (planner.Report, error)
}

// GenerationScheduler runs the planner periodically.
type GenerationScheduler struct {
	Runner   Runner
	Interval time.Duration
	Enabled  bool
	Log      zerolog.Logger

	ticker *time.Ticker
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex

	runMu   sync.Mutex
	lastRun time.Time
	last    planner.Report
}

func NewGenerationScheduler(r Runner, log zerolog.Logger) *GenerationScheduler {
	return &GenerationScheduler{
		Runner:   r,
		Interval: 24 * time.Hour,
		Enabled:  true,
		Log:      log,
	}
}

// Start begins the scheduler.
func (gs *GenerationScheduler) Start() {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if !gs.Enabled || gs.Interval <= 0 {
		gs.Log.Info().Msg("scheduler disabled, not starting")
		return
	}
	if gs.ticker != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	gs.cancel = cancel
	gs.ticker = time.NewTicker(gs.Interval)
	gs.wg.Add(1)

	go gs.run(ctx)

	gs.Log.Info().Dur("interval", gs.Interval).Msg("scheduler started")
}

// Stop cancels any run in progress and waits for the loop to exit.
func (gs *GenerationScheduler) Stop() {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.ticker == nil {
		return
	}
	gs.ticker.Stop()
	gs.cancel()
	gs.wg.Wait()
	gs.ticker = nil
	gs.Log.Info().Msg("scheduler stopped")
}

func (gs *GenerationScheduler) run(ctx context.Context) {
	defer gs.wg.Done()

	gs.RunNow(ctx)

	for {
		select {
		case <-gs.ticker.C:
			gs.RunNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunNow triggers an immediate run and blocks until it finishes.
func (gs *GenerationScheduler) RunNow(ctx context.Context) planner.Report {
	gs.runMu.Lock()
	defer gs.runMu.Unlock()

	report, err := gs.Runner.Run(ctx)
	if err != nil {
		gs.Log.Error().Err(err).Msg("scheduled generation failed")
	}
	gs.lastRun = time.Now()
	gs.last = report
	return report
}

// LastRun returns when the previous run finished and its report.
func (gs *GenerationScheduler) LastRun() (time.Time, planner.Report) {
	gs.runMu.Lock()
	defer gs.runMu.Unlock()
	return gs.lastRun, gs.last
}

// GetNextRunTime returns when the next scheduled run will occur.
func (gs *GenerationScheduler) GetNextRunTime() time.Time {
	last, _ := gs.LastRun()
	if last.IsZero() {
		last = time.Now()
	}
	return last.Add(gs.Interval)
}
