/*
planner.go - Batch travel window generation

PURPOSE:
  Drives one generation run over every user: load snapshots through
  generic.DataSource, run the windows.Selector, persist accepted windows.
  The selector stays pure; all I/O, logging and clock access live here.

FLOW (per user):
  1. HasExistingWindows -> skip (Run and PlanUser only, Regenerate ignores it)
  2. GetHolidays + GetPTOBudget snapshots
  3. Horizon [today, Dec 31] (or the configured year)
  4. Select
  5. Each accepted window: WindowExists -> count duplicate, else
     assign a UUID and PersistWindow

FAILURES:
  A failing user is logged and counted in the Report. It never aborts
  the run. Only a failing ListUsers or a cancelled context ends Run early.
  Windows persisted before a user fails are kept.

CONCURRENCY:
  Users fan out to a fixed pool of workers. Each user gets its own
  selection State, so no locking is needed around the selector.

SEE ALSO:
  - windows/selector.go: The scan itself
  - api/scheduler.go: Periodic trigger for Run
*/
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/travel-windows/generic"
	"github.com/warp/travel-windows/windows"
)

// Outcome classifies what happened to one user in a run.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// UserResult is the result of planning a single user.
type UserResult struct {
	UserID     generic.UserID   `json:"user_id"`
	Outcome    Outcome          `json:"outcome"`
	Horizon    generic.Period   `json:"horizon"`
	Created    []generic.Window `json:"created"`
	Duplicates int              `json:"duplicates"`
	Error      string           `json:"error,omitempty"`
}

// Report aggregates a full run.
type Report struct {
	UsersSeen  int           `json:"users_seen"`
	Processed  int           `json:"processed"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Created    int           `json:"windows_created"`
	Duplicates int           `json:"duplicates_suppressed"`
	Duration   time.Duration `json:"duration_ns"`
}

func (r *Report) add(res UserResult) {
	switch res.Outcome {
	case OutcomeProcessed:
		r.Processed++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
	r.Created += len(res.Created)
	r.Duplicates += res.Duplicates
}

// Options configures a Planner. Zero values fall back to sane defaults.
type Options struct {
	Selection windows.Config
	Workers   int
	// Year pins the horizon to one calendar year. Zero means the current year.
	Year    int
	Clock   generic.Clock
	Logger  zerolog.Logger
	Metrics *Metrics
}

type Planner struct {
	source   generic.DataSource
	selector *windows.Selector
	workers  int
	year     int
	clock    generic.Clock
	log      zerolog.Logger
	metrics  *Metrics
	newID    func() string
}

func New(source generic.DataSource, opts Options) *Planner {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Planner{
		source:   source,
		selector: windows.NewSelector(opts.Selection),
		workers:  workers,
		year:     opts.Year,
		clock:    clock,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		newID:    uuid.NewString,
	}
}

// Config returns the selector configuration this planner runs with.
func (p *Planner) Config() windows.Config { return p.selector.Config }

// Horizon returns the planning range for the current clock.
func (p *Planner) Horizon() (generic.Period, error) {
	today := generic.Today(p.clock)
	if p.year == 0 {
		return generic.Horizon(today), nil
	}
	start := generic.StartOfYear(p.year)
	if today.After(start) {
		start = today
	}
	end := generic.EndOfYear(p.year)
	if start.After(end) {
		return generic.Period{}, fmt.Errorf("year %d already over: %w", p.year, generic.ErrInvalidHorizon)
	}
	return generic.Period{Start: start, End: end}, nil
}

// =============================================================================
// RUN - Every user, bounded concurrency
// =============================================================================

// Run plans every user returned by ListUsers. The returned error is non-nil
// only when users cannot be listed or ctx is cancelled; the Report then
// covers the users handled so far.
func (p *Planner) Run(ctx context.Context) (Report, error) {
	started := p.clock()
	var report Report

	horizon, err := p.Horizon()
	if err != nil {
		return report, err
	}
	users, err := p.source.ListUsers(ctx)
	if err != nil {
		return report, fmt.Errorf("list users: %w", err)
	}
	report.UsersSeen = len(users)
	p.log.Info().Int("users", len(users)).Stringer("horizon", horizon).Msg("generation run started")

	jobs := make(chan generic.UserID)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				res, _ := p.plan(ctx, id, horizon, true)
				mu.Lock()
				report.add(res)
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, id := range users {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- id:
		}
	}
	close(jobs)
	wg.Wait()

	report.Duration = p.clock().Sub(started)
	p.metrics.recordRun(report.Duration)

	logEvent := p.log.Info()
	if report.Failed > 0 {
		logEvent = p.log.Warn()
	}
	logEvent.
		Int("processed", report.Processed).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("created", report.Created).
		Int("duplicates", report.Duplicates).
		Dur("duration", report.Duration).
		Msg("generation run finished")

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// PlanUser plans one user the way Run would, skipping users that already
// have windows.
func (p *Planner) PlanUser(ctx context.Context, userID generic.UserID) (UserResult, error) {
	return p.planOne(ctx, userID, true)
}

// Regenerate plans one user even when windows exist. Ranges already stored
// are counted as duplicates instead of being written twice.
func (p *Planner) Regenerate(ctx context.Context, userID generic.UserID) (UserResult, error) {
	return p.planOne(ctx, userID, false)
}

func (p *Planner) planOne(ctx context.Context, userID generic.UserID, skipExisting bool) (UserResult, error) {
	horizon, err := p.Horizon()
	if err != nil {
		return UserResult{UserID: userID, Outcome: OutcomeFailed, Error: err.Error()}, err
	}
	return p.plan(ctx, userID, horizon, skipExisting)
}

// Preview runs the selection for one user without persisting anything.
func (p *Planner) Preview(ctx context.Context, userID generic.UserID) (windows.Selection, error) {
	horizon, err := p.Horizon()
	if err != nil {
		return windows.Selection{}, err
	}
	holidays, budget, err := p.snapshot(ctx, userID)
	if err != nil {
		return windows.Selection{}, err
	}
	return p.selector.SelectDetailed(horizon, holidays, budget), nil
}

// =============================================================================
// PER USER
// =============================================================================

func (p *Planner) plan(ctx context.Context, userID generic.UserID, horizon generic.Period, skipExisting bool) (UserResult, error) {
	log := p.log.With().Str("user_id", string(userID)).Logger()
	res := UserResult{UserID: userID, Horizon: horizon}

	err := p.generate(ctx, userID, horizon, skipExisting, &res)
	switch {
	case err != nil:
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		log.Error().Err(err).Int("created", len(res.Created)).Msg("user generation failed")
	case res.Outcome == OutcomeSkipped:
		log.Debug().Msg("windows already exist, skipping")
	default:
		res.Outcome = OutcomeProcessed
		log.Info().Int("created", len(res.Created)).Int("duplicates", res.Duplicates).Msg("windows generated")
	}
	p.metrics.recordUser(res)
	return res, err
}

func (p *Planner) generate(ctx context.Context, userID generic.UserID, horizon generic.Period, skipExisting bool, res *UserResult) error {
	if skipExisting {
		exists, err := p.source.HasExistingWindows(ctx, userID)
		if err != nil {
			return fmt.Errorf("check existing windows: %w", err)
		}
		if exists {
			res.Outcome = OutcomeSkipped
			return nil
		}
	}

	holidays, budget, err := p.snapshot(ctx, userID)
	if err != nil {
		return err
	}

	for _, acc := range p.selector.Select(horizon, holidays, budget) {
		if err := ctx.Err(); err != nil {
			return err
		}
		exists, err := p.source.WindowExists(ctx, userID, acc.Period)
		if err != nil {
			return fmt.Errorf("check window %s: %w", acc.Period, err)
		}
		if exists {
			res.Duplicates++
			continue
		}

		w := generic.Window{
			ID:        generic.WindowID(p.newID()),
			UserID:    userID,
			Period:    acc.Period,
			PTOCost:   acc.PTOCost,
			CreatedAt: p.clock().UTC(),
		}
		if err := p.source.PersistWindow(ctx, w); err != nil {
			if errors.Is(err, generic.ErrDuplicateWindow) {
				res.Duplicates++
				continue
			}
			return fmt.Errorf("persist window %s: %w", acc.Period, err)
		}
		res.Created = append(res.Created, w)
	}
	return nil
}

func (p *Planner) snapshot(ctx context.Context, userID generic.UserID) (generic.HolidaySet, generic.PTOBudget, error) {
	holidays, err := p.source.GetHolidays(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load holidays: %w", err)
	}
	budget, err := p.source.GetPTOBudget(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load budget: %w", err)
	}
	return holidays, budget, nil
}
