// Package scheduler runs a job on a cron schedule until its context ends.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Accepts both five-field and six-field (leading seconds) expressions as
// well as descriptors such as "@hourly" and "@every 30m".
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Job is the scheduled work. It receives the scheduler's context.
type Job func(ctx context.Context)

// Scheduler triggers one job on a schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron  *cron.Cron
	entry cron.EntryID
	job   Job
	ctx   context.Context
}

// Validate reports whether spec is a schedule New accepts.
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// New creates a scheduler for job. logger may be nil.
func New(spec string, job Job, logger cron.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = cron.DiscardLogger
	}
	s := &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		job: job,
		ctx: context.Background(),
	}
	id, err := s.cron.AddFunc(spec, func() { s.job(s.ctx) })
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.entry = id
	return s, nil
}

// Next is the time of the next run, zero before Run is called.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Run starts the schedule and blocks until ctx is done. It returns after
// any job still running has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
