package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	logx "github.com/olekpuchka/x-to-telegram-feed/pkg/logx"
)

// Runner triggers a job on a parsed schedule until its context is done.
// The job itself decides what failure means; the runner only sequences.
type Runner struct {
	spec Spec
	loc  *time.Location
	log  logx.Logger
}

func NewRunner(raw, timezone string, log logx.Logger) (*Runner, error) {
	spec, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	loc := time.Local
	if timezone != "" {
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Runner{spec: spec, loc: loc, log: log}, nil
}

// Run executes the job once immediately, then on every tick of the
// schedule, and returns when ctx is cancelled. Jobs never overlap: the
// interval path waits out the tick, and the cron path skips a firing that
// lands while the previous run is still going.
func (r *Runner) Run(ctx context.Context, job func(context.Context)) error {
	job(ctx)

	if r.spec.Kind == SpecInterval {
		ticker := time.NewTicker(r.spec.Every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				job(ctx)
			}
		}
	}

	running := make(chan struct{}, 1)
	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.SecondOptional|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
		)),
		cron.WithLocation(r.loc),
	)
	_, err := c.AddFunc(r.spec.Cron, func() {
		select {
		case running <- struct{}{}:
		default:
			r.log.Warn("previous run still in progress, skipping tick")
			return
		}
		defer func() { <-running }()
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", r.spec.Cron, err)
	}
	c.Start()
	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}
