// Package scheduler drives the worker's two cadence loops: a fast loop
// that backfills ratings and fires the checkpoint-gated hourly and daily
// cycles, and an independent ingestion loop.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Default loop cadences. The fast loop runs slightly under a minute so
// an hourly checkpoint is never missed by drift.
const (
	DefaultFastInterval   = 50 * time.Second
	DefaultIngestInterval = 60 * time.Second

	hourlyPeriod = time.Hour
	dailyPeriod  = 24 * time.Hour
)

// Fatal marks an error that must stop the worker instead of being
// retried on the next tick.
type Fatal struct {
	Err error
}

func (f *Fatal) Error() string { return fmt.Sprintf("fatal: %v", f.Err) }
func (f *Fatal) Unwrap() error { return f.Err }

// IsFatal reports whether err carries a Fatal marker.
func IsFatal(err error) bool {
	var f *Fatal
	return errors.As(err, &f)
}

// Job is a runnable unit of work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// CheckpointStore persists the hourly and daily cycle checkpoints.
type CheckpointStore interface {
	LastHourly(ctx context.Context, now time.Time) (time.Time, error)
	LastDaily(ctx context.Context, now time.Time) (time.Time, error)
	MarkHourly(ctx context.Context, now time.Time) error
	MarkDaily(ctx context.Context, now time.Time) error
}

// Orchestrator owns the loops and the checkpoint gating.
type Orchestrator struct {
	ingest      Job
	backfill    Job
	hourly      Job
	daily       Job
	checkpoints CheckpointStore
	logger      *slog.Logger

	fastInterval   time.Duration
	ingestInterval time.Duration
	now            func() time.Time
}

// New creates an orchestrator with the default cadences.
func New(ingest, backfill, hourly, daily Job, checkpoints CheckpointStore, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		ingest:         ingest,
		backfill:       backfill,
		hourly:         hourly,
		daily:          daily,
		checkpoints:    checkpoints,
		logger:         logger,
		fastInterval:   DefaultFastInterval,
		ingestInterval: DefaultIngestInterval,
		now:            time.Now,
	}
}

// WithIntervals overrides the loop cadences. Zero keeps a default.
func (o *Orchestrator) WithIntervals(fast, ingest time.Duration) *Orchestrator {
	if fast > 0 {
		o.fastInterval = fast
	}
	if ingest > 0 {
		o.ingestInterval = ingest
	}
	return o
}

// Run drives both loops until the context is canceled or a job returns
// a Fatal error. Retryable errors are logged and the loop keeps going.
func (o *Orchestrator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return o.loop(ctx, o.fastInterval, o.fastTick)
	})
	g.Go(func() error {
		return o.loop(ctx, o.ingestInterval, func(ctx context.Context) error {
			return o.runJob(ctx, o.ingest)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// loop runs tick immediately and then on every interval. Only Fatal
// errors escape.
func (o *Orchestrator) loop(ctx context.Context, interval time.Duration, tick func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := tick(ctx); err != nil {
			if IsFatal(err) {
				return err
			}
			o.logger.Error("cycle failed", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// fastTick is one iteration of the fast loop: backfill first, then the
// checkpoint-gated cycles. The steps are isolated: one job failing is
// logged and the tick moves on to the next check, so a persistently
// failing backfill batch cannot starve decay, rank rebuilds or the
// reports. Only Fatal errors escape.
func (o *Orchestrator) fastTick(ctx context.Context) error {
	if err := o.runJob(ctx, o.backfill); err != nil {
		if IsFatal(err) {
			return err
		}
		o.logger.Error("cycle step failed", slog.Any("error", err))
	}

	now := o.now()
	if err := o.runGated(ctx, o.hourly, hourlyPeriod, now, o.checkpoints.LastHourly, o.checkpoints.MarkHourly); err != nil {
		return err
	}
	return o.runGated(ctx, o.daily, dailyPeriod, now, o.checkpoints.LastDaily, o.checkpoints.MarkDaily)
}

// runGated runs job when its checkpoint is older than period. The
// checkpoint advances only after a successful run, so a failed cycle is
// retried on the next tick.
func (o *Orchestrator) runGated(
	ctx context.Context,
	job Job,
	period time.Duration,
	now time.Time,
	last func(context.Context, time.Time) (time.Time, error),
	mark func(context.Context, time.Time) error,
) error {
	lastRun, err := last(ctx, now)
	if err != nil {
		o.logger.Error("checkpoint read failed",
			slog.String("job", job.Name()), slog.Any("error", err))
		return nil
	}
	if now.Sub(lastRun) < period {
		return nil
	}

	if err := o.runJob(ctx, job); err != nil {
		if IsFatal(err) {
			return err
		}
		o.logger.Error("cycle step failed", slog.Any("error", err))
		return nil
	}

	if err := mark(ctx, now); err != nil {
		o.logger.Error("checkpoint advance failed",
			slog.String("job", job.Name()), slog.Any("error", err))
	}
	return nil
}

// RunHourlyOnce forces one hourly cycle and advances its checkpoint.
func (o *Orchestrator) RunHourlyOnce(ctx context.Context) error {
	if err := o.runJob(ctx, o.hourly); err != nil {
		return err
	}
	return o.checkpoints.MarkHourly(ctx, o.now())
}

// RunDailyOnce forces one daily cycle and advances its checkpoint.
func (o *Orchestrator) RunDailyOnce(ctx context.Context) error {
	if err := o.runJob(ctx, o.daily); err != nil {
		return err
	}
	return o.checkpoints.MarkDaily(ctx, o.now())
}

func (o *Orchestrator) runJob(ctx context.Context, job Job) error {
	start := o.now()
	o.logger.Debug("job starting", slog.String("job", job.Name()))

	if err := job.Run(ctx); err != nil {
		return fmt.Errorf("scheduler: %s: %w", job.Name(), err)
	}

	o.logger.Debug("job finished",
		slog.String("job", job.Name()),
		slog.Duration("took", o.now().Sub(start)),
	)
	return nil
}
