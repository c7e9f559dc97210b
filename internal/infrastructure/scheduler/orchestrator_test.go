package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// FAKES
// ──────────────────────────────────────────────────────────────────────────────

type fakeJob struct {
	name string
	runs int
	err  error
}

func (f *fakeJob) Name() string { return f.name }

func (f *fakeJob) Run(ctx context.Context) error {
	f.runs++
	return f.err
}

type fakeCheckpoints struct {
	lastHourly time.Time
	lastDaily  time.Time
	hourlyErr  error
}

func (f *fakeCheckpoints) LastHourly(ctx context.Context, now time.Time) (time.Time, error) {
	return f.lastHourly, f.hourlyErr
}

func (f *fakeCheckpoints) LastDaily(ctx context.Context, now time.Time) (time.Time, error) {
	return f.lastDaily, nil
}

func (f *fakeCheckpoints) MarkHourly(ctx context.Context, now time.Time) error {
	f.lastHourly = now
	return nil
}

func (f *fakeCheckpoints) MarkDaily(ctx context.Context, now time.Time) error {
	f.lastDaily = now
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// HELPERS
// ──────────────────────────────────────────────────────────────────────────────

var tickNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	orch        *Orchestrator
	ingest      *fakeJob
	backfill    *fakeJob
	hourly      *fakeJob
	daily       *fakeJob
	checkpoints *fakeCheckpoints
}

func newFixture(lastHourly, lastDaily time.Time) *fixture {
	f := &fixture{
		ingest:      &fakeJob{name: "ingest"},
		backfill:    &fakeJob{name: "backfill"},
		hourly:      &fakeJob{name: "hourly"},
		daily:       &fakeJob{name: "daily"},
		checkpoints: &fakeCheckpoints{lastHourly: lastHourly, lastDaily: lastDaily},
	}
	f.orch = New(f.ingest, f.backfill, f.hourly, f.daily, f.checkpoints, nil)
	f.orch.now = func() time.Time { return tickNow }
	return f
}

// ──────────────────────────────────────────────────────────────────────────────
// TESTS
// ──────────────────────────────────────────────────────────────────────────────

func TestFastTickRunsBackfillEveryTime(t *testing.T) {
	f := newFixture(tickNow, tickNow)

	require.NoError(t, f.orch.fastTick(context.Background()))
	require.NoError(t, f.orch.fastTick(context.Background()))

	assert.Equal(t, 2, f.backfill.runs)
	assert.Zero(t, f.hourly.runs, "fresh checkpoints gate the hourly cycle")
	assert.Zero(t, f.daily.runs)
}

func TestFastTickFiresHourlyWhenDue(t *testing.T) {
	f := newFixture(tickNow.Add(-61*time.Minute), tickNow)

	require.NoError(t, f.orch.fastTick(context.Background()))
	assert.Equal(t, 1, f.hourly.runs)
	assert.Equal(t, tickNow, f.checkpoints.lastHourly, "checkpoint advances after the run")

	// The next tick is gated again.
	require.NoError(t, f.orch.fastTick(context.Background()))
	assert.Equal(t, 1, f.hourly.runs)
}

func TestFastTickFiresDailyWhenDue(t *testing.T) {
	f := newFixture(tickNow, tickNow.Add(-25*time.Hour))

	require.NoError(t, f.orch.fastTick(context.Background()))
	assert.Equal(t, 1, f.daily.runs)
	assert.Equal(t, tickNow, f.checkpoints.lastDaily)
}

func TestFastTickHourlyFailureLeavesCheckpoint(t *testing.T) {
	lastHourly := tickNow.Add(-2 * time.Hour)
	f := newFixture(lastHourly, tickNow)
	f.hourly.err = errors.New("rebuild failed")

	require.NoError(t, f.orch.fastTick(context.Background()))
	assert.Equal(t, 1, f.hourly.runs)
	assert.Equal(t, lastHourly, f.checkpoints.lastHourly, "a failed cycle must be retried next tick")
}

func TestFastTickHourlyFailureDoesNotBlockDaily(t *testing.T) {
	f := newFixture(tickNow.Add(-2*time.Hour), tickNow.Add(-25*time.Hour))
	f.hourly.err = errors.New("rebuild failed")

	require.NoError(t, f.orch.fastTick(context.Background()))
	assert.Equal(t, 1, f.hourly.runs)
	assert.Equal(t, 1, f.daily.runs, "the daily check runs even when the hourly cycle fails")
	assert.Equal(t, tickNow, f.checkpoints.lastDaily)
}

func TestFastTickBackfillFailureDoesNotBlockGatedCycles(t *testing.T) {
	f := newFixture(tickNow.Add(-2*time.Hour), tickNow)
	f.backfill.err = errors.New("batch failed")

	for i := 0; i < 3; i++ {
		require.NoError(t, f.orch.fastTick(context.Background()))
	}
	assert.Equal(t, 3, f.backfill.runs)
	assert.Equal(t, 1, f.hourly.runs, "a stuck backfill batch must not starve the hourly cycle")
}

func TestFastTickStopsOnFatalBackfill(t *testing.T) {
	f := newFixture(tickNow.Add(-2*time.Hour), tickNow)
	f.backfill.err = &Fatal{Err: errors.New("store gone")}

	err := f.orch.fastTick(context.Background())
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Zero(t, f.hourly.runs)
}

func TestRunHourlyOnce(t *testing.T) {
	f := newFixture(tickNow.Add(-time.Minute), tickNow)

	require.NoError(t, f.orch.RunHourlyOnce(context.Background()))
	assert.Equal(t, 1, f.hourly.runs)
	assert.Equal(t, tickNow, f.checkpoints.lastHourly, "forced runs advance the checkpoint regardless of gating")
}

func TestIsFatal(t *testing.T) {
	plain := errors.New("transient")
	assert.False(t, IsFatal(plain))
	assert.True(t, IsFatal(&Fatal{Err: plain}))

	wrapped := &Fatal{Err: plain}
	assert.ErrorIs(t, wrapped, plain)
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(tickNow, tickNow)
	f.orch = f.orch.WithIntervals(10*time.Millisecond, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	require.NoError(t, f.orch.Run(ctx))
	assert.GreaterOrEqual(t, f.ingest.runs, 1)
	assert.GreaterOrEqual(t, f.backfill.runs, 1)
}

func TestRunStopsOnFatal(t *testing.T) {
	f := newFixture(tickNow, tickNow)
	f.orch = f.orch.WithIntervals(5*time.Millisecond, 5*time.Millisecond)
	f.ingest.err = &Fatal{Err: errors.New("store gone")}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := f.orch.Run(ctx)
	require.Error(t, err)
	assert.True(t, IsFatal(err))
}
