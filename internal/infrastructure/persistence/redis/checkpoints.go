package redis

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER CHECKPOINTS
// ══════════════════════════════════════════════════════════════════════════════

// Checkpoint keys and the liveness key. Checkpoints survive restarts so
// a redeploy never skips or doubles an hourly or daily cycle.
const (
	hourlyCheckpointKey = "last_update_hourly"
	dailyCheckpointKey  = "last_update_daily"
	latestGameTimeKey   = "latest_game_time"
)

// checkpointLayout is the stored timestamp format, always UTC.
const checkpointLayout = "2006-01-02 15:04:05"

// KV is the small key-value surface Checkpoints needs from the cache.
type KV interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Checkpoints persists the hourly and daily job checkpoints and the
// ingestion liveness signal.
type Checkpoints struct {
	kv KV
}

// NewCheckpoints creates a checkpoint store over a cache.
func NewCheckpoints(kv KV) *Checkpoints {
	return &Checkpoints{kv: kv}
}

// LastHourly returns the hourly checkpoint. A missing checkpoint is
// seeded two hours in the past so the first cycle runs immediately.
func (c *Checkpoints) LastHourly(ctx context.Context, now time.Time) (time.Time, error) {
	return c.load(ctx, hourlyCheckpointKey, now.Add(-2*time.Hour))
}

// LastDaily returns the daily checkpoint, seeding two days in the past
// when missing.
func (c *Checkpoints) LastDaily(ctx context.Context, now time.Time) (time.Time, error) {
	return c.load(ctx, dailyCheckpointKey, now.Add(-48*time.Hour))
}

// MarkHourly advances the hourly checkpoint to now.
func (c *Checkpoints) MarkHourly(ctx context.Context, now time.Time) error {
	return c.store(ctx, hourlyCheckpointKey, now)
}

// MarkDaily advances the daily checkpoint to now.
func (c *Checkpoints) MarkDaily(ctx context.Context, now time.Time) error {
	return c.store(ctx, dailyCheckpointKey, now)
}

func (c *Checkpoints) load(ctx context.Context, key string, seed time.Time) (time.Time, error) {
	raw, err := c.kv.GetString(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			if err := c.store(ctx, key, seed); err != nil {
				return time.Time{}, err
			}
			return seed.UTC().Truncate(time.Second), nil
		}
		return time.Time{}, fmt.Errorf("loading checkpoint %s: %w", key, err)
	}

	t, err := time.ParseInLocation(checkpointLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing checkpoint %s: %w", key, err)
	}
	return t, nil
}

func (c *Checkpoints) store(ctx context.Context, key string, t time.Time) error {
	if err := c.kv.SetString(ctx, key, t.UTC().Format(checkpointLayout)); err != nil {
		return fmt.Errorf("storing checkpoint %s: %w", key, err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INGESTION LIVENESS
// ══════════════════════════════════════════════════════════════════════════════

// PublishLatestGameTime records the event time of the newest ingested
// game. Readers use it to judge how fresh the pipeline is.
func (c *Checkpoints) PublishLatestGameTime(ctx context.Context, t time.Time) error {
	if err := c.kv.SetString(ctx, latestGameTimeKey, t.UTC().Format(checkpointLayout)); err != nil {
		return fmt.Errorf("publishing latest game time: %w", err)
	}
	return nil
}

// ClearLatestGameTime drops the liveness signal. The daily cycle clears
// it so a stalled ingest loop becomes visible within a day.
func (c *Checkpoints) ClearLatestGameTime(ctx context.Context) error {
	if err := c.kv.Delete(ctx, latestGameTimeKey); err != nil {
		return fmt.Errorf("clearing latest game time: %w", err)
	}
	return nil
}
