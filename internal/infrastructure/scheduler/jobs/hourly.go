package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/duelhub/duel-rating-hub/internal/application/report"
	"github.com/duelhub/duel-rating-hub/internal/domain/game"
	"github.com/duelhub/duel-rating-hub/internal/domain/rank"
	"github.com/duelhub/duel-rating-hub/internal/infrastructure/persistence/postgres"
	"github.com/duelhub/duel-rating-hub/internal/infrastructure/persistence/redis"
)

// Hourly runs the once-per-hour maintenance cycle: rating decay, the
// full rank table rebuild, the leaderboard cache mirror and the rolling
// activity counts.
type Hourly struct {
	conn        *postgres.Connection
	cache       *redis.Cache
	leaderboard *redis.Leaderboard
	logger      *slog.Logger
}

// NewHourly creates the hourly job.
func NewHourly(conn *postgres.Connection, cache *redis.Cache, leaderboard *redis.Leaderboard, logger *slog.Logger) *Hourly {
	return &Hourly{conn: conn, cache: cache, leaderboard: leaderboard, logger: logger}
}

// Name implements scheduler.Job.
func (j *Hourly) Name() string { return "hourly" }

// Run executes the hourly cycle. Decay and the rank rebuild share one
// transaction so readers never see decayed ratings with stale ranks.
func (j *Hourly) Run(ctx context.Context) error {
	var top []rank.Entry

	err := j.conn.WithTx(ctx, func(tx pgx.Tx) error {
		ratings := postgres.NewRatingRepository(tx)
		ranks := postgres.NewRankRepository(tx)

		decayed, err := ratings.DecayAll(ctx)
		if err != nil {
			return fmt.Errorf("hourly: decay: %w", err)
		}
		j.logger.Info("ratings decayed", slog.Int64("rows", decayed))

		if err := ranks.Clear(ctx); err != nil {
			return fmt.Errorf("hourly: clearing ranks: %w", err)
		}
		global, err := ranks.RebuildGlobal(ctx)
		if err != nil {
			return fmt.Errorf("hourly: global rebuild: %w", err)
		}
		for charID := int16(0); charID < game.NumCharacters; charID++ {
			if _, err := ranks.RebuildCharacter(ctx, charID); err != nil {
				return fmt.Errorf("hourly: character %d rebuild: %w", charID, err)
			}
		}
		j.logger.Info("ranks rebuilt", slog.Int("global_rows", global))

		top, err = ranks.TopGlobal(ctx, rank.TopN)
		if err != nil {
			return err
		}

		// Stats read from this transaction's snapshot so the published
		// counts match the ratings the cycle just settled. A cache
		// write failure is logged, not rolled back into the tables.
		stats := report.New(postgres.NewStatsRepository(tx), j.cache, j.logger)
		if err := stats.PublishStats(ctx); err != nil {
			j.logger.Error("stats publication failed", slog.Any("error", err))
		}
		return nil
	})
	if err != nil {
		return fatalize(err)
	}

	// The cache mirror runs after commit; a failure here leaves the
	// relational tables correct and the next cycle repairs the cache.
	if err := j.leaderboard.Rebuild(ctx, top); err != nil {
		j.logger.Error("leaderboard cache rebuild failed", slog.Any("error", err))
	}

	return nil
}
