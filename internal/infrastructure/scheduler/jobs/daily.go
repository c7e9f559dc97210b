package jobs

import (
	"context"
	"log/slog"

	"github.com/duelhub/duel-rating-hub/internal/application/report"
	"github.com/duelhub/duel-rating-hub/internal/infrastructure/persistence/postgres"
	"github.com/duelhub/duel-rating-hub/internal/infrastructure/persistence/redis"
)

// Daily runs the once-per-day reporting cycle: popularity, matchup
// tables, rating distributions and the liveness reset.
type Daily struct {
	conn        *postgres.Connection
	cache       *redis.Cache
	checkpoints *redis.Checkpoints
	logger      *slog.Logger
}

// NewDaily creates the daily job.
func NewDaily(conn *postgres.Connection, cache *redis.Cache, checkpoints *redis.Checkpoints, logger *slog.Logger) *Daily {
	return &Daily{conn: conn, cache: cache, checkpoints: checkpoints, logger: logger}
}

// Name implements scheduler.Job.
func (j *Daily) Name() string { return "daily" }

// Run executes the daily cycle. The publications are independent, so
// one failing does not block the rest.
func (j *Daily) Run(ctx context.Context) error {
	stats := report.New(postgres.NewStatsRepository(j.conn.Pool()), j.cache, j.logger)

	if err := stats.PublishPopularity(ctx); err != nil {
		j.logger.Error("popularity publication failed", slog.Any("error", err))
	}
	if err := stats.PublishMatchups(ctx); err != nil {
		j.logger.Error("matchup publication failed", slog.Any("error", err))
	}
	if err := stats.PublishDistribution(ctx); err != nil {
		j.logger.Error("distribution publication failed", slog.Any("error", err))
	}

	if err := j.checkpoints.ClearLatestGameTime(ctx); err != nil {
		j.logger.Error("liveness reset failed", slog.Any("error", err))
	}
	return nil
}
