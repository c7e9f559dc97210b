package jobs

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/duelhub/duel-rating-hub/internal/application/backfill"
	"github.com/duelhub/duel-rating-hub/internal/infrastructure/persistence/postgres"
)

// Backfill rates one batch of unprocessed games.
type Backfill struct {
	conn      *postgres.Connection
	logger    *slog.Logger
	batchSize int
}

// NewBackfill creates the rating backfill job. A batchSize of zero keeps
// the service default.
func NewBackfill(conn *postgres.Connection, logger *slog.Logger, batchSize int) *Backfill {
	return &Backfill{conn: conn, logger: logger, batchSize: batchSize}
}

// Name implements scheduler.Job.
func (j *Backfill) Name() string { return "backfill" }

// Run rates one batch inside a single transaction. A mid-batch failure
// rolls back the whole batch; the games stay unrated and the next run
// picks them up again in the same order.
func (j *Backfill) Run(ctx context.Context) error {
	return fatalize(j.conn.WithTx(ctx, func(tx pgx.Tx) error {
		svc := backfill.New(
			postgres.NewGameRepository(tx),
			postgres.NewRatingRepository(tx),
			j.logger,
		)
		if j.batchSize > 0 {
			svc = svc.WithBatchSize(j.batchSize)
		}
		_, err := svc.Run(ctx)
		return err
	}))
}
