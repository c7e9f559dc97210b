// Package jobs wires the application services to the persistence layer
// as scheduler-runnable units. Every job opens one transaction per run,
// builds its repositories over that transaction and hands them to the
// owning service, so a failed run leaves no partial writes behind.
package jobs

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/duelhub/duel-rating-hub/internal/application/ingest"
	"github.com/duelhub/duel-rating-hub/internal/infrastructure/persistence/postgres"
	"github.com/duelhub/duel-rating-hub/internal/infrastructure/persistence/redis"
)

// Ingest pulls one batch from the replay source into the store.
type Ingest struct {
	conn        *postgres.Connection
	checkpoints *redis.Checkpoints
	source      ingest.Source
	logger      *slog.Logger
}

// NewIngest creates the ingestion job.
func NewIngest(conn *postgres.Connection, checkpoints *redis.Checkpoints, source ingest.Source, logger *slog.Logger) *Ingest {
	return &Ingest{conn: conn, checkpoints: checkpoints, source: source, logger: logger}
}

// Name implements scheduler.Job.
func (j *Ingest) Name() string { return "ingest" }

// Run ingests one batch inside a single transaction.
func (j *Ingest) Run(ctx context.Context) error {
	return fatalize(j.conn.WithTx(ctx, func(tx pgx.Tx) error {
		svc := ingest.New(
			j.source,
			postgres.NewPlayerRepository(tx),
			postgres.NewGameRepository(tx),
			j.checkpoints,
			j.logger,
		)
		_, err := svc.Run(ctx)
		return err
	}))
}
