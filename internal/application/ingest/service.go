// Package ingest implements the ingestion pipeline: it pulls raw match
// records from the replay source, repairs implausible timestamps,
// upserts player identity and persists deduplicated games.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/duelhub/duel-rating-hub/internal/domain/game"
	"github.com/duelhub/duel-rating-hub/internal/domain/player"
)

// FutureTolerance is how far into the future a source timestamp may point
// before it is replaced with a corrected one.
const FutureTolerance = 2 * time.Second

// Source fetches one batch of raw match records, newest-first.
type Source interface {
	FetchBatch(ctx context.Context) ([]game.Raw, error)
}

// Liveness publishes the event time of the most recently ingested game
// so external health checks can detect a stalled pipeline.
type Liveness interface {
	PublishLatestGameTime(ctx context.Context, t time.Time) error
}

// Service is the ingestion pipeline. One Run processes one batch and is
// expected to execute inside a single store transaction.
type Service struct {
	source   Source
	players  player.Repository
	games    game.Repository
	liveness Liveness
	logger   *slog.Logger

	// now is replaceable for tests.
	now func() time.Time
}

// New creates the ingestion service.
func New(source Source, players player.Repository, games game.Repository, liveness Liveness, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:   source,
		players:  players,
		games:    games,
		liveness: liveness,
		logger:   logger,
		now:      time.Now,
	}
}

// Run pulls one batch and persists its new games. Returns the number of
// newly inserted games; re-ingested duplicates are silently skipped.
//
// Batches arrive newest-first and are processed oldest-first to
// approximate causal order. Records dated more than FutureTolerance into
// the future get a corrected timestamp of now plus one synthetic second
// per already-corrected record, which keeps multiple future-dated records
// of the same batch strictly ordered without colliding.
func (s *Service) Run(ctx context.Context) (int, error) {
	raws, err := s.source.FetchBatch(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("fetched replay batch", "count", len(raws))

	// Oldest first.
	for i, j := 0, len(raws)-1; i < j; i, j = i+1, j-1 {
		raws[i], raws[j] = raws[j], raws[i]
	}

	now := s.now().UTC()
	inserted := 0
	secondsOffset := 0
	var latest time.Time

	for _, raw := range raws {
		g := raw.ToGame()

		if g.Timestamp.After(now.Add(FutureTolerance)) {
			corrected := now.Add(time.Duration(secondsOffset) * time.Second).Truncate(time.Second)
			g.CorrectedTimestamp = &corrected
		}

		// Identity upsert failures must not block the game insert.
		s.upsertIdentity(ctx, g)

		ok, err := s.games.Insert(ctx, g)
		if err != nil {
			s.logger.Error("game insert failed", "error", err,
				"player_a", g.A.Name, "player_b", g.B.Name)
			continue
		}
		if !ok {
			continue
		}

		if g.CorrectedTimestamp != nil {
			secondsOffset++
			s.logger.Debug("corrected future timestamp",
				"raw", g.Timestamp, "corrected", *g.CorrectedTimestamp,
				"player_a", g.A.Name, "player_b", g.B.Name)
		}

		latest = g.EffectiveTime()
		inserted++
	}

	if inserted > 0 && s.liveness != nil {
		if err := s.liveness.PublishLatestGameTime(ctx, latest); err != nil {
			s.logger.Warn("failed to publish liveness timestamp", "error", err)
		}
	}

	return inserted, nil
}

// upsertIdentity refreshes both participants' identity and name history.
// Each failure is logged and swallowed; the game row is still inserted.
func (s *Service) upsertIdentity(ctx context.Context, g *game.Game) {
	for _, side := range []game.Side{g.A, g.B} {
		if err := s.players.Upsert(ctx, player.New(side.PlayerID, side.Name, side.Platform)); err != nil {
			s.logger.Error("player upsert failed", "error", err, "player_id", side.PlayerID)
			continue
		}
		if err := s.players.RecordName(ctx, side.PlayerID, side.Name); err != nil {
			s.logger.Error("name history insert failed", "error", err, "player_id", side.PlayerID)
		}
	}
}
