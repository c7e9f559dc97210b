// Package backfill computes ratings for ingested games that have none
// yet. Games are processed strictly in causal order because every update
// feeds the ratings read by later games of the same player-character pair.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/duelhub/duel-rating-hub/internal/domain/game"
	"github.com/duelhub/duel-rating-hub/internal/domain/rating"
)

// DefaultBatchSize bounds how many unrated games one cycle processes.
const DefaultBatchSize = 5000

// Service is the rating backfill. One Run processes one batch and is
// expected to execute inside a single store transaction: an error on any
// individual game aborts the whole batch so the rated/unrated invariant
// can never be left with silent gaps.
type Service struct {
	games     game.Repository
	ratings   rating.Repository
	logger    *slog.Logger
	batchSize int
}

// New creates the backfill service.
func New(games game.Repository, ratings rating.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		games:     games,
		ratings:   ratings,
		logger:    logger,
		batchSize: DefaultBatchSize,
	}
}

// WithBatchSize overrides the batch bound.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// Run selects one batch of unrated games and processes them in order.
// Returns the number of games processed.
func (s *Service) Run(ctx context.Context) (int, error) {
	batch, err := s.games.SelectUnrated(ctx, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("backfill: select unrated: %w", err)
	}
	s.logger.Info("found games without ratings", "count", len(batch))

	for i := range batch {
		if err := s.processOne(ctx, &batch[i]); err != nil {
			return i, fmt.Errorf("backfill: game %v: %w", batch[i].Game.Key(), err)
		}
	}
	return len(batch), nil
}

// processOne rates a single game.
//
// The game row receives the PRE-match values of both sides plus the
// pre-match win probability; the rating rows receive the post-match
// values. Games with a non-public participant are marked processed with
// all-zero fields and leave every rating row untouched.
func (s *Service) processOne(ctx context.Context, u *game.Unrated) error {
	g := &u.Game

	prA, err := s.getOrCreate(ctx, g.A.PlayerID, g.A.CharID, g)
	if err != nil {
		return err
	}
	prB, err := s.getOrCreate(ctx, g.B.PlayerID, g.B.CharID, g)
	if err != nil {
		return err
	}

	if !u.StatusA.IsPublic() || !u.StatusB.IsPublic() {
		s.logger.Debug("hidden game", "player_a", g.A.Name, "player_b", g.B.Name)
		return s.games.SetRatings(ctx, g.Key(), 0, 0, 0, 0, 0)
	}

	newA, newB, winProb := rating.Rate(prA.Rating, prB.Rating, g.AWon())

	if err := s.games.SetRatings(ctx, g.Key(),
		prA.Rating.Value, prA.Rating.Deviation,
		prB.Rating.Value, prB.Rating.Deviation,
		winProb,
	); err != nil {
		return err
	}

	prA.RecordOutcome(newA, g.AWon())
	prB.RecordOutcome(newB, !g.AWon())

	if err := s.ratings.Update(ctx, prA); err != nil {
		return err
	}
	return s.ratings.Update(ctx, prB)
}

// getOrCreate fetches the rating row for a pair, lazily creating the
// default estimate the first time the pair is encountered.
func (s *Service) getOrCreate(ctx context.Context, playerID int64, charID int16, g *game.Game) (*rating.PlayerRating, error) {
	pr, err := s.ratings.Get(ctx, playerID, charID)
	if err == nil {
		return pr, nil
	}
	if !errors.Is(err, rating.ErrRatingNotFound) {
		return nil, err
	}

	pr = rating.NewPlayerRating(playerID, charID, g.Timestamp)
	if err := s.ratings.Create(ctx, pr); err != nil {
		return nil, err
	}
	return pr, nil
}
