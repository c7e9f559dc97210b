package postgres

import (
	"context"
	"fmt"

	"github.com/duelhub/duel-rating-hub/internal/domain/rating"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATING REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// RatingRepository implements rating.Repository over a Querier.
type RatingRepository struct {
	q Querier
}

// NewRatingRepository creates a rating repository.
func NewRatingRepository(q Querier) *RatingRepository {
	return &RatingRepository{q: q}
}

// Get returns the rating row for a player-character pair.
func (r *RatingRepository) Get(ctx context.Context, playerID int64, charID int16) (*rating.PlayerRating, error) {
	var pr rating.PlayerRating
	err := r.q.QueryRow(ctx, `
		SELECT player_id, char_id, wins, losses, value, deviation, last_decay
		FROM player_ratings
		WHERE player_id = $1 AND char_id = $2
	`, playerID, charID).Scan(
		&pr.PlayerID, &pr.CharID, &pr.Wins, &pr.Losses,
		&pr.Rating.Value, &pr.Rating.Deviation, &pr.LastDecay,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, rating.ErrRatingNotFound
		}
		return nil, fmt.Errorf("fetching rating %d/%d: %w", playerID, charID, err)
	}
	return &pr, nil
}

// Create inserts a new rating row.
func (r *RatingRepository) Create(ctx context.Context, pr *rating.PlayerRating) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO player_ratings (player_id, char_id, wins, losses, value, deviation, last_decay)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, pr.PlayerID, pr.CharID, pr.Wins, pr.Losses,
		pr.Rating.Value, pr.Rating.Deviation, pr.LastDecay)
	if err != nil {
		return fmt.Errorf("creating rating %d/%d: %w", pr.PlayerID, pr.CharID, err)
	}
	return nil
}

// Update writes back the estimate and the win/loss counters.
func (r *RatingRepository) Update(ctx context.Context, pr *rating.PlayerRating) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE player_ratings SET
			wins      = $3,
			losses    = $4,
			value     = $5,
			deviation = $6
		WHERE player_id = $1 AND char_id = $2
	`, pr.PlayerID, pr.CharID, pr.Wins, pr.Losses,
		pr.Rating.Value, pr.Rating.Deviation)
	if err != nil {
		return fmt.Errorf("updating rating %d/%d: %w", pr.PlayerID, pr.CharID, err)
	}
	if tag.RowsAffected() == 0 {
		return rating.ErrRatingNotFound
	}
	return nil
}

// DecayAll applies one staleness pass in a single statement. Rows at or
// above the deviation ceiling are left untouched.
func (r *RatingRepository) DecayAll(ctx context.Context) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE player_ratings SET
			deviation  = deviation * $1 + $2,
			last_decay = NOW()
		WHERE deviation < $3
	`, rating.DecayFactor, rating.DecayBias, rating.DecayCeiling)
	if err != nil {
		return 0, fmt.Errorf("decaying ratings: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ rating.Repository = (*RatingRepository)(nil)
