package rating

import "context"

// Repository defines storage operations for player ratings.
type Repository interface {
	// Get returns the rating row for a pair or ErrRatingNotFound.
	Get(ctx context.Context, playerID int64, charID int16) (*PlayerRating, error)

	// Create inserts a freshly defaulted rating row.
	Create(ctx context.Context, pr *PlayerRating) error

	// Update writes back value, deviation and the win/loss counters.
	Update(ctx context.Context, pr *PlayerRating) error

	// DecayAll applies one staleness pass to every row with a deviation
	// below the ceiling and refreshes last_decay. Returns the number of
	// rows touched.
	DecayAll(ctx context.Context) (int64, error)
}
