package game

import "context"

// Repository defines storage operations for games.
type Repository interface {
	// Insert stores a new game. It reports false when a row with the
	// same natural key already exists, which is not an error: batches
	// from the replay source overlap and re-ingestion must be a no-op.
	Insert(ctx context.Context, g *Game) (inserted bool, err error)

	// SelectUnrated returns up to limit games without rating fields,
	// ordered by corrected-timestamp-if-present-else-raw ascending,
	// joined with both participants' visibility statuses.
	SelectUnrated(ctx context.Context, limit int) ([]Unrated, error)

	// SetRatings writes all four pre-match rating fields plus the win
	// probability onto the game identified by its natural key.
	SetRatings(ctx context.Context, key Key, valueA, deviationA, valueB, deviationB, winChance float64) error
}
