package player

import "context"

// Repository defines storage operations for players and their name history.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Upsert inserts the player or, on conflict, refreshes name and
	// platform. Status and credential fields of an existing row are
	// never touched by ingestion.
	Upsert(ctx context.Context, p *Player) error

	// RecordName inserts a (player id, name) history row if it is absent.
	RecordName(ctx context.Context, id int64, name string) error

	// GetByID returns a player or ErrPlayerNotFound.
	GetByID(ctx context.Context, id int64) (*Player, error)

	// SetStatus updates the owner-controlled visibility status.
	SetStatus(ctx context.Context, id int64, status Status) error

	// SetCredentials stores the claim hash and API key for a player.
	SetCredentials(ctx context.Context, id int64, apiKey, claimCodeHash string) error
}
