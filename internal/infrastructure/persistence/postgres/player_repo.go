package postgres

import (
	"context"
	"fmt"

	"github.com/duelhub/duel-rating-hub/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAYER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// PlayerRepository implements player.Repository over a Querier.
type PlayerRepository struct {
	q Querier
}

// NewPlayerRepository creates a player repository.
func NewPlayerRepository(q Querier) *PlayerRepository {
	return &PlayerRepository{q: q}
}

// Upsert inserts the player or refreshes its name and platform. Status and
// credentials are never touched by an upsert so a claimed or hidden player
// keeps its settings across re-ingestion.
func (r *PlayerRepository) Upsert(ctx context.Context, p *player.Player) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO players (id, name, platform, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name       = EXCLUDED.name,
			platform   = EXCLUDED.platform,
			updated_at = NOW()
	`, p.ID, p.Name, p.Platform, p.Status)
	if err != nil {
		return fmt.Errorf("upserting player %d: %w", p.ID, err)
	}
	return nil
}

// RecordName stores a name in the player's name history. Re-recording a
// known name is a no-op.
func (r *PlayerRepository) RecordName(ctx context.Context, playerID int64, name string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO player_names (player_id, name)
		VALUES ($1, $2)
		ON CONFLICT (player_id, name) DO NOTHING
	`, playerID, name)
	if err != nil {
		return fmt.Errorf("recording name for player %d: %w", playerID, err)
	}
	return nil
}

// GetByID fetches a player by its id.
func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*player.Player, error) {
	var p player.Player
	err := r.q.QueryRow(ctx, `
		SELECT id, name, platform, status, api_key, claim_code_hash
		FROM players
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Platform, &p.Status, &p.APIKey, &p.ClaimCodeHash)
	if err != nil {
		if IsNoRows(err) {
			return nil, player.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("fetching player %d: %w", id, err)
	}
	return &p, nil
}

// SetStatus updates a player's visibility status.
func (r *PlayerRepository) SetStatus(ctx context.Context, id int64, status player.Status) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE players SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("setting status for player %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return player.ErrPlayerNotFound
	}
	return nil
}

// SetCredentials stores a player's API key and claim code hash.
func (r *PlayerRepository) SetCredentials(ctx context.Context, id int64, apiKey, claimCodeHash string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE players
		SET api_key = $2, claim_code_hash = $3, updated_at = NOW()
		WHERE id = $1
	`, id, apiKey, claimCodeHash)
	if err != nil {
		return fmt.Errorf("setting credentials for player %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return player.ErrPlayerNotFound
	}
	return nil
}

var _ player.Repository = (*PlayerRepository)(nil)
