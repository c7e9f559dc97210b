package postgres

import (
	"context"
	"fmt"

	"github.com/duelhub/duel-rating-hub/internal/domain/game"
)

// ══════════════════════════════════════════════════════════════════════════════
// GAME REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// GameRepository implements game.Repository over a Querier.
type GameRepository struct {
	q Querier
}

// NewGameRepository creates a game repository.
func NewGameRepository(q Querier) *GameRepository {
	return &GameRepository{q: q}
}

// Insert stores a game. The natural key makes re-ingestion idempotent:
// a duplicate insert is silently skipped and Insert reports false.
func (r *GameRepository) Insert(ctx context.Context, g *game.Game) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO games (
			timestamp, real_timestamp,
			id_a, name_a, char_a, platform_a,
			id_b, name_b, char_b, platform_b,
			winner, game_floor
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT DO NOTHING
	`,
		g.Timestamp, g.CorrectedTimestamp,
		g.A.PlayerID, g.A.Name, g.A.CharID, g.A.Platform,
		g.B.PlayerID, g.B.Name, g.B.CharID, g.B.Platform,
		g.Winner, g.Floor,
	)
	if err != nil {
		return false, fmt.Errorf("inserting game: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SelectUnrated returns up to limit games that have no rating values yet,
// oldest first by effective time, joined with both players' statuses.
func (r *GameRepository) SelectUnrated(ctx context.Context, limit int) ([]game.Unrated, error) {
	rows, err := r.q.Query(ctx, `
		SELECT
			g.timestamp, g.real_timestamp,
			g.id_a, g.name_a, g.char_a, g.platform_a,
			g.id_b, g.name_b, g.char_b, g.platform_b,
			g.winner, g.game_floor,
			pa.status, pb.status
		FROM games g
		JOIN players pa ON pa.id = g.id_a
		JOIN players pb ON pb.id = g.id_b
		WHERE g.value_a IS NULL
		ORDER BY COALESCE(g.real_timestamp, g.timestamp) ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("selecting unrated games: %w", err)
	}
	defer rows.Close()

	var out []game.Unrated
	for rows.Next() {
		var u game.Unrated
		if err := rows.Scan(
			&u.Game.Timestamp, &u.Game.CorrectedTimestamp,
			&u.Game.A.PlayerID, &u.Game.A.Name, &u.Game.A.CharID, &u.Game.A.Platform,
			&u.Game.B.PlayerID, &u.Game.B.Name, &u.Game.B.CharID, &u.Game.B.Platform,
			&u.Game.Winner, &u.Game.Floor,
			&u.StatusA, &u.StatusB,
		); err != nil {
			return nil, fmt.Errorf("scanning unrated game: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unrated games: %w", err)
	}
	return out, nil
}

// SetRatings writes the pre-match rating snapshot and win chance onto a
// game row identified by its natural key, marking it rated.
func (r *GameRepository) SetRatings(ctx context.Context, key game.Key, valueA, deviationA, valueB, deviationB, winChance float64) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE games SET
			value_a     = $8,
			deviation_a = $9,
			value_b     = $10,
			deviation_b = $11,
			win_chance  = $12
		WHERE timestamp = $1
		  AND id_a = $2 AND char_a = $3 AND platform_a = $4
		  AND id_b = $5 AND char_b = $6 AND platform_b = $7
	`,
		key.Timestamp,
		key.IDA, key.CharA, key.PlatformA,
		key.IDB, key.CharB, key.PlatformB,
		valueA, deviationA, valueB, deviationB, winChance,
	)
	if err != nil {
		return fmt.Errorf("setting game ratings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return game.ErrGameNotFound
	}
	return nil
}

var _ game.Repository = (*GameRepository)(nil)
