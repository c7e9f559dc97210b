package postgres

import (
	"context"
	"fmt"

	"github.com/duelhub/duel-rating-hub/internal/domain/rank"
	"github.com/duelhub/duel-rating-hub/internal/domain/rating"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANK REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// RankRepository implements rank.Repository over a Querier. Rebuilds are
// expected to run inside one transaction together with Clear, so readers
// never observe a partially filled table.
type RankRepository struct {
	q Querier
}

// NewRankRepository creates a rank repository.
func NewRankRepository(q Querier) *RankRepository {
	return &RankRepository{q: q}
}

// Clear deletes every row of both rank tables.
func (r *RankRepository) Clear(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM global_ranks`); err != nil {
		return fmt.Errorf("clearing global ranks: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM character_ranks`); err != nil {
		return fmt.Errorf("clearing character ranks: %w", err)
	}
	return nil
}

// RebuildGlobal fills global_ranks from the current ratings. Only public
// players with a settled deviation are rankable.
func (r *RankRepository) RebuildGlobal(ctx context.Context) (int, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO global_ranks (rank, player_id, char_id)
		SELECT ROW_NUMBER() OVER (ORDER BY pr.value DESC), pr.player_id, pr.char_id
		FROM player_ratings pr
		JOIN players p ON p.id = pr.player_id
		WHERE pr.deviation < $1
		  AND p.status = 'public'
		ORDER BY pr.value DESC
		LIMIT $2
	`, rating.RankableDeviation, rank.TopN)
	if err != nil {
		return 0, fmt.Errorf("rebuilding global ranks: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// RebuildCharacter fills character_ranks for one character id.
func (r *RankRepository) RebuildCharacter(ctx context.Context, charID int16) (int, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO character_ranks (char_id, rank, player_id)
		SELECT $1, ROW_NUMBER() OVER (ORDER BY pr.value DESC), pr.player_id
		FROM player_ratings pr
		JOIN players p ON p.id = pr.player_id
		WHERE pr.char_id = $1
		  AND pr.deviation < $2
		  AND p.status = 'public'
		ORDER BY pr.value DESC
		LIMIT $3
	`, charID, rating.RankableDeviation, rank.TopN)
	if err != nil {
		return 0, fmt.Errorf("rebuilding ranks for character %d: %w", charID, err)
	}
	return int(tag.RowsAffected()), nil
}

// TopGlobal reads back the current global table, best first.
func (r *RankRepository) TopGlobal(ctx context.Context, limit int) ([]rank.Entry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT rank, player_id, char_id
		FROM global_ranks
		ORDER BY rank ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("reading global ranks: %w", err)
	}
	defer rows.Close()

	var out []rank.Entry
	for rows.Next() {
		var e rank.Entry
		if err := rows.Scan(&e.Rank, &e.PlayerID, &e.CharID); err != nil {
			return nil, fmt.Errorf("scanning rank entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating global ranks: %w", err)
	}
	return out, nil
}

var _ rank.Repository = (*RankRepository)(nil)
