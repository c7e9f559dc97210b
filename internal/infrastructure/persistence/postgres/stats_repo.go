package postgres

import (
	"context"
	"fmt"

	"github.com/duelhub/duel-rating-hub/internal/application/report"
	"github.com/duelhub/duel-rating-hub/internal/domain/rating"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// StatsRepository implements report.Source: the read-only aggregation
// queries behind the hourly and daily report publications. Rolling
// windows are measured over a game's effective time.
type StatsRepository struct {
	q Querier
}

// NewStatsRepository creates a stats repository.
func NewStatsRepository(q Querier) *StatsRepository {
	return &StatsRepository{q: q}
}

// ActivityCounts returns total and rolling-window game and player counts.
func (r *StatsRepository) ActivityCounts(ctx context.Context) (*report.ActivityCounts, error) {
	var c report.ActivityCounts

	err := r.q.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE COALESCE(real_timestamp, timestamp) > NOW() - INTERVAL '1 month'),
			COUNT(*) FILTER (WHERE COALESCE(real_timestamp, timestamp) > NOW() - INTERVAL '1 week'),
			COUNT(*) FILTER (WHERE COALESCE(real_timestamp, timestamp) > NOW() - INTERVAL '1 day'),
			COUNT(*) FILTER (WHERE COALESCE(real_timestamp, timestamp) > NOW() - INTERVAL '1 hour')
		FROM games
	`).Scan(&c.TotalGames, &c.OneMonthGames, &c.OneWeekGames, &c.OneDayGames, &c.OneHourGames)
	if err != nil {
		return nil, fmt.Errorf("counting games: %w", err)
	}

	err = r.q.QueryRow(ctx, `
		WITH participants AS (
			SELECT id_a AS player_id, COALESCE(real_timestamp, timestamp) AS played_at FROM games
			UNION ALL
			SELECT id_b, COALESCE(real_timestamp, timestamp) FROM games
		)
		SELECT
			COUNT(DISTINCT player_id),
			COUNT(DISTINCT player_id) FILTER (WHERE played_at > NOW() - INTERVAL '1 month'),
			COUNT(DISTINCT player_id) FILTER (WHERE played_at > NOW() - INTERVAL '1 week'),
			COUNT(DISTINCT player_id) FILTER (WHERE played_at > NOW() - INTERVAL '1 day'),
			COUNT(DISTINCT player_id) FILTER (WHERE played_at > NOW() - INTERVAL '1 hour')
		FROM participants
	`).Scan(&c.TotalPlayers, &c.OneMonthPlayers, &c.OneWeekPlayers, &c.OneDayPlayers, &c.OneHourPlayers)
	if err != nil {
		return nil, fmt.Errorf("counting players: %w", err)
	}

	return &c, nil
}

// PopularityPerPlayer returns, per character, the number of distinct
// players who picked it over the trailing month.
func (r *StatsRepository) PopularityPerPlayer(ctx context.Context) (map[int16]int64, error) {
	rows, err := r.q.Query(ctx, `
		WITH picks AS (
			SELECT id_a AS player_id, char_a AS char_id FROM games
			WHERE COALESCE(real_timestamp, timestamp) > NOW() - INTERVAL '1 month'
			UNION
			SELECT id_b, char_b FROM games
			WHERE COALESCE(real_timestamp, timestamp) > NOW() - INTERVAL '1 month'
		)
		SELECT char_id, COUNT(DISTINCT player_id)
		FROM picks
		GROUP BY char_id
	`)
	if err != nil {
		return nil, fmt.Errorf("aggregating popularity per player: %w", err)
	}
	return scanCharCounts(rows)
}

// TotalPlayerCharCombos returns the total number of distinct
// (player, character) pairs seen over the trailing month.
func (r *StatsRepository) TotalPlayerCharCombos(ctx context.Context) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, `
		WITH picks AS (
			SELECT id_a AS player_id, char_a AS char_id FROM games
			WHERE COALESCE(real_timestamp, timestamp) > NOW() - INTERVAL '1 month'
			UNION
			SELECT id_b, char_b FROM games
			WHERE COALESCE(real_timestamp, timestamp) > NOW() - INTERVAL '1 month'
		)
		SELECT COUNT(*) FROM picks
	`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("counting player-character combos: %w", err)
	}
	return total, nil
}

// PopularityPerCharacter returns, per character, the number of games it
// appeared in over the trailing month. A mirror match counts twice.
func (r *StatsRepository) PopularityPerCharacter(ctx context.Context) (map[int16]int64, error) {
	rows, err := r.q.Query(ctx, `
		WITH appearances AS (
			SELECT char_a AS char_id FROM games
			WHERE COALESCE(real_timestamp, timestamp) > NOW() - INTERVAL '1 month'
			UNION ALL
			SELECT char_b FROM games
			WHERE COALESCE(real_timestamp, timestamp) > NOW() - INTERVAL '1 month'
		)
		SELECT char_id, COUNT(*)
		FROM appearances
		GROUP BY char_id
	`)
	if err != nil {
		return nil, fmt.Errorf("aggregating popularity per character: %w", err)
	}
	return scanCharCounts(rows)
}

// Matchups returns the win table of one character against every opponent
// character over the trailing month, counting only games where BOTH
// participants' pre-match values exceed minValue and both deviations sit
// below the rankable threshold. Games involving a hidden participant
// carry all-zero values and never qualify.
func (r *StatsRepository) Matchups(ctx context.Context, charID int16, minValue float64) ([]report.Matchup, error) {
	rows, err := r.q.Query(ctx, `
		WITH sided AS (
			SELECT char_b AS opponent_char, (winner = 1)::int AS won FROM games
			WHERE char_a = $1 AND value_a > $2 AND value_b > $2
			  AND deviation_a < $3 AND deviation_b < $3
			  AND COALESCE(real_timestamp, timestamp) > NOW() - INTERVAL '1 month'
			UNION ALL
			SELECT char_a, (winner = 2)::int FROM games
			WHERE char_b = $1 AND value_a > $2 AND value_b > $2
			  AND deviation_a < $3 AND deviation_b < $3
			  AND COALESCE(real_timestamp, timestamp) > NOW() - INTERVAL '1 month'
		)
		SELECT opponent_char, SUM(won), COUNT(*)
		FROM sided
		GROUP BY opponent_char
		ORDER BY opponent_char
	`, charID, minValue, rating.RankableDeviation)
	if err != nil {
		return nil, fmt.Errorf("aggregating matchups for character %d: %w", charID, err)
	}
	defer rows.Close()

	var out []report.Matchup
	for rows.Next() {
		var m report.Matchup
		if err := rows.Scan(&m.OpponentChar, &m.Wins, &m.TotalGames); err != nil {
			return nil, fmt.Errorf("scanning matchup row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matchup rows: %w", err)
	}
	return out, nil
}

// RatingDistribution returns the 100-point histogram of settled rating
// values with per-bucket share and cumulative percentile.
func (r *StatsRepository) RatingDistribution(ctx context.Context) ([]report.DistributionBucket, error) {
	rows, err := r.q.Query(ctx, `
		SELECT (FLOOR(value / 100) * 100)::int AS lower_bound, COUNT(*)
		FROM player_ratings
		WHERE deviation < $1
		GROUP BY lower_bound
		ORDER BY lower_bound
	`, rating.RankableDeviation)
	if err != nil {
		return nil, fmt.Errorf("aggregating rating distribution: %w", err)
	}
	defer rows.Close()

	var buckets []report.DistributionBucket
	var total int64
	for rows.Next() {
		var b report.DistributionBucket
		if err := rows.Scan(&b.LowerBound, &b.Count); err != nil {
			return nil, fmt.Errorf("scanning distribution bucket: %w", err)
		}
		b.UpperBound = b.LowerBound + 100
		total += b.Count
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating distribution buckets: %w", err)
	}

	if total == 0 {
		return buckets, nil
	}
	var below int64
	for i := range buckets {
		buckets[i].Percentage = float64(buckets[i].Count) / float64(total) * 100
		buckets[i].Percentile = float64(below) / float64(total) * 100
		below += buckets[i].Count
	}
	return buckets, nil
}

// FloorDistribution returns game counts per floor over the trailing month.
func (r *StatsRepository) FloorDistribution(ctx context.Context) (map[int16]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT game_floor, COUNT(*)
		FROM games
		WHERE COALESCE(real_timestamp, timestamp) > NOW() - INTERVAL '1 month'
		GROUP BY game_floor
	`)
	if err != nil {
		return nil, fmt.Errorf("aggregating floor distribution: %w", err)
	}
	return scanCharCounts(rows)
}

// scanCharCounts drains rows of (int16, int64) into a map.
func scanCharCounts(rows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}) (map[int16]int64, error) {
	defer rows.Close()

	out := make(map[int16]int64)
	for rows.Next() {
		var id int16
		var count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		out[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating count rows: %w", err)
	}
	return out, nil
}

var _ report.Source = (*StatsRepository)(nil)
