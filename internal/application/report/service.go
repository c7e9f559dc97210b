// Package report computes the reportorial aggregations and publishes
// them to the cache store for read-side serving: activity counts hourly,
// popularity, matchup tables and rating distributions daily.
package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/duelhub/duel-rating-hub/internal/domain/game"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESULT SHAPES
// ══════════════════════════════════════════════════════════════════════════════

// ActivityCounts are the rolling game/player counts published hourly.
type ActivityCounts struct {
	TotalGames      int64
	OneMonthGames   int64
	OneWeekGames    int64
	OneDayGames     int64
	OneHourGames    int64
	TotalPlayers    int64
	OneMonthPlayers int64
	OneWeekPlayers  int64
	OneDayPlayers   int64
	OneHourPlayers  int64
}

// Matchup is one row of a per-character matchup table.
type Matchup struct {
	OpponentChar int16 `json:"opponent_char"`
	Wins         int64 `json:"wins"`
	TotalGames   int64 `json:"total_games"`
}

// DistributionBucket is one 100-point bucket of the rating histogram.
type DistributionBucket struct {
	LowerBound int32   `json:"lower_bound"`
	UpperBound int32   `json:"upper_bound"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
	Percentile float64 `json:"percentile"`
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// HighLevelFloor filters the "strong players only" matchup table.
const HighLevelFloor = 1700.0

// Source runs the grouped aggregation queries against the relational store.
type Source interface {
	ActivityCounts(ctx context.Context) (*ActivityCounts, error)
	PopularityPerPlayer(ctx context.Context) (map[int16]int64, error)
	TotalPlayerCharCombos(ctx context.Context) (int64, error)
	PopularityPerCharacter(ctx context.Context) (map[int16]int64, error)
	Matchups(ctx context.Context, charID int16, minValue float64) ([]Matchup, error)
	RatingDistribution(ctx context.Context) ([]DistributionBucket, error)
	FloorDistribution(ctx context.Context) (map[int16]int64, error)
}

// Publisher stores a serialized artifact under a cache key.
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
}

// Service glues aggregation queries to cache publication.
type Service struct {
	source Source
	cache  Publisher
	logger *slog.Logger
}

// New creates the reporting service.
func New(source Source, cache Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, cache: cache, logger: logger}
}

// ══════════════════════════════════════════════════════════════════════════════
// HOURLY
// ══════════════════════════════════════════════════════════════════════════════

// PublishStats publishes the rolling activity counts.
func (s *Service) PublishStats(ctx context.Context) error {
	s.logger.Info("updating stats")

	counts, err := s.source.ActivityCounts(ctx)
	if err != nil {
		return fmt.Errorf("report: activity counts: %w", err)
	}

	pairs := []struct {
		key   string
		value int64
	}{
		{"total_games", counts.TotalGames},
		{"one_month_games", counts.OneMonthGames},
		{"one_week_games", counts.OneWeekGames},
		{"one_day_games", counts.OneDayGames},
		{"one_hour_games", counts.OneHourGames},
		{"total_players", counts.TotalPlayers},
		{"one_month_players", counts.OneMonthPlayers},
		{"one_week_players", counts.OneWeekPlayers},
		{"one_day_players", counts.OneDayPlayers},
		{"one_hour_players", counts.OneHourPlayers},
	}
	for _, p := range pairs {
		if err := s.cache.Publish(ctx, p.key, p.value); err != nil {
			return fmt.Errorf("report: publish %s: %w", p.key, err)
		}
	}

	s.logger.Info("updating stats - done")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DAILY
// ══════════════════════════════════════════════════════════════════════════════

// PublishPopularity publishes per-character pick and game counts over the
// trailing month.
func (s *Service) PublishPopularity(ctx context.Context) error {
	s.logger.Info("updating popularity")

	perPlayer, err := s.source.PopularityPerPlayer(ctx)
	if err != nil {
		return fmt.Errorf("report: popularity per player: %w", err)
	}
	for charID, count := range perPlayer {
		key := "popularity_per_player_" + game.CharSlug(charID)
		if err := s.cache.Publish(ctx, key, count); err != nil {
			return fmt.Errorf("report: publish %s: %w", key, err)
		}
	}

	total, err := s.source.TotalPlayerCharCombos(ctx)
	if err != nil {
		return fmt.Errorf("report: total player-char combos: %w", err)
	}
	if err := s.cache.Publish(ctx, "popularity_per_player_total", total); err != nil {
		return fmt.Errorf("report: publish popularity total: %w", err)
	}

	perCharacter, err := s.source.PopularityPerCharacter(ctx)
	if err != nil {
		return fmt.Errorf("report: popularity per character: %w", err)
	}
	for charID, count := range perCharacter {
		key := "popularity_per_character_" + game.CharSlug(charID)
		if err := s.cache.Publish(ctx, key, count); err != nil {
			return fmt.Errorf("report: publish %s: %w", key, err)
		}
	}

	s.logger.Info("updating popularity - done")
	return nil
}

// PublishMatchups publishes per-character matchup win tables: one set
// over all confident ratings and one restricted to strong players.
func (s *Service) PublishMatchups(ctx context.Context) error {
	s.logger.Info("updating matchups")

	for charID := int16(0); charID < game.NumCharacters; charID++ {
		all, err := s.source.Matchups(ctx, charID, 0)
		if err != nil {
			return fmt.Errorf("report: matchups char %d: %w", charID, err)
		}
		if err := s.cache.Publish(ctx, fmt.Sprintf("matchup_%d", charID), all); err != nil {
			return fmt.Errorf("report: publish matchup %d: %w", charID, err)
		}

		strong, err := s.source.Matchups(ctx, charID, HighLevelFloor)
		if err != nil {
			return fmt.Errorf("report: high-level matchups char %d: %w", charID, err)
		}
		if err := s.cache.Publish(ctx, fmt.Sprintf("matchup_1700_%d", charID), strong); err != nil {
			return fmt.Errorf("report: publish high-level matchup %d: %w", charID, err)
		}
	}

	s.logger.Info("updating matchups - done")
	return nil
}

// PublishDistribution publishes the rating histogram and the per-floor
// game distribution.
func (s *Service) PublishDistribution(ctx context.Context) error {
	s.logger.Info("updating distribution")

	buckets, err := s.source.RatingDistribution(ctx)
	if err != nil {
		return fmt.Errorf("report: rating distribution: %w", err)
	}
	if err := s.cache.Publish(ctx, "distribution_rating", buckets); err != nil {
		return fmt.Errorf("report: publish rating distribution: %w", err)
	}

	floors, err := s.source.FloorDistribution(ctx)
	if err != nil {
		return fmt.Errorf("report: floor distribution: %w", err)
	}
	if err := s.cache.Publish(ctx, "distribution_floor", floors); err != nil {
		return fmt.Errorf("report: publish floor distribution: %w", err)
	}

	s.logger.Info("updating distribution - done")
	return nil
}
