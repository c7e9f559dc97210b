package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/duelhub/duel-rating-hub/internal/domain/rank"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

const globalLeaderboardKey = "leaderboard_global"

// Leaderboard mirrors the global rank table into a sorted set so the
// read side can page through it without touching the relational store.
type Leaderboard struct {
	cache *Cache
}

// NewLeaderboard creates a leaderboard cache over an open connection.
func NewLeaderboard(cache *Cache) *Leaderboard {
	return &Leaderboard{cache: cache}
}

// Rebuild atomically replaces the cached leaderboard with the given
// entries. Members are "playerID:charID" scored by rank position.
func (l *Leaderboard) Rebuild(ctx context.Context, entries []rank.Entry) error {
	members := make([]goredis.Z, 0, len(entries))
	for _, e := range entries {
		members = append(members, goredis.Z{
			Score:  float64(e.Rank),
			Member: fmt.Sprintf("%d:%d", e.PlayerID, e.CharID),
		})
	}

	pipe := l.cache.client.TxPipeline()
	pipe.Del(ctx, globalLeaderboardKey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, globalLeaderboardKey, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: rebuilding leaderboard: %w", err)
	}
	return nil
}

// Top returns the best n cached entries in rank order.
func (l *Leaderboard) Top(ctx context.Context, n int) ([]rank.Entry, error) {
	zs, err := l.cache.client.ZRangeWithScores(ctx, globalLeaderboardKey, 0, int64(n)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: reading leaderboard: %w", err)
	}

	out := make([]rank.Entry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		playerID, charID, err := parseMember(member)
		if err != nil {
			return nil, err
		}
		out = append(out, rank.Entry{
			Rank:     int32(z.Score),
			PlayerID: playerID,
			CharID:   charID,
		})
	}
	return out, nil
}

func parseMember(member string) (int64, int16, error) {
	playerPart, charPart, ok := strings.Cut(member, ":")
	if !ok {
		return 0, 0, fmt.Errorf("redis: malformed leaderboard member %q", member)
	}
	playerID, err := strconv.ParseInt(playerPart, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("redis: malformed leaderboard member %q: %w", member, err)
	}
	charID, err := strconv.ParseInt(charPart, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("redis: malformed leaderboard member %q: %w", member, err)
	}
	return playerID, int16(charID), nil
}
