package report

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelhub/duel-rating-hub/internal/domain/game"
)

// ──────────────────────────────────────────────────────────────────────────────
// FAKES
// ──────────────────────────────────────────────────────────────────────────────

type fakeSource struct {
	counts    ActivityCounts
	countsErr error
}

func (f *fakeSource) ActivityCounts(ctx context.Context) (*ActivityCounts, error) {
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	return &f.counts, nil
}

func (f *fakeSource) PopularityPerPlayer(ctx context.Context) (map[int16]int64, error) {
	return map[int16]int64{0: 40, 3: 12}, nil
}

func (f *fakeSource) TotalPlayerCharCombos(ctx context.Context) (int64, error) {
	return 52, nil
}

func (f *fakeSource) PopularityPerCharacter(ctx context.Context) (map[int16]int64, error) {
	return map[int16]int64{0: 90}, nil
}

func (f *fakeSource) Matchups(ctx context.Context, charID int16, minValue float64) ([]Matchup, error) {
	if minValue >= HighLevelFloor {
		return []Matchup{{OpponentChar: 1, Wins: 2, TotalGames: 3}}, nil
	}
	return []Matchup{{OpponentChar: 1, Wins: 5, TotalGames: 9}}, nil
}

func (f *fakeSource) RatingDistribution(ctx context.Context) ([]DistributionBucket, error) {
	return []DistributionBucket{{LowerBound: 1500, UpperBound: 1600, Count: 7}}, nil
}

func (f *fakeSource) FloorDistribution(ctx context.Context) (map[int16]int64, error) {
	return map[int16]int64{10: 100}, nil
}

type fakePublisher struct {
	published map[string]any
	failKey   string
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{published: make(map[string]any)}
}

func (f *fakePublisher) Publish(ctx context.Context, key string, value any) error {
	if key == f.failKey {
		return errors.New("cache write failed")
	}
	f.published[key] = value
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// TESTS
// ──────────────────────────────────────────────────────────────────────────────

func TestPublishStats(t *testing.T) {
	src := &fakeSource{counts: ActivityCounts{
		TotalGames:     1234,
		OneHourGames:   5,
		TotalPlayers:   321,
		OneHourPlayers: 4,
	}}
	pub := newFakePublisher()

	require.NoError(t, New(src, pub, nil).PublishStats(context.Background()))

	assert.Equal(t, int64(1234), pub.published["total_games"])
	assert.Equal(t, int64(5), pub.published["one_hour_games"])
	assert.Equal(t, int64(321), pub.published["total_players"])
	assert.Equal(t, int64(4), pub.published["one_hour_players"])
	assert.Len(t, pub.published, 10, "all ten rolling counters are published")
}

func TestPublishStatsPropagatesSourceError(t *testing.T) {
	src := &fakeSource{countsErr: errors.New("query timeout")}

	err := New(src, newFakePublisher(), nil).PublishStats(context.Background())
	assert.Error(t, err)
}

func TestPublishPopularity(t *testing.T) {
	pub := newFakePublisher()

	require.NoError(t, New(&fakeSource{}, pub, nil).PublishPopularity(context.Background()))

	// Keys are built from the roster slugs.
	assert.Equal(t, int64(40), pub.published["popularity_per_player_"+game.CharSlug(0)])
	assert.Equal(t, int64(12), pub.published["popularity_per_player_"+game.CharSlug(3)])
	assert.Equal(t, int64(52), pub.published["popularity_per_player_total"])
	assert.Equal(t, int64(90), pub.published["popularity_per_character_"+game.CharSlug(0)])
}

func TestPublishMatchups(t *testing.T) {
	pub := newFakePublisher()

	require.NoError(t, New(&fakeSource{}, pub, nil).PublishMatchups(context.Background()))

	// One open table and one high-level table per roster character.
	assert.Len(t, pub.published, int(game.NumCharacters)*2)

	open := pub.published["matchup_0"].([]Matchup)
	strong := pub.published["matchup_1700_0"].([]Matchup)
	assert.Equal(t, int64(9), open[0].TotalGames)
	assert.Equal(t, int64(3), strong[0].TotalGames)

	last := fmt.Sprintf("matchup_%d", game.NumCharacters-1)
	assert.Contains(t, pub.published, last)
}

func TestPublishDistribution(t *testing.T) {
	pub := newFakePublisher()

	require.NoError(t, New(&fakeSource{}, pub, nil).PublishDistribution(context.Background()))

	buckets := pub.published["distribution_rating"].([]DistributionBucket)
	assert.Equal(t, int64(7), buckets[0].Count)

	floors := pub.published["distribution_floor"].(map[int16]int64)
	assert.Equal(t, int64(100), floors[10])
}

func TestPublishStopsOnCacheFailure(t *testing.T) {
	pub := newFakePublisher()
	pub.failKey = "popularity_per_player_total"

	err := New(&fakeSource{}, pub, nil).PublishPopularity(context.Background())
	assert.Error(t, err)
}
