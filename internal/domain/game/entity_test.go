package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyIdentifiesRematches(t *testing.T) {
	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	g := Game{
		Timestamp: ts,
		A:         Side{PlayerID: 1, CharID: 2},
		B:         Side{PlayerID: 3, CharID: 4},
		Winner:    WinnerA,
	}

	same := g
	assert.Equal(t, g.Key(), same.Key())

	// The same pairing a second later is a different game.
	later := g
	later.Timestamp = ts.Add(time.Second)
	assert.NotEqual(t, g.Key(), later.Key())

	// A different platform is a different game even in the same second.
	otherPlatform := g
	otherPlatform.A.Platform = 2
	assert.NotEqual(t, g.Key(), otherPlatform.Key())

	// The outcome is not part of the identity: a re-delivered record
	// with a flipped winner is the same game and must deduplicate.
	flipped := g
	flipped.Winner = WinnerB
	assert.Equal(t, g.Key(), flipped.Key())
}

func TestEffectiveTime(t *testing.T) {
	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	g := Game{Timestamp: ts}
	assert.Equal(t, ts, g.EffectiveTime())

	corrected := ts.Add(-time.Hour)
	g.CorrectedTimestamp = &corrected
	assert.Equal(t, corrected, g.EffectiveTime())
}

func TestIsRated(t *testing.T) {
	g := Game{}
	assert.False(t, g.IsRated())

	v := 1500.0
	g.ValueA = &v
	assert.True(t, g.IsRated())
}

func TestCharRoster(t *testing.T) {
	assert.True(t, ValidCharID(0))
	assert.True(t, ValidCharID(NumCharacters-1))
	assert.False(t, ValidCharID(NumCharacters))
	assert.False(t, ValidCharID(-1))

	assert.Equal(t, "AEG", CharSlug(0))
	assert.Equal(t, "Aegis", CharName(0))
	assert.Equal(t, "UNK", CharSlug(99))

	// Slugs feed cache keys, so they must be unique.
	seen := make(map[string]bool)
	for _, c := range CharNames {
		assert.False(t, seen[c[0]], "duplicate slug %s", c[0])
		seen[c[0]] = true
	}
}
