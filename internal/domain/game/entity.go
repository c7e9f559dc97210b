// Package game contains the domain model for completed matches pulled
// from the replay source. A game is uniquely identified by its natural
// key, which doubles as the deduplication key for re-ingested batches.
package game

import (
	"errors"
	"time"

	"github.com/duelhub/duel-rating-hub/internal/domain/player"
)

// ErrGameNotFound is returned when no game row matches a natural key.
var ErrGameNotFound = errors.New("game: not found")

// Winner indicator values as reported by the replay source.
const (
	WinnerA int16 = 1
	WinnerB int16 = 2
)

// Side is one (player, character, platform) participant of a game.
type Side struct {
	PlayerID int64
	Name     string
	CharID   int16
	Platform int16
}

// Game is one completed match between two sides.
//
// The rating fields are nil until the backfill processes the game, then
// all of them are populated in the same transaction. They hold the
// pre-match ratings of both sides together with the pre-match win
// probability of side A; a game is never partially rated.
type Game struct {
	// Timestamp is the raw event time reported by the source.
	Timestamp time.Time
	// CorrectedTimestamp replaces implausible future-dated event times.
	CorrectedTimestamp *time.Time

	A Side
	B Side

	Winner int16
	Floor  int16

	ValueA     *float64
	DeviationA *float64
	ValueB     *float64
	DeviationB *float64
	WinChance  *float64
}

// Key is the composite natural key of a game.
type Key struct {
	Timestamp time.Time
	IDA       int64
	CharA     int16
	PlatformA int16
	IDB       int64
	CharB     int16
	PlatformB int16
}

// Key returns the natural (deduplication) key of the game. The source
// reports no finer identity than this tuple: a re-delivered record with
// the same key is the same game, whatever else it claims.
func (g *Game) Key() Key {
	return Key{
		Timestamp: g.Timestamp,
		IDA:       g.A.PlayerID,
		CharA:     g.A.CharID,
		PlatformA: g.A.Platform,
		IDB:       g.B.PlayerID,
		CharB:     g.B.CharID,
		PlatformB: g.B.Platform,
	}
}

// EffectiveTime returns the corrected timestamp if one was assigned,
// otherwise the raw event timestamp. Causal ordering for the backfill
// is defined over this value.
func (g *Game) EffectiveTime() time.Time {
	if g.CorrectedTimestamp != nil {
		return *g.CorrectedTimestamp
	}
	return g.Timestamp
}

// IsRated reports whether the backfill already processed the game.
func (g *Game) IsRated() bool {
	return g.ValueA != nil
}

// AWon reports whether side A won the game.
func (g *Game) AWon() bool {
	return g.Winner == WinnerA
}

// Unrated couples a not-yet-rated game with both participants' current
// visibility statuses, as selected by the backfill query.
type Unrated struct {
	Game    Game
	StatusA player.Status
	StatusB player.Status
}
