package rating

import (
	"errors"
	"time"
)

// ErrRatingNotFound is returned when a player-character pair has no rating row.
var ErrRatingNotFound = errors.New("rating: not found")

// PlayerRating is the persisted skill estimate of one player-character
// pair, owned by the backfill and the decay job.
type PlayerRating struct {
	PlayerID int64
	CharID   int16
	Wins     int32
	Losses   int32
	Rating   Rating
	// LastDecay is refreshed by every decay pass that touches the row.
	LastDecay time.Time
}

// NewPlayerRating returns the lazily created default estimate for a pair.
// LastDecay starts at the timestamp of the game that introduced the pair.
func NewPlayerRating(playerID int64, charID int16, seenAt time.Time) *PlayerRating {
	return &PlayerRating{
		PlayerID:  playerID,
		CharID:    charID,
		Rating:    Default(),
		LastDecay: seenAt,
	}
}

// RecordOutcome applies a processed game outcome to the estimate.
func (p *PlayerRating) RecordOutcome(updated Rating, won bool) {
	p.Rating = updated
	if won {
		p.Wins++
	} else {
		p.Losses++
	}
}
