package replay

import (
	"fmt"
	"strconv"
	"time"

	"github.com/duelhub/duel-rating-hub/internal/domain/game"
)

// TimeLayout is the timestamp format used by the replay source.
const TimeLayout = "2006-01-02 15:04:05"

// ParticipantDTO is one side of a replay as returned by the source API.
type ParticipantDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Platform int    `json:"platform"`
}

// ReplayDTO is one completed match as returned by the source API.
type ReplayDTO struct {
	Timestamp        string         `json:"timestamp"`
	Player1          ParticipantDTO `json:"player1"`
	Player2          ParticipantDTO `json:"player2"`
	Player1Character int            `json:"player1_character"`
	Player2Character int            `json:"player2_character"`
	Winner           int            `json:"winner"`
	Floor            int            `json:"floor"`
}

// BatchDTO is the envelope of one replay fetch.
type BatchDTO struct {
	Replays []ReplayDTO `json:"replays"`
}

// ToRaw parses the DTO into a domain record. Timestamps are interpreted
// as UTC, matching the source's clock.
func (d ReplayDTO) ToRaw() (game.Raw, error) {
	ts, err := time.ParseInLocation(TimeLayout, d.Timestamp, time.UTC)
	if err != nil {
		return game.Raw{}, fmt.Errorf("parse timestamp %q: %w", d.Timestamp, err)
	}

	idA, err := strconv.ParseInt(d.Player1.ID, 10, 64)
	if err != nil {
		return game.Raw{}, fmt.Errorf("parse player1 id %q: %w", d.Player1.ID, err)
	}
	idB, err := strconv.ParseInt(d.Player2.ID, 10, 64)
	if err != nil {
		return game.Raw{}, fmt.Errorf("parse player2 id %q: %w", d.Player2.ID, err)
	}

	return game.Raw{
		Timestamp: ts,
		A: game.Side{
			PlayerID: idA,
			Name:     d.Player1.Name,
			CharID:   int16(d.Player1Character),
			Platform: int16(d.Player1.Platform),
		},
		B: game.Side{
			PlayerID: idB,
			Name:     d.Player2.Name,
			CharID:   int16(d.Player2Character),
			Platform: int16(d.Player2.Platform),
		},
		Winner: int16(d.Winner),
		Floor:  int16(d.Floor),
	}, nil
}
