// Package player contains the domain model for players observed in replays.
// Players are created implicitly the first time they appear in a match and
// can later claim their profile for self-service visibility control.
package player

import (
	"errors"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrPlayerNotFound is returned when a player does not exist.
	ErrPlayerNotFound = errors.New("player: not found")

	// ErrInvalidStatus is returned for an unknown visibility status.
	ErrInvalidStatus = errors.New("player: invalid status")

	// ErrClaimCodeMismatch is returned when a claim code does not verify.
	ErrClaimCodeMismatch = errors.New("player: claim code mismatch")
)

// ══════════════════════════════════════════════════════════════════════════════
// VISIBILITY STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status is the owner-controlled visibility of a player's ratings.
type Status string

const (
	// StatusPublic - ratings are computed and shown on leaderboards.
	StatusPublic Status = "public"
	// StatusPrivate - matches are recorded but never rated or ranked.
	StatusPrivate Status = "private"
	// StatusUnknown - visibility has not been resolved yet.
	StatusUnknown Status = "unknown"
)

// IsValid reports whether the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPublic, StatusPrivate, StatusUnknown:
		return true
	default:
		return false
	}
}

// IsPublic reports whether the player participates in rating updates.
func (s Status) IsPublic() bool {
	return s == StatusPublic
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus parses a stored status string, falling back to Unknown.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPublic:
		return StatusPublic
	case StatusPrivate:
		return StatusPrivate
	default:
		return StatusUnknown
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Player is a competitor identified by the source system's numeric id.
// Status defaults to Public the first time a player is seen in a replay
// and is only ever changed by the owner afterwards.
type Player struct {
	ID       int64
	Name     string
	Platform int16
	Status   Status

	// Credential fields for self-service account linking. Nil until the
	// player claims the profile.
	APIKey        *string
	ClaimCodeHash *string
}

// New returns a freshly observed player with the default visibility.
func New(id int64, name string, platform int16) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Platform: platform,
		Status:   StatusPublic,
	}
}

// NameRecord is one (player id, name) pair observed at some point in time.
// Records are append-only: inserted if absent, never updated or deleted.
type NameRecord struct {
	PlayerID int64
	Name     string
	SeenAt   time.Time
}
