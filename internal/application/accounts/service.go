// Package accounts implements profile claiming: a player proves they own
// an ingested profile by publishing a short code in it, then controls the
// profile's visibility with the API key handed out on verification.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/duelhub/duel-rating-hub/internal/domain/player"
)

// ErrNotAuthorized is returned when an API key does not match the
// profile it tries to operate on.
var ErrNotAuthorized = errors.New("accounts: not authorized")

// Service owns the claim and visibility operations.
type Service struct {
	players player.Repository
	logger  *slog.Logger
}

// New creates the accounts service.
func New(players player.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{players: players, logger: logger}
}

// StartClaim issues a fresh claim for the player and stores its hash and
// API key. Re-claiming replaces any previous credentials. The returned
// code is shown to the player once and never persisted in the clear.
func (s *Service) StartClaim(ctx context.Context, playerID int64) (*player.Claim, error) {
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		return nil, fmt.Errorf("accounts: start claim: %w", err)
	}

	claim, err := player.IssueClaim()
	if err != nil {
		return nil, fmt.Errorf("accounts: issuing claim: %w", err)
	}

	if err := s.players.SetCredentials(ctx, playerID, claim.APIKey, claim.CodeHash); err != nil {
		return nil, fmt.Errorf("accounts: storing claim: %w", err)
	}

	s.logger.Info("claim issued", slog.Int64("player_id", playerID))
	return claim, nil
}

// CompleteClaim verifies the code observed in the player's profile and
// returns the API key on success.
func (s *Service) CompleteClaim(ctx context.Context, playerID int64, code string) (string, error) {
	p, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return "", fmt.Errorf("accounts: complete claim: %w", err)
	}
	if p.ClaimCodeHash == nil || p.APIKey == nil {
		return "", player.ErrClaimCodeMismatch
	}

	if err := player.VerifyClaim(*p.ClaimCodeHash, code); err != nil {
		return "", err
	}

	s.logger.Info("claim verified", slog.Int64("player_id", playerID))
	return *p.APIKey, nil
}

// SetVisibility changes the player's status. Only the profile owner,
// authenticated by API key, may hide or re-publish a profile.
func (s *Service) SetVisibility(ctx context.Context, playerID int64, apiKey string, status player.Status) error {
	if !status.IsValid() {
		return player.ErrInvalidStatus
	}

	p, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("accounts: set visibility: %w", err)
	}
	if p.APIKey == nil || *p.APIKey != apiKey {
		return ErrNotAuthorized
	}

	if err := s.players.SetStatus(ctx, playerID, status); err != nil {
		return fmt.Errorf("accounts: set visibility: %w", err)
	}

	s.logger.Info("visibility changed",
		slog.Int64("player_id", playerID),
		slog.String("status", string(status)),
	)
	return nil
}
