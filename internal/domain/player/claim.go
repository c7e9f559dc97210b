package player

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Profile claiming: the player places a short code in their in-game
// profile, the site verifies it against the stored hash and hands out an
// API key for subsequent owner-only operations (status changes).

// Claim holds the artifacts of a newly issued profile claim.
type Claim struct {
	// Code is shown to the player once; only its hash is persisted.
	Code string
	// CodeHash is the bcrypt hash stored in the players table.
	CodeHash string
	// APIKey authenticates the owner after the claim is verified.
	APIKey string
}

// IssueClaim generates a claim code and API key for a player.
func IssueClaim() (*Claim, error) {
	code := strings.ToUpper(uuid.NewString()[:8])

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Claim{
		Code:     code,
		CodeHash: string(hash),
		APIKey:   uuid.NewString(),
	}, nil
}

// VerifyClaim checks a player-supplied code against the stored hash.
func VerifyClaim(codeHash, code string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(codeHash), []byte(strings.ToUpper(code))); err != nil {
		return ErrClaimCodeMismatch
	}
	return nil
}
