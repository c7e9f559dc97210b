package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueClaim(t *testing.T) {
	claim, err := IssueClaim()
	require.NoError(t, err)

	assert.Len(t, claim.Code, 8)
	assert.NotEmpty(t, claim.APIKey)
	assert.NotContains(t, claim.CodeHash, claim.Code, "the hash must not leak the code")
}

func TestVerifyClaim(t *testing.T) {
	claim, err := IssueClaim()
	require.NoError(t, err)

	assert.NoError(t, VerifyClaim(claim.CodeHash, claim.Code))
	assert.ErrorIs(t, VerifyClaim(claim.CodeHash, "WRONGCOD"), ErrClaimCodeMismatch)
}

func TestVerifyClaimIsCaseInsensitive(t *testing.T) {
	claim, err := IssueClaim()
	require.NoError(t, err)

	// Codes are shown uppercase but players retype them however.
	lower := make([]byte, len(claim.Code))
	for i := range claim.Code {
		c := claim.Code[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}
	assert.NoError(t, VerifyClaim(claim.CodeHash, string(lower)))
}

func TestClaimsAreUnique(t *testing.T) {
	a, err := IssueClaim()
	require.NoError(t, err)
	b, err := IssueClaim()
	require.NoError(t, err)

	assert.NotEqual(t, a.Code, b.Code)
	assert.NotEqual(t, a.APIKey, b.APIKey)
}

func TestStatusParsing(t *testing.T) {
	assert.Equal(t, StatusPublic, ParseStatus("public"))
	assert.Equal(t, StatusPublic, ParseStatus("  Public "))
	assert.Equal(t, StatusPrivate, ParseStatus("private"))
	assert.Equal(t, StatusUnknown, ParseStatus("shadowbanned"), "unrecognized statuses fall back to unknown")
}

func TestIsPublic(t *testing.T) {
	assert.True(t, StatusPublic.IsPublic())
	assert.False(t, StatusPrivate.IsPublic())
	assert.False(t, StatusUnknown.IsPublic())
}
