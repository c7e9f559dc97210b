package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelhub/duel-rating-hub/internal/domain/player"
)

type fakePlayers struct {
	rows map[int64]*player.Player
}

func newFakePlayers(players ...*player.Player) *fakePlayers {
	f := &fakePlayers{rows: make(map[int64]*player.Player)}
	for _, p := range players {
		f.rows[p.ID] = p
	}
	return f
}

func (f *fakePlayers) Upsert(ctx context.Context, p *player.Player) error {
	f.rows[p.ID] = p
	return nil
}

func (f *fakePlayers) RecordName(ctx context.Context, playerID int64, name string) error {
	return nil
}

func (f *fakePlayers) GetByID(ctx context.Context, id int64) (*player.Player, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, player.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakePlayers) SetStatus(ctx context.Context, id int64, status player.Status) error {
	p, ok := f.rows[id]
	if !ok {
		return player.ErrPlayerNotFound
	}
	p.Status = status
	return nil
}

func (f *fakePlayers) SetCredentials(ctx context.Context, id int64, apiKey, claimCodeHash string) error {
	p, ok := f.rows[id]
	if !ok {
		return player.ErrPlayerNotFound
	}
	p.APIKey = &apiKey
	p.ClaimCodeHash = &claimCodeHash
	return nil
}

func TestClaimFlow(t *testing.T) {
	players := newFakePlayers(player.New(7, "Challenger", 1))
	svc := New(players, nil)
	ctx := context.Background()

	claim, err := svc.StartClaim(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, claim)

	apiKey, err := svc.CompleteClaim(ctx, 7, claim.Code)
	require.NoError(t, err)
	assert.Equal(t, claim.APIKey, apiKey)
}

func TestStartClaimUnknownPlayer(t *testing.T) {
	svc := New(newFakePlayers(), nil)

	_, err := svc.StartClaim(context.Background(), 404)
	assert.ErrorIs(t, err, player.ErrPlayerNotFound)
}

func TestCompleteClaimWrongCode(t *testing.T) {
	players := newFakePlayers(player.New(7, "Challenger", 1))
	svc := New(players, nil)
	ctx := context.Background()

	_, err := svc.StartClaim(ctx, 7)
	require.NoError(t, err)

	_, err = svc.CompleteClaim(ctx, 7, "0BADC0DE")
	assert.ErrorIs(t, err, player.ErrClaimCodeMismatch)
}

func TestCompleteClaimWithoutPendingClaim(t *testing.T) {
	players := newFakePlayers(player.New(7, "Challenger", 1))
	svc := New(players, nil)

	_, err := svc.CompleteClaim(context.Background(), 7, "ANYTHING")
	assert.ErrorIs(t, err, player.ErrClaimCodeMismatch)
}

func TestSetVisibility(t *testing.T) {
	players := newFakePlayers(player.New(7, "Challenger", 1))
	svc := New(players, nil)
	ctx := context.Background()

	claim, err := svc.StartClaim(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, svc.SetVisibility(ctx, 7, claim.APIKey, player.StatusPrivate))
	assert.Equal(t, player.StatusPrivate, players.rows[7].Status)
}

func TestSetVisibilityRejectsWrongKey(t *testing.T) {
	players := newFakePlayers(player.New(7, "Challenger", 1))
	svc := New(players, nil)
	ctx := context.Background()

	_, err := svc.StartClaim(ctx, 7)
	require.NoError(t, err)

	err = svc.SetVisibility(ctx, 7, "stolen-key", player.StatusPrivate)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Equal(t, player.StatusPublic, players.rows[7].Status)
}

func TestSetVisibilityRejectsUnclaimedProfile(t *testing.T) {
	players := newFakePlayers(player.New(7, "Challenger", 1))
	svc := New(players, nil)

	err := svc.SetVisibility(context.Background(), 7, "any", player.StatusPrivate)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestSetVisibilityRejectsInvalidStatus(t *testing.T) {
	svc := New(newFakePlayers(), nil)

	err := svc.SetVisibility(context.Background(), 7, "any", player.Status("banned"))
	assert.ErrorIs(t, err, player.ErrInvalidStatus)
}
