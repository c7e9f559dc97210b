package jobs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelhub/duel-rating-hub/internal/infrastructure/persistence/postgres"
	"github.com/duelhub/duel-rating-hub/internal/infrastructure/scheduler"
)

func TestFatalizeTransactionFailureStopsScheduler(t *testing.T) {
	err := fatalize(fmt.Errorf("acquiring connection: %w", postgres.ErrTransactionFailed))

	require.Error(t, err)
	assert.True(t, scheduler.IsFatal(err), "a failed transaction begin means the pool is gone")
	assert.True(t, errors.Is(err, postgres.ErrTransactionFailed))
}

func TestFatalizePassesOrdinaryErrorsThrough(t *testing.T) {
	cause := errors.New("duplicate row")

	err := fatalize(cause)

	require.Error(t, err)
	assert.False(t, scheduler.IsFatal(err))
	assert.Same(t, cause, err)
}

func TestFatalizeNil(t *testing.T) {
	assert.NoError(t, fatalize(nil))
}
