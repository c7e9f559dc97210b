package jobs

import (
	"errors"

	"github.com/duelhub/duel-rating-hub/internal/infrastructure/persistence/postgres"
	"github.com/duelhub/duel-rating-hub/internal/infrastructure/scheduler"
)

// fatalize classifies a job error for the scheduler. Failing to begin a
// transaction means the store itself is gone; retrying that every tick
// only hides the outage, so it stops the worker. Everything else is
// retried on the next tick.
func fatalize(err error) error {
	if errors.Is(err, postgres.ErrTransactionFailed) {
		return &scheduler.Fatal{Err: err}
	}
	return err
}
