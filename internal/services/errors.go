package services

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

const maxUpsertRetries = 3

// translate maps storage sentinels to domain error kinds. Anything else is
// an infrastructure failure and is returned unchanged.
func translate(err error, subject string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return core.NotFoundf("%s not found", subject)
	case errors.Is(err, storage.ErrDuplicate):
		return core.Conflictf("%s already exists", subject)
	case errors.Is(err, storage.ErrMissingReference):
		return core.Validationf("%s references a record that does not exist", subject)
	}
	return err
}

func newUpsertBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(bo, maxUpsertRetries), ctx)
}

// retryOnConflict runs a get-or-create upsert. A unique-index violation
// means a concurrent writer created the row first, so the whole upsert is
// re-run and will take the update path. Other errors stop immediately.
func retryOnConflict(ctx context.Context, operation string, fn func() error) error {
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, storage.ErrDuplicate) {
			log.FromContext(ctx).WarnContext(ctx, "Upsert conflict, retrying",
				log.FieldOperation, operation, "attempt", attempt)
			return err
		}
		return backoff.Permanent(err)
	}, newUpsertBackOff(ctx))
}
