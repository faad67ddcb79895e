package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/yantrahq/yantra/internal/repository"
)

// CallPolicy bounds every remote call and sets the retry budget for
// idempotent reads.
type CallPolicy struct {
	Timeout      time.Duration
	ReadAttempts uint
}

// DefaultCallPolicy matches the configuration defaults.
var DefaultCallPolicy = CallPolicy{Timeout: 10 * time.Second, ReadAttempts: 3}

func (p CallPolicy) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.Timeout)
}

// write runs a non-idempotent operation once under the call timeout.
func (p CallPolicy) write(ctx context.Context, op func(ctx context.Context) error) error {
	cctx, cancel := p.bounded(ctx)
	defer cancel()
	return op(cctx)
}

// read runs an idempotent read under the call timeout, retrying with
// exponential backoff only while the backend reports itself unavailable.
func read[T any](ctx context.Context, p CallPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.ReadAttempts
	if attempts == 0 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	return backoff.Retry(ctx, func() (T, error) {
		cctx, cancel := p.bounded(ctx)
		defer cancel()
		v, err := op(cctx)
		if err != nil && !errors.Is(err, repository.ErrUnavailable) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(attempts))
}

// repoError converts a repository failure into a tagged service error.
// notFound is used for repository.ErrNotFound.
func repoError(err error, notFound *Error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound) && notFound != nil:
		return notFound.Wrap(err)
	case errors.Is(err, repository.ErrTeamFull):
		return ErrTeamFull.Wrap(err)
	case errors.Is(err, repository.ErrAlreadyMember):
		return ErrAlreadyMember.Wrap(err)
	}
	return unavailable(err)
}
