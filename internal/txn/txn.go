// Package txn runs a unit of work inside one store transaction. Commit and
// rollback are explicit calls on the store's Tx, so the boundary can be
// observed in tests; transient aborts and sequence collisions are retried.
package txn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
)

// ErrTransient marks a transaction abort the database expects the client to
// retry (serialization failure, deadlock).
var ErrTransient = errors.New("transient transaction failure")

// Tx is the commit/rollback boundary every store transaction exposes.
type Tx interface {
	Commit() error
	Rollback() error
}

type config struct {
	op               string
	transientRetries int
	retryDuplicate   bool
	newBackOff       func() backoff.BackOff
	logger           *slog.Logger
}

// Option customizes Run.
type Option func(*config)

// WithOp names the unit of work in logs.
func WithOp(op string) Option {
	return func(c *config) { c.op = op }
}

// WithTransientRetries sets how many times a transient abort is retried.
// Values below one are raised to one.
func WithTransientRetries(n int) Option {
	return func(c *config) { c.transientRetries = max(n, 1) }
}

// WithDuplicateRetry retries the unit once when it fails with a duplicate key,
// so a freshly computed sequence code can replace the one that collided.
func WithDuplicateRetry() Option {
	return func(c *config) { c.retryDuplicate = true }
}

// WithBackOff sets the delay policy between attempts.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *config) { c.newBackOff = newBackOff }
}

// WithLogger sets the logger used to report retries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// DefaultBackOff is a short exponential policy suited to lock contention.
func DefaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond

	return b
}

// Run begins a transaction, calls fn, and commits when fn succeeds. Any
// error from fn rolls the transaction back before it is returned.
func Run[T Tx](ctx context.Context, begin func(context.Context) (T, error), fn func(ctx context.Context, tx T) error, opts ...Option) error {
	cfg := config{
		op:               "transaction",
		transientRetries: 2,
		newBackOff:       DefaultBackOff,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	var duplicates, transients int

	operation := func() (struct{}, error) {
		err := attempt(ctx, begin, fn)

		switch {
		case err == nil:
			return struct{}{}, nil
		case cfg.retryDuplicate && duplicates == 0 && errors.Is(err, apperr.ErrDuplicateKey):
			duplicates++
			retriesTotal.WithLabelValues(cfg.op, "duplicate_key").Inc()
			cfg.logger.Warn("retrying after duplicate key", "op", cfg.op, "error", err)

			return struct{}{}, err
		case transients < cfg.transientRetries && errors.Is(err, ErrTransient):
			transients++
			retriesTotal.WithLabelValues(cfg.op, "transient").Inc()
			cfg.logger.Warn("retrying transient abort", "op", cfg.op, "attempt", transients, "error", err)

			return struct{}{}, err
		default:
			return struct{}{}, backoff.Permanent(err)
		}
	}

	maxTries := uint(cfg.transientRetries + 2)

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(cfg.newBackOff()),
		backoff.WithMaxTries(maxTries),
	)

	return err
}

func attempt[T Tx](ctx context.Context, begin func(context.Context) (T, error), fn func(ctx context.Context, tx T) error) error {
	tx, err := begin(ctx)
	if err != nil {
		return apperr.Persistence("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.Persistence("commit transaction", fmt.Errorf("committing: %w", err))
	}

	return nil
}
