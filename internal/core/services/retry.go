package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how often a unit of work is re-run after a
// concurrency conflict.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy retries five times starting at 20ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 5, InitialInterval: 20 * time.Millisecond, MaxInterval: time.Second}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, p.MaxRetries), ctx)
}

// runInUnit runs fn in a unit of work. Concurrency conflicts roll the unit
// back and run it again; any other error is returned at once.
func (s *BaseService) runInUnit(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	start := time.Now()
	attempt := 0

	err := backoff.Retry(func() error {
		if attempt > 0 {
			s.Metrics.RecordConflictRetry(operation)
			s.LogDebug(ctx, "Retrying unit of work after conflict",
				slog.String("operation", operation),
				slog.Int("attempt", attempt))
		}
		attempt++

		err := s.TxManager.WithinTransaction(ctx, fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, apperrors.ErrConcurrencyConflict) {
			return err
		}
		return backoff.Permanent(err)
	}, s.Retry.backOff(ctx))

	s.Metrics.RecordOperation(operation, err == nil, time.Since(start))
	return err
}
