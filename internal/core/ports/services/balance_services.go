package services

import (
	"context"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceMutatorSvc is the only writer of account balances. Both operations
// must be called inside a unit of work and are all or nothing.
type BalanceMutatorSvc interface {
	ApplyDelta(ctx context.Context, accountID, currencyCode string, delta decimal.Decimal, userID string) error
	ApplyPairedDelta(ctx context.Context, deltas []domain.BalanceDelta, userID string) error
}
