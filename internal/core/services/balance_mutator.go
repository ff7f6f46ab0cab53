package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// balanceMutator is the only writer of account balances.
type balanceMutator struct {
	BaseService
	balances portsrepo.AccountBalanceWriter
	locker   *accountLocker
}

// NewBalanceMutator creates the balance mutator.
func NewBalanceMutator(txManager portsrepo.TransactionManager, balances portsrepo.AccountBalanceWriter, options ...ServiceOption) portssvc.BalanceMutatorSvc {
	return newBalanceMutator(txManager, balances, options...)
}

func newBalanceMutator(txManager portsrepo.TransactionManager, balances portsrepo.AccountBalanceWriter, options ...ServiceOption) *balanceMutator {
	return &balanceMutator{
		BaseService: newBaseService(txManager, options),
		balances:    balances,
		locker:      newAccountLocker(),
	}
}

var _ portssvc.BalanceMutatorSvc = (*balanceMutator)(nil)

// ApplyDelta adds delta to one (account, currency) balance.
func (m *balanceMutator) ApplyDelta(ctx context.Context, accountID, currencyCode string, delta decimal.Decimal, userID string) error {
	return m.ApplyPairedDelta(ctx, []domain.BalanceDelta{{AccountID: accountID, CurrencyCode: currencyCode, Amount: delta}}, userID)
}

// ApplyPairedDelta applies every delta or none. Deltas are rounded, merged and
// applied in (account, currency) order. When the caller already holds the
// account locks the deltas join its unit of work; otherwise the mutator takes
// the locks and runs its own retried unit.
func (m *balanceMutator) ApplyPairedDelta(ctx context.Context, deltas []domain.BalanceDelta, userID string) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	normalized := domain.NormalizeDeltas(deltas)
	if len(normalized) == 0 {
		return nil
	}
	accountIDs := domain.DeltaAccountIDs(normalized)

	if holdsAll(ctx, accountIDs) {
		return m.apply(ctx, normalized, userID)
	}

	ctx, release := m.locker.Lock(ctx, accountIDs)
	defer release()
	return m.runInUnit(ctx, "apply_balance_delta", func(ctx context.Context) error {
		return m.apply(ctx, normalized, userID)
	})
}

// lockAccounts lets the transaction processor hold the locks across its own unit of work.
func (m *balanceMutator) lockAccounts(ctx context.Context, accountIDs []string) (context.Context, func()) {
	return m.locker.Lock(ctx, accountIDs)
}

func (m *balanceMutator) apply(ctx context.Context, deltas []domain.BalanceDelta, userID string) error {
	if err := m.balances.ApplyBalanceDeltas(ctx, deltas, userID, m.now()); err != nil {
		m.LogError(ctx, err, "Failed to apply balance deltas", slog.Int("delta_count", len(deltas)))
		return err
	}
	m.LogDebug(ctx, "Applied balance deltas", slog.Int("delta_count", len(deltas)))
	return nil
}
