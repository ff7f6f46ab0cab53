package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
)

// AccountRepository stores accounts and their balances.
type AccountRepository struct {
	store *Store
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var out *domain.Account
	err := r.store.read(ctx, func() error {
		acc, ok := r.store.accounts[accountID]
		if !ok {
			return apperrors.NotFound("account", accountID)
		}
		c := acc.Clone()
		out = &c
		return nil
	})
	return out, err
}

func (r *AccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	err := r.store.read(ctx, func() error {
		for _, id := range accountIDs {
			acc, ok := r.store.accounts[id]
			if !ok {
				return apperrors.NotFound("account", id)
			}
			out[id] = acc.Clone()
		}
		return nil
	})
	return out, err
}

func (r *AccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var out []domain.Account
	err := r.store.read(ctx, func() error {
		for _, acc := range r.store.accounts {
			if filter.Matches(acc) {
				out = append(out, acc.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].AccountID < out[j].AccountID
	})
	return page(out, filter.Offset, filter.Limit), nil
}

func (r *AccountRepository) GetAccountUsage(ctx context.Context, accountID string) (domain.AccountUsage, error) {
	var usage domain.AccountUsage
	err := r.store.read(ctx, func() error {
		for _, txn := range r.store.transactions {
			if txn.ReferencesAccount(accountID) {
				usage.Transactions++
			}
		}
		for _, o := range r.store.obligations {
			if o.AccountID == accountID {
				usage.Obligations++
			}
		}
		for _, s := range r.store.salaries {
			if s.PaymentAccountID == accountID {
				usage.Salaries++
			}
		}
		return nil
	})
	return usage, err
}

func (r *AccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	return r.store.write(ctx, func() error {
		if _, exists := r.store.accounts[account.AccountID]; exists {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
		}
		if err := r.checkSingleDefault(account); err != nil {
			return err
		}
		stored := account.Clone()
		stored.Balances = domain.ZeroBalances(stored.SupportedCurrencies)
		for code, amt := range account.Balances {
			if _, ok := stored.Balances[code]; ok {
				stored.Balances[code] = amt
			}
		}
		r.store.accounts[account.AccountID] = stored
		return nil
	})
}

func (r *AccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	return r.store.write(ctx, func() error {
		current, ok := r.store.accounts[account.AccountID]
		if !ok {
			return apperrors.NotFound("account", account.AccountID)
		}
		if current.Version != account.Version {
			return apperrors.NewAppError(apperrors.ErrConcurrencyConflict,
				fmt.Sprintf("account %s was modified concurrently", account.AccountID), nil)
		}
		if err := r.checkSingleDefault(account); err != nil {
			return err
		}
		next := account.Clone()
		next.Balances = domain.ZeroBalances(next.SupportedCurrencies)
		for code, amt := range current.Balances {
			if _, kept := next.Balances[code]; kept {
				next.Balances[code] = amt
				continue
			}
			if !amt.IsZero() {
				return droppedBalanceConflict(account.AccountID, code)
			}
		}
		next.CreatedAt, next.CreatedBy = current.CreatedAt, current.CreatedBy
		next.Version = current.Version + 1
		r.store.accounts[account.AccountID] = next
		return nil
	})
}

func (r *AccountRepository) ClearDefaultAccount(ctx context.Context, currencyCode, keepAccountID, userID string, now time.Time) error {
	return r.store.write(ctx, func() error {
		for id, acc := range r.store.accounts {
			if id == keepAccountID || !acc.IsDefault || acc.CurrencyCode != currencyCode {
				continue
			}
			next := acc.Clone()
			next.IsDefault = false
			next.Touch(userID, now)
			next.Version++
			r.store.accounts[id] = next
		}
		return nil
	})
}

func (r *AccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	return r.store.write(ctx, func() error {
		if _, ok := r.store.accounts[accountID]; !ok {
			return apperrors.NotFound("account", accountID)
		}
		delete(r.store.accounts, accountID)
		return nil
	})
}

// ApplyBalanceDeltas validates every delta before touching any balance.
func (r *AccountRepository) ApplyBalanceDeltas(ctx context.Context, deltas []domain.BalanceDelta, userID string, now time.Time) error {
	return r.store.write(ctx, func() error {
		updated := make(map[string]domain.Account, len(deltas))
		for _, d := range deltas {
			acc, ok := updated[d.AccountID]
			if !ok {
				stored, exists := r.store.accounts[d.AccountID]
				if !exists {
					return apperrors.NotFound("account", d.AccountID)
				}
				acc = stored.Clone()
			}
			bal, held := acc.Balances[d.CurrencyCode]
			if !held {
				return apperrors.NewAppError(apperrors.ErrUnsupportedCurrency,
					fmt.Sprintf("account %s does not hold %s", d.AccountID, d.CurrencyCode), nil)
			}
			acc.Balances[d.CurrencyCode] = domain.RoundMoney(bal.Add(d.Amount))
			updated[d.AccountID] = acc
		}
		for id, acc := range updated {
			r.store.accounts[id] = acc
		}
		return nil
	})
}

// checkSingleDefault mirrors the partial unique index on active defaults.
func (r *AccountRepository) checkSingleDefault(account domain.Account) error {
	if !account.IsDefault || !account.IsActive {
		return nil
	}
	for id, other := range r.store.accounts {
		if id != account.AccountID && other.IsDefault && other.IsActive && other.CurrencyCode == account.CurrencyCode {
			return apperrors.NewAppError(apperrors.ErrDefaultAccountExists,
				fmt.Sprintf("account %s is already the default for %s", id, account.CurrencyCode), nil)
		}
	}
	return nil
}

// droppedBalanceConflict reports a currency that gained a balance after the
// caller checked it was empty.
func droppedBalanceConflict(accountID, currencyCode string) error {
	return apperrors.NewAppError(apperrors.ErrConcurrencyConflict,
		fmt.Sprintf("account %s received a %s balance while the currency was being dropped", accountID, currencyCode), nil)
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
