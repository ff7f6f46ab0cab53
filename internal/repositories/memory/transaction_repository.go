package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/mfg_ledger/internal/utils/pagination"
)

// TransactionRepository stores ledger transactions.
type TransactionRepository struct {
	store *Store
}

var _ portsrepo.TransactionRepositoryFacade = (*TransactionRepository)(nil)

func (r *TransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var out *domain.Transaction
	err := r.store.read(ctx, func() error {
		txn, ok := r.store.transactions[transactionID]
		if !ok {
			return apperrors.NotFound("transaction", transactionID)
		}
		out = &txn
		return nil
	})
	return out, err
}

// FindTransactionForUpdate needs no row lock: a unit of work already owns the store.
func (r *TransactionRepository) FindTransactionForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.FindTransactionByID(ctx, transactionID)
}

func (r *TransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.Validation("%s", err.Error())
		}
		cursor = &c
	}

	var matched []domain.Transaction
	err := r.store.read(ctx, func() error {
		for _, txn := range r.store.transactions {
			if !filter.Matches(txn) {
				continue
			}
			if cursor != nil && !cursor.After(txn.TransactionDate, txn.CreatedAt, txn.TransactionID) {
				continue
			}
			matched = append(matched, txn)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sortNewestFirst(matched)

	if limit <= 0 || len(matched) <= limit {
		return matched, nil, nil
	}
	pageItems := matched[:limit]
	last := pageItems[len(pageItems)-1]
	token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt, last.TransactionID)
	return pageItems, &token, nil
}

func (r *TransactionRepository) FindTransactionsByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := r.store.read(ctx, func() error {
		for _, txn := range r.store.transactions {
			if txn.ReferencesAccount(accountID) {
				out = append(out, txn)
			}
		}
		return nil
	})
	sortNewestFirst(out)
	return out, err
}

func (r *TransactionRepository) NextTransactionNumber(ctx context.Context, year int) (string, error) {
	var number string
	err := r.store.write(ctx, func() error {
		r.store.counters[year]++
		number = domain.FormatTransactionNumber(year, r.store.counters[year])
		return nil
	})
	return number, err
}

func (r *TransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	return r.store.write(ctx, func() error {
		if _, exists := r.store.transactions[txn.TransactionID]; exists {
			return fmt.Errorf("%w: transaction with ID %s already exists", apperrors.ErrDuplicate, txn.TransactionID)
		}
		for _, other := range r.store.transactions {
			if other.TransactionNumber == txn.TransactionNumber {
				return fmt.Errorf("%w: transaction number %s already used", apperrors.ErrDuplicate, txn.TransactionNumber)
			}
		}
		r.store.transactions[txn.TransactionID] = txn
		return nil
	})
}

func (r *TransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	return r.store.write(ctx, func() error {
		current, ok := r.store.transactions[txn.TransactionID]
		if !ok {
			return apperrors.NotFound("transaction", txn.TransactionID)
		}
		if current.Version != txn.Version {
			return apperrors.NewAppError(apperrors.ErrConcurrencyConflict,
				fmt.Sprintf("transaction %s was modified concurrently", txn.TransactionID), nil)
		}
		// balance relevant fields are fixed at creation
		next := current
		next.Status = txn.Status
		next.TransactionDate = txn.TransactionDate
		next.Category = txn.Category
		next.Description = txn.Description
		next.Reference = txn.Reference
		next.Notes = txn.Notes
		next.LastUpdatedAt, next.LastUpdatedBy = txn.LastUpdatedAt, txn.LastUpdatedBy
		next.Version = current.Version + 1
		r.store.transactions[txn.TransactionID] = next
		return nil
	})
}

func (r *TransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	return r.store.write(ctx, func() error {
		if _, ok := r.store.transactions[transactionID]; !ok {
			return apperrors.NotFound("transaction", transactionID)
		}
		delete(r.store.transactions, transactionID)
		return nil
	})
}

func (r *TransactionRepository) DetachObligation(ctx context.Context, obligationID, userID string, now time.Time) (int, error) {
	detached := 0
	err := r.store.write(ctx, func() error {
		for id, txn := range r.store.transactions {
			link, ok := txn.LinkedObligation()
			if !ok || link.ObligationID != obligationID {
				continue
			}
			next := txn.WithoutObligationLink()
			next.Touch(userID, now)
			next.Version++
			r.store.transactions[id] = next
			detached++
		}
		return nil
	})
	return detached, err
}

func sortNewestFirst(txns []domain.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		a, b := txns[i], txns[j]
		if !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.After(b.TransactionDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.TransactionID > b.TransactionID
	})
}
