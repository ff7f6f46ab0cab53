package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
)

// ObligationRepository stores receivables and payables.
type ObligationRepository struct {
	store *Store
}

var _ portsrepo.ObligationRepositoryFacade = (*ObligationRepository)(nil)

func (r *ObligationRepository) FindObligationByID(ctx context.Context, obligationID string) (*domain.Obligation, error) {
	var out *domain.Obligation
	err := r.store.read(ctx, func() error {
		o, ok := r.store.obligations[obligationID]
		if !ok {
			return apperrors.NotFound("obligation", obligationID)
		}
		out = &o
		return nil
	})
	return out, err
}

func (r *ObligationRepository) FindObligationForUpdate(ctx context.Context, obligationID string) (*domain.Obligation, error) {
	return r.FindObligationByID(ctx, obligationID)
}

func (r *ObligationRepository) ListObligations(ctx context.Context, filter domain.ObligationFilter) ([]domain.Obligation, error) {
	var out []domain.Obligation
	err := r.store.read(ctx, func() error {
		for _, o := range r.store.obligations {
			if filter.Matches(o) {
				out = append(out, o)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return obligationLess(out[i], out[j]) })
	return out, err
}

func (r *ObligationRepository) SaveObligation(ctx context.Context, obligation domain.Obligation) error {
	return r.store.write(ctx, func() error {
		if _, exists := r.store.obligations[obligation.ObligationID]; exists {
			return fmt.Errorf("%w: obligation with ID %s already exists", apperrors.ErrDuplicate, obligation.ObligationID)
		}
		r.store.obligations[obligation.ObligationID] = obligation
		return nil
	})
}

func (r *ObligationRepository) UpdateObligation(ctx context.Context, obligation domain.Obligation) error {
	return r.store.write(ctx, func() error {
		current, ok := r.store.obligations[obligation.ObligationID]
		if !ok {
			return apperrors.NotFound("obligation", obligation.ObligationID)
		}
		if current.Version != obligation.Version {
			return apperrors.NewAppError(apperrors.ErrConcurrencyConflict,
				fmt.Sprintf("%s %s was modified concurrently", current.Kind, obligation.ObligationID), nil)
		}
		next := obligation
		next.Kind = current.Kind
		next.CreatedAt, next.CreatedBy = current.CreatedAt, current.CreatedBy
		next.Version = current.Version + 1
		r.store.obligations[obligation.ObligationID] = next
		return nil
	})
}

func (r *ObligationRepository) DeleteObligation(ctx context.Context, obligationID string) error {
	return r.store.write(ctx, func() error {
		if _, ok := r.store.obligations[obligationID]; !ok {
			return apperrors.NotFound("obligation", obligationID)
		}
		delete(r.store.obligations, obligationID)
		return nil
	})
}

// obligationLess orders by due date, undated last, then id.
func obligationLess(a, b domain.Obligation) bool {
	switch {
	case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
		return a.DueDate.Before(*b.DueDate)
	case a.DueDate != nil && b.DueDate == nil:
		return true
	case a.DueDate == nil && b.DueDate != nil:
		return false
	}
	return a.ObligationID < b.ObligationID
}
