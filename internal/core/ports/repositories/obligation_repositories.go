package repositories

import (
	"context"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
)

// ObligationReader defines read operations for receivables and payables
type ObligationReader interface {
	FindObligationByID(ctx context.Context, obligationID string) (*domain.Obligation, error)

	// FindObligationForUpdate retrieves an obligation and locks it until the
	// surrounding unit of work ends.
	FindObligationForUpdate(ctx context.Context, obligationID string) (*domain.Obligation, error)

	// ListObligations returns obligations matching the filter ordered by due date.
	ListObligations(ctx context.Context, filter domain.ObligationFilter) ([]domain.Obligation, error)
}

// ObligationWriter defines write operations for receivables and payables
type ObligationWriter interface {
	SaveObligation(ctx context.Context, obligation domain.Obligation) error

	// UpdateObligation persists every mutable field, paid amount and status
	// included. Fails with ErrConcurrencyConflict when obligation.Version is stale.
	UpdateObligation(ctx context.Context, obligation domain.Obligation) error

	DeleteObligation(ctx context.Context, obligationID string) error
}

// ObligationRepositoryFacade combines all obligation-related repository interfaces
type ObligationRepositoryFacade interface {
	ObligationReader
	ObligationWriter
}
