package services

import (
	"context"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/SscSPs/mfg_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// ObligationReaderSvc defines read operations for receivables and payables
type ObligationReaderSvc interface {
	GetObligation(ctx context.Context, kind domain.ObligationKind, obligationID string) (*domain.Obligation, error)
	// ListObligations returns the items of a kind, e.g. the open or overdue ones.
	ListObligations(ctx context.Context, kind domain.ObligationKind, params dto.ListObligationsParams) ([]domain.Obligation, error)
	Summarize(ctx context.Context, kind domain.ObligationKind, now time.Time) (domain.ObligationSummary, error)
}

// ObligationWriterSvc defines write operations for receivables and payables
type ObligationWriterSvc interface {
	CreateObligation(ctx context.Context, kind domain.ObligationKind, req dto.CreateObligationRequest, userID string) (*domain.Obligation, error)
	UpdateObligation(ctx context.Context, kind domain.ObligationKind, obligationID string, req dto.UpdateObligationRequest, userID string) (*domain.Obligation, error)
	// DeleteObligation refuses partially settled items unless force is set;
	// a forced delete detaches the settling transactions.
	DeleteObligation(ctx context.Context, kind domain.ObligationKind, obligationID string, force bool, userID string) error
}

// PaymentRecorder applies settlements. It is driven by the transaction
// processor inside its unit of work and is not exposed over HTTP.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, link domain.ObligationLink, amount decimal.Decimal, userID string) (*domain.Obligation, error)
}

// ObligationSvcFacade combines all obligation-related service interfaces
type ObligationSvcFacade interface {
	ObligationReaderSvc
	ObligationWriterSvc
	PaymentRecorder
}
