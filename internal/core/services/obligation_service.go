package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// obligationService tracks receivables and payables. Paid amounts move only
// through RecordPayment, driven by the transaction processor.
type obligationService struct {
	BaseService
	obligationRepo  portsrepo.ObligationRepositoryFacade
	transactionRepo portsrepo.TransactionWriter
	accountRepo     portsrepo.AccountReader
}

// NewObligationService creates the receivable/payable tracker.
func NewObligationService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.ObligationSvcFacade {
	return newObligationService(repos, options...)
}

func newObligationService(repos portsrepo.RepositoryProvider, options ...ServiceOption) *obligationService {
	return &obligationService{
		BaseService:     newBaseService(repos.TxManager, options),
		obligationRepo:  repos.ObligationRepo,
		transactionRepo: repos.TransactionRepo,
		accountRepo:     repos.AccountRepo,
	}
}

var _ portssvc.ObligationSvcFacade = (*obligationService)(nil)

func (s *obligationService) GetObligation(ctx context.Context, kind domain.ObligationKind, obligationID string) (*domain.Obligation, error) {
	o, err := s.obligationRepo.FindObligationByID(ctx, obligationID)
	if err != nil {
		return nil, err
	}
	if o.Kind != kind {
		return nil, apperrors.NotFound(string(kind), obligationID)
	}
	return o, nil
}

func (s *obligationService) ListObligations(ctx context.Context, kind domain.ObligationKind, params dto.ListObligationsParams) ([]domain.Obligation, error) {
	filter := domain.ObligationFilter{
		Kind:             kind,
		Status:           params.Status,
		CurrencyCode:     domain.NormalizeCurrencyCode(params.CurrencyCode),
		CounterpartyName: strings.TrimSpace(params.CounterpartyName),
		OpenOnly:         params.OpenOnly,
		OverdueOnly:      params.OverdueOnly,
		Now:              s.now(),
	}
	obligations, err := s.obligationRepo.ListObligations(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list obligations", slog.String("kind", string(kind)))
		return nil, fmt.Errorf("failed to list %ss: %w", kind, err)
	}
	return obligations, nil
}

func (s *obligationService) Summarize(ctx context.Context, kind domain.ObligationKind, now time.Time) (domain.ObligationSummary, error) {
	obligations, err := s.obligationRepo.ListObligations(ctx, domain.ObligationFilter{Kind: kind, Now: now})
	if err != nil {
		return domain.ObligationSummary{}, fmt.Errorf("failed to summarize %ss: %w", kind, err)
	}
	return domain.SummarizeObligations(kind, obligations, now), nil
}

func (s *obligationService) CreateObligation(ctx context.Context, kind domain.ObligationKind, req dto.CreateObligationRequest, userID string) (*domain.Obligation, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	now := s.now()
	total := domain.RoundMoney(req.TotalAmount)
	o := domain.Obligation{
		ObligationID:     uuid.NewString(),
		Kind:             kind,
		CounterpartyName: strings.TrimSpace(req.CounterpartyName),
		CurrencyCode:     domain.NormalizeCurrencyCode(req.CurrencyCode),
		TotalAmount:      total,
		PaidAmount:       decimal.Zero,
		DueDate:          req.DueDate,
		Status:           domain.DeriveObligationStatus(kind, decimal.Zero, total),
		OrderID:          req.OrderID,
		AccountID:        req.AccountID,
		Description:      req.Description,
		Notes:            req.Notes,
		AuditFields:      domain.NewAuditFields(userID, now),
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	err := s.runInUnit(ctx, "create_obligation", func(ctx context.Context) error {
		if err := s.checkSettlementAccount(ctx, o); err != nil {
			return err
		}
		return s.obligationRepo.SaveObligation(ctx, o)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create obligation", slog.String("kind", string(kind)))
		return nil, err
	}

	s.LogInfo(ctx, "Obligation created", slog.String("kind", string(kind)), slog.String("obligation_id", o.ObligationID))
	s.publish(ctx, domain.EventObligationCreated, o.ObligationID, userID, o)
	return &o, nil
}

func (s *obligationService) UpdateObligation(ctx context.Context, kind domain.ObligationKind, obligationID string, req dto.UpdateObligationRequest, userID string) (*domain.Obligation, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}

	var updated domain.Obligation
	err := s.runInUnit(ctx, "update_obligation", func(ctx context.Context) error {
		current, err := s.obligationRepo.FindObligationForUpdate(ctx, obligationID)
		if err != nil {
			return err
		}
		if current.Kind != kind {
			return apperrors.NotFound(string(kind), obligationID)
		}
		if req.Version != nil && *req.Version != current.Version {
			return apperrors.NewAppError(apperrors.ErrConcurrencyConflict,
				fmt.Sprintf("%s %s has version %d, not %d", kind, obligationID, current.Version, *req.Version), nil)
		}

		next := *current
		if req.CounterpartyName != nil {
			next.CounterpartyName = strings.TrimSpace(*req.CounterpartyName)
		}
		if req.TotalAmount != nil {
			next.TotalAmount = domain.RoundMoney(*req.TotalAmount)
			if next.TotalAmount.LessThan(next.PaidAmount) {
				return apperrors.Validation("total amount %s cannot be below the paid amount %s",
					next.TotalAmount.StringFixed(domain.MoneyScale), next.PaidAmount.StringFixed(domain.MoneyScale))
			}
		}
		if req.ClearDueDate {
			next.DueDate = nil
		} else if req.DueDate != nil {
			next.DueDate = req.DueDate
		}
		if req.OrderID != nil {
			next.OrderID = *req.OrderID
		}
		if req.AccountID != nil {
			next.AccountID = *req.AccountID
		}
		if req.Description != nil {
			next.Description = *req.Description
		}
		if req.Notes != nil {
			next.Notes = *req.Notes
		}
		next.Status = domain.DeriveObligationStatus(next.Kind, next.PaidAmount, next.TotalAmount)
		next.Touch(userID, s.now())

		if err := next.Validate(); err != nil {
			return err
		}
		if err := s.checkSettlementAccount(ctx, next); err != nil {
			return err
		}
		if err := s.obligationRepo.UpdateObligation(ctx, next); err != nil {
			return err
		}
		next.Version++
		updated = next
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update obligation", slog.String("obligation_id", obligationID))
		return nil, err
	}

	s.publish(ctx, domain.EventObligationUpdated, obligationID, userID, updated)
	return &updated, nil
}

func (s *obligationService) DeleteObligation(ctx context.Context, kind domain.ObligationKind, obligationID string, force bool, userID string) error {
	if err := requireActor(userID); err != nil {
		return err
	}

	detached := 0
	err := s.runInUnit(ctx, "delete_obligation", func(ctx context.Context) error {
		current, err := s.obligationRepo.FindObligationForUpdate(ctx, obligationID)
		if err != nil {
			return err
		}
		if current.Kind != kind {
			return apperrors.NotFound(string(kind), obligationID)
		}
		if current.PaidAmount.IsPositive() && !force {
			return apperrors.Validation("%s %s has %s %s recorded against it; pass force to delete it anyway",
				kind, obligationID, current.PaidAmount.StringFixed(domain.MoneyScale), current.CurrencyCode)
		}
		// settling transactions stay in the ledger, unlinked
		if detached, err = s.transactionRepo.DetachObligation(ctx, obligationID, userID, s.now()); err != nil {
			return err
		}
		return s.obligationRepo.DeleteObligation(ctx, obligationID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete obligation", slog.String("obligation_id", obligationID))
		return err
	}

	s.LogInfo(ctx, "Obligation deleted",
		slog.String("obligation_id", obligationID),
		slog.Bool("forced", force),
		slog.Int("detached_transactions", detached))
	s.publish(ctx, domain.EventObligationDeleted, obligationID, userID, map[string]any{"kind": kind, "detachedTransactions": detached})
	return nil
}

// RecordPayment adds a signed settlement to the linked obligation. It must run
// inside the caller's unit of work.
func (s *obligationService) RecordPayment(ctx context.Context, link domain.ObligationLink, amount decimal.Decimal, userID string) (*domain.Obligation, error) {
	o, err := s.obligationRepo.FindObligationForUpdate(ctx, link.ObligationID)
	if err != nil {
		return nil, err
	}
	if err := checkLink(*o, link); err != nil {
		return nil, err
	}
	if err := o.ApplyPayment(amount); err != nil {
		return nil, err
	}
	o.Touch(userID, s.now())
	if err := s.obligationRepo.UpdateObligation(ctx, *o); err != nil {
		return nil, err
	}
	o.Version++
	return o, nil
}

// checkLink verifies a transaction may settle o.
func checkLink(o domain.Obligation, link domain.ObligationLink) error {
	if o.Kind != link.Kind {
		return apperrors.Validation("%s is a %s, not a %s", o.ObligationID, o.Kind, link.Kind)
	}
	if o.CurrencyCode != link.CurrencyCode {
		return apperrors.Validation("%s %s is in %s; the transaction is in %s", o.Kind, o.ObligationID, o.CurrencyCode, link.CurrencyCode)
	}
	return nil
}

func (s *obligationService) checkSettlementAccount(ctx context.Context, o domain.Obligation) error {
	if o.AccountID == "" {
		return nil
	}
	acc, err := s.accountRepo.FindAccountByID(ctx, o.AccountID)
	if err != nil {
		return err
	}
	if !acc.Supports(o.CurrencyCode) {
		return apperrors.NewAppError(apperrors.ErrUnsupportedCurrency,
			fmt.Sprintf("account %s does not hold %s", o.AccountID, o.CurrencyCode), nil)
	}
	return nil
}
