package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/dto"
	"github.com/SscSPs/mfg_ledger/internal/utils/accounting"
	"github.com/google/uuid"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo     portsrepo.AccountRepositoryFacade
	transactionRepo portsrepo.TransactionReader
}

// NewAccountService creates the account registry.
func NewAccountService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService:     newBaseService(repos.TxManager, options),
		accountRepo:     repos.AccountRepo,
		transactionRepo: repos.TransactionRepo,
	}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}

	mode := req.CurrencyMode
	if mode == "" {
		mode = domain.CurrencyModeSingle
	}
	primary := domain.NormalizeCurrencyCode(req.CurrencyCode)
	if mode == domain.CurrencyModeSingle && len(req.SupportedCurrencies) > 1 {
		return nil, apperrors.Validation("a single-currency account cannot list several supported currencies")
	}
	supported := domain.NormalizeSupportedCurrencies(mode, primary, req.SupportedCurrencies)

	now := s.now()
	account := domain.Account{
		AccountID:           uuid.NewString(),
		Name:                strings.TrimSpace(req.Name),
		AccountType:         req.AccountType,
		CurrencyMode:        mode,
		CurrencyCode:        primary,
		SupportedCurrencies: supported,
		Balances:            domain.ZeroBalances(supported),
		BankName:            req.BankName,
		IBAN:                req.IBAN,
		AccountNumber:       req.AccountNumber,
		IsDefault:           req.IsDefault,
		IsActive:            true,
		Description:         req.Description,
		Notes:               req.Notes,
		AuditFields:         domain.NewAuditFields(userID, now),
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	err := s.runInUnit(ctx, "create_account", func(ctx context.Context) error {
		if account.IsDefault {
			if err := s.accountRepo.ClearDefaultAccount(ctx, account.CurrencyCode, account.AccountID, userID, now); err != nil {
				return err
			}
		}
		return s.accountRepo.SaveAccount(ctx, account)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("account_id", account.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("currency_code", account.CurrencyCode),
		slog.Bool("is_default", account.IsDefault))
	s.publish(ctx, domain.EventAccountCreated, account.AccountID, userID, dto.ToAccountResponse(&account))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	filter := domain.AccountFilter{
		AccountType:  params.AccountType,
		CurrencyCode: domain.NormalizeCurrencyCode(params.CurrencyCode),
		ActiveOnly:   params.ActiveOnly,
		Limit:        params.Limit,
		Offset:       params.Offset,
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts",
			slog.Int("limit", params.Limit),
			slog.Int("offset", params.Offset))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}

	var updated *domain.Account
	err := s.runInUnit(ctx, "update_account", func(ctx context.Context) error {
		current, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if req.Version != nil && *req.Version != current.Version {
			return apperrors.NewAppError(apperrors.ErrConcurrencyConflict,
				fmt.Sprintf("account %s has version %d, not %d", accountID, current.Version, *req.Version), nil)
		}

		next := current.Clone()
		if req.Name != nil {
			next.Name = strings.TrimSpace(*req.Name)
		}
		if req.AccountType != nil {
			next.AccountType = *req.AccountType
		}
		if req.BankName != nil {
			next.BankName = *req.BankName
		}
		if req.IBAN != nil {
			next.IBAN = *req.IBAN
		}
		if req.AccountNumber != nil {
			next.AccountNumber = *req.AccountNumber
		}
		if req.Description != nil {
			next.Description = *req.Description
		}
		if req.Notes != nil {
			next.Notes = *req.Notes
		}
		if req.IsActive != nil {
			next.IsActive = *req.IsActive
		}
		if req.IsDefault != nil {
			next.IsDefault = *req.IsDefault
		}
		if !next.IsActive {
			next.IsDefault = false
		}

		if err := s.applyCurrencyChanges(ctx, current, &next, req); err != nil {
			return err
		}
		next.Touch(userID, s.now())
		if err := next.Validate(); err != nil {
			return err
		}

		if next.IsDefault && next.IsActive {
			if err := s.accountRepo.ClearDefaultAccount(ctx, next.CurrencyCode, next.AccountID, userID, s.now()); err != nil {
				return err
			}
		}
		if err := s.accountRepo.UpdateAccount(ctx, next); err != nil {
			return err
		}
		// balance rows may have been added or dropped
		updated, err = s.accountRepo.FindAccountByID(ctx, accountID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	s.publish(ctx, domain.EventAccountUpdated, accountID, userID, dto.ToAccountResponse(updated))
	return updated, nil
}

// applyCurrencyChanges resolves the new mode, primary currency and supported
// set. Once transactions reference the account its primary currency and mode
// are frozen and no currency can be dropped; dropping a currency also requires
// a zero balance in it.
func (s *accountService) applyCurrencyChanges(ctx context.Context, current *domain.Account, next *domain.Account, req dto.UpdateAccountRequest) error {
	if req.CurrencyMode == nil && req.CurrencyCode == nil && req.SupportedCurrencies == nil {
		return nil
	}
	mode := current.CurrencyMode
	if req.CurrencyMode != nil {
		mode = *req.CurrencyMode
	}
	primary := current.CurrencyCode
	if req.CurrencyCode != nil {
		primary = domain.NormalizeCurrencyCode(*req.CurrencyCode)
	}
	requested := current.SupportedCurrencies
	if req.SupportedCurrencies != nil {
		requested = *req.SupportedCurrencies
	}
	if mode == domain.CurrencyModeSingle && req.SupportedCurrencies != nil && len(*req.SupportedCurrencies) > 1 {
		return apperrors.Validation("a single-currency account cannot list several supported currencies")
	}
	supported := domain.NormalizeSupportedCurrencies(mode, primary, requested)

	kept := make(map[string]struct{}, len(supported))
	for _, c := range supported {
		kept[c] = struct{}{}
	}
	var dropped []string
	for _, c := range current.SupportedCurrencies {
		if _, ok := kept[c]; !ok {
			dropped = append(dropped, c)
		}
	}

	identityChanged := mode != current.CurrencyMode || primary != current.CurrencyCode
	if identityChanged || len(dropped) > 0 {
		usage, err := s.accountRepo.GetAccountUsage(ctx, current.AccountID)
		if err != nil {
			return err
		}
		if usage.Transactions > 0 {
			field := "supportedCurrencies"
			switch {
			case primary != current.CurrencyCode:
				field = "currencyCode"
			case mode != current.CurrencyMode:
				field = "currencyMode"
			}
			return apperrors.NewAppError(apperrors.ErrImmutableField,
				fmt.Sprintf("%s of account %s cannot change once transactions reference it", field, current.AccountID), nil)
		}
		for _, c := range dropped {
			if bal := current.Balances[c]; !bal.IsZero() {
				return apperrors.Validation("currency %s still holds a balance of %s", c, bal.StringFixed(domain.MoneyScale))
			}
		}
	}

	next.CurrencyMode = mode
	next.CurrencyCode = primary
	next.SupportedCurrencies = supported
	balances := domain.ZeroBalances(supported)
	for _, c := range supported {
		if b, ok := current.Balances[c]; ok {
			balances[c] = b
		}
	}
	next.Balances = balances
	return nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	err := s.runInUnit(ctx, "deactivate_account", func(ctx context.Context) error {
		current, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if !current.IsActive {
			return nil
		}
		next := current.Clone()
		next.IsActive = false
		next.IsDefault = false
		next.Touch(userID, s.now())
		return s.accountRepo.UpdateAccount(ctx, next)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return err
	}

	s.LogInfo(ctx, "Account deactivated successfully", slog.String("account_id", accountID))
	s.publish(ctx, domain.EventAccountDeactivated, accountID, userID, nil)
	return nil
}

func (s *accountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	err := s.runInUnit(ctx, "delete_account", func(ctx context.Context) error {
		if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
			return err
		}
		usage, err := s.accountRepo.GetAccountUsage(ctx, accountID)
		if err != nil {
			return err
		}
		if usage.InUse() {
			return apperrors.NewAppError(apperrors.ErrAccountInUse,
				fmt.Sprintf("account %s is referenced by %d transactions, %d receivables/payables and %d salaries; deactivate it instead",
					accountID, usage.Transactions, usage.Obligations, usage.Salaries), nil)
		}
		return s.accountRepo.DeleteAccount(ctx, accountID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}

	s.LogInfo(ctx, "Account deleted successfully", slog.String("account_id", accountID))
	s.publish(ctx, domain.EventAccountDeleted, accountID, userID, nil)
	return nil
}

func (s *accountService) ReconcileAccount(ctx context.Context, accountID string) ([]accounting.Discrepancy, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	txns, err := s.transactionRepo.FindTransactionsByAccount(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transactions for reconciliation", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to reconcile account %s: %w", accountID, err)
	}
	discrepancies := accounting.Reconcile(*account, txns)
	if len(discrepancies) > 0 {
		s.GetLogger(ctx).Warn("Account balances drifted from the ledger",
			slog.String("account_id", accountID),
			slog.Int("currencies", len(discrepancies)))
	}
	return discrepancies, nil
}
