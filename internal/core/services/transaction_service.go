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

// transactionService is the ledger transaction processor. Every write runs in
// one unit of work: the record, its balance deltas and its obligation
// settlement commit together or not at all.
type transactionService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryFacade
	accountRepo     portsrepo.AccountReader
	balances        *balanceMutator
	payments        portssvc.PaymentRecorder
	obligationRepo  portsrepo.ObligationReader
}

// NewTransactionService creates the transaction processor.
func NewTransactionService(repos portsrepo.RepositoryProvider, payments portssvc.PaymentRecorder, options ...ServiceOption) portssvc.TransactionSvcFacade {
	return newTransactionService(repos, newBalanceMutator(repos.TxManager, repos.AccountRepo, options...), payments, options...)
}

func newTransactionService(repos portsrepo.RepositoryProvider, balances *balanceMutator, payments portssvc.PaymentRecorder, options ...ServiceOption) *transactionService {
	return &transactionService{
		BaseService:     newBaseService(repos.TxManager, options),
		transactionRepo: repos.TransactionRepo,
		accountRepo:     repos.AccountRepo,
		balances:        balances,
		payments:        payments,
		obligationRepo:  repos.ObligationRepo,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.transactionRepo.FindTransactionByID(ctx, transactionID)
}

func (s *transactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	filter := domain.TransactionFilter{
		Type:         params.Type,
		Status:       params.Status,
		AccountID:    params.AccountID,
		ObligationID: params.ObligationID,
		Category:     params.Category,
		StartDate:    params.StartDate,
		EndDate:      endOfDay(params.EndDate),
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	txns, next, err := s.transactionRepo.ListTransactions(ctx, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions")
		return nil, err
	}
	return &dto.ListTransactionsResponse{Transactions: dto.ToTransactionResponses(txns), NextToken: next}, nil
}

func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	now := s.now()

	details, err := s.buildDetails(ctx, req)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = domain.TransactionStatusCompleted
	}
	if status == domain.TransactionStatusCancelled {
		return nil, apperrors.Validation("a transaction cannot be created as cancelled")
	}
	txnDate := now
	if req.TransactionDate != nil {
		txnDate = req.TransactionDate.UTC()
	}

	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		Type:            req.Type,
		Status:          status,
		TransactionDate: txnDate,
		Category:        strings.TrimSpace(req.Category),
		Description:     req.Description,
		Reference:       req.Reference,
		Notes:           req.Notes,
		Details:         details,
		AuditFields:     domain.NewAuditFields(userID, now),
	}
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	ctx, release := s.balances.lockAccounts(ctx, txn.Details.AccountIDs())
	defer release()

	err = s.runInUnit(ctx, "create_transaction", func(ctx context.Context) error {
		if err := s.checkLegs(ctx, txn); err != nil {
			return err
		}
		if err := s.checkObligationLink(ctx, txn); err != nil {
			return err
		}
		// numbers run per year of the transaction date, so back-dated entries join their own year
		number, err := s.transactionRepo.NextTransactionNumber(ctx, txn.TransactionDate.Year())
		if err != nil {
			return err
		}
		txn.TransactionNumber = number
		if err := s.transactionRepo.SaveTransaction(ctx, txn); err != nil {
			return err
		}
		return s.applyEffects(ctx, txn, 1, userID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create transaction", slog.String("type", string(req.Type)))
		return nil, err
	}

	s.Metrics.RecordTransaction(string(txn.Type), string(txn.Status))
	s.LogInfo(ctx, "Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("transaction_number", txn.TransactionNumber),
		slog.String("type", string(txn.Type)),
		slog.String("status", string(txn.Status)))
	s.publish(ctx, domain.EventTransactionCreated, txn.TransactionID, userID, dto.ToTransactionResponse(&txn))
	s.publishSettlement(ctx, txn, 1, userID)
	return &txn, nil
}

func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}

	var updated domain.Transaction
	err := s.runInUnit(ctx, "update_transaction", func(ctx context.Context) error {
		current, err := s.transactionRepo.FindTransactionForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		next := *current
		if req.TransactionDate != nil {
			next.TransactionDate = req.TransactionDate.UTC()
		}
		if req.Category != nil {
			next.Category = strings.TrimSpace(*req.Category)
		}
		if req.Description != nil {
			next.Description = *req.Description
		}
		if req.Reference != nil {
			next.Reference = *req.Reference
		}
		if req.Notes != nil {
			next.Notes = *req.Notes
		}
		next.Touch(userID, s.now())
		if err := next.Validate(); err != nil {
			return err
		}
		if err := s.transactionRepo.UpdateTransaction(ctx, next); err != nil {
			return err
		}
		next.Version++
		updated = next
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.publish(ctx, domain.EventTransactionUpdated, transactionID, userID, dto.ToTransactionResponse(&updated))
	return &updated, nil
}

func (s *transactionService) ChangeTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, userID string) (*domain.Transaction, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	if status != domain.TransactionStatusCompleted && status != domain.TransactionStatusCancelled {
		return nil, apperrors.Validation("status can only be changed to completed or cancelled")
	}

	existing, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	ctx, release := s.balances.lockAccounts(ctx, existing.Details.AccountIDs())
	defer release()

	var updated domain.Transaction
	changed := false
	err = s.runInUnit(ctx, "change_transaction_status", func(ctx context.Context) error {
		current, err := s.transactionRepo.FindTransactionForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if current.Status == status {
			updated, changed = *current, false
			return nil
		}
		if !current.Status.CanTransitionTo(status) {
			return apperrors.Validation("transaction %s cannot move from %s to %s; delete it to reverse its effects",
				current.TransactionNumber, current.Status, status)
		}

		next := *current
		next.Status = status
		next.Touch(userID, s.now())
		if next.IsCompleted() {
			if err := s.checkLegs(ctx, next); err != nil {
				return err
			}
			if err := s.checkObligationLink(ctx, next); err != nil {
				return err
			}
		}
		if err := s.transactionRepo.UpdateTransaction(ctx, next); err != nil {
			return err
		}
		if err := s.applyEffects(ctx, next, 1, userID); err != nil {
			return err
		}
		next.Version++
		updated, changed = next, true
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to change transaction status",
			slog.String("transaction_id", transactionID),
			slog.String("status", string(status)))
		return nil, err
	}

	if changed {
		s.Metrics.RecordTransaction(string(updated.Type), string(updated.Status))
		s.publish(ctx, domain.EventTransactionStatusChanged, transactionID, userID, dto.ToTransactionResponse(&updated))
		s.publishSettlement(ctx, updated, 1, userID)
	}
	return &updated, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	if err := requireActor(userID); err != nil {
		return err
	}

	existing, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	ctx, release := s.balances.lockAccounts(ctx, existing.Details.AccountIDs())
	defer release()

	var deleted domain.Transaction
	err = s.runInUnit(ctx, "delete_transaction", func(ctx context.Context) error {
		current, err := s.transactionRepo.FindTransactionForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		// the inverse uses the stored amounts and rate, never a recomputed one
		if err := s.applyEffects(ctx, *current, -1, userID); err != nil {
			return err
		}
		deleted = *current
		return s.transactionRepo.DeleteTransaction(ctx, transactionID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return err
	}

	s.LogInfo(ctx, "Transaction deleted",
		slog.String("transaction_id", transactionID),
		slog.String("transaction_number", deleted.TransactionNumber))
	s.publish(ctx, domain.EventTransactionDeleted, transactionID, userID, dto.ToTransactionResponse(&deleted))
	s.publishSettlement(ctx, deleted, -1, userID)
	return nil
}

// applyEffects applies (sign 1) or reverses (sign -1) the balance deltas and
// obligation settlement of a completed transaction. Other statuses have none.
func (s *transactionService) applyEffects(ctx context.Context, txn domain.Transaction, sign int, userID string) error {
	effect := txn.BalanceEffect()
	if len(effect) == 0 {
		return nil
	}
	if sign < 0 {
		effect = domain.InvertDeltas(effect)
	}
	if err := s.balances.ApplyPairedDelta(ctx, effect, userID); err != nil {
		return err
	}

	link, ok := txn.LinkedObligation()
	if !ok {
		return nil
	}
	amount := link.Amount
	if sign < 0 {
		amount = amount.Neg()
	}
	_, err := s.payments.RecordPayment(ctx, link, amount, userID)
	return err
}

func (s *transactionService) publishSettlement(ctx context.Context, txn domain.Transaction, sign int, userID string) {
	link, ok := txn.LinkedObligation()
	if !ok || !txn.IsCompleted() {
		return
	}
	amount := domain.RoundMoney(link.Amount)
	if sign < 0 {
		amount = amount.Neg()
	}
	s.publish(ctx, domain.EventObligationPaymentRecorded, link.ObligationID, userID, map[string]any{
		"kind":          link.Kind,
		"transactionID": txn.TransactionID,
		"amount":        amount,
		"currencyCode":  link.CurrencyCode,
	})
}

// checkLegs verifies every account exists, is active and holds the leg currency.
func (s *transactionService) checkLegs(ctx context.Context, txn domain.Transaction) error {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, txn.Details.AccountIDs())
	if err != nil {
		return err
	}
	for _, leg := range txn.Details.BalanceDeltas() {
		acc := accounts[leg.AccountID]
		if !acc.IsActive {
			return apperrors.Validation("account %s is inactive", acc.AccountID)
		}
		if !acc.Supports(leg.CurrencyCode) {
			return apperrors.NewAppError(apperrors.ErrUnsupportedCurrency,
				fmt.Sprintf("account %s does not hold %s", acc.AccountID, leg.CurrencyCode), nil)
		}
	}
	return nil
}

// checkObligationLink verifies the linked obligation exists, matches kind and
// currency and, for completed transactions, has room for the amount.
func (s *transactionService) checkObligationLink(ctx context.Context, txn domain.Transaction) error {
	link, ok := txn.LinkedObligation()
	if !ok {
		return nil
	}
	o, err := s.obligationRepo.FindObligationByID(ctx, link.ObligationID)
	if err != nil {
		return err
	}
	if err := checkLink(*o, link); err != nil {
		return err
	}
	if txn.IsCompleted() && domain.RoundMoney(link.Amount).GreaterThan(o.Outstanding()) {
		return apperrors.NewAppError(apperrors.ErrOverpayment,
			fmt.Sprintf("payment of %s %s exceeds outstanding %s on %s %s",
				link.Amount.StringFixed(domain.MoneyScale), link.CurrencyCode,
				o.Outstanding().StringFixed(domain.MoneyScale), o.Kind, o.ObligationID), nil)
	}
	return nil
}

// buildDetails turns the flat request into a details variant, filling the
// currency and target amount defaults from the accounts involved.
func (s *transactionService) buildDetails(ctx context.Context, req dto.CreateTransactionRequest) (domain.TransactionDetails, error) {
	switch req.Type {
	case domain.TransactionTypeIncome, domain.TransactionTypeExpense:
		if strings.TrimSpace(req.AccountID) == "" {
			return nil, apperrors.Validation("accountID is required for %s", req.Type)
		}
		currency, err := s.currencyOrPrimary(ctx, req.CurrencyCode, req.AccountID)
		if err != nil {
			return nil, err
		}
		amount := domain.RoundMoney(req.Amount)
		if req.Type == domain.TransactionTypeIncome {
			if req.PayableID != "" {
				return nil, apperrors.Validation("income can only settle a receivable")
			}
			return domain.IncomeDetails{AccountID: req.AccountID, Amount: amount, CurrencyCode: currency, ReceivableID: req.ReceivableID}, nil
		}
		if req.ReceivableID != "" {
			return nil, apperrors.Validation("expense can only settle a payable")
		}
		return domain.ExpenseDetails{AccountID: req.AccountID, Amount: amount, CurrencyCode: currency, PayableID: req.PayableID}, nil

	case domain.TransactionTypeTransfer, domain.TransactionTypeExchange:
		if req.ReceivableID != "" || req.PayableID != "" {
			return nil, apperrors.Validation("%s cannot settle a receivable or payable", req.Type)
		}
		fromID, toID := req.FromAccountID, req.ToAccountID
		if req.Type == domain.TransactionTypeExchange && toID == "" {
			toID = fromID
		}
		if strings.TrimSpace(fromID) == "" || strings.TrimSpace(toID) == "" {
			return nil, apperrors.Validation("fromAccountID and toAccountID are required for %s", req.Type)
		}
		fromCurrency, err := s.currencyOrPrimary(ctx, req.FromCurrencyCode, fromID)
		if err != nil {
			return nil, err
		}
		toCurrency := domain.NormalizeCurrencyCode(req.ToCurrencyCode)
		if toCurrency == "" {
			if req.Type == domain.TransactionTypeExchange {
				return nil, apperrors.Validation("toCurrencyCode is required for exchange")
			}
			if toCurrency, err = s.transferTargetCurrency(ctx, toID, fromCurrency); err != nil {
				return nil, err
			}
		}

		// rates are stored at RateScale, so amounts are derived and checked against the stored value
		var rate *decimal.Decimal
		if req.ExchangeRate != nil {
			r := domain.RoundRate(*req.ExchangeRate)
			rate = &r
		}
		fromAmount := domain.RoundMoney(req.FromAmount)
		var toAmount decimal.Decimal
		switch {
		case req.ToAmount != nil:
			toAmount = domain.RoundMoney(*req.ToAmount)
		case fromCurrency == toCurrency:
			toAmount = fromAmount
		case rate != nil:
			toAmount = domain.ConvertAmount(fromAmount, *rate)
		}

		if req.Type == domain.TransactionTypeTransfer {
			return domain.TransferDetails{
				FromAccountID: fromID, ToAccountID: toID,
				FromAmount: fromAmount, FromCurrencyCode: fromCurrency,
				ToAmount: toAmount, ToCurrencyCode: toCurrency,
				ExchangeRate: rate,
			}, nil
		}
		if rate == nil {
			return nil, apperrors.Validation("exchangeRate is required for exchange")
		}
		return domain.ExchangeDetails{
			FromAccountID: fromID, ToAccountID: toID,
			FromAmount: fromAmount, FromCurrencyCode: fromCurrency,
			ToAmount: toAmount, ToCurrencyCode: toCurrency,
			ExchangeRate: *rate,
		}, nil
	}
	return nil, apperrors.Validation("invalid transaction type %q", req.Type)
}

func (s *transactionService) currencyOrPrimary(ctx context.Context, currency, accountID string) (string, error) {
	if code := domain.NormalizeCurrencyCode(currency); code != "" {
		return code, nil
	}
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	return acc.CurrencyCode, nil
}

// transferTargetCurrency keeps the source currency when the target account
// holds it, else falls back to the target's primary currency.
func (s *transactionService) transferTargetCurrency(ctx context.Context, toAccountID, fromCurrency string) (string, error) {
	acc, err := s.accountRepo.FindAccountByID(ctx, toAccountID)
	if err != nil {
		return "", err
	}
	if acc.Supports(fromCurrency) {
		return fromCurrency, nil
	}
	return acc.CurrencyCode, nil
}

// endOfDay widens a date-only upper bound to include the whole day.
func endOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
	return &end
}
