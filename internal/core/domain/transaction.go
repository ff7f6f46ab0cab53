package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionType selects which details variant a transaction carries.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
	TransactionTypeExchange TransactionType = "exchange"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer, TransactionTypeExchange:
		return true
	}
	return false
}

// TransactionStatus is the lifecycle state of a transaction. Only completed
// transactions are reflected in balances.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// IsValid reports whether s is a known status.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a stored transaction may move from s to next.
// Completed transactions leave the ledger only through deletion.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s == next {
		return true
	}
	return s == TransactionStatusPending && (next == TransactionStatusCompleted || next == TransactionStatusCancelled)
}

// TransactionDetails is the type-specific payload of a transaction. The set of
// implementations is closed: IncomeDetails, ExpenseDetails, TransferDetails
// and ExchangeDetails.
type TransactionDetails interface {
	Type() TransactionType
	// BalanceDeltas is the change this payload makes when completed.
	BalanceDeltas() []BalanceDelta
	// AccountIDs lists every account the payload touches.
	AccountIDs() []string
	validate() error
}

// IncomeDetails credits one account, optionally settling a receivable.
type IncomeDetails struct {
	AccountID    string          `json:"accountID"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
	ReceivableID string          `json:"receivableID,omitempty"`
}

// ExpenseDetails debits one account, optionally settling a payable.
type ExpenseDetails struct {
	AccountID    string          `json:"accountID"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
	PayableID    string          `json:"payableID,omitempty"`
}

// TransferDetails moves money between two different accounts. ExchangeRate
// is required when the currencies differ.
type TransferDetails struct {
	FromAccountID    string           `json:"fromAccountID"`
	ToAccountID      string           `json:"toAccountID"`
	FromAmount       decimal.Decimal  `json:"fromAmount"`
	FromCurrencyCode string           `json:"fromCurrencyCode"`
	ToAmount         decimal.Decimal  `json:"toAmount"`
	ToCurrencyCode   string           `json:"toCurrencyCode"`
	ExchangeRate     *decimal.Decimal `json:"exchangeRate,omitempty"`
}

// ExchangeDetails converts between two currencies, on one account or two.
type ExchangeDetails struct {
	FromAccountID    string          `json:"fromAccountID"`
	ToAccountID      string          `json:"toAccountID"`
	FromAmount       decimal.Decimal `json:"fromAmount"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToAmount         decimal.Decimal `json:"toAmount"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	ExchangeRate     decimal.Decimal `json:"exchangeRate"`
}

var (
	_ TransactionDetails = IncomeDetails{}
	_ TransactionDetails = ExpenseDetails{}
	_ TransactionDetails = TransferDetails{}
	_ TransactionDetails = ExchangeDetails{}
)

// ConvertAmount applies rate to amount and rounds to the money scale.
func ConvertAmount(amount, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(rate))
}

func (IncomeDetails) Type() TransactionType { return TransactionTypeIncome }

func (d IncomeDetails) BalanceDeltas() []BalanceDelta {
	return []BalanceDelta{{AccountID: d.AccountID, CurrencyCode: d.CurrencyCode, Amount: d.Amount}}
}

func (d IncomeDetails) AccountIDs() []string { return []string{d.AccountID} }

func (d IncomeDetails) validate() error {
	return validateSingleLeg(d.AccountID, d.Amount, d.CurrencyCode)
}

func (ExpenseDetails) Type() TransactionType { return TransactionTypeExpense }

func (d ExpenseDetails) BalanceDeltas() []BalanceDelta {
	return []BalanceDelta{{AccountID: d.AccountID, CurrencyCode: d.CurrencyCode, Amount: d.Amount.Neg()}}
}

func (d ExpenseDetails) AccountIDs() []string { return []string{d.AccountID} }

func (d ExpenseDetails) validate() error {
	return validateSingleLeg(d.AccountID, d.Amount, d.CurrencyCode)
}

func (TransferDetails) Type() TransactionType { return TransactionTypeTransfer }

func (d TransferDetails) BalanceDeltas() []BalanceDelta {
	return pairedDeltas(d.FromAccountID, d.FromCurrencyCode, d.FromAmount, d.ToAccountID, d.ToCurrencyCode, d.ToAmount)
}

func (d TransferDetails) AccountIDs() []string { return []string{d.FromAccountID, d.ToAccountID} }

func (d TransferDetails) validate() error {
	if err := validateTwoLegs(d.FromAccountID, d.ToAccountID, d.FromAmount, d.ToAmount, d.FromCurrencyCode, d.ToCurrencyCode); err != nil {
		return err
	}
	if d.FromAccountID == d.ToAccountID {
		return apperrors.Validation("transfer requires two different accounts")
	}
	if d.FromCurrencyCode == d.ToCurrencyCode {
		if d.ExchangeRate != nil && !d.ExchangeRate.Equal(decimal.NewFromInt(1)) {
			return apperrors.Validation("same-currency transfer cannot carry an exchange rate other than 1")
		}
		if !d.FromAmount.Equal(d.ToAmount) {
			return apperrors.Validation("same-currency transfer requires fromAmount == toAmount")
		}
		return nil
	}
	if d.ExchangeRate == nil {
		return apperrors.Validation("cross-currency transfer requires an exchange rate")
	}
	return validateRate(d.FromAmount, d.ToAmount, *d.ExchangeRate)
}

func (ExchangeDetails) Type() TransactionType { return TransactionTypeExchange }

func (d ExchangeDetails) BalanceDeltas() []BalanceDelta {
	return pairedDeltas(d.FromAccountID, d.FromCurrencyCode, d.FromAmount, d.ToAccountID, d.ToCurrencyCode, d.ToAmount)
}

func (d ExchangeDetails) AccountIDs() []string {
	if d.FromAccountID == d.ToAccountID {
		return []string{d.FromAccountID}
	}
	return []string{d.FromAccountID, d.ToAccountID}
}

func (d ExchangeDetails) validate() error {
	if err := validateTwoLegs(d.FromAccountID, d.ToAccountID, d.FromAmount, d.ToAmount, d.FromCurrencyCode, d.ToCurrencyCode); err != nil {
		return err
	}
	if d.FromCurrencyCode == d.ToCurrencyCode {
		return apperrors.Validation("exchange requires two different currencies")
	}
	return validateRate(d.FromAmount, d.ToAmount, d.ExchangeRate)
}

func pairedDeltas(fromID, fromCur string, fromAmt decimal.Decimal, toID, toCur string, toAmt decimal.Decimal) []BalanceDelta {
	return []BalanceDelta{
		{AccountID: fromID, CurrencyCode: fromCur, Amount: fromAmt.Neg()},
		{AccountID: toID, CurrencyCode: toCur, Amount: toAmt},
	}
}

func validateSingleLeg(accountID string, amount decimal.Decimal, currency string) error {
	if strings.TrimSpace(accountID) == "" {
		return apperrors.Validation("account id is required")
	}
	if !IsPositiveMoney(amount) {
		return apperrors.Validation("amount must be greater than zero")
	}
	if !IsSupportedCurrency(currency) {
		return apperrors.Validation("unsupported currency %q", currency)
	}
	return nil
}

func validateTwoLegs(fromID, toID string, fromAmt, toAmt decimal.Decimal, fromCur, toCur string) error {
	if strings.TrimSpace(fromID) == "" || strings.TrimSpace(toID) == "" {
		return apperrors.Validation("both fromAccountID and toAccountID are required")
	}
	if !IsPositiveMoney(fromAmt) || !IsPositiveMoney(toAmt) {
		return apperrors.Validation("fromAmount and toAmount must be greater than zero")
	}
	if !IsSupportedCurrency(fromCur) {
		return apperrors.Validation("unsupported currency %q", fromCur)
	}
	if !IsSupportedCurrency(toCur) {
		return apperrors.Validation("unsupported currency %q", toCur)
	}
	return nil
}

func validateRate(fromAmt, toAmt, rate decimal.Decimal) error {
	rate = RoundRate(rate)
	if !rate.IsPositive() {
		return apperrors.Validation("exchange rate must be greater than zero")
	}
	if expected := ConvertAmount(fromAmt, rate); !RoundMoney(toAmt).Equal(expected) {
		return apperrors.Validation("toAmount %s does not match fromAmount x exchangeRate = %s", RoundMoney(toAmt).StringFixed(MoneyScale), expected.StringFixed(MoneyScale))
	}
	return nil
}

// FormatTransactionNumber renders the human readable number of the seq-th
// transaction of year, e.g. TRX-2024-000042.
func FormatTransactionNumber(year int, seq int64) string {
	return fmt.Sprintf("TRX-%d-%06d", year, seq)
}

// Transaction is a single recorded money movement.
type Transaction struct {
	TransactionID     string             `json:"transactionID"`
	TransactionNumber string             `json:"transactionNumber"`
	Type              TransactionType    `json:"type"`
	Status            TransactionStatus  `json:"status"`
	TransactionDate   time.Time          `json:"transactionDate"`
	Category          string             `json:"category,omitempty"`
	Description       string             `json:"description,omitempty"`
	Reference         string             `json:"reference,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	Details           TransactionDetails `json:"details"`
	AuditFields
}

// Validate checks the transaction and its details variant.
func (t Transaction) Validate() error {
	if t.Details == nil {
		return apperrors.Validation("transaction details are required")
	}
	if !t.Type.IsValid() {
		return apperrors.Validation("invalid transaction type %q", t.Type)
	}
	if t.Details.Type() != t.Type {
		return apperrors.Validation("details of type %s do not match transaction type %s", t.Details.Type(), t.Type)
	}
	if !t.Status.IsValid() {
		return apperrors.Validation("invalid transaction status %q", t.Status)
	}
	if t.TransactionDate.IsZero() {
		return apperrors.Validation("transaction date is required")
	}
	return t.Details.validate()
}

// IsCompleted reports whether the transaction is reflected in balances.
func (t Transaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}

// BalanceEffect is the net change this transaction currently contributes to
// balances. Non-completed transactions contribute nothing.
func (t Transaction) BalanceEffect() []BalanceDelta {
	if !t.IsCompleted() || t.Details == nil {
		return nil
	}
	return NormalizeDeltas(t.Details.BalanceDeltas())
}

// PrimaryLeg returns the account, amount and currency that identify the
// transaction in listings. For two-legged types it is the source leg.
func (t Transaction) PrimaryLeg() (accountID string, amount decimal.Decimal, currency string) {
	switch d := t.Details.(type) {
	case IncomeDetails:
		return d.AccountID, d.Amount, d.CurrencyCode
	case ExpenseDetails:
		return d.AccountID, d.Amount, d.CurrencyCode
	case TransferDetails:
		return d.FromAccountID, d.FromAmount, d.FromCurrencyCode
	case ExchangeDetails:
		return d.FromAccountID, d.FromAmount, d.FromCurrencyCode
	}
	return "", decimal.Zero, ""
}

// ObligationLink describes the receivable or payable a transaction settles.
type ObligationLink struct {
	ObligationID string
	Kind         ObligationKind
	Amount       decimal.Decimal
	CurrencyCode string
}

// LinkedObligation returns the settlement link of an income or expense, if any.
func (t Transaction) LinkedObligation() (ObligationLink, bool) {
	switch d := t.Details.(type) {
	case IncomeDetails:
		if d.ReceivableID != "" {
			return ObligationLink{ObligationID: d.ReceivableID, Kind: ObligationKindReceivable, Amount: d.Amount, CurrencyCode: d.CurrencyCode}, true
		}
	case ExpenseDetails:
		if d.PayableID != "" {
			return ObligationLink{ObligationID: d.PayableID, Kind: ObligationKindPayable, Amount: d.Amount, CurrencyCode: d.CurrencyCode}, true
		}
	}
	return ObligationLink{}, false
}

// WithoutObligationLink returns a copy whose details no longer reference an obligation.
func (t Transaction) WithoutObligationLink() Transaction {
	switch d := t.Details.(type) {
	case IncomeDetails:
		d.ReceivableID = ""
		t.Details = d
	case ExpenseDetails:
		d.PayableID = ""
		t.Details = d
	}
	return t
}

// ReferencesAccount reports whether any leg touches accountID.
func (t Transaction) ReferencesAccount(accountID string) bool {
	if t.Details == nil {
		return false
	}
	for _, id := range t.Details.AccountIDs() {
		if id == accountID {
			return true
		}
	}
	return false
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	Type         TransactionType
	Status       TransactionStatus
	AccountID    string
	ObligationID string
	Category     string
	StartDate    *time.Time
	EndDate      *time.Time
}

// Matches reports whether t satisfies every set field of f.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.AccountID != "" && !t.ReferencesAccount(f.AccountID) {
		return false
	}
	if f.ObligationID != "" {
		link, ok := t.LinkedObligation()
		if !ok || link.ObligationID != f.ObligationID {
			return false
		}
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.StartDate != nil && t.TransactionDate.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && t.TransactionDate.After(*f.EndDate) {
		return false
	}
	return true
}
