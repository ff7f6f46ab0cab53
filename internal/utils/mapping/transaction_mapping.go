package mapping

import (
	"database/sql"
	"fmt"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/SscSPs/mfg_ledger/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelTransaction flattens a domain Transaction into a row.
func ToModelTransaction(d domain.Transaction) (models.Transaction, error) {
	m := models.Transaction{
		TransactionID:     d.TransactionID,
		TransactionNumber: d.TransactionNumber,
		TransactionType:   string(d.Type),
		Status:            string(d.Status),
		TransactionDate:   d.TransactionDate,
		Category:          d.Category,
		Description:       d.Description,
		Reference:         d.Reference,
		Notes:             d.Notes,
		AuditFields:       models.AuditFields(d.AuditFields),
	}
	switch det := d.Details.(type) {
	case domain.IncomeDetails:
		m.FromAccountID, m.FromAmount, m.FromCurrencyCode = det.AccountID, det.Amount, det.CurrencyCode
		m.ObligationID = nullString(det.ReceivableID)
	case domain.ExpenseDetails:
		m.FromAccountID, m.FromAmount, m.FromCurrencyCode = det.AccountID, det.Amount, det.CurrencyCode
		m.ObligationID = nullString(det.PayableID)
	case domain.TransferDetails:
		m.FromAccountID, m.FromAmount, m.FromCurrencyCode = det.FromAccountID, det.FromAmount, det.FromCurrencyCode
		m.ToAccountID = nullString(det.ToAccountID)
		m.ToAmount = decimal.NewNullDecimal(det.ToAmount)
		m.ToCurrencyCode = nullString(det.ToCurrencyCode)
		if det.ExchangeRate != nil {
			m.ExchangeRate = decimal.NewNullDecimal(*det.ExchangeRate)
		}
	case domain.ExchangeDetails:
		m.FromAccountID, m.FromAmount, m.FromCurrencyCode = det.FromAccountID, det.FromAmount, det.FromCurrencyCode
		m.ToAccountID = nullString(det.ToAccountID)
		m.ToAmount = decimal.NewNullDecimal(det.ToAmount)
		m.ToCurrencyCode = nullString(det.ToCurrencyCode)
		m.ExchangeRate = decimal.NewNullDecimal(det.ExchangeRate)
	default:
		return models.Transaction{}, fmt.Errorf("transaction %s has no details", d.TransactionID)
	}
	return m, nil
}

// ToDomainTransaction rebuilds the typed details of a stored row.
func ToDomainTransaction(m models.Transaction) (domain.Transaction, error) {
	d := domain.Transaction{
		TransactionID:     m.TransactionID,
		TransactionNumber: m.TransactionNumber,
		Type:              domain.TransactionType(m.TransactionType),
		Status:            domain.TransactionStatus(m.Status),
		TransactionDate:   m.TransactionDate,
		Category:          m.Category,
		Description:       m.Description,
		Reference:         m.Reference,
		Notes:             m.Notes,
		AuditFields:       domain.AuditFields(m.AuditFields),
	}
	switch d.Type {
	case domain.TransactionTypeIncome:
		d.Details = domain.IncomeDetails{
			AccountID: m.FromAccountID, Amount: m.FromAmount, CurrencyCode: m.FromCurrencyCode,
			ReceivableID: m.ObligationID.String,
		}
	case domain.TransactionTypeExpense:
		d.Details = domain.ExpenseDetails{
			AccountID: m.FromAccountID, Amount: m.FromAmount, CurrencyCode: m.FromCurrencyCode,
			PayableID: m.ObligationID.String,
		}
	case domain.TransactionTypeTransfer:
		det := domain.TransferDetails{
			FromAccountID: m.FromAccountID, FromAmount: m.FromAmount, FromCurrencyCode: m.FromCurrencyCode,
			ToAccountID: m.ToAccountID.String, ToAmount: m.ToAmount.Decimal, ToCurrencyCode: m.ToCurrencyCode.String,
		}
		if m.ExchangeRate.Valid {
			rate := m.ExchangeRate.Decimal
			det.ExchangeRate = &rate
		}
		d.Details = det
	case domain.TransactionTypeExchange:
		d.Details = domain.ExchangeDetails{
			FromAccountID: m.FromAccountID, FromAmount: m.FromAmount, FromCurrencyCode: m.FromCurrencyCode,
			ToAccountID: m.ToAccountID.String, ToAmount: m.ToAmount.Decimal, ToCurrencyCode: m.ToCurrencyCode.String,
			ExchangeRate: m.ExchangeRate.Decimal,
		}
	default:
		return domain.Transaction{}, fmt.Errorf("transaction %s has unknown type %q", m.TransactionID, m.TransactionType)
	}
	return d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
