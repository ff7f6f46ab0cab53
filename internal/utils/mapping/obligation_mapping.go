package mapping

import (
	"database/sql"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/SscSPs/mfg_ledger/internal/models"
)

// ToModelObligation converts a domain Obligation to a model Obligation
func ToModelObligation(d domain.Obligation) models.Obligation {
	return models.Obligation{
		ObligationID:     d.ObligationID,
		Kind:             string(d.Kind),
		CounterpartyName: d.CounterpartyName,
		CurrencyCode:     d.CurrencyCode,
		TotalAmount:      d.TotalAmount,
		PaidAmount:       d.PaidAmount,
		DueDate:          nullTime(d.DueDate),
		Status:           string(d.Status),
		OrderID:          d.OrderID,
		AccountID:        nullString(d.AccountID),
		Description:      d.Description,
		Notes:            d.Notes,
		AuditFields:      models.AuditFields(d.AuditFields),
	}
}

// ToDomainObligation converts a model Obligation to a domain Obligation
func ToDomainObligation(m models.Obligation) domain.Obligation {
	return domain.Obligation{
		ObligationID:     m.ObligationID,
		Kind:             domain.ObligationKind(m.Kind),
		CounterpartyName: m.CounterpartyName,
		CurrencyCode:     m.CurrencyCode,
		TotalAmount:      m.TotalAmount,
		PaidAmount:       m.PaidAmount,
		DueDate:          timePtr(m.DueDate),
		Status:           domain.ObligationStatus(m.Status),
		OrderID:          m.OrderID,
		AccountID:        m.AccountID.String,
		Description:      m.Description,
		Notes:            m.Notes,
		AuditFields:      domain.AuditFields(m.AuditFields),
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
