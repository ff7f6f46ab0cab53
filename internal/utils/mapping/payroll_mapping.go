package mapping

import (
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/SscSPs/mfg_ledger/internal/models"
)

// ToModelPersonnel converts a domain Personnel to a model Personnel
func ToModelPersonnel(d domain.Personnel) models.Personnel {
	return models.Personnel{
		PersonnelID:    d.PersonnelID,
		Name:           d.Name,
		UserID:         nullString(d.UserID),
		Position:       d.Position,
		Department:     d.Department,
		BaseSalary:     d.BaseSalary,
		SalaryCurrency: d.SalaryCurrency,
		Status:         string(d.Status),
		BankName:       d.BankName,
		IBAN:           d.IBAN,
		HireDate:       nullTime(d.HireDate),
		AuditFields:    models.AuditFields(d.AuditFields),
	}
}

// ToDomainPersonnel converts a model Personnel to a domain Personnel
func ToDomainPersonnel(m models.Personnel) domain.Personnel {
	return domain.Personnel{
		PersonnelID:    m.PersonnelID,
		Name:           m.Name,
		UserID:         m.UserID.String,
		Position:       m.Position,
		Department:     m.Department,
		BaseSalary:     m.BaseSalary,
		SalaryCurrency: m.SalaryCurrency,
		Status:         domain.PersonnelStatus(m.Status),
		BankName:       m.BankName,
		IBAN:           m.IBAN,
		HireDate:       timePtr(m.HireDate),
		AuditFields:    domain.AuditFields(m.AuditFields),
	}
}

// ToModelSalary converts a domain Salary to a model Salary
func ToModelSalary(d domain.Salary) models.Salary {
	return models.Salary{
		SalaryID:         d.SalaryID,
		PersonnelID:      d.PersonnelID,
		Month:            d.Month,
		Year:             d.Year,
		GrossSalary:      d.GrossSalary,
		CurrencyCode:     d.CurrencyCode,
		DeductionTax:     d.Deductions.Tax,
		DeductionSocial:  d.Deductions.SocialSecurity,
		DeductionAdvance: d.Deductions.Advance,
		DeductionOther:   d.Deductions.Other,
		BonusPerformance: d.Bonuses.Performance,
		BonusOvertime:    d.Bonuses.Overtime,
		BonusOther:       d.Bonuses.Other,
		TotalDeductions:  d.TotalDeductions,
		TotalBonuses:     d.TotalBonuses,
		NetSalary:        d.NetSalary,
		PaymentAccountID: nullString(d.PaymentAccountID),
		Notes:            d.Notes,
		AuditFields:      models.AuditFields(d.AuditFields),
	}
}

// ToDomainSalary converts a model Salary to a domain Salary
func ToDomainSalary(m models.Salary) domain.Salary {
	return domain.Salary{
		SalaryID:     m.SalaryID,
		PersonnelID:  m.PersonnelID,
		Month:        m.Month,
		Year:         m.Year,
		GrossSalary:  m.GrossSalary,
		CurrencyCode: m.CurrencyCode,
		Deductions: domain.Deductions{
			Tax:            m.DeductionTax,
			SocialSecurity: m.DeductionSocial,
			Advance:        m.DeductionAdvance,
			Other:          m.DeductionOther,
		},
		Bonuses: domain.Bonuses{
			Performance: m.BonusPerformance,
			Overtime:    m.BonusOvertime,
			Other:       m.BonusOther,
		},
		TotalDeductions:  m.TotalDeductions,
		TotalBonuses:     m.TotalBonuses,
		NetSalary:        m.NetSalary,
		PaymentAccountID: m.PaymentAccountID.String,
		Notes:            m.Notes,
		AuditFields:      domain.AuditFields(m.AuditFields),
	}
}
