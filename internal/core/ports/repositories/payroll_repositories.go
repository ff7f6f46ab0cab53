package repositories

import (
	"context"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
)

// PersonnelRepositoryFacade defines persistence for personnel records.
type PersonnelRepositoryFacade interface {
	// SavePersonnel fails with ErrDuplicate when the linked user id is taken.
	SavePersonnel(ctx context.Context, personnel domain.Personnel) error
	FindPersonnelByID(ctx context.Context, personnelID string) (*domain.Personnel, error)
	ListPersonnel(ctx context.Context, filter domain.PersonnelFilter) ([]domain.Personnel, error)
	// UpdatePersonnel fails with ErrConcurrencyConflict when personnel.Version is stale.
	UpdatePersonnel(ctx context.Context, personnel domain.Personnel) error
}

// SalaryRepositoryFacade defines persistence for salary records.
type SalaryRepositoryFacade interface {
	// SaveSalary fails with ErrDuplicate when the personnel already has a salary for the period.
	SaveSalary(ctx context.Context, salary domain.Salary) error
	FindSalaryByID(ctx context.Context, salaryID string) (*domain.Salary, error)
	ListSalaries(ctx context.Context, filter domain.SalaryFilter) ([]domain.Salary, error)
	// UpdateSalary fails with ErrConcurrencyConflict when salary.Version is stale.
	UpdateSalary(ctx context.Context, salary domain.Salary) error
	DeleteSalary(ctx context.Context, salaryID string) error
}
