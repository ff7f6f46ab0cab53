package services

import (
	"context"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/SscSPs/mfg_ledger/internal/dto"
)

// PersonnelSvc defines personnel management operations
type PersonnelSvc interface {
	CreatePersonnel(ctx context.Context, req dto.CreatePersonnelRequest, userID string) (*domain.Personnel, error)
	GetPersonnel(ctx context.Context, personnelID string) (*domain.Personnel, error)
	ListPersonnel(ctx context.Context, params dto.ListPersonnelParams) ([]domain.Personnel, error)
	UpdatePersonnel(ctx context.Context, personnelID string, req dto.UpdatePersonnelRequest, userID string) (*domain.Personnel, error)
}

// SalarySvc defines payroll entry operations. None of them move money.
type SalarySvc interface {
	CreateSalary(ctx context.Context, req dto.CreateSalaryRequest, userID string) (*domain.Salary, error)
	GetSalary(ctx context.Context, salaryID string) (*domain.Salary, error)
	ListSalaries(ctx context.Context, params dto.ListSalariesParams) ([]domain.Salary, error)
	UpdateSalary(ctx context.Context, salaryID string, req dto.UpdateSalaryRequest, userID string) (*domain.Salary, error)
	DeleteSalary(ctx context.Context, salaryID string, userID string) error
}

// PayrollSvcFacade combines personnel and salary operations
type PayrollSvcFacade interface {
	PersonnelSvc
	SalarySvc
}
