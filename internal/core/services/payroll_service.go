package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// payrollService keeps personnel and their monthly salary entries. Salaries
// are records only; paying one is a separate expense transaction.
type payrollService struct {
	BaseService
	personnelRepo portsrepo.PersonnelRepositoryFacade
	salaryRepo    portsrepo.SalaryRepositoryFacade
	accountRepo   portsrepo.AccountReader
}

// NewPayrollService creates the payroll calculator.
func NewPayrollService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.PayrollSvcFacade {
	return &payrollService{
		BaseService:   newBaseService(repos.TxManager, options),
		personnelRepo: repos.PersonnelRepo,
		salaryRepo:    repos.SalaryRepo,
		accountRepo:   repos.AccountRepo,
	}
}

var _ portssvc.PayrollSvcFacade = (*payrollService)(nil)

func (s *payrollService) CreatePersonnel(ctx context.Context, req dto.CreatePersonnelRequest, userID string) (*domain.Personnel, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = domain.PersonnelStatusActive
	}
	p := domain.Personnel{
		PersonnelID:    uuid.NewString(),
		Name:           strings.TrimSpace(req.Name),
		UserID:         strings.TrimSpace(req.UserID),
		Position:       req.Position,
		Department:     req.Department,
		BaseSalary:     domain.RoundMoney(req.BaseSalary),
		SalaryCurrency: domain.NormalizeCurrencyCode(req.SalaryCurrency),
		Status:         status,
		BankName:       req.BankName,
		IBAN:           req.IBAN,
		HireDate:       req.HireDate,
		AuditFields:    domain.NewAuditFields(userID, s.now()),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.personnelRepo.SavePersonnel(ctx, p); err != nil {
		s.LogError(ctx, err, "Failed to save personnel", slog.String("personnel_id", p.PersonnelID))
		return nil, err
	}

	s.LogInfo(ctx, "Personnel created", slog.String("personnel_id", p.PersonnelID))
	s.publish(ctx, domain.EventPersonnelCreated, p.PersonnelID, userID, p)
	return &p, nil
}

func (s *payrollService) GetPersonnel(ctx context.Context, personnelID string) (*domain.Personnel, error) {
	return s.personnelRepo.FindPersonnelByID(ctx, personnelID)
}

func (s *payrollService) ListPersonnel(ctx context.Context, params dto.ListPersonnelParams) ([]domain.Personnel, error) {
	people, err := s.personnelRepo.ListPersonnel(ctx, domain.PersonnelFilter{Status: params.Status, Department: params.Department})
	if err != nil {
		s.LogError(ctx, err, "Failed to list personnel")
		return nil, fmt.Errorf("failed to list personnel: %w", err)
	}
	if people == nil {
		return []domain.Personnel{}, nil
	}
	return people, nil
}

func (s *payrollService) UpdatePersonnel(ctx context.Context, personnelID string, req dto.UpdatePersonnelRequest, userID string) (*domain.Personnel, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	var updated domain.Personnel
	err := s.runInUnit(ctx, "update_personnel", func(ctx context.Context) error {
		current, err := s.personnelRepo.FindPersonnelByID(ctx, personnelID)
		if err != nil {
			return err
		}
		if req.Version != nil && *req.Version != current.Version {
			return apperrors.NewAppError(apperrors.ErrConcurrencyConflict,
				fmt.Sprintf("personnel %s has version %d, not %d", personnelID, current.Version, *req.Version), nil)
		}
		next := *current
		if req.Name != nil {
			next.Name = strings.TrimSpace(*req.Name)
		}
		if req.UserID != nil {
			next.UserID = strings.TrimSpace(*req.UserID)
		}
		if req.Position != nil {
			next.Position = *req.Position
		}
		if req.Department != nil {
			next.Department = *req.Department
		}
		if req.BaseSalary != nil {
			next.BaseSalary = domain.RoundMoney(*req.BaseSalary)
		}
		if req.SalaryCurrency != nil {
			next.SalaryCurrency = domain.NormalizeCurrencyCode(*req.SalaryCurrency)
		}
		if req.Status != nil {
			next.Status = *req.Status
		}
		if req.BankName != nil {
			next.BankName = *req.BankName
		}
		if req.IBAN != nil {
			next.IBAN = *req.IBAN
		}
		if req.HireDate != nil {
			next.HireDate = req.HireDate
		}
		next.Touch(userID, s.now())
		if err := next.Validate(); err != nil {
			return err
		}
		if err := s.personnelRepo.UpdatePersonnel(ctx, next); err != nil {
			return err
		}
		next.Version++
		updated = next
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update personnel", slog.String("personnel_id", personnelID))
		return nil, err
	}

	s.publish(ctx, domain.EventPersonnelUpdated, personnelID, userID, updated)
	return &updated, nil
}

func (s *payrollService) CreateSalary(ctx context.Context, req dto.CreateSalaryRequest, userID string) (*domain.Salary, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}

	var salary domain.Salary
	err := s.runInUnit(ctx, "create_salary", func(ctx context.Context) error {
		person, err := s.personnelRepo.FindPersonnelByID(ctx, req.PersonnelID)
		if err != nil {
			return err
		}
		currency := domain.NormalizeCurrencyCode(req.CurrencyCode)
		if currency == "" {
			currency = person.SalaryCurrency
		}
		salary = domain.Salary{
			SalaryID:         uuid.NewString(),
			PersonnelID:      person.PersonnelID,
			Month:            req.Month,
			Year:             req.Year,
			GrossSalary:      req.GrossSalary,
			CurrencyCode:     currency,
			Deductions:       req.Deductions,
			Bonuses:          req.Bonuses,
			PaymentAccountID: req.PaymentAccountID,
			Notes:            req.Notes,
			AuditFields:      domain.NewAuditFields(userID, s.now()),
		}
		salary.Recompute()
		if err := salary.Validate(); err != nil {
			return err
		}
		if err := s.checkPaymentAccount(ctx, salary); err != nil {
			return err
		}
		return s.salaryRepo.SaveSalary(ctx, salary)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create salary",
			slog.String("personnel_id", req.PersonnelID),
			slog.Int("month", req.Month),
			slog.Int("year", req.Year))
		return nil, err
	}

	s.LogInfo(ctx, "Salary created",
		slog.String("salary_id", salary.SalaryID),
		slog.String("net_salary", salary.NetSalary.StringFixed(domain.MoneyScale)))
	s.publish(ctx, domain.EventSalaryCreated, salary.SalaryID, userID, salary)
	return &salary, nil
}

func (s *payrollService) GetSalary(ctx context.Context, salaryID string) (*domain.Salary, error) {
	salary, err := s.salaryRepo.FindSalaryByID(ctx, salaryID)
	if err != nil {
		return nil, err
	}
	salary.Recompute()
	return salary, nil
}

func (s *payrollService) ListSalaries(ctx context.Context, params dto.ListSalariesParams) ([]domain.Salary, error) {
	salaries, err := s.salaryRepo.ListSalaries(ctx, domain.SalaryFilter{
		PersonnelID: params.PersonnelID,
		Month:       params.Month,
		Year:        params.Year,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list salaries")
		return nil, fmt.Errorf("failed to list salaries: %w", err)
	}
	if salaries == nil {
		return []domain.Salary{}, nil
	}
	for i := range salaries {
		salaries[i].Recompute()
	}
	return salaries, nil
}

func (s *payrollService) UpdateSalary(ctx context.Context, salaryID string, req dto.UpdateSalaryRequest, userID string) (*domain.Salary, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	var updated domain.Salary
	err := s.runInUnit(ctx, "update_salary", func(ctx context.Context) error {
		current, err := s.salaryRepo.FindSalaryByID(ctx, salaryID)
		if err != nil {
			return err
		}
		if req.Version != nil && *req.Version != current.Version {
			return apperrors.NewAppError(apperrors.ErrConcurrencyConflict,
				fmt.Sprintf("salary %s has version %d, not %d", salaryID, current.Version, *req.Version), nil)
		}
		next := *current
		if req.GrossSalary != nil {
			next.GrossSalary = *req.GrossSalary
		}
		if req.Deductions != nil {
			next.Deductions = *req.Deductions
		}
		if req.Bonuses != nil {
			next.Bonuses = *req.Bonuses
		}
		if req.PaymentAccountID != nil {
			next.PaymentAccountID = *req.PaymentAccountID
		}
		if req.Notes != nil {
			next.Notes = *req.Notes
		}
		next.Recompute()
		next.Touch(userID, s.now())
		if err := next.Validate(); err != nil {
			return err
		}
		if err := s.checkPaymentAccount(ctx, next); err != nil {
			return err
		}
		if err := s.salaryRepo.UpdateSalary(ctx, next); err != nil {
			return err
		}
		next.Version++
		updated = next
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update salary", slog.String("salary_id", salaryID))
		return nil, err
	}

	s.publish(ctx, domain.EventSalaryUpdated, salaryID, userID, updated)
	return &updated, nil
}

func (s *payrollService) DeleteSalary(ctx context.Context, salaryID string, userID string) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	if err := s.salaryRepo.DeleteSalary(ctx, salaryID); err != nil {
		s.LogError(ctx, err, "Failed to delete salary", slog.String("salary_id", salaryID))
		return err
	}
	s.LogInfo(ctx, "Salary deleted", slog.String("salary_id", salaryID))
	s.publish(ctx, domain.EventSalaryDeleted, salaryID, userID, nil)
	return nil
}

// checkPaymentAccount verifies the optional payout account holds the salary currency.
func (s *payrollService) checkPaymentAccount(ctx context.Context, salary domain.Salary) error {
	if salary.PaymentAccountID == "" {
		return nil
	}
	acc, err := s.accountRepo.FindAccountByID(ctx, salary.PaymentAccountID)
	if err != nil {
		return err
	}
	if !acc.Supports(salary.CurrencyCode) {
		return apperrors.NewAppError(apperrors.ErrUnsupportedCurrency,
			fmt.Sprintf("account %s does not hold %s", salary.PaymentAccountID, salary.CurrencyCode), nil)
	}
	return nil
}

// monthlyCost sums base salaries of everyone still employed, per currency.
func monthlyCost(people []domain.Personnel) map[string]decimal.Decimal {
	cost := map[string]decimal.Decimal{}
	for _, p := range people {
		if p.Status == domain.PersonnelStatusTerminated {
			continue
		}
		cost[p.SalaryCurrency] = cost[p.SalaryCurrency].Add(p.BaseSalary)
	}
	return cost
}
