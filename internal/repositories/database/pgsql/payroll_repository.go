package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/mfg_ledger/internal/models"
	"github.com/SscSPs/mfg_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const personnelColumns = `personnel_id, name, user_id, position, department, base_salary, salary_currency, status,
	bank_name, iban, hire_date, created_at, created_by, last_updated_at, last_updated_by, version`

const salaryColumns = `salary_id, personnel_id, month, year, gross_salary, currency_code,
	deduction_tax, deduction_social, deduction_advance, deduction_other,
	bonus_performance, bonus_overtime, bonus_other, total_deductions, total_bonuses, net_salary,
	payment_account_id, notes, created_at, created_by, last_updated_at, last_updated_by, version`

type PgxPersonnelRepository struct {
	BaseRepository
}

func newPgxPersonnelRepository(pool *pgxpool.Pool) *PgxPersonnelRepository {
	return &PgxPersonnelRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PersonnelRepositoryFacade = (*PgxPersonnelRepository)(nil)

func scanPersonnel(row pgx.Row) (domain.Personnel, error) {
	var m models.Personnel
	err := row.Scan(
		&m.PersonnelID,
		&m.Name,
		&m.UserID,
		&m.Position,
		&m.Department,
		&m.BaseSalary,
		&m.SalaryCurrency,
		&m.Status,
		&m.BankName,
		&m.IBAN,
		&m.HireDate,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	if err != nil {
		return domain.Personnel{}, err
	}
	return mapping.ToDomainPersonnel(m), nil
}

// SavePersonnel fails with ErrDuplicate when the linked user is taken.
func (r *PgxPersonnelRepository) SavePersonnel(ctx context.Context, personnel domain.Personnel) error {
	m := mapping.ToModelPersonnel(personnel)
	query := `
		INSERT INTO personnel (` + personnelColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.q(ctx).Exec(ctx, query,
		m.PersonnelID,
		m.Name,
		m.UserID,
		m.Position,
		m.Department,
		m.BaseSalary,
		m.SalaryCurrency,
		m.Status,
		m.BankName,
		m.IBAN,
		m.HireDate,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return translateError(err, "save personnel "+m.PersonnelID)
	}
	return nil
}

func (r *PgxPersonnelRepository) FindPersonnelByID(ctx context.Context, personnelID string) (*domain.Personnel, error) {
	query := `SELECT ` + personnelColumns + ` FROM personnel WHERE personnel_id = $1;`
	p, err := scanPersonnel(r.q(ctx).QueryRow(ctx, query, personnelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("personnel", personnelID)
		}
		return nil, fmt.Errorf("failed to find personnel %s: %w", personnelID, err)
	}
	return &p, nil
}

func (r *PgxPersonnelRepository) ListPersonnel(ctx context.Context, filter domain.PersonnelFilter) ([]domain.Personnel, error) {
	var w whereBuilder
	if filter.Status != "" {
		w.add("status = ?", string(filter.Status))
	}
	if filter.Department != "" {
		w.add("LOWER(department) = LOWER(?)", filter.Department)
	}
	query := `SELECT ` + personnelColumns + ` FROM personnel` + w.clause() + ` ORDER BY name, personnel_id;`

	rows, err := r.q(ctx).Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query personnel: %w", err)
	}
	defer rows.Close()

	people := []domain.Personnel{}
	for rows.Next() {
		p, err := scanPersonnel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan personnel row: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating personnel rows: %w", err)
	}
	return people, nil
}

func (r *PgxPersonnelRepository) UpdatePersonnel(ctx context.Context, personnel domain.Personnel) error {
	m := mapping.ToModelPersonnel(personnel)
	query := `
		UPDATE personnel
		SET name = $3, user_id = $4, position = $5, department = $6, base_salary = $7, salary_currency = $8,
			status = $9, bank_name = $10, iban = $11, hire_date = $12,
			last_updated_at = $13, last_updated_by = $14, version = version + 1
		WHERE personnel_id = $1 AND version = $2;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query,
		m.PersonnelID,
		m.Version,
		m.Name,
		m.UserID,
		m.Position,
		m.Department,
		m.BaseSalary,
		m.SalaryCurrency,
		m.Status,
		m.BankName,
		m.IBAN,
		m.HireDate,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, "update personnel "+m.PersonnelID)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, "personnel", "personnel_id", "personnel", m.PersonnelID)
	}
	return nil
}

type PgxSalaryRepository struct {
	BaseRepository
}

func newPgxSalaryRepository(pool *pgxpool.Pool) *PgxSalaryRepository {
	return &PgxSalaryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SalaryRepositoryFacade = (*PgxSalaryRepository)(nil)

func scanSalary(row pgx.Row) (domain.Salary, error) {
	var m models.Salary
	err := row.Scan(
		&m.SalaryID,
		&m.PersonnelID,
		&m.Month,
		&m.Year,
		&m.GrossSalary,
		&m.CurrencyCode,
		&m.DeductionTax,
		&m.DeductionSocial,
		&m.DeductionAdvance,
		&m.DeductionOther,
		&m.BonusPerformance,
		&m.BonusOvertime,
		&m.BonusOther,
		&m.TotalDeductions,
		&m.TotalBonuses,
		&m.NetSalary,
		&m.PaymentAccountID,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	if err != nil {
		return domain.Salary{}, err
	}
	return mapping.ToDomainSalary(m), nil
}

// SaveSalary relies on ux_salaries_period to reject a second entry for the period.
func (r *PgxSalaryRepository) SaveSalary(ctx context.Context, salary domain.Salary) error {
	m := mapping.ToModelSalary(salary)
	query := `
		INSERT INTO salaries (` + salaryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	_, err := r.q(ctx).Exec(ctx, query,
		m.SalaryID,
		m.PersonnelID,
		m.Month,
		m.Year,
		m.GrossSalary,
		m.CurrencyCode,
		m.DeductionTax,
		m.DeductionSocial,
		m.DeductionAdvance,
		m.DeductionOther,
		m.BonusPerformance,
		m.BonusOvertime,
		m.BonusOther,
		m.TotalDeductions,
		m.TotalBonuses,
		m.NetSalary,
		m.PaymentAccountID,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("save salary of personnel %s for %02d/%d", m.PersonnelID, m.Month, m.Year))
	}
	return nil
}

func (r *PgxSalaryRepository) FindSalaryByID(ctx context.Context, salaryID string) (*domain.Salary, error) {
	query := `SELECT ` + salaryColumns + ` FROM salaries WHERE salary_id = $1;`
	s, err := scanSalary(r.q(ctx).QueryRow(ctx, query, salaryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("salary", salaryID)
		}
		return nil, fmt.Errorf("failed to find salary %s: %w", salaryID, err)
	}
	return &s, nil
}

// ListSalaries returns matching salaries, newest period first.
func (r *PgxSalaryRepository) ListSalaries(ctx context.Context, filter domain.SalaryFilter) ([]domain.Salary, error) {
	var w whereBuilder
	if filter.PersonnelID != "" {
		w.add("personnel_id = ?", filter.PersonnelID)
	}
	if filter.Month != 0 {
		w.add("month = ?", filter.Month)
	}
	if filter.Year != 0 {
		w.add("year = ?", filter.Year)
	}
	query := `SELECT ` + salaryColumns + ` FROM salaries` + w.clause() + ` ORDER BY year DESC, month DESC, salary_id;`

	rows, err := r.q(ctx).Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query salaries: %w", err)
	}
	defer rows.Close()

	salaries := []domain.Salary{}
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary row: %w", err)
		}
		salaries = append(salaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating salary rows: %w", err)
	}
	return salaries, nil
}

// UpdateSalary rewrites amounts and the payment account. The period is fixed.
func (r *PgxSalaryRepository) UpdateSalary(ctx context.Context, salary domain.Salary) error {
	m := mapping.ToModelSalary(salary)
	query := `
		UPDATE salaries
		SET gross_salary = $3, currency_code = $4, deduction_tax = $5, deduction_social = $6, deduction_advance = $7,
			deduction_other = $8, bonus_performance = $9, bonus_overtime = $10, bonus_other = $11,
			total_deductions = $12, total_bonuses = $13, net_salary = $14, payment_account_id = $15, notes = $16,
			last_updated_at = $17, last_updated_by = $18, version = version + 1
		WHERE salary_id = $1 AND version = $2;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query,
		m.SalaryID,
		m.Version,
		m.GrossSalary,
		m.CurrencyCode,
		m.DeductionTax,
		m.DeductionSocial,
		m.DeductionAdvance,
		m.DeductionOther,
		m.BonusPerformance,
		m.BonusOvertime,
		m.BonusOther,
		m.TotalDeductions,
		m.TotalBonuses,
		m.NetSalary,
		m.PaymentAccountID,
		m.Notes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, "update salary "+m.SalaryID)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, "salaries", "salary_id", "salary", m.SalaryID)
	}
	return nil
}

func (r *PgxSalaryRepository) DeleteSalary(ctx context.Context, salaryID string) error {
	cmdTag, err := r.q(ctx).Exec(ctx, `DELETE FROM salaries WHERE salary_id = $1;`, salaryID)
	if err != nil {
		return translateError(err, "delete salary "+salaryID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("salary", salaryID)
	}
	return nil
}
