package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
)

// PersonnelRepository stores personnel records.
type PersonnelRepository struct {
	store *Store
}

var _ portsrepo.PersonnelRepositoryFacade = (*PersonnelRepository)(nil)

func (r *PersonnelRepository) SavePersonnel(ctx context.Context, personnel domain.Personnel) error {
	return r.store.write(ctx, func() error {
		if _, exists := r.store.personnel[personnel.PersonnelID]; exists {
			return fmt.Errorf("%w: personnel with ID %s already exists", apperrors.ErrDuplicate, personnel.PersonnelID)
		}
		if err := r.checkUserID(personnel); err != nil {
			return err
		}
		r.store.personnel[personnel.PersonnelID] = personnel
		return nil
	})
}

func (r *PersonnelRepository) FindPersonnelByID(ctx context.Context, personnelID string) (*domain.Personnel, error) {
	var out *domain.Personnel
	err := r.store.read(ctx, func() error {
		p, ok := r.store.personnel[personnelID]
		if !ok {
			return apperrors.NotFound("personnel", personnelID)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *PersonnelRepository) ListPersonnel(ctx context.Context, filter domain.PersonnelFilter) ([]domain.Personnel, error) {
	var out []domain.Personnel
	err := r.store.read(ctx, func() error {
		for _, p := range r.store.personnel {
			if filter.Matches(p) {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].PersonnelID < out[j].PersonnelID
	})
	return out, err
}

func (r *PersonnelRepository) UpdatePersonnel(ctx context.Context, personnel domain.Personnel) error {
	return r.store.write(ctx, func() error {
		current, ok := r.store.personnel[personnel.PersonnelID]
		if !ok {
			return apperrors.NotFound("personnel", personnel.PersonnelID)
		}
		if current.Version != personnel.Version {
			return apperrors.NewAppError(apperrors.ErrConcurrencyConflict,
				fmt.Sprintf("personnel %s was modified concurrently", personnel.PersonnelID), nil)
		}
		if err := r.checkUserID(personnel); err != nil {
			return err
		}
		next := personnel
		next.CreatedAt, next.CreatedBy = current.CreatedAt, current.CreatedBy
		next.Version = current.Version + 1
		r.store.personnel[personnel.PersonnelID] = next
		return nil
	})
}

func (r *PersonnelRepository) checkUserID(personnel domain.Personnel) error {
	if personnel.UserID == "" {
		return nil
	}
	for id, other := range r.store.personnel {
		if id != personnel.PersonnelID && other.UserID == personnel.UserID {
			return fmt.Errorf("%w: user %s is already linked to personnel %s", apperrors.ErrDuplicate, personnel.UserID, id)
		}
	}
	return nil
}

// SalaryRepository stores payroll entries.
type SalaryRepository struct {
	store *Store
}

var _ portsrepo.SalaryRepositoryFacade = (*SalaryRepository)(nil)

func (r *SalaryRepository) SaveSalary(ctx context.Context, salary domain.Salary) error {
	return r.store.write(ctx, func() error {
		if _, exists := r.store.salaries[salary.SalaryID]; exists {
			return fmt.Errorf("%w: salary with ID %s already exists", apperrors.ErrDuplicate, salary.SalaryID)
		}
		for _, other := range r.store.salaries {
			if other.PersonnelID == salary.PersonnelID && other.Month == salary.Month && other.Year == salary.Year {
				return fmt.Errorf("%w: personnel %s already has a salary for %02d/%d",
					apperrors.ErrDuplicate, salary.PersonnelID, salary.Month, salary.Year)
			}
		}
		r.store.salaries[salary.SalaryID] = salary
		return nil
	})
}

func (r *SalaryRepository) FindSalaryByID(ctx context.Context, salaryID string) (*domain.Salary, error) {
	var out *domain.Salary
	err := r.store.read(ctx, func() error {
		s, ok := r.store.salaries[salaryID]
		if !ok {
			return apperrors.NotFound("salary", salaryID)
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *SalaryRepository) ListSalaries(ctx context.Context, filter domain.SalaryFilter) ([]domain.Salary, error) {
	var out []domain.Salary
	err := r.store.read(ctx, func() error {
		for _, s := range r.store.salaries {
			if filter.Matches(s) {
				out = append(out, s)
			}
		}
		return nil
	})
	// newest period first
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		return a.SalaryID < b.SalaryID
	})
	return out, err
}

func (r *SalaryRepository) UpdateSalary(ctx context.Context, salary domain.Salary) error {
	return r.store.write(ctx, func() error {
		current, ok := r.store.salaries[salary.SalaryID]
		if !ok {
			return apperrors.NotFound("salary", salary.SalaryID)
		}
		if current.Version != salary.Version {
			return apperrors.NewAppError(apperrors.ErrConcurrencyConflict,
				fmt.Sprintf("salary %s was modified concurrently", salary.SalaryID), nil)
		}
		next := salary
		next.PersonnelID, next.Month, next.Year = current.PersonnelID, current.Month, current.Year
		next.CreatedAt, next.CreatedBy = current.CreatedAt, current.CreatedBy
		next.Version = current.Version + 1
		r.store.salaries[salary.SalaryID] = next
		return nil
	})
}

func (r *SalaryRepository) DeleteSalary(ctx context.Context, salaryID string) error {
	return r.store.write(ctx, func() error {
		if _, ok := r.store.salaries[salaryID]; !ok {
			return apperrors.NotFound("salary", salaryID)
		}
		delete(r.store.salaries, salaryID)
		return nil
	})
}
