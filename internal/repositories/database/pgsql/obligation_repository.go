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

const obligationColumns = `obligation_id, kind, counterparty_name, currency_code, total_amount, paid_amount, due_date,
	status, order_id, account_id, description, notes, created_at, created_by, last_updated_at, last_updated_by, version`

type PgxObligationRepository struct {
	BaseRepository
}

func newPgxObligationRepository(pool *pgxpool.Pool) *PgxObligationRepository {
	return &PgxObligationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ObligationRepositoryFacade = (*PgxObligationRepository)(nil)

func scanObligation(row pgx.Row) (domain.Obligation, error) {
	var m models.Obligation
	err := row.Scan(
		&m.ObligationID,
		&m.Kind,
		&m.CounterpartyName,
		&m.CurrencyCode,
		&m.TotalAmount,
		&m.PaidAmount,
		&m.DueDate,
		&m.Status,
		&m.OrderID,
		&m.AccountID,
		&m.Description,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	if err != nil {
		return domain.Obligation{}, err
	}
	return mapping.ToDomainObligation(m), nil
}

func (r *PgxObligationRepository) findOne(ctx context.Context, query, obligationID string) (*domain.Obligation, error) {
	o, err := scanObligation(r.q(ctx).QueryRow(ctx, query, obligationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("obligation", obligationID)
		}
		return nil, fmt.Errorf("failed to find obligation %s: %w", obligationID, err)
	}
	return &o, nil
}

func (r *PgxObligationRepository) FindObligationByID(ctx context.Context, obligationID string) (*domain.Obligation, error) {
	return r.findOne(ctx, `SELECT `+obligationColumns+` FROM obligations WHERE obligation_id = $1;`, obligationID)
}

func (r *PgxObligationRepository) FindObligationForUpdate(ctx context.Context, obligationID string) (*domain.Obligation, error) {
	return r.findOne(ctx, `SELECT `+obligationColumns+` FROM obligations WHERE obligation_id = $1 FOR UPDATE;`, obligationID)
}

// ListObligations returns matching obligations by due date, undated last.
func (r *PgxObligationRepository) ListObligations(ctx context.Context, filter domain.ObligationFilter) ([]domain.Obligation, error) {
	var w whereBuilder
	if filter.Kind != "" {
		w.add("kind = ?", string(filter.Kind))
	}
	if filter.Status != "" {
		w.add("status = ?", string(filter.Status))
	}
	if filter.CurrencyCode != "" {
		w.add("currency_code = ?", filter.CurrencyCode)
	}
	if filter.CounterpartyName != "" {
		w.add("counterparty_name ILIKE ?", "%"+filter.CounterpartyName+"%")
	}
	if filter.OpenOnly || filter.OverdueOnly {
		w.add("status IN ('pending', 'partial')")
	}
	if filter.OverdueOnly {
		w.add("due_date < ?", filter.Now)
	}
	query := `SELECT ` + obligationColumns + ` FROM obligations` + w.clause() + ` ORDER BY due_date ASC NULLS LAST, obligation_id;`

	rows, err := r.q(ctx).Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query obligations: %w", err)
	}
	defer rows.Close()

	obligations := []domain.Obligation{}
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation row: %w", err)
		}
		obligations = append(obligations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating obligation rows: %w", err)
	}
	return obligations, nil
}

func (r *PgxObligationRepository) SaveObligation(ctx context.Context, obligation domain.Obligation) error {
	m := mapping.ToModelObligation(obligation)
	query := `
		INSERT INTO obligations (` + obligationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.q(ctx).Exec(ctx, query,
		m.ObligationID,
		m.Kind,
		m.CounterpartyName,
		m.CurrencyCode,
		m.TotalAmount,
		m.PaidAmount,
		m.DueDate,
		m.Status,
		m.OrderID,
		m.AccountID,
		m.Description,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return translateError(err, "save obligation "+m.ObligationID)
	}
	return nil
}

// UpdateObligation persists every mutable field. The kind never changes.
func (r *PgxObligationRepository) UpdateObligation(ctx context.Context, obligation domain.Obligation) error {
	m := mapping.ToModelObligation(obligation)
	query := `
		UPDATE obligations
		SET counterparty_name = $3, currency_code = $4, total_amount = $5, paid_amount = $6, due_date = $7,
			status = $8, order_id = $9, account_id = $10, description = $11, notes = $12,
			last_updated_at = $13, last_updated_by = $14, version = version + 1
		WHERE obligation_id = $1 AND version = $2;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query,
		m.ObligationID,
		m.Version,
		m.CounterpartyName,
		m.CurrencyCode,
		m.TotalAmount,
		m.PaidAmount,
		m.DueDate,
		m.Status,
		m.OrderID,
		m.AccountID,
		m.Description,
		m.Notes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, "update obligation "+m.ObligationID)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, "obligations", "obligation_id", "obligation", m.ObligationID)
	}
	return nil
}

func (r *PgxObligationRepository) DeleteObligation(ctx context.Context, obligationID string) error {
	cmdTag, err := r.q(ctx).Exec(ctx, `DELETE FROM obligations WHERE obligation_id = $1;`, obligationID)
	if err != nil {
		return translateError(err, "delete obligation "+obligationID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("obligation", obligationID)
	}
	return nil
}
