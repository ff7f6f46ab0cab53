package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/mfg_ledger/internal/models"
	"github.com/SscSPs/mfg_ledger/internal/utils/mapping"
	"github.com/SscSPs/mfg_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `transaction_id, transaction_number, transaction_type, status, transaction_date,
	from_account_id, from_amount, from_currency_code, to_account_id, to_amount, to_currency_code, exchange_rate,
	obligation_id, category, description, reference, notes, created_at, created_by, last_updated_at, last_updated_by, version`

// Ordering must be stable for cursor pagination.
const transactionOrder = ` ORDER BY transaction_date DESC, created_at DESC, transaction_id DESC`

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.TransactionNumber,
		&m.TransactionType,
		&m.Status,
		&m.TransactionDate,
		&m.FromAccountID,
		&m.FromAmount,
		&m.FromCurrencyCode,
		&m.ToAccountID,
		&m.ToAmount,
		&m.ToCurrencyCode,
		&m.ExchangeRate,
		&m.ObligationID,
		&m.Category,
		&m.Description,
		&m.Reference,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	return mapping.ToDomainTransaction(m)
}

func (r *PgxTransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

func (r *PgxTransactionRepository) findOne(ctx context.Context, query, transactionID string) (*domain.Transaction, error) {
	txn, err := scanTransaction(r.q(ctx).QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("transaction", transactionID)
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return &txn, nil
}

// FindTransactionByID retrieves a transaction by id.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = $1;`, transactionID)
}

// FindTransactionForUpdate locks the row until the surrounding transaction ends.
func (r *PgxTransactionRepository) FindTransactionForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`, transactionID)
}

// ListTransactions retrieves a page of transactions using token-based pagination.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	var w whereBuilder
	if filter.Type != "" {
		w.add("transaction_type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		w.add("status = ?", string(filter.Status))
	}
	if filter.AccountID != "" {
		p := w.arg(filter.AccountID)
		w.conds = append(w.conds, "(from_account_id = "+p+" OR to_account_id = "+p+")")
	}
	if filter.ObligationID != "" {
		w.add("obligation_id = ?", filter.ObligationID)
	}
	if filter.Category != "" {
		w.add("category = ?", filter.Category)
	}
	if filter.StartDate != nil {
		w.add("transaction_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		w.add("transaction_date <= ?", *filter.EndDate)
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(apperrors.ErrValidation, "invalid nextToken", err)
		}
		// Tuple comparison is concise and efficient in Postgres
		w.add("(transaction_date, created_at, transaction_id) < (?, ?, ?)", cursor.TransactionDate, cursor.CreatedAt, cursor.ID)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions` + w.clause() + transactionOrder
	if limit > 0 {
		// one extra row tells whether a next page exists
		query += " LIMIT " + w.arg(limit+1)
	}
	transactions, err := r.queryTransactions(ctx, query, w.args...)
	if err != nil {
		return nil, nil, err
	}

	if limit <= 0 || len(transactions) <= limit {
		return transactions, nil, nil
	}
	transactions = transactions[:limit]
	last := transactions[len(transactions)-1]
	token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt, last.TransactionID)
	return transactions, &token, nil
}

// FindTransactionsByAccount returns every transaction touching an account, newest first.
func (r *PgxTransactionRepository) FindTransactionsByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE from_account_id = $1 OR to_account_id = $1` + transactionOrder
	return r.queryTransactions(ctx, query, accountID)
}

// NextTransactionNumber bumps the per-year counter. The row lock taken by the
// upsert serialises concurrent writers until their transaction ends.
func (r *PgxTransactionRepository) NextTransactionNumber(ctx context.Context, year int) (string, error) {
	query := `
		INSERT INTO transaction_counters (year, last_value) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = transaction_counters.last_value + 1
		RETURNING last_value;
	`
	var seq int64
	if err := r.q(ctx).QueryRow(ctx, query, year).Scan(&seq); err != nil {
		return "", translateError(err, fmt.Sprintf("allocate transaction number for %d", year))
	}
	return domain.FormatTransactionNumber(year, seq), nil
}

// SaveTransaction inserts a new transaction row.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m, err := mapping.ToModelTransaction(txn)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrValidation, "cannot store transaction", err)
	}
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err = r.q(ctx).Exec(ctx, query,
		m.TransactionID,
		m.TransactionNumber,
		m.TransactionType,
		m.Status,
		m.TransactionDate,
		m.FromAccountID,
		m.FromAmount,
		m.FromCurrencyCode,
		m.ToAccountID,
		m.ToAmount,
		m.ToCurrencyCode,
		m.ExchangeRate,
		m.ObligationID,
		m.Category,
		m.Description,
		m.Reference,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return translateError(err, "save transaction "+m.TransactionID)
	}
	return nil
}

// UpdateTransaction persists status and descriptive fields only.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $3, transaction_date = $4, category = $5, description = $6, reference = $7, notes = $8,
			last_updated_at = $9, last_updated_by = $10, version = version + 1
		WHERE transaction_id = $1 AND version = $2;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query,
		txn.TransactionID,
		txn.Version,
		string(txn.Status),
		txn.TransactionDate,
		txn.Category,
		txn.Description,
		txn.Reference,
		txn.Notes,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, "update transaction "+txn.TransactionID)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, "transactions", "transaction_id", "transaction", txn.TransactionID)
	}
	return nil
}

// DeleteTransaction removes a transaction row.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	cmdTag, err := r.q(ctx).Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return translateError(err, "delete transaction "+transactionID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("transaction", transactionID)
	}
	return nil
}

// DetachObligation clears the obligation link of every transaction settling it.
func (r *PgxTransactionRepository) DetachObligation(ctx context.Context, obligationID, userID string, now time.Time) (int, error) {
	query := `
		UPDATE transactions
		SET obligation_id = NULL, last_updated_at = $2, last_updated_by = $3, version = version + 1
		WHERE obligation_id = $1;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query, obligationID, now, userID)
	if err != nil {
		return 0, translateError(err, "detach transactions from obligation "+obligationID)
	}
	return int(cmdTag.RowsAffected()), nil
}
