package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the part of pgx shared by the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type txKey struct{}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

var _ portsrepo.TransactionManager = (*BaseRepository)(nil)

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternal, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return translateError(err, "commit transaction")
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(apperrors.ErrInternal, "failed to rollback transaction", err)
	}
	return nil
}

// WithinTransaction runs fn in a database transaction carried by the context.
// A context that already carries one joins it.
func (r *BaseRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// q returns the transaction carried by ctx, or the pool.
func (r *BaseRepository) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.Pool
}

// staleOrMissing explains why a versioned update touched no row.
func (r *BaseRepository) staleOrMissing(ctx context.Context, table, idColumn, entity, id string) error {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1);`, table, idColumn)
	if err := r.q(ctx).QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check %s %s: %w", entity, id, err)
	}
	if !exists {
		return apperrors.NotFound(entity, id)
	}
	return apperrors.NewAppError(apperrors.ErrConcurrencyConflict,
		fmt.Sprintf("%s %s was modified concurrently", entity, id), nil)
}

// translateError maps Postgres failures onto the application error kinds.
func translateError(err error, action string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	switch pgErr.Code {
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return apperrors.NewAppError(apperrors.ErrConcurrencyConflict, "failed to "+action, err)
	case "23505": // unique_violation
		if pgErr.ConstraintName == "ux_accounts_default_currency" {
			return apperrors.NewAppError(apperrors.ErrDefaultAccountExists, "another active account is already the default for this currency", err)
		}
		return apperrors.NewAppError(apperrors.ErrDuplicate, "failed to "+action+": record already exists", err)
	case "23503": // foreign_key_violation
		return apperrors.NewAppError(apperrors.ErrValidation, "failed to "+action+": referenced record is missing or still in use", err)
	case "23514": // check_violation
		if pgErr.ConstraintName == "chk_obligations_paid_le_total" {
			return apperrors.NewAppError(apperrors.ErrOverpayment, "paid amount exceeds total amount", err)
		}
		return apperrors.NewAppError(apperrors.ErrValidation, "failed to "+action+": "+pgErr.Message, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// whereBuilder collects AND-ed conditions with numbered placeholders.
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends a condition; every "?" in cond becomes the next placeholder.
func (w *whereBuilder) add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

// arg registers a bare argument and returns its placeholder.
func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
