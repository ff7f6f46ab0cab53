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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, name, account_type, currency_mode, currency_code, bank_name, iban, account_number,
	is_default, is_active, description, notes, created_at, created_by, last_updated_at, last_updated_by, version`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Name,
		&m.AccountType,
		&m.CurrencyMode,
		&m.CurrencyCode,
		&m.BankName,
		&m.IBAN,
		&m.AccountNumber,
		&m.IsDefault,
		&m.IsActive,
		&m.Description,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

// loadBalances fetches the balance rows of the given accounts keyed by account id.
func (r *PgxAccountRepository) loadBalances(ctx context.Context, accountIDs []string) (map[string][]models.AccountBalance, error) {
	query := `
		SELECT account_id, currency_code, amount, version, last_updated_at, last_updated_by
		FROM account_balances
		WHERE account_id = ANY($1)
		ORDER BY account_id, currency_code;
	`
	rows, err := r.q(ctx).Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query account balances: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.AccountBalance, len(accountIDs))
	for rows.Next() {
		var b models.AccountBalance
		if err := rows.Scan(&b.AccountID, &b.CurrencyCode, &b.Amount, &b.Version, &b.LastUpdatedAt, &b.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan account balance row: %w", err)
		}
		out[b.AccountID] = append(out[b.AccountID], b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account balance rows: %w", err)
	}
	return out, nil
}

// queryAccounts runs an account query and attaches the balances of every row.
func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	var modelAccs []models.Account
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		modelAccs = append(modelAccs, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	accounts := make([]domain.Account, 0, len(modelAccs))
	if len(modelAccs) == 0 {
		return accounts, nil
	}
	ids := make([]string, len(modelAccs))
	for i, m := range modelAccs {
		ids[i] = m.AccountID
	}
	balances, err := r.loadBalances(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, m := range modelAccs {
		accounts = append(accounts, mapping.ToDomainAccount(m, balances[m.AccountID]))
	}
	return accounts, nil
}

// FindAccountByID retrieves an account by its ID, balances included.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	m, err := scanAccount(r.q(ctx).QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("account", accountID)
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	balances, err := r.loadBalances(ctx, []string{accountID})
	if err != nil {
		return nil, err
	}
	acc := mapping.ToDomainAccount(m, balances[accountID])
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	accounts, err := r.queryAccounts(ctx, query, accountIDs)
	if err != nil {
		return nil, err
	}
	accountsMap := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		accountsMap[acc.AccountID] = acc
	}
	for _, id := range accountIDs {
		if _, ok := accountsMap[id]; !ok {
			return nil, apperrors.NotFound("account", id)
		}
	}
	return accountsMap, nil
}

// ListAccounts retrieves accounts matching the filter ordered by name.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var w whereBuilder
	if filter.AccountType != "" {
		w.add("a.account_type = ?", string(filter.AccountType))
	}
	if filter.CurrencyCode != "" {
		w.add("EXISTS (SELECT 1 FROM account_balances b WHERE b.account_id = a.account_id AND b.currency_code = ?)",
			domain.NormalizeCurrencyCode(filter.CurrencyCode))
	}
	if filter.ActiveOnly {
		w.add("a.is_active = TRUE")
	}
	query := `SELECT ` + accountColumns + ` FROM accounts a` + w.clause() + ` ORDER BY a.name, a.account_id`
	if filter.Limit > 0 {
		query += " LIMIT " + w.arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + w.arg(filter.Offset)
	}
	return r.queryAccounts(ctx, query, w.args...)
}

// GetAccountUsage counts the ledger records that reference an account.
func (r *PgxAccountRepository) GetAccountUsage(ctx context.Context, accountID string) (domain.AccountUsage, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM transactions WHERE from_account_id = $1 OR to_account_id = $1),
			(SELECT COUNT(*) FROM obligations WHERE account_id = $1),
			(SELECT COUNT(*) FROM salaries WHERE payment_account_id = $1);
	`
	var usage domain.AccountUsage
	if err := r.q(ctx).QueryRow(ctx, query, accountID).Scan(&usage.Transactions, &usage.Obligations, &usage.Salaries); err != nil {
		return domain.AccountUsage{}, fmt.Errorf("failed to count usage of account %s: %w", accountID, err)
	}
	return usage, nil
}

// SaveAccount inserts a new account together with its balance rows.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO accounts (` + accountColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
		`
		_, err := r.q(ctx).Exec(ctx, query,
			modelAcc.AccountID,
			modelAcc.Name,
			modelAcc.AccountType,
			modelAcc.CurrencyMode,
			modelAcc.CurrencyCode,
			modelAcc.BankName,
			modelAcc.IBAN,
			modelAcc.AccountNumber,
			modelAcc.IsDefault,
			modelAcc.IsActive,
			modelAcc.Description,
			modelAcc.Notes,
			modelAcc.CreatedAt,
			modelAcc.CreatedBy,
			modelAcc.LastUpdatedAt,
			modelAcc.LastUpdatedBy,
			modelAcc.Version,
		)
		if err != nil {
			return translateError(err, "save account "+modelAcc.AccountID)
		}
		return r.insertBalances(ctx, mapping.ToModelAccountBalances(account))
	})
}

func (r *PgxAccountRepository) insertBalances(ctx context.Context, balances []models.AccountBalance) error {
	if len(balances) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, b := range balances {
		batch.Queue(`
			INSERT INTO account_balances (account_id, currency_code, amount, version, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (account_id, currency_code) DO NOTHING;`,
			b.AccountID, b.CurrencyCode, b.Amount, b.Version, b.LastUpdatedAt, b.LastUpdatedBy)
	}
	br := r.q(ctx).SendBatch(ctx, batch)
	defer br.Close()
	for range balances {
		if _, err := br.Exec(); err != nil {
			return translateError(err, "insert account balance")
		}
	}
	return nil
}

// UpdateAccount updates descriptive fields and flags and reconciles the
// balance rows with the supported currency set.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		query := `
			UPDATE accounts
			SET name = $3, account_type = $4, currency_mode = $5, currency_code = $6, bank_name = $7, iban = $8,
				account_number = $9, is_default = $10, is_active = $11, description = $12, notes = $13,
				last_updated_at = $14, last_updated_by = $15, version = version + 1
			WHERE account_id = $1 AND version = $2;
		`
		cmdTag, err := r.q(ctx).Exec(ctx, query,
			modelAcc.AccountID,
			modelAcc.Version,
			modelAcc.Name,
			modelAcc.AccountType,
			modelAcc.CurrencyMode,
			modelAcc.CurrencyCode,
			modelAcc.BankName,
			modelAcc.IBAN,
			modelAcc.AccountNumber,
			modelAcc.IsDefault,
			modelAcc.IsActive,
			modelAcc.Description,
			modelAcc.Notes,
			modelAcc.LastUpdatedAt,
			modelAcc.LastUpdatedBy,
		)
		if err != nil {
			return translateError(err, "update account "+modelAcc.AccountID)
		}
		if cmdTag.RowsAffected() == 0 {
			return r.staleOrMissing(ctx, "accounts", "account_id", "account", modelAcc.AccountID)
		}

		if _, err := r.q(ctx).Exec(ctx,
			`DELETE FROM account_balances WHERE account_id = $1 AND NOT (currency_code = ANY($2)) AND amount = 0;`,
			account.AccountID, account.SupportedCurrencies); err != nil {
			return translateError(err, "drop currencies of account "+account.AccountID)
		}
		// a posting committed after the caller's zero-balance check keeps its row
		var survivor string
		err = r.q(ctx).QueryRow(ctx,
			`SELECT currency_code FROM account_balances WHERE account_id = $1 AND NOT (currency_code = ANY($2)) LIMIT 1;`,
			account.AccountID, account.SupportedCurrencies).Scan(&survivor)
		switch {
		case err == nil:
			return apperrors.NewAppError(apperrors.ErrConcurrencyConflict,
				fmt.Sprintf("account %s received a %s balance while the currency was being dropped", account.AccountID, survivor), nil)
		case !errors.Is(err, pgx.ErrNoRows):
			return translateError(err, "check dropped currencies of account "+account.AccountID)
		}
		// existing rows keep their amounts
		fresh := account.Clone()
		fresh.Balances = domain.ZeroBalances(fresh.SupportedCurrencies)
		return r.insertBalances(ctx, mapping.ToModelAccountBalances(fresh))
	})
}

// ClearDefaultAccount unsets isDefault on every other account of the currency.
func (r *PgxAccountRepository) ClearDefaultAccount(ctx context.Context, currencyCode, keepAccountID, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_default = FALSE, last_updated_at = $3, last_updated_by = $4, version = version + 1
		WHERE currency_code = $1 AND is_default = TRUE AND account_id <> $2;
	`
	if _, err := r.q(ctx).Exec(ctx, query, currencyCode, keepAccountID, now, userID); err != nil {
		return translateError(err, "clear default account for "+currencyCode)
	}
	return nil
}

// DeleteAccount removes an account; its balance rows cascade.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	cmdTag, err := r.q(ctx).Exec(ctx, `DELETE FROM accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.NewAppError(apperrors.ErrAccountInUse,
				fmt.Sprintf("account %s is referenced by ledger records", accountID), err)
		}
		return translateError(err, "delete account "+accountID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("account", accountID)
	}
	return nil
}

// ApplyBalanceDeltas adds each delta to its balance row in the given order.
// Every row update takes the row lock, so callers pass deltas sorted by
// account and currency to keep lock order global.
func (r *PgxAccountRepository) ApplyBalanceDeltas(ctx context.Context, deltas []domain.BalanceDelta, userID string, now time.Time) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		query := `
			UPDATE account_balances
			SET amount = ROUND(amount + $3, 2), version = version + 1, last_updated_at = $4, last_updated_by = $5
			WHERE account_id = $1 AND currency_code = $2;
		`
		for _, d := range deltas {
			cmdTag, err := r.q(ctx).Exec(ctx, query, d.AccountID, d.CurrencyCode, d.Amount, now, userID)
			if err != nil {
				return translateError(err, "apply balance delta to account "+d.AccountID)
			}
			if cmdTag.RowsAffected() > 0 {
				continue
			}
			if _, err := r.FindAccountByID(ctx, d.AccountID); err != nil {
				return err
			}
			return apperrors.NewAppError(apperrors.ErrUnsupportedCurrency,
				fmt.Sprintf("account %s does not hold %s", d.AccountID, d.CurrencyCode), nil)
		}
		return nil
	})
}
