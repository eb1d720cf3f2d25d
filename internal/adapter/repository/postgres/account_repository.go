package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/api-sage/bank-account-ledger/internal/domain"
	"github.com/api-sage/bank-account-ledger/internal/logger"
)

const accountColumns = `id, client_id, account_number, balance, status, created_at, updated_at, version`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1`

	return r.getOne(ctx, query, id)
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	const query = `
SELECT ` + accountColumns + `
FROM accounts
WHERE account_number = $1`

	return r.getOne(ctx, query, accountNumber)
}

func (r *AccountRepository) ListByClient(ctx context.Context, clientID string) ([]domain.Account, error) {
	const query = `
SELECT ` + accountColumns + `
FROM accounts
WHERE client_id = $1
ORDER BY created_at, id`

	return r.list(ctx, query, clientID)
}

func (r *AccountRepository) ListAll(ctx context.Context) ([]domain.Account, error) {
	const query = `
SELECT ` + accountColumns + `
FROM accounts
ORDER BY created_at, id`

	return r.list(ctx, query)
}

// Put inserts when the account carries no id and updates otherwise. The
// unique index on account_number is the authority for number uniqueness;
// a violation surfaces as domain.ErrConflict, as does a stale version on
// update.
func (r *AccountRepository) Put(ctx context.Context, account domain.Account) (domain.Account, error) {
	if account.ID == "" {
		return r.insert(ctx, account)
	}
	return r.update(ctx, account)
}

func (r *AccountRepository) insert(ctx context.Context, account domain.Account) (domain.Account, error) {
	const query = `
INSERT INTO accounts (client_id, account_number, balance, status, created_at, updated_at, version)
VALUES ($1, $2, $3, $4, $5, $6, 1)
RETURNING id, version`

	err := r.db.QueryRowContext(
		ctx,
		query,
		account.ClientID,
		account.AccountNumber,
		account.Balance,
		account.Status,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID, &account.Version)
	if err != nil {
		if isUniqueViolation(err) {
			logger.Info("account repository insert unique violation", logger.Fields{
				"accountNumber": account.AccountNumber,
			})
			return domain.Account{}, domain.ErrConflict
		}
		logger.Error("account repository insert failed", err, logger.Fields{
			"clientId": account.ClientID,
		})
		return domain.Account{}, fmt.Errorf("insert account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) update(ctx context.Context, account domain.Account) (domain.Account, error) {
	const query = `
UPDATE accounts
SET balance = $2,
    status = $3,
    updated_at = $4,
    version = version + 1
WHERE id = $1
  AND version = $5
RETURNING version`

	err := r.db.QueryRowContext(
		ctx,
		query,
		account.ID,
		account.Balance,
		account.Status,
		account.UpdatedAt,
		account.Version,
	).Scan(&account.Version)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error("account repository update failed", err, logger.Fields{
			"accountId": account.ID,
		})
		return domain.Account{}, fmt.Errorf("update account: %w", err)
	}

	// No row matched: either the account is gone or a concurrent writer
	// bumped the version first.
	if _, getErr := r.GetByID(ctx, account.ID); getErr != nil {
		if errors.Is(getErr, domain.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrRecordNotFound
		}
		return domain.Account{}, getErr
	}
	return domain.Account{}, domain.ErrConflict
}

func (r *AccountRepository) getOne(ctx context.Context, query string, arg any) (domain.Account, error) {
	var account domain.Account
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID,
		&account.ClientID,
		&account.AccountNumber,
		&account.Balance,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrRecordNotFound
		}
		logger.Error("account repository get failed", err, nil)
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) list(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("account repository list failed", err, nil)
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Account, 0)
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.ClientID,
			&account.AccountNumber,
			&account.Balance,
			&account.Status,
			&account.CreatedAt,
			&account.UpdatedAt,
			&account.Version,
		); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		out = append(out, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}

	return out, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
