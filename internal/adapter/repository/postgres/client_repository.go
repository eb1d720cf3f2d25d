package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/bank-account-ledger/internal/domain"
	"github.com/api-sage/bank-account-ledger/internal/logger"
)

type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client domain.Client) (domain.Client, error) {
	const query = `
INSERT INTO clients (first_name, last_name, email)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		client.FirstName,
		client.LastName,
		client.Email,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Client{}, domain.ErrConflict
		}
		logger.Error("client repository create failed", err, logger.Fields{
			"lastName": client.LastName,
		})
		return domain.Client{}, fmt.Errorf("insert client: %w", err)
	}

	return client, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (domain.Client, error) {
	const query = `
SELECT id, first_name, last_name, email, created_at, updated_at
FROM clients
WHERE id = $1`

	var client domain.Client
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&client.ID,
		&client.FirstName,
		&client.LastName,
		&client.Email,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Client{}, domain.ErrRecordNotFound
		}
		logger.Error("client repository get failed", err, logger.Fields{
			"clientId": id,
		})
		return domain.Client{}, fmt.Errorf("get client: %w", err)
	}

	return client, nil
}
