package postgres

import (
	"context"
	"errors"
	"fmt"

	"coin-ledger/internal/core/domain"
	"coin-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ClientRepo implements ports.ClientRepository.
type ClientRepo struct {
	pool Pool
}

// NewClientRepo creates a new ClientRepo.
func NewClientRepo(pool Pool) *ClientRepo {
	return &ClientRepo{pool: pool}
}

// Create inserts a new client. Client names are unique store-wide; a
// duplicate surfaces as AlreadyExists.
func (r *ClientRepo) Create(ctx context.Context, c *domain.Client) error {
	query := `INSERT INTO clients (id, name, merchant_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.MerchantID, c.Balance, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrAlreadyExists("client")
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByName fetches a client by its unique name (without locking).
func (r *ClientRepo) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	query := `SELECT id, name, merchant_id, balance, created_at, updated_at
		FROM clients WHERE name = $1`

	return scanClient(r.pool.QueryRow(ctx, query, name))
}

// GetByNameForUpdate fetches a client with pessimistic locking.
// This MUST be called within a transaction.
func (r *ClientRepo) GetByNameForUpdate(ctx context.Context, tx pgx.Tx, name string) (*domain.Client, error) {
	query := `SELECT id, name, merchant_id, balance, created_at, updated_at
		FROM clients WHERE name = $1 FOR UPDATE`

	return scanClient(tx.QueryRow(ctx, query, name))
}

// List returns all clients in creation order.
func (r *ClientRepo) List(ctx context.Context) ([]domain.Client, error) {
	query := `SELECT id, name, merchant_id, balance, created_at, updated_at
		FROM clients ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c := domain.Client{}
		err := rows.Scan(&c.ID, &c.Name, &c.MerchantID, &c.Balance, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan client row: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate client rows: %w", err)
	}
	return clients, nil
}

// UpdateBalance sets a client's balance within a transaction.
func (r *ClientRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error {
	query := `UPDATE clients SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("update client balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client not found: %s", id)
	}
	return nil
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	c := &domain.Client{}
	err := row.Scan(&c.ID, &c.Name, &c.MerchantID, &c.Balance, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan client: %w", err)
	}
	return c, nil
}
