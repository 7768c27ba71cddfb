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

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

// Create inserts a new merchant. A colliding merchant or wallet ID
// surfaces as AlreadyExists.
func (r *MerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	query := `INSERT INTO merchants (id, name, wallet_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.Name, m.WalletID, m.Balance, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrAlreadyExists("merchant")
		}
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

// GetByID fetches a merchant by its UUID (without locking).
func (r *MerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	query := `SELECT id, name, wallet_id, balance, created_at, updated_at
		FROM merchants WHERE id = $1`

	return scanMerchant(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a merchant with pessimistic locking.
// This MUST be called within a transaction.
func (r *MerchantRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Merchant, error) {
	query := `SELECT id, name, wallet_id, balance, created_at, updated_at
		FROM merchants WHERE id = $1 FOR UPDATE`

	return scanMerchant(tx.QueryRow(ctx, query, id))
}

// List returns all merchants in creation order.
func (r *MerchantRepo) List(ctx context.Context) ([]domain.Merchant, error) {
	query := `SELECT id, name, wallet_id, balance, created_at, updated_at
		FROM merchants ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	defer rows.Close()

	var merchants []domain.Merchant
	for rows.Next() {
		m := domain.Merchant{}
		err := rows.Scan(&m.ID, &m.Name, &m.WalletID, &m.Balance, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan merchant row: %w", err)
		}
		merchants = append(merchants, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merchant rows: %w", err)
	}
	return merchants, nil
}

// UpdateBalance sets a merchant's balance within a transaction.
func (r *MerchantRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error {
	query := `UPDATE merchants SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("update merchant balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("merchant not found: %s", id)
	}
	return nil
}

func scanMerchant(row pgx.Row) (*domain.Merchant, error) {
	m := &domain.Merchant{}
	err := row.Scan(&m.ID, &m.Name, &m.WalletID, &m.Balance, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan merchant: %w", err)
	}
	return m, nil
}
