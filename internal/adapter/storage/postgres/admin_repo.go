package postgres

import (
	"context"
	"errors"
	"fmt"

	"coin-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// AdminRepo implements ports.AdminRepository.
type AdminRepo struct {
	pool Pool
}

// NewAdminRepo creates a new AdminRepo.
func NewAdminRepo(pool Pool) *AdminRepo {
	return &AdminRepo{pool: pool}
}

// CreateIfAbsent inserts the admin row only when the table is empty. The
// existence check and the insert are one statement, so two concurrent
// provisioning calls cannot both succeed.
func (r *AdminRepo) CreateIfAbsent(ctx context.Context, a *domain.Admin) (bool, error) {
	query := `INSERT INTO admins (id, username, credential_hash, balance, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (SELECT 1 FROM admins)`

	tag, err := r.pool.Exec(ctx, query,
		a.ID, a.Username, a.CredentialHash, a.Balance, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert admin: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByUsername fetches the admin by username (without locking).
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	query := `SELECT id, username, credential_hash, balance, created_at, updated_at
		FROM admins WHERE username = $1`

	return scanAdmin(r.pool.QueryRow(ctx, query, username))
}

// GetByUsernameForUpdate fetches the admin row with pessimistic locking.
// This MUST be called within a transaction.
func (r *AdminRepo) GetByUsernameForUpdate(ctx context.Context, tx pgx.Tx, username string) (*domain.Admin, error) {
	query := `SELECT id, username, credential_hash, balance, created_at, updated_at
		FROM admins WHERE username = $1 FOR UPDATE`

	return scanAdmin(tx.QueryRow(ctx, query, username))
}

// UpdateBalance sets the admin balance within a transaction.
func (r *AdminRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error {
	query := `UPDATE admins SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("update admin balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("admin not found: %s", id)
	}
	return nil
}

func scanAdmin(row pgx.Row) (*domain.Admin, error) {
	a := &domain.Admin{}
	err := row.Scan(&a.ID, &a.Username, &a.CredentialHash, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan admin: %w", err)
	}
	return a, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
