package ports

import (
	"context"

	"coin-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

// AdminRepository defines persistence operations for the singleton
// administrator record.
type AdminRepository interface {
	// CreateIfAbsent inserts the admin only when no admin row exists yet.
	// The existence check and the insert happen in one atomic statement.
	// Returns false when an administrator was already provisioned.
	CreateIfAbsent(ctx context.Context, admin *domain.Admin) (bool, error)
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	// GetByUsernameForUpdate locks the admin row. MUST be called within a
	// transaction.
	GetByUsernameForUpdate(ctx context.Context, tx pgx.Tx, username string) (*domain.Admin, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error
}

// MerchantRepository defines persistence operations for merchants.
// Methods accepting pgx.Tx are used inside transaction blocks for
// pessimistic locking.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *domain.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Merchant, error)
	List(ctx context.Context) ([]domain.Merchant, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error
}

// ClientRepository defines persistence operations for clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByName(ctx context.Context, name string) (*domain.Client, error)
	GetByNameForUpdate(ctx context.Context, tx pgx.Tx, name string) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error
}

// TransactionRepository defines persistence for the append-only
// coin-movement log. Records are created inside the same database
// transaction as the balance updates they justify, and are never updated
// or deleted.
type TransactionRepository interface {
	// Create appends a record and fills in its store-assigned ID and
	// commit-time timestamp.
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	// List returns records in append order (oldest first).
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, error)
	MerchantStats(ctx context.Context, merchantID uuid.UUID) (*MerchantStats, error)
}

// TransactionListParams holds optional filters + pagination for listing
// audit records. Nil filters match everything.
type TransactionListParams struct {
	AdminID    *uuid.UUID
	MerchantID *uuid.UUID
	ClientID   *uuid.UUID
	Kind       *domain.TransactionKind
	Limit      int // 0 means no limit
	Offset     int
}

// MerchantStats holds aggregated movement totals for one merchant.
type MerchantStats struct {
	TotalTransactions int64
	TotalRented       int64
	TotalDistributed  int64
	TotalReturned     int64
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
