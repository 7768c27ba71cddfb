package ports

import (
	"context"
	"time"

	"coin-ledger/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// RegistryService manages account creation and lookup.
type RegistryService interface {
	// ProvisionAdmin creates the singleton administrator with the initial
	// coin supply. Fails with AlreadyExists once an admin has been
	// provisioned, leaving the original untouched.
	ProvisionAdmin(ctx context.Context, username, credential string) (*domain.Admin, error)
	// GetAdmin returns the administrator after checking the credential
	// against the stored hash; unknown username and wrong credential are
	// both NotFound.
	GetAdmin(ctx context.Context, username, credential string) (*domain.Admin, error)
	// RegisterMerchant creates a merchant with a zero balance and two
	// fresh opaque identifiers.
	RegisterMerchant(ctx context.Context, name string) (*RegisterMerchantResponse, error)
	// RegisterClient creates a client owned by an existing merchant.
	RegisterClient(ctx context.Context, name string, merchantID uuid.UUID) (*domain.Client, error)
	ListMerchants(ctx context.Context) ([]domain.Merchant, error)
	ListClients(ctx context.Context) ([]domain.Client, error)
}

// RegisterMerchantResponse carries the identifiers handed back to the
// caller after merchant registration.
type RegisterMerchantResponse struct {
	MerchantID uuid.UUID `json:"merchant_id"`
	WalletID   uuid.UUID `json:"wallet_id"`
}

// TransferService is the state machine of value movement. Every operation
// is one atomic unit: validate, debit, credit, append one audit record.
// A failed precondition leaves no mutation and no record behind.
type TransferService interface {
	RentCoins(ctx context.Context, adminUsername string, merchantID uuid.UUID, amount int64) (*domain.Transaction, error)
	DistributeToClient(ctx context.Context, clientName string, amount int64) (*domain.Transaction, error)
	ReturnFromClient(ctx context.Context, clientName string, amount int64) (*domain.Transaction, error)
	// SetAdminBalance overrides the admin balance. The delta is audited
	// as a mint (increase) or burn (decrease) record; a negative target
	// balance is rejected.
	SetAdminBalance(ctx context.Context, username string, newBalance int64) (*domain.Admin, error)
}

// HistoryService exposes read access to the audit log.
type HistoryService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, error)
	MerchantStats(ctx context.Context, merchantID uuid.UUID) (*MerchantStats, error)
}

// HashService hashes and verifies opaque secrets.
type HashService interface {
	Hash(secret string) (string, error)
	Verify(secret string, encodedHash string) (bool, error)
}

// RosterCache is a best-effort byte cache for account listings. A cache
// failure must degrade to a direct store read, never fail an operation.
type RosterCache interface {
	// Get returns nil, nil on a cache miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}
