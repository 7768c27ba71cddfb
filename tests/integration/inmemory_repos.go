package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"coin-ledger/internal/core/domain"
	"coin-ledger/internal/core/ports"
	"coin-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Admin Repo ---

type inMemoryAdminRepo struct {
	mu    sync.RWMutex
	admin *domain.Admin
}

func newInMemoryAdminRepo() *inMemoryAdminRepo {
	return &inMemoryAdminRepo{}
}

func (r *inMemoryAdminRepo) CreateIfAbsent(ctx context.Context, a *domain.Admin) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.admin != nil {
		return false, nil
	}
	cp := *a
	r.admin = &cp
	return true, nil
}

func (r *inMemoryAdminRepo) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.admin == nil || r.admin.Username != username {
		return nil, nil
	}
	cp := *r.admin
	return &cp, nil
}

func (r *inMemoryAdminRepo) GetByUsernameForUpdate(ctx context.Context, tx pgx.Tx, username string) (*domain.Admin, error) {
	return r.GetByUsername(ctx, username)
}

func (r *inMemoryAdminRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.admin == nil || r.admin.ID != id {
		return fmt.Errorf("admin not found")
	}
	r.admin.Balance = balance
	return nil
}

// --- In-Memory Merchant Repo ---

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	merchants map[uuid.UUID]*domain.Merchant
	order     []uuid.UUID
}

func newInMemoryMerchantRepo() *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{merchants: make(map[uuid.UUID]*domain.Merchant)}
}

func (r *inMemoryMerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.merchants[m.ID] = &cp
	r.order = append(r.order, m.ID)
	return nil
}

func (r *inMemoryMerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *inMemoryMerchantRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Merchant, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryMerchantRepo) List(ctx context.Context) ([]domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Merchant, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, *r.merchants[id])
	}
	return result, nil
}

func (r *inMemoryMerchantRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[id]
	if !ok {
		return fmt.Errorf("merchant not found")
	}
	m.Balance = balance
	return nil
}

// --- In-Memory Client Repo ---

type inMemoryClientRepo struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*domain.Client
	order   []uuid.UUID
}

func newInMemoryClientRepo() *inMemoryClientRepo {
	return &inMemoryClientRepo{clients: make(map[uuid.UUID]*domain.Client)}
}

func (r *inMemoryClientRepo) Create(ctx context.Context, c *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.clients {
		if existing.Name == c.Name {
			return apperror.ErrAlreadyExists("client")
		}
	}
	cp := *c
	r.clients[c.ID] = &cp
	r.order = append(r.order, c.ID)
	return nil
}

func (r *inMemoryClientRepo) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryClientRepo) GetByNameForUpdate(ctx context.Context, tx pgx.Tx, name string) (*domain.Client, error) {
	return r.GetByName(ctx, name)
}

func (r *inMemoryClientRepo) List(ctx context.Context) ([]domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Client, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, *r.clients[id])
	}
	return result, nil
}

func (r *inMemoryClientRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return fmt.Errorf("client not found")
	}
	c.Balance = balance
	return nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu     sync.RWMutex
	nextID int64
	txns   []domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = time.Now().UTC()
	r.txns = append(r.txns, *t)
	return nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.txns {
		if params.AdminID != nil && (t.AdminID == nil || *t.AdminID != *params.AdminID) {
			continue
		}
		if params.MerchantID != nil && (t.MerchantID == nil || *t.MerchantID != *params.MerchantID) {
			continue
		}
		if params.ClientID != nil && (t.ClientID == nil || *t.ClientID != *params.ClientID) {
			continue
		}
		if params.Kind != nil && t.Kind != *params.Kind {
			continue
		}
		result = append(result, t)
	}
	if params.Limit > 0 {
		if params.Offset >= len(result) {
			return nil, nil
		}
		end := params.Offset + params.Limit
		if end > len(result) {
			end = len(result)
		}
		result = result[params.Offset:end]
	}
	return result, nil
}

func (r *inMemoryTransactionRepo) MerchantStats(ctx context.Context, merchantID uuid.UUID) (*ports.MerchantStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.MerchantStats{}
	for _, t := range r.txns {
		if t.MerchantID == nil || *t.MerchantID != merchantID {
			continue
		}
		stats.TotalTransactions++
		switch t.Kind {
		case domain.TransactionKindRent:
			stats.TotalRented += t.Amount
		case domain.TransactionKindDistribute:
			stats.TotalDistributed += t.Amount
		case domain.TransactionKindReturn:
			stats.TotalReturned += t.Amount
		}
	}
	return stats, nil
}

// --- Serializing Transactor ---

// serialTransactor gives each caller exclusive access from Begin until
// Commit or Rollback, mirroring the row-lock serialization the postgres
// transactor provides for overlapping account sets.
type serialTransactor struct {
	mu sync.Mutex
}

func newSerialTransactor() *serialTransactor {
	return &serialTransactor{}
}

func (t *serialTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	tx := &serialTx{}
	tx.release = func() { t.mu.Unlock() }
	return tx, nil
}

// serialTx releases the transactor on the first Commit or Rollback. The
// services call Rollback via defer even after a successful Commit.
type serialTx struct {
	noopTx
	once    sync.Once
	release func()
}

func (t *serialTx) Commit(ctx context.Context) error {
	t.once.Do(t.release)
	return nil
}

func (t *serialTx) Rollback(ctx context.Context) error {
	t.once.Do(t.release)
	return nil
}

// noopTx fills out the rest of the pgx.Tx surface for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
