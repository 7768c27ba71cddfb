package service

import (
	"context"
	"math"

	"coin-ledger/internal/core/domain"
	"coin-ledger/internal/core/ports"
	"coin-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TransferServiceImpl implements ports.TransferService with pessimistic
// row locking. Each operation runs as a single database transaction:
// lock the affected account rows, validate preconditions, write both
// balances, append one audit record, commit. A failed precondition rolls
// everything back.
//
// Lock ordering: rent locks admin then merchant; distribute and return
// both lock client then merchant. Concurrent operations on the same
// accounts therefore cannot deadlock.
type TransferServiceImpl struct {
	adminRepo    ports.AdminRepository
	merchantRepo ports.MerchantRepository
	clientRepo   ports.ClientRepository
	txRepo       ports.TransactionRepository
	transactor   ports.DBTransactor
	cache        ports.RosterCache
	log          zerolog.Logger
}

// NewTransferService creates a new TransferServiceImpl. cache may be nil.
func NewTransferService(
	adminRepo ports.AdminRepository,
	merchantRepo ports.MerchantRepository,
	clientRepo ports.ClientRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	cache ports.RosterCache,
	log zerolog.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		adminRepo:    adminRepo,
		merchantRepo: merchantRepo,
		clientRepo:   clientRepo,
		txRepo:       txRepo,
		transactor:   transactor,
		cache:        cache,
		log:          log,
	}
}

// RentCoins moves amount coins from the admin to a merchant.
func (s *TransferServiceImpl) RentCoins(ctx context.Context, adminUsername string, merchantID uuid.UUID, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount("amount must be positive")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	admin, err := s.adminRepo.GetByUsernameForUpdate(ctx, dbTx, adminUsername)
	if err != nil {
		return nil, storeErr("lock admin", err)
	}
	if admin == nil {
		return nil, apperror.ErrNotFound("administrator")
	}
	if admin.Balance < amount {
		return nil, apperror.ErrInsufficientFunds("administrator")
	}

	merchant, err := s.merchantRepo.GetByIDForUpdate(ctx, dbTx, merchantID)
	if err != nil {
		return nil, storeErr("lock merchant", err)
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}
	if merchant.Balance > math.MaxInt64-amount {
		return nil, apperror.ErrInvalidAmount("merchant balance overflow")
	}

	if err := s.adminRepo.UpdateBalance(ctx, dbTx, admin.ID, admin.Balance-amount); err != nil {
		return nil, storeErr("debit admin", err)
	}
	if err := s.merchantRepo.UpdateBalance(ctx, dbTx, merchant.ID, merchant.Balance+amount); err != nil {
		return nil, storeErr("credit merchant", err)
	}

	txn := &domain.Transaction{
		AdminID:    &admin.ID,
		MerchantID: &merchant.ID,
		Kind:       domain.TransactionKindRent,
		Amount:     amount,
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, storeErr("append rent record", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, storeErr("commit tx", err)
	}

	s.invalidateRosters(ctx)

	s.log.Info().
		Int64("tx_id", txn.ID).
		Str("merchant_id", merchant.ID.String()).
		Int64("amount", amount).
		Int64("admin_balance", admin.Balance-amount).
		Msg("coins rented to merchant")

	return txn, nil
}

// DistributeToClient moves amount coins from the owning merchant to the
// named client.
func (s *TransferServiceImpl) DistributeToClient(ctx context.Context, clientName string, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount("amount must be positive")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	client, err := s.clientRepo.GetByNameForUpdate(ctx, dbTx, clientName)
	if err != nil {
		return nil, storeErr("lock client", err)
	}
	if client == nil {
		return nil, apperror.ErrNotFound("client")
	}

	merchant, err := s.merchantRepo.GetByIDForUpdate(ctx, dbTx, client.MerchantID)
	if err != nil {
		return nil, storeErr("lock merchant", err)
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}
	if merchant.Balance < amount {
		return nil, apperror.ErrInsufficientFunds("merchant")
	}
	if client.Balance > math.MaxInt64-amount {
		return nil, apperror.ErrInvalidAmount("client balance overflow")
	}

	if err := s.merchantRepo.UpdateBalance(ctx, dbTx, merchant.ID, merchant.Balance-amount); err != nil {
		return nil, storeErr("debit merchant", err)
	}
	if err := s.clientRepo.UpdateBalance(ctx, dbTx, client.ID, client.Balance+amount); err != nil {
		return nil, storeErr("credit client", err)
	}

	txn := &domain.Transaction{
		MerchantID: &merchant.ID,
		ClientID:   &client.ID,
		Kind:       domain.TransactionKindDistribute,
		Amount:     amount,
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, storeErr("append distribute record", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, storeErr("commit tx", err)
	}

	s.invalidateRosters(ctx)

	s.log.Info().
		Int64("tx_id", txn.ID).
		Str("client", clientName).
		Str("merchant_id", merchant.ID.String()).
		Int64("amount", amount).
		Msg("coins distributed to client")

	return txn, nil
}

// ReturnFromClient moves amount coins from the named client back to its
// owning merchant.
func (s *TransferServiceImpl) ReturnFromClient(ctx context.Context, clientName string, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount("amount must be positive")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	client, err := s.clientRepo.GetByNameForUpdate(ctx, dbTx, clientName)
	if err != nil {
		return nil, storeErr("lock client", err)
	}
	if client == nil {
		return nil, apperror.ErrNotFound("client")
	}
	if client.Balance < amount {
		return nil, apperror.ErrInsufficientFunds("client")
	}

	merchant, err := s.merchantRepo.GetByIDForUpdate(ctx, dbTx, client.MerchantID)
	if err != nil {
		return nil, storeErr("lock merchant", err)
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}
	if merchant.Balance > math.MaxInt64-amount {
		return nil, apperror.ErrInvalidAmount("merchant balance overflow")
	}

	if err := s.clientRepo.UpdateBalance(ctx, dbTx, client.ID, client.Balance-amount); err != nil {
		return nil, storeErr("debit client", err)
	}
	if err := s.merchantRepo.UpdateBalance(ctx, dbTx, merchant.ID, merchant.Balance+amount); err != nil {
		return nil, storeErr("credit merchant", err)
	}

	txn := &domain.Transaction{
		MerchantID: &merchant.ID,
		ClientID:   &client.ID,
		Kind:       domain.TransactionKindReturn,
		Amount:     amount,
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, storeErr("append return record", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, storeErr("commit tx", err)
	}

	s.invalidateRosters(ctx)

	s.log.Info().
		Int64("tx_id", txn.ID).
		Str("client", clientName).
		Str("merchant_id", merchant.ID.String()).
		Int64("amount", amount).
		Msg("coins returned from client")

	return txn, nil
}

// SetAdminBalance overrides the admin balance. The target must be
// non-negative and the delta is audited as a mint (increase) or burn
// (decrease) record so the admin balance stays log-derivable. Setting
// the current balance again is a no-op with no record.
func (s *TransferServiceImpl) SetAdminBalance(ctx context.Context, username string, newBalance int64) (*domain.Admin, error) {
	if newBalance < 0 {
		return nil, apperror.ErrInvalidAmount("balance must not be negative")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	admin, err := s.adminRepo.GetByUsernameForUpdate(ctx, dbTx, username)
	if err != nil {
		return nil, storeErr("lock admin", err)
	}
	if admin == nil {
		return nil, apperror.ErrNotFound("administrator")
	}

	if newBalance == admin.Balance {
		return admin, nil
	}

	kind := domain.TransactionKindMint
	amount := newBalance - admin.Balance
	if amount < 0 {
		kind = domain.TransactionKindBurn
		amount = -amount
	}

	if err := s.adminRepo.UpdateBalance(ctx, dbTx, admin.ID, newBalance); err != nil {
		return nil, storeErr("set admin balance", err)
	}

	txn := &domain.Transaction{
		AdminID: &admin.ID,
		Kind:    kind,
		Amount:  amount,
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, storeErr("append adjustment record", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, storeErr("commit tx", err)
	}

	s.log.Info().
		Int64("tx_id", txn.ID).
		Str("username", username).
		Str("kind", string(kind)).
		Int64("amount", amount).
		Int64("new_balance", newBalance).
		Msg("admin balance overridden")

	admin.Balance = newBalance
	return admin, nil
}

// invalidateRosters drops cached account listings after a committed
// balance change (best-effort).
func (s *TransferServiceImpl) invalidateRosters(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cacheKeyMerchants, cacheKeyClients); err != nil {
		s.log.Warn().Err(err).Msg("roster cache invalidation failed")
	}
}
