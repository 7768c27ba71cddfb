package service

import (
	"context"
	"encoding/json"
	"time"

	"coin-ledger/internal/core/domain"
	"coin-ledger/internal/core/ports"
	"coin-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RegistryServiceImpl implements ports.RegistryService.
type RegistryServiceImpl struct {
	adminRepo    ports.AdminRepository
	merchantRepo ports.MerchantRepository
	clientRepo   ports.ClientRepository
	cache        ports.RosterCache
	hashSvc      ports.HashService
	rosterTTL    time.Duration
	log          zerolog.Logger
}

// NewRegistryService creates a new RegistryServiceImpl. cache may be nil,
// in which case list reads always go to the store.
func NewRegistryService(
	adminRepo ports.AdminRepository,
	merchantRepo ports.MerchantRepository,
	clientRepo ports.ClientRepository,
	cache ports.RosterCache,
	hashSvc ports.HashService,
	rosterTTL time.Duration,
	log zerolog.Logger,
) *RegistryServiceImpl {
	return &RegistryServiceImpl{
		adminRepo:    adminRepo,
		merchantRepo: merchantRepo,
		clientRepo:   clientRepo,
		cache:        cache,
		hashSvc:      hashSvc,
		rosterTTL:    rosterTTL,
		log:          log,
	}
}

// ProvisionAdmin creates the singleton administrator with the total
// issuable supply. A second call fails with AlreadyExists and leaves the
// original record untouched.
func (s *RegistryServiceImpl) ProvisionAdmin(ctx context.Context, username, credential string) (*domain.Admin, error) {
	credentialHash, err := s.hashSvc.Hash(credential)
	if err != nil {
		return nil, storeErr("hash credential", err)
	}

	now := time.Now().UTC()
	admin := &domain.Admin{
		ID:             uuid.New(),
		Username:       username,
		CredentialHash: credentialHash,
		Balance:        domain.InitialSupply,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.adminRepo.CreateIfAbsent(ctx, admin)
	if err != nil {
		return nil, storeErr("create admin", err)
	}
	if !created {
		return nil, apperror.ErrAlreadyExists("administrator")
	}

	s.log.Info().
		Str("admin_id", admin.ID.String()).
		Str("username", username).
		Int64("balance", admin.Balance).
		Msg("administrator provisioned")

	return admin, nil
}

// GetAdmin fetches the administrator by username after verifying the
// supplied credential against the stored hash. An unknown username and
// a wrong credential produce the same NotFound response.
func (s *RegistryServiceImpl) GetAdmin(ctx context.Context, username, credential string) (*domain.Admin, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeErr("get admin", err)
	}
	if admin == nil {
		return nil, apperror.ErrNotFound("administrator")
	}

	ok, err := s.hashSvc.Verify(credential, admin.CredentialHash)
	if err != nil {
		return nil, storeErr("verify credential", err)
	}
	if !ok {
		return nil, apperror.ErrNotFound("administrator")
	}
	return admin, nil
}

// RegisterMerchant creates a merchant with a zero balance and two fresh
// opaque identifiers (merchant id and wallet id).
func (s *RegistryServiceImpl) RegisterMerchant(ctx context.Context, name string) (*ports.RegisterMerchantResponse, error) {
	now := time.Now().UTC()
	merchant := &domain.Merchant{
		ID:        uuid.New(),
		Name:      name,
		WalletID:  uuid.New(),
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, storeErr("create merchant", err)
	}

	s.invalidateRoster(ctx, cacheKeyMerchants)

	s.log.Info().
		Str("merchant_id", merchant.ID.String()).
		Str("wallet_id", merchant.WalletID.String()).
		Str("name", name).
		Msg("merchant registered")

	return &ports.RegisterMerchantResponse{
		MerchantID: merchant.ID,
		WalletID:   merchant.WalletID,
	}, nil
}

// RegisterClient creates a client owned by an existing merchant. Client
// names are unique store-wide; a duplicate fails with AlreadyExists.
func (s *RegistryServiceImpl) RegisterClient(ctx context.Context, name string, merchantID uuid.UUID) (*domain.Client, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, storeErr("get merchant", err)
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}

	now := time.Now().UTC()
	client := &domain.Client{
		ID:         uuid.New(),
		Name:       name,
		MerchantID: merchant.ID,
		Balance:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, storeErr("create client", err)
	}

	s.invalidateRoster(ctx, cacheKeyClients)

	s.log.Info().
		Str("client_id", client.ID.String()).
		Str("merchant_id", merchant.ID.String()).
		Str("name", name).
		Msg("client registered")

	return client, nil
}

// ListMerchants returns all merchants, reading through the roster cache.
func (s *RegistryServiceImpl) ListMerchants(ctx context.Context) ([]domain.Merchant, error) {
	var merchants []domain.Merchant
	if s.readRoster(ctx, cacheKeyMerchants, &merchants) {
		return merchants, nil
	}

	merchants, err := s.merchantRepo.List(ctx)
	if err != nil {
		return nil, storeErr("list merchants", err)
	}

	s.writeRoster(ctx, cacheKeyMerchants, merchants)
	return merchants, nil
}

// ListClients returns all clients, reading through the roster cache.
func (s *RegistryServiceImpl) ListClients(ctx context.Context) ([]domain.Client, error) {
	var clients []domain.Client
	if s.readRoster(ctx, cacheKeyClients, &clients) {
		return clients, nil
	}

	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, storeErr("list clients", err)
	}

	s.writeRoster(ctx, cacheKeyClients, clients)
	return clients, nil
}

// readRoster attempts a cache hit into dst. Cache failures degrade to a
// store read with a warning, never an operation failure.
func (s *RegistryServiceImpl) readRoster(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("roster cache read failed, falling through to store")
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("roster cache entry corrupt, falling through to store")
		return false
	}
	return true
}

// writeRoster stores a roster in the cache (best-effort).
func (s *RegistryServiceImpl) writeRoster(ctx context.Context, key string, roster any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(roster)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.rosterTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("roster cache write failed")
	}
}

func (s *RegistryServiceImpl) invalidateRoster(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Msg("roster cache invalidation failed")
	}
}
