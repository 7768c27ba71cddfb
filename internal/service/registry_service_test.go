package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"coin-ledger/internal/core/domain"
	"coin-ledger/internal/core/ports/mocks"
	"coin-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testRosterTTL = 5 * time.Minute

type registryTestDeps struct {
	svc          *RegistryServiceImpl
	adminRepo    *mocks.MockAdminRepository
	merchantRepo *mocks.MockMerchantRepository
	clientRepo   *mocks.MockClientRepository
	cache        *mocks.MockRosterCache
	hashSvc      *mocks.MockHashService
	ctrl         *gomock.Controller
}

func setupRegistryService(t *testing.T) *registryTestDeps {
	ctrl := gomock.NewController(t)
	d := &registryTestDeps{
		adminRepo:    mocks.NewMockAdminRepository(ctrl),
		merchantRepo: mocks.NewMockMerchantRepository(ctrl),
		clientRepo:   mocks.NewMockClientRepository(ctrl),
		cache:        mocks.NewMockRosterCache(ctrl),
		hashSvc:      mocks.NewMockHashService(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewRegistryService(
		d.adminRepo, d.merchantRepo, d.clientRepo,
		d.cache, d.hashSvc, testRosterTTL, zerolog.Nop(),
	)
	return d
}

// ==================== ProvisionAdmin Tests ====================

func TestRegistryService_ProvisionAdmin_Success(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.hashSvc.EXPECT().Hash("s3cret").Return("$argon2id$hashed", nil)
	d.adminRepo.EXPECT().CreateIfAbsent(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, admin *domain.Admin) (bool, error) {
			assert.Equal(t, "issuer", admin.Username)
			assert.Equal(t, "$argon2id$hashed", admin.CredentialHash)
			assert.Equal(t, domain.InitialSupply, admin.Balance)
			assert.NotEqual(t, uuid.Nil, admin.ID)
			return true, nil
		})

	admin, err := d.svc.ProvisionAdmin(ctx, "issuer", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, int64(999_999_999), admin.Balance)
}

func TestRegistryService_ProvisionAdmin_AlreadyExists(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.hashSvc.EXPECT().Hash("another").Return("$argon2id$hashed2", nil)
	d.adminRepo.EXPECT().CreateIfAbsent(ctx, gomock.Any()).Return(false, nil)

	_, err := d.svc.ProvisionAdmin(ctx, "second-issuer", "another")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeAlreadyExists, apperror.CodeOf(err))
}

// ==================== GetAdmin Tests ====================

func TestRegistryService_GetAdmin_Success(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.adminRepo.EXPECT().GetByUsername(ctx, "issuer").Return(&domain.Admin{
		ID:             uuid.New(),
		Username:       "issuer",
		CredentialHash: "$argon2id$hashed",
		Balance:        domain.InitialSupply,
	}, nil)
	d.hashSvc.EXPECT().Verify("s3cret", "$argon2id$hashed").Return(true, nil)

	admin, err := d.svc.GetAdmin(ctx, "issuer", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "issuer", admin.Username)
}

func TestRegistryService_GetAdmin_WrongCredential(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.adminRepo.EXPECT().GetByUsername(ctx, "issuer").Return(&domain.Admin{
		ID:             uuid.New(),
		Username:       "issuer",
		CredentialHash: "$argon2id$hashed",
		Balance:        domain.InitialSupply,
	}, nil)
	d.hashSvc.EXPECT().Verify("wrong", "$argon2id$hashed").Return(false, nil)

	// A credential mismatch must look exactly like an unknown username.
	_, err := d.svc.GetAdmin(ctx, "issuer", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestRegistryService_GetAdmin_NotFound(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.adminRepo.EXPECT().GetByUsername(ctx, "nobody").Return(nil, nil)

	_, err := d.svc.GetAdmin(ctx, "nobody", "s3cret")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

// ==================== RegisterMerchant Tests ====================

func TestRegistryService_RegisterMerchant_Success(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.merchantRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, m *domain.Merchant) error {
			assert.Equal(t, "corner-shop", m.Name)
			assert.Zero(t, m.Balance)
			assert.NotEqual(t, uuid.Nil, m.ID)
			assert.NotEqual(t, uuid.Nil, m.WalletID)
			assert.NotEqual(t, m.ID, m.WalletID)
			return nil
		})
	d.cache.EXPECT().Invalidate(ctx, cacheKeyMerchants).Return(nil)

	resp, err := d.svc.RegisterMerchant(ctx, "corner-shop")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEqual(t, resp.MerchantID, resp.WalletID)
}

func TestRegistryService_RegisterMerchant_DuplicateName(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.merchantRepo.EXPECT().Create(ctx, gomock.Any()).Return(apperror.ErrAlreadyExists("merchant"))

	_, err := d.svc.RegisterMerchant(ctx, "corner-shop")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeAlreadyExists, apperror.CodeOf(err))
}

// ==================== RegisterClient Tests ====================

func TestRegistryService_RegisterClient_Success(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()

	d.merchantRepo.EXPECT().GetByID(ctx, merchantID).Return(&domain.Merchant{
		ID:   merchantID,
		Name: "corner-shop",
	}, nil)
	d.clientRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, c *domain.Client) error {
			assert.Equal(t, "alice", c.Name)
			assert.Equal(t, merchantID, c.MerchantID)
			assert.Zero(t, c.Balance)
			return nil
		})
	d.cache.EXPECT().Invalidate(ctx, cacheKeyClients).Return(nil)

	client, err := d.svc.RegisterClient(ctx, "alice", merchantID)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, merchantID, client.MerchantID)
}

func TestRegistryService_RegisterClient_MerchantNotFound(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	d.merchantRepo.EXPECT().GetByID(ctx, merchantID).Return(nil, nil)

	_, err := d.svc.RegisterClient(ctx, "alice", merchantID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestRegistryService_RegisterClient_DuplicateName(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()

	d.merchantRepo.EXPECT().GetByID(ctx, merchantID).Return(&domain.Merchant{ID: merchantID}, nil)
	d.clientRepo.EXPECT().Create(ctx, gomock.Any()).Return(apperror.ErrAlreadyExists("client"))

	_, err := d.svc.RegisterClient(ctx, "alice", merchantID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeAlreadyExists, apperror.CodeOf(err))
}

// ==================== Roster Listing Tests ====================

func TestRegistryService_ListMerchants_CacheMiss(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchants := []domain.Merchant{
		{ID: uuid.New(), Name: "corner-shop", Balance: 500},
	}

	d.cache.EXPECT().Get(ctx, cacheKeyMerchants).Return(nil, nil)
	d.merchantRepo.EXPECT().List(ctx).Return(merchants, nil)
	d.cache.EXPECT().Set(ctx, cacheKeyMerchants, gomock.Any(), testRosterTTL).Return(nil)

	got, err := d.svc.ListMerchants(ctx)
	require.NoError(t, err)
	assert.Equal(t, merchants, got)
}

func TestRegistryService_ListMerchants_CacheHit(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchants := []domain.Merchant{
		{ID: uuid.New(), Name: "corner-shop", Balance: 500},
	}
	raw, err := json.Marshal(merchants)
	require.NoError(t, err)

	d.cache.EXPECT().Get(ctx, cacheKeyMerchants).Return(raw, nil)
	// No store read on a cache hit.

	got, err := d.svc.ListMerchants(ctx)
	require.NoError(t, err)
	assert.Equal(t, merchants[0].ID, got[0].ID)
	assert.Equal(t, merchants[0].Balance, got[0].Balance)
}

func TestRegistryService_ListClients_CacheFailureFallsThrough(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	clients := []domain.Client{
		{ID: uuid.New(), Name: "alice", MerchantID: uuid.New(), Balance: 10},
	}

	d.cache.EXPECT().Get(ctx, cacheKeyClients).Return(nil, assert.AnError)
	d.clientRepo.EXPECT().List(ctx).Return(clients, nil)
	d.cache.EXPECT().Set(ctx, cacheKeyClients, gomock.Any(), testRosterTTL).Return(nil)

	got, err := d.svc.ListClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, clients, got)
}

func TestRegistryService_ListClients_NilCache(t *testing.T) {
	d := setupRegistryService(t)
	defer d.ctrl.Finish()

	svc := NewRegistryService(
		d.adminRepo, d.merchantRepo, d.clientRepo,
		nil, d.hashSvc, testRosterTTL, zerolog.Nop(),
	)

	ctx := context.Background()
	d.clientRepo.EXPECT().List(ctx).Return([]domain.Client{}, nil)

	got, err := svc.ListClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
