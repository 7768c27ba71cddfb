package postgres

import (
	"context"
	"testing"
	"time"

	"coin-ledger/internal/core/domain"
	"coin-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transactionColumns() []string {
	return []string{"id", "admin_id", "merchant_id", "client_id", "kind", "amount", "created_at"}
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	adminID := uuid.New()
	merchantID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	txn := &domain.Transaction{
		AdminID:    &adminID,
		MerchantID: &merchantID,
		Kind:       domain.TransactionKindRent,
		Amount:     500,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(txn.AdminID, txn.MerchantID, txn.ClientID, txn.Kind, txn.Amount).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), now))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, txn)
	require.NoError(t, err)
	assert.Equal(t, int64(42), txn.ID)
	assert.Equal(t, now, txn.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_NoFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	adminID := uuid.New()
	merchantID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := pgxmock.NewRows(transactionColumns()).
		AddRow(int64(1), &adminID, &merchantID, (*uuid.UUID)(nil), domain.TransactionKindRent, int64(500), now).
		AddRow(int64(2), (*uuid.UUID)(nil), &merchantID, &adminID, domain.TransactionKindDistribute, int64(200), now)

	mock.ExpectQuery("SELECT .+ FROM transactions .*ORDER BY id").
		WillReturnRows(rows)

	result, err := repo.List(context.Background(), ports.TransactionListParams{})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, int64(1), result[0].ID)
	assert.Equal(t, domain.TransactionKindRent, result[0].Kind)
	assert.Equal(t, int64(2), result[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_FilterByMerchantAndKind(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	merchantID := uuid.New()
	kind := domain.TransactionKindRent
	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := pgxmock.NewRows(transactionColumns()).
		AddRow(int64(3), (*uuid.UUID)(nil), &merchantID, (*uuid.UUID)(nil), kind, int64(100), now)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE merchant_id = .+ AND kind = .+ ORDER BY id").
		WithArgs(merchantID, kind).
		WillReturnRows(rows)

	result, err := repo.List(context.Background(), ports.TransactionListParams{
		MerchantID: &merchantID,
		Kind:       &kind,
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, kind, result[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_WithPagination(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	adminID := uuid.New()

	rows := pgxmock.NewRows(transactionColumns()).
		AddRow(int64(11), &adminID, (*uuid.UUID)(nil), (*uuid.UUID)(nil), domain.TransactionKindMint, int64(9), now)

	mock.ExpectQuery("SELECT .+ FROM transactions .*ORDER BY id LIMIT .+ OFFSET").
		WithArgs(10, 10).
		WillReturnRows(rows)

	result, err := repo.List(context.Background(), ports.TransactionListParams{Limit: 10, Offset: 10})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, int64(11), result[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_MerchantStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	merchantID := uuid.New()

	rows := pgxmock.NewRows([]string{"total", "rented", "distributed", "returned"}).
		AddRow(int64(5), int64(1000), int64(400), int64(150))

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE merchant_id").
		WithArgs(merchantID).
		WillReturnRows(rows)

	stats, err := repo.MerchantStats(context.Background(), merchantID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalTransactions)
	assert.Equal(t, int64(1000), stats.TotalRented)
	assert.Equal(t, int64(400), stats.TotalDistributed)
	assert.Equal(t, int64(150), stats.TotalReturned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_MerchantStats_NoActivity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	merchantID := uuid.New()

	rows := pgxmock.NewRows([]string{"total", "rented", "distributed", "returned"}).
		AddRow(int64(0), int64(0), int64(0), int64(0))

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE merchant_id").
		WithArgs(merchantID).
		WillReturnRows(rows)

	stats, err := repo.MerchantStats(context.Background(), merchantID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTransactions)
	assert.Zero(t, stats.TotalRented)
	assert.NoError(t, mock.ExpectationsWereMet())
}
