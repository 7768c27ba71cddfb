package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"coin-ledger/internal/core/domain"
	"coin-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *domain.Client {
	return &domain.Client{
		ID:         uuid.New(),
		Name:       "alice",
		MerchantID: uuid.New(),
		Balance:    0,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func clientColumns() []string {
	return []string{"id", "name", "merchant_id", "balance", "created_at", "updated_at"}
}

func clientRow(c *domain.Client) *pgxmock.Rows {
	return pgxmock.NewRows(clientColumns()).AddRow(
		c.ID, c.Name, c.MerchantID, c.Balance, c.CreatedAt, c.UpdatedAt,
	)
}

func TestClientRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewClientRepo(mock)
	c := newTestClient()

	mock.ExpectExec("INSERT INTO clients").
		WithArgs(c.ID, c.Name, c.MerchantID, c.Balance, c.CreatedAt, c.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepo_Create_DuplicateName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewClientRepo(mock)
	c := newTestClient()

	mock.ExpectExec("INSERT INTO clients").
		WithArgs(c.ID, c.Name, c.MerchantID, c.Balance, c.CreatedAt, c.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), c)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeAlreadyExists, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepo_GetByName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewClientRepo(mock)
	c := newTestClient()

	mock.ExpectQuery("SELECT .+ FROM clients WHERE name").
		WithArgs(c.Name).
		WillReturnRows(clientRow(c))

	result, err := repo.GetByName(context.Background(), c.Name)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, c.ID, result.ID)
	assert.Equal(t, c.MerchantID, result.MerchantID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepo_GetByName_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewClientRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM clients WHERE name").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(clientColumns()))

	result, err := repo.GetByName(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepo_GetByNameForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewClientRepo(mock)
	c := newTestClient()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM clients WHERE name .+ FOR UPDATE").
		WithArgs(c.Name).
		WillReturnRows(clientRow(c))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByNameForUpdate(context.Background(), tx, c.Name)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, c.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewClientRepo(mock)
	c1 := newTestClient()
	c2 := newTestClient()
	c2.Name = "bob"

	rows := pgxmock.NewRows(clientColumns()).
		AddRow(c1.ID, c1.Name, c1.MerchantID, c1.Balance, c1.CreatedAt, c1.UpdatedAt).
		AddRow(c2.ID, c2.Name, c2.MerchantID, c2.Balance, c2.CreatedAt, c2.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM clients ORDER BY created_at").
		WillReturnRows(rows)

	result, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, c1.Name, result[0].Name)
	assert.Equal(t, c2.Name, result[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepo_UpdateBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewClientRepo(mock)
	clientID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE clients SET balance").
		WithArgs(int64(75), clientID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, clientID, 75)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
