package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vipioko/vaxdog-commerce/internal/storage"
)

func newTestStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func TestStore_EnsureSchema(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS commerce_state").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_Success(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT value FROM commerce_state").
		WithArgs("commerce:state:sess-1").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`{"cart":[]}`)))

	value, err := store.Get(context.Background(), "commerce:state:sess-1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"cart":[]}`), value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_Missing(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT value FROM commerce_state").
		WithArgs("absent").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.Get(context.Background(), "absent")
	assert.True(t, errors.Is(err, storage.ErrKeyNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_QueryError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT value FROM commerce_state").
		WithArgs("k").
		WillReturnError(errors.New("connection refused"))

	_, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, storage.ErrKeyNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Set_Upsert(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO commerce_state").
		WithArgs("k", []byte("v")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, store.Set(context.Background(), "k", []byte("v")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Set_ExecError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO commerce_state").
		WithArgs("k", []byte("v")).
		WillReturnError(errors.New("disk full"))

	err := store.Set(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set state")
	assert.NoError(t, mock.ExpectationsWereMet())
}
