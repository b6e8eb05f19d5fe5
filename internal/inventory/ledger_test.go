package inventory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*Ledger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLedger(db), mock
}

func productRows(qty int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "qty", "price"}).
		AddRow(int64(1), "keyboard", qty, 25.5)
}

func TestLedger_GetProduct(t *testing.T) {
	ledger, mock := newTestLedger(t)

	mock.ExpectQuery("SELECT id, name, qty, price FROM products WHERE id = $1").
		WithArgs(int64(1)).
		WillReturnRows(productRows(10))

	p, err := ledger.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "keyboard", p.Name)
	assert.Equal(t, 10, p.Qty)
	assert.Equal(t, 25.5, p.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_GetProduct_NotFound(t *testing.T) {
	ledger, mock := newTestLedger(t)

	mock.ExpectQuery("SELECT id, name, qty, price FROM products WHERE id = $1").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := ledger.GetProduct(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_Reserve_Success(t *testing.T) {
	ledger, mock := newTestLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, qty, price FROM products WHERE id = $1 FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(productRows(10))
	mock.ExpectExec("UPDATE products SET qty = qty - $1 WHERE id = $2").
		WithArgs(3, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := ledger.Reserve(context.Background(), 1, 3)
	require.NoError(t, err)
	// Reserve reports the pre-decrement product state.
	assert.Equal(t, 10, p.Qty)
	assert.Equal(t, 25.5, p.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_Reserve_InsufficientStock(t *testing.T) {
	ledger, mock := newTestLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, qty, price FROM products WHERE id = $1 FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(productRows(2))
	mock.ExpectRollback()

	_, err := ledger.Reserve(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	// No UPDATE was ever issued: the quantity is untouched.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_Reserve_NotFound(t *testing.T) {
	ledger, mock := newTestLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, qty, price FROM products WHERE id = $1 FOR UPDATE").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := ledger.Reserve(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_Reserve_InvalidQuantity(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Reserve(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ledger.Reserve(context.Background(), 1, -4)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLedger_Reserve_UpdateFails(t *testing.T) {
	ledger, mock := newTestLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, qty, price FROM products WHERE id = $1 FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(productRows(10))
	mock.ExpectExec("UPDATE products SET qty = qty - $1 WHERE id = $2").
		WithArgs(3, int64(1)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := ledger.Reserve(context.Background(), 1, 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientStock)
}

func TestLedger_Release(t *testing.T) {
	ledger, mock := newTestLedger(t)

	mock.ExpectExec("UPDATE products SET qty = qty + $1 WHERE id = $2").
		WithArgs(3, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ledger.Release(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_Release_UnknownProduct(t *testing.T) {
	ledger, mock := newTestLedger(t)

	mock.ExpectExec("UPDATE products SET qty = qty + $1 WHERE id = $2").
		WithArgs(3, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ledger.Release(context.Background(), 42, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_ReserveThenRelease_RoundTrip(t *testing.T) {
	ledger, mock := newTestLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, qty, price FROM products WHERE id = $1 FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(productRows(10))
	mock.ExpectExec("UPDATE products SET qty = qty - $1 WHERE id = $2").
		WithArgs(4, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE products SET qty = qty + $1 WHERE id = $2").
		WithArgs(4, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := ledger.Reserve(context.Background(), 1, 4)
	require.NoError(t, err)
	require.NoError(t, ledger.Release(context.Background(), 1, 4))

	// The decrement and the compensating increment use the same quantity, so
	// the pair is a no-op on stock.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_Add(t *testing.T) {
	ledger, mock := newTestLedger(t)

	mock.ExpectQuery("INSERT INTO products (name, qty, price) VALUES ($1, $2, $3) RETURNING id").
		WithArgs("monitor", 5, 199.99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := ledger.Add(context.Background(), "monitor", 5, 199.99)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestLedger_Add_NegativeInputs(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Add(context.Background(), "monitor", -1, 10)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ledger.Add(context.Background(), "monitor", 1, -10)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
