package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangnecon/cafe-pos/internal/model"
)

// The NOT EXISTS guard inside the INSERT reports a conflicting active
// order as zero affected rows; the repo must surface that as
// ErrConflict without a second round trip.
func TestOrderRepoCreateTxGuardsActiveOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewOrderRepo(db)
	ctx := context.Background()

	t.Run("insert_wins", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectRollback()

		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback()

		o := &model.Order{TableID: 3, TableName: "Bàn 3"}
		require.NoError(t, repo.CreateTx(ctx, tx, o))
		assert.Equal(t, uint64(7), o.ID)
		assert.Equal(t, model.OrderActive, o.Status)
		assert.Zero(t, o.Total)
	})

	t.Run("table_already_has_active_order", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback()

		o := &model.Order{TableID: 3, TableName: "Bàn 3"}
		assert.ErrorIs(t, repo.CreateTx(ctx, tx, o), ErrConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Cancelling an order that is no longer active matches nothing because
// of the status predicate; the second cancel must come back as not
// found instead of mutating the row again.
func TestOrderRepoMarkCancelledTxRequiresActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewOrderRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	assert.ErrorIs(t, repo.MarkCancelledTx(ctx, tx, 12, "2026-08-31T10:00:00+07:00"), ErrOrderNotFound)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepoRecomputeTotalTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewOrderRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT total FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(95000))
	mock.ExpectRollback()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	total, err := repo.RecomputeTotalTx(ctx, tx, 9, "2026-08-31T10:00:00+07:00")
	require.NoError(t, err)
	assert.Equal(t, int64(95000), total)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
