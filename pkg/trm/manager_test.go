package trm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Mazen-Mokhtar/logen-store-sub001/pkg/trm"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestManagerDo(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		m := trm.NewManager(db)
		err := m.Do(context.Background(), func(ctx context.Context) error {
			tx := trm.ExtractTx(ctx)
			require.NotNil(t, tx, "callback must see the transaction in its context")
			_, err := tx.ExecContext(ctx, "UPDATE orders SET status = $1", "paid")
			return err
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on callback error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		wantErr := errors.New("gateway unavailable")
		m := trm.NewManager(db)
		err := m.Do(context.Background(), func(ctx context.Context) error {
			return wantErr
		})

		assert.ErrorIs(t, err, wantErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		m := trm.NewManager(db)
		assert.Panics(t, func() {
			_ = m.Do(context.Background(), func(ctx context.Context) error {
				panic("boom")
			})
		})

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested scope joins the outer transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		// A single Begin: a second one would fail the expectations.
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		m := trm.NewManager(db)
		err := m.Do(context.Background(), func(outer context.Context) error {
			outerTx := trm.ExtractTx(outer)
			if _, err := outerTx.ExecContext(outer, "INSERT INTO users VALUES ($1)", "u1"); err != nil {
				return err
			}

			return m.Do(outer, func(inner context.Context) error {
				innerTx := trm.ExtractTx(inner)
				assert.Same(t, outerTx, innerTx)
				_, err := innerTx.ExecContext(inner, "INSERT INTO orders VALUES ($1)", "o1")
				return err
			})
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inner failure rolls back the whole scope", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		wantErr := errors.New("duplicate key")
		m := trm.NewManager(db)
		err := m.Do(context.Background(), func(outer context.Context) error {
			if _, err := trm.ExtractTx(outer).ExecContext(outer, "INSERT INTO users VALUES ($1)", "u1"); err != nil {
				return err
			}
			return m.Do(outer, func(inner context.Context) error {
				return wantErr
			})
		})

		assert.ErrorIs(t, err, wantErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestManagerBeginTx(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := trm.NewManager(db)
	ctx, tx, err := m.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	assert.NotNil(t, trm.ExtractTx(ctx), "returned context must carry the transaction")
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
