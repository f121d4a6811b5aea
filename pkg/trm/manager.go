package trm

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type Transaction interface {
	Commit() error
	Rollback() error
}

type txKey struct{}

func withTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// ExtractTx returns the transaction carried by ctx, or nil when the call
// is not inside an atomic scope.
func ExtractTx(ctx context.Context) *sqlx.Tx {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	if !ok {
		return nil
	}
	return tx
}

// Manager runs callbacks inside a database transaction carried through the
// context. Repositories pick the transaction up via ExtractTx, so a whole
// checkout attempt (user resolution + order writes) shares one atomic scope.
type Manager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (context.Context, Transaction, error)
	Do(ctx context.Context, callback func(ctx context.Context) error) error
}

type txManager struct {
	db *sqlx.DB
}

func NewManager(db *sqlx.DB) Manager {
	return &txManager{db: db}
}

func (t *txManager) BeginTx(ctx context.Context, opts *sql.TxOptions) (context.Context, Transaction, error) {
	tx, err := t.db.BeginTxx(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return withTx(ctx, tx), tx, nil
}

// Do executes callback inside a transaction. Commit happens only when the
// callback returns nil; the deferred rollback releases the transaction on
// every other exit path, panics included.
func (t *txManager) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	// Nested Do joins the outer scope instead of opening a second tx.
	if ExtractTx(ctx) != nil {
		return callback(ctx)
	}

	ctx, tx, err := t.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := callback(ctx); err != nil {
		return err
	}
	return tx.Commit()
}
