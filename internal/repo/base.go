package repo

import (
	"context"
	"database/sql"

	"github.com/Mazen-Mokhtar/logen-store-sub001/pkg/trm"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// base carries the db handle and the squirrel builder shared by the order
// and user repositories. Every query goes through the tx-aware helpers so
// calls inside trm.Manager.Do automatically join the transaction.
type base struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func newBase(db *sqlx.DB) base {
	return base{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (b base) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if tx := trm.ExtractTx(ctx); tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return b.db.ExecContext(ctx, query, args...)
}

func (b base) getContext(ctx context.Context, dest any, query string, args ...any) error {
	if tx := trm.ExtractTx(ctx); tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return b.db.GetContext(ctx, dest, query, args...)
}

func (b base) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	if tx := trm.ExtractTx(ctx); tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return b.db.SelectContext(ctx, dest, query, args...)
}
