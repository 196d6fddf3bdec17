package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the query surface shared by pools, pinned connections, and open
// transactions. Repositories resolve one from the context so that a service
// operation spanning several repositories runs its statements on a single
// connection and, inside WithTx, a single transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// TxFromContext retrieves the open transaction from context, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	return tx
}

// QuerierFromContext returns the strongest querier bound to the context:
// an open transaction first, then the branch-pinned connection. Returns nil
// when neither is present; callers fall back to their pool.
func QuerierFromContext(ctx context.Context) Querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	if conn := ConnFromContext(ctx); conn != nil {
		return conn
	}
	return nil
}

// WithTx runs fn inside a database transaction. The transaction is placed in
// the context handed to fn, so every repository call inside fn shares it.
// On error the transaction is rolled back in full; nothing is written.
// Nested calls reuse the outer transaction.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	var tx pgx.Tx
	var err error
	// Begin on the branch-pinned connection when present so the transaction
	// inherits its search_path.
	if conn := ConnFromContext(ctx); conn != nil {
		tx, err = conn.Begin(ctx)
	} else {
		tx, err = pool.Begin(ctx)
	}
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
