package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager exposes pgx transaction control to the service layer.
// The settlement commit opens one transaction and threads it through the
// InTx repository methods so the drawer delta, the payment row and the
// credit-usage delta land together or not at all.
type TransactionManager interface {
	// Begin opens a transaction on the underlying pool.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit finalizes tx.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback aborts tx. Rolling back an already-committed or already
	// rolled-back transaction is a no-op, so it is safe to defer.
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// RepositoryWithTx marks repositories whose mutations can run inside a
// caller-managed transaction.
type RepositoryWithTx interface {
	TransactionManager
}
