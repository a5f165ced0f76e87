package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionManager starts database transactions
type TransactionManager interface {
	BeginTx(ctx context.Context) (Transaction, error)
}

// Transaction represents a database transaction
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Tx() pgx.Tx
}

// Beginner is the part of *pgxpool.Pool the transaction manager needs
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PoolTransactionManager implements TransactionManager on a pool
type PoolTransactionManager struct {
	pool Beginner
}

// NewTransactionManager creates a transaction manager over pool
func NewTransactionManager(pool *pgxpool.Pool) TransactionManager {
	return &PoolTransactionManager{pool: pool}
}

// BeginTx starts a new database transaction
func (m *PoolTransactionManager) BeginTx(ctx context.Context) (Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &PgxTransaction{tx: tx}, nil
}

// PgxTransaction wraps a pgx.Tx
type PgxTransaction struct {
	tx pgx.Tx
}

func (t *PgxTransaction) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *PgxTransaction) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
func (t *PgxTransaction) Tx() pgx.Tx                         { return t.tx }

// WithinTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func WithinTx(ctx context.Context, tm TransactionManager, fn func(ctx context.Context, tx pgx.Tx) error) (err error) {
	txn, err := tm.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := txn.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if err = fn(ctx, txn.Tx()); err != nil {
		return err
	}
	if err = txn.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
