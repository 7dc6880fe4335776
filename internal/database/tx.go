package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by both *sql.DB and *sql.Tx. Repositories run every
// statement against a Querier so callers decide the transaction boundary.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Transactor scopes transactions for multi-write operations
type Transactor interface {
	WithTx(ctx context.Context, fn func(q Querier) error) error
	Savepoint(ctx context.Context, q Querier, name string, fn func() error) error
}

// TxManager implements Transactor on top of a connection pool
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithTx begins a transaction, passes it to fn and commits when fn returns
// nil. Any error or panic rolls the transaction back.
func (m *TxManager) WithTx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Savepoint runs fn under a named savepoint of the surrounding transaction.
// When fn fails the savepoint is rolled back and the transaction stays usable.
func (m *TxManager) Savepoint(ctx context.Context, q Querier, name string, fn func() error) error {
	if _, err := q.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	if err := fn(); err != nil {
		if _, rbErr := q.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback savepoint: %w", rbErr))
		}
		return err
	}

	if _, err := q.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

// IsDataError reports whether err is a postgres data exception or integrity
// violation (SQLSTATE classes 22 and 23), i.e. the row itself was refused.
func IsDataError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || len(pgErr.Code) < 2 {
		return false
	}
	class := pgErr.Code[:2]
	return class == "22" || class == "23"
}

// IsUniqueViolation reports whether err is a postgres unique constraint
// violation (SQLSTATE 23505), optionally on a specific constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
