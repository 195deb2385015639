package repository

import (
	"context"
	"database/sql"
	"log/slog"
)

// Querier is the query capability shared by *sql.DB and *sql.Tx. Repository
// methods accept it so the same code runs against the pool or inside an open
// transaction; passing nil makes the repository fall back to its own pool.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Transactor runs a function inside one atomic transaction, committing on
// nil and rolling back on error.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(q Querier) error) error
}

type sqlTransactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
