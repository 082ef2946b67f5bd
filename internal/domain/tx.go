package domain

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql satisfied by both *sql.DB and
// *sql.Tx. Repositories take a Querier so the same method can run inside or
// outside an explicit transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is one unit of work: a bounded sequence of reads and writes that commits
// or rolls back as a whole. Row locks taken inside a Tx are released when it
// ends, never leaked across requests.
type Tx interface {
	Querier
	Commit() error
	Rollback() error
}

// TxBeginner opens units of work. Satisfied by the Postgres pool wrapper and
// by the in-memory store used in tests.
type TxBeginner interface {
	Begin(ctx context.Context) (Tx, error)
}
