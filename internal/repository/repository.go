package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Errors surfaced by repositories in addition to raw database failures.
var (
	// ErrDuplicate is returned when an insert collides with a unique key.
	ErrDuplicate = errors.New("duplicate key")
	// ErrMissingReference is returned when a foreign key points at nothing.
	ErrMissingReference = errors.New("referenced row does not exist")
	// ErrConstraint is returned when a CHECK constraint rejects a value.
	ErrConstraint = errors.New("check constraint violated")
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// translate maps PostgreSQL constraint errors onto the package sentinels and
// leaves every other error untouched.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return errors.Join(ErrDuplicate, err)
	case pgForeignKeyViolation:
		return errors.Join(ErrMissingReference, err)
	case pgCheckViolation:
		return errors.Join(ErrConstraint, err)
	}
	return err
}

// limitArg binds a LIMIT parameter; LIMIT NULL means no limit.
func limitArg(n int) any {
	if n <= 0 {
		return nil
	}
	return n
}
