package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// ErrConflict marks a transaction that lost a race with a concurrent one.
var ErrConflict = fmt.Errorf("platform/db: %w", httpx.ErrConflict)

// WithTx runs fn inside a repeatable-read transaction. The transaction is
// committed when fn returns nil and rolled back otherwise. Serialization
// failures and deadlocks surface as ErrConflict.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return conflict(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return conflict(fmt.Errorf("platform/db: commit tx: %w", err))
	}
	return nil
}

func conflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

// NextNumber reserves the next value of a named document sequence and
// formats it as PREFIX-000001. The counter row is locked for the rest
// of the transaction.
func NextNumber(ctx context.Context, q Querier, sequence, prefix string) (string, error) {
	const stmt = `
		INSERT INTO document_sequences (name, last_value)
		VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	var value int64
	if err := q.QueryRow(ctx, stmt, sequence).Scan(&value); err != nil {
		return "", fmt.Errorf("platform/db: next number %s: %w", sequence, err)
	}
	return FormatNumber(prefix, value), nil
}

// FormatNumber renders a document number.
func FormatNumber(prefix string, value int64) string {
	return fmt.Sprintf("%s-%06d", prefix, value)
}
