package returns

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/invoices"
)

var (
	ErrNotFound     = fmt.Errorf("return %w", httpx.ErrNotFound)
	ErrInvalidState = fmt.Errorf("return %w", httpx.ErrConflict)
	ErrValidation   = fmt.Errorf("return %w", httpx.ErrValidation)
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Return, error)
	ListByInvoice(ctx context.Context, invoiceID int64) ([]Return, error)
	LockInvoice(ctx context.Context, invoiceID int64) (invoices.InvoiceStatus, error)
	Returned(ctx context.Context, invoiceID int64) (map[int64]LineReturned, error)
	NextNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, ret Return) (int64, error)
	InsertLine(ctx context.Context, line ReturnLine) (int64, error)
}

type repository struct {
	db   db.Querier
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const returnColumns = `id, number, invoice_id, reason, return_date, discount, tax, total, created_at`

func (r *repository) Get(ctx context.Context, id int64) (*Return, error) {
	ret, err := scanReturn(r.db.QueryRow(ctx, `SELECT `+returnColumns+` FROM returns WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT id, return_id, invoice_line_id, product_id, description, quantity, ratio,
		discount, tax, amount FROM return_lines WHERE return_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l ReturnLine
		if err := rows.Scan(&l.ID, &l.ReturnID, &l.InvoiceLineID, &l.ProductID, &l.Description, &l.Quantity,
			&l.Ratio, &l.Discount, &l.Tax, &l.Amount); err != nil {
			return nil, err
		}
		ret.Lines = append(ret.Lines, l)
	}
	return &ret, rows.Err()
}

func (r *repository) ListByInvoice(ctx context.Context, invoiceID int64) ([]Return, error) {
	rows, err := r.db.Query(ctx, `SELECT `+returnColumns+` FROM returns WHERE invoice_id = $1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Return
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ret)
	}
	return out, rows.Err()
}

// LockInvoice bumps the invoice row version and returns its current status.
// Writing the row makes a concurrent void or return in another transaction
// fail with a serialization error instead of reading a stale snapshot.
func (r *repository) LockInvoice(ctx context.Context, invoiceID int64) (invoices.InvoiceStatus, error) {
	var status string
	err := r.db.QueryRow(ctx, `UPDATE invoices SET lock_version = lock_version + 1 WHERE id = $1 RETURNING status`,
		invoiceID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", invoices.ErrNotFound
	}
	return invoices.InvoiceStatus(status), err
}

// Returned sums the quantities and amounts already returned per invoice line.
func (r *repository) Returned(ctx context.Context, invoiceID int64) (map[int64]LineReturned, error) {
	rows, err := r.db.Query(ctx, `SELECT rl.invoice_line_id, SUM(rl.quantity), SUM(rl.discount), SUM(rl.tax),
		SUM(rl.amount)
		FROM return_lines rl JOIN returns rt ON rt.id = rl.return_id
		WHERE rt.invoice_id = $1
		GROUP BY rl.invoice_line_id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]LineReturned)
	for rows.Next() {
		var (
			lineID int64
			l      LineReturned
		)
		if err := rows.Scan(&lineID, &l.Quantity, &l.Totals.Discount, &l.Totals.Tax, &l.Totals.Amount); err != nil {
			return nil, err
		}
		out[lineID] = l
	}
	return out, rows.Err()
}

func (r *repository) NextNumber(ctx context.Context) (string, error) {
	return db.NextNumber(ctx, r.db, "returns", "DEV")
}

func (r *repository) Create(ctx context.Context, ret Return) (int64, error) {
	const query = `INSERT INTO returns (number, invoice_id, reason, return_date, discount, tax, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query, ret.Number, ret.InvoiceID, ret.Reason, ret.ReturnDate,
		ret.Discount, ret.Tax, ret.Total).Scan(&id)
	return id, err
}

func (r *repository) InsertLine(ctx context.Context, l ReturnLine) (int64, error) {
	const query = `INSERT INTO return_lines (return_id, invoice_line_id, product_id, description, quantity, ratio,
		discount, tax, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query, l.ReturnID, l.InvoiceLineID, l.ProductID, l.Description, l.Quantity, l.Ratio,
		l.Discount, l.Tax, l.Amount).Scan(&id)
	return id, err
}

func scanReturn(row pgx.Row) (Return, error) {
	var ret Return
	err := row.Scan(&ret.ID, &ret.Number, &ret.InvoiceID, &ret.Reason, &ret.ReturnDate, &ret.Discount,
		&ret.Tax, &ret.Total, &ret.CreatedAt)
	return ret, err
}
