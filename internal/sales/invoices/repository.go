package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

var (
	ErrNotFound     = fmt.Errorf("invoice %w", httpx.ErrNotFound)
	ErrInvalidState = fmt.Errorf("invoice %w", httpx.ErrConflict)
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	Lock(ctx context.Context, id int64) (InvoiceStatus, error)
	ReturnedQuantities(ctx context.Context, invoiceID int64) (map[int64]decimal.Decimal, error)
	NextNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, invoice Invoice) (int64, error)
	InsertLine(ctx context.Context, line InvoiceLine) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status InvoiceStatus, reason *string) error
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

const invoiceColumns = `id, doc_number, customer_id, price_tier, payment_type, credit_days, issue_date,
	due_date, status, subtotal, discount, tax, surcharge, total, notes, quotation_id, void_reason, created_at`

const lineColumns = `id, invoice_id, line_order, product_id, presentation_id, description, quantity,
	unit_price, discount_pct, tax_rate, discount, tax_base, tax, amount`

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+lineColumns+` FROM invoice_lines WHERE invoice_id = $1 ORDER BY line_order`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.LineOrder, &l.ProductID, &l.PresentationID, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.DiscountPct, &l.TaxRate, &l.Discount, &l.TaxBase, &l.Tax, &l.Amount); err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, l)
	}
	return &inv, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if req.CustomerID != nil {
		args = append(args, *req.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if req.Status != nil {
		args = append(args, string(*req.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM invoices WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, req.Offset)
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE %s ORDER BY issue_date DESC, id DESC
		LIMIT $%d OFFSET $%d`, invoiceColumns, clause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

// Lock bumps the row version of an invoice and returns its status. Returns
// lock the same row, so a void and a return cannot both commit.
func (r *repository) Lock(ctx context.Context, id int64) (InvoiceStatus, error) {
	var status string
	err := r.db.QueryRow(ctx, `UPDATE invoices SET lock_version = lock_version + 1 WHERE id = $1 RETURNING status`,
		id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return InvoiceStatus(status), err
}

func (r *repository) ReturnedQuantities(ctx context.Context, invoiceID int64) (map[int64]decimal.Decimal, error) {
	const query = `SELECT rl.invoice_line_id, SUM(rl.quantity)
		FROM return_lines rl
		JOIN returns rt ON rt.id = rl.return_id
		WHERE rt.invoice_id = $1
		GROUP BY rl.invoice_line_id`
	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var (
			lineID int64
			qty    decimal.Decimal
		)
		if err := rows.Scan(&lineID, &qty); err != nil {
			return nil, err
		}
		out[lineID] = qty
	}
	return out, rows.Err()
}

func (r *repository) NextNumber(ctx context.Context) (string, error) {
	return db.NextNumber(ctx, r.db, "invoices", "FAC")
}

func (r *repository) Create(ctx context.Context, inv Invoice) (int64, error) {
	const query = `INSERT INTO invoices (doc_number, customer_id, price_tier, payment_type, credit_days,
		issue_date, due_date, status, subtotal, discount, tax, surcharge, total, notes, quotation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query, inv.DocNumber, inv.CustomerID, int(inv.PriceTier), string(inv.PaymentType),
		inv.CreditDays, inv.IssueDate, inv.DueDate, string(inv.Status), inv.Subtotal, inv.Discount, inv.Tax,
		inv.Surcharge, inv.Total, inv.Notes, inv.QuotationID).Scan(&id)
	return id, err
}

func (r *repository) InsertLine(ctx context.Context, l InvoiceLine) (int64, error) {
	const query = `INSERT INTO invoice_lines (invoice_id, line_order, product_id, presentation_id, description,
		quantity, unit_price, discount_pct, tax_rate, discount, tax_base, tax, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query, l.InvoiceID, l.LineOrder, l.ProductID, l.PresentationID, l.Description,
		l.Quantity, l.UnitPrice, l.DiscountPct, l.TaxRate, l.Discount, l.TaxBase, l.Tax, l.Amount).Scan(&id)
	return id, err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status InvoiceStatus, reason *string) error {
	tag, err := r.db.Exec(ctx, `UPDATE invoices SET status = $1, void_reason = $2 WHERE id = $3`, string(status), reason, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var (
		inv     Invoice
		tier    int
		payment string
		status  string
	)
	err := row.Scan(&inv.ID, &inv.DocNumber, &inv.CustomerID, &tier, &payment, &inv.CreditDays, &inv.IssueDate,
		&inv.DueDate, &status, &inv.Subtotal, &inv.Discount, &inv.Tax, &inv.Surcharge, &inv.Total, &inv.Notes,
		&inv.QuotationID, &inv.VoidReason, &inv.CreatedAt)
	inv.PriceTier = pricing.Tier(tier)
	inv.PaymentType = pricing.PaymentType(payment)
	inv.Status = InvoiceStatus(status)
	return inv, err
}
