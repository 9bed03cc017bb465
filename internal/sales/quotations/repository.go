package quotations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

var (
	ErrNotFound      = fmt.Errorf("quotation %w", httpx.ErrNotFound)
	ErrInvalidStatus = fmt.Errorf("quotation %w", httpx.ErrConflict)
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error)
	NextNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, quotation Quotation) (int64, error)
	InsertLine(ctx context.Context, line QuotationLine) (int64, error)
	Transition(ctx context.Context, id int64, from, to QuotationStatus, invoiceID *int64) error
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

const quotationColumns = `id, doc_number, customer_id, price_tier, payment_type, credit_days, quote_date,
	valid_until, status, subtotal, discount, tax, surcharge, total, notes, invoice_id, created_at`

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	q, err := scanQuotation(r.db.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `SELECT id, quotation_id, line_order, product_id, presentation_id, description,
		quantity, unit_price, discount_pct, tax_rate, discount, tax, amount
		FROM quotation_lines WHERE quotation_id = $1 ORDER BY line_order`
	rows, err := r.db.Query(ctx, linesQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l QuotationLine
		if err := rows.Scan(&l.ID, &l.QuotationID, &l.LineOrder, &l.ProductID, &l.PresentationID, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.DiscountPct, &l.TaxRate, &l.Discount, &l.Tax, &l.Amount); err != nil {
			return nil, err
		}
		q.Lines = append(q.Lines, l)
	}
	return &q, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
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
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM quotations WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, req.Offset)
	query := fmt.Sprintf(`SELECT %s FROM quotations WHERE %s ORDER BY quote_date DESC, id DESC
		LIMIT $%d OFFSET $%d`, quotationColumns, clause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quotations []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		quotations = append(quotations, q)
	}
	return quotations, total, rows.Err()
}

func (r *repository) NextNumber(ctx context.Context) (string, error) {
	return db.NextNumber(ctx, r.db, "quotations", "COT")
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	const query = `INSERT INTO quotations (doc_number, customer_id, price_tier, payment_type, credit_days,
		quote_date, valid_until, status, subtotal, discount, tax, surcharge, total, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query, q.DocNumber, q.CustomerID, int(q.PriceTier), string(q.PaymentType), q.CreditDays,
		q.QuoteDate, q.ValidUntil, string(q.Status), q.Subtotal, q.Discount, q.Tax, q.Surcharge, q.Total, q.Notes).Scan(&id)
	return id, err
}

func (r *repository) InsertLine(ctx context.Context, l QuotationLine) (int64, error) {
	const query = `INSERT INTO quotation_lines (quotation_id, line_order, product_id, presentation_id, description,
		quantity, unit_price, discount_pct, tax_rate, discount, tax, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query, l.QuotationID, l.LineOrder, l.ProductID, l.PresentationID, l.Description,
		l.Quantity, l.UnitPrice, l.DiscountPct, l.TaxRate, l.Discount, l.Tax, l.Amount).Scan(&id)
	return id, err
}

// Transition moves a quotation from one status to another. It fails with
// ErrInvalidStatus when the row is no longer in the from status.
func (r *repository) Transition(ctx context.Context, id int64, from, to QuotationStatus, invoiceID *int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE quotations SET status = $1, invoice_id = COALESCE($2, invoice_id)
		WHERE id = $3 AND status = $4`, string(to), invoiceID, id, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: quotation %d is not %s", ErrInvalidStatus, id, from)
	}
	return nil
}

func scanQuotation(row pgx.Row) (Quotation, error) {
	var (
		q       Quotation
		tier    int
		payment string
		status  string
	)
	err := row.Scan(&q.ID, &q.DocNumber, &q.CustomerID, &tier, &payment, &q.CreditDays, &q.QuoteDate,
		&q.ValidUntil, &status, &q.Subtotal, &q.Discount, &q.Tax, &q.Surcharge, &q.Total, &q.Notes,
		&q.InvoiceID, &q.CreatedAt)
	q.PriceTier = pricing.Tier(tier)
	q.PaymentType = pricing.PaymentType(payment)
	q.Status = QuotationStatus(status)
	return q, err
}
