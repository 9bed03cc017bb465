package procurement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	CreateSupplier(ctx context.Context, supplier Supplier) (int64, error)
	NextNumber(ctx context.Context) (string, error)
	CreatePurchase(ctx context.Context, purchase Purchase) (int64, error)
	InsertLine(ctx context.Context, line PurchaseLine) (int64, error)
	LockPurchase(ctx context.Context, id int64) (Purchase, error)
	CountPayments(ctx context.Context, purchaseID int64) (int, error)
	CreatePayment(ctx context.Context, payment Payment) (int64, error)
	UpdateSettlement(ctx context.Context, id int64, balance decimal.Decimal, status PurchaseStatus) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const purchaseColumns = `id, number, supplier_id, supplier_invoice, tax_included, payment_type, purchase_date,
	due_date, subtotal, discount, tax, printed_tax, total, balance, status, created_at`

// GetSupplier returns a supplier by id.
func (r *Repository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx, `SELECT id, name, tax_id, credit_days, created_at FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.TaxID, &s.CreditDays, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	return s, err
}

// ListSuppliers returns suppliers ordered by name.
func (r *Repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, tax_id, credit_days, created_at FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.TaxID, &s.CreditDays, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetPurchase returns a purchase and its lines.
func (r *Repository) GetPurchase(ctx context.Context, id int64) (Purchase, error) {
	p, err := scanPurchase(r.pool.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, ErrNotFound
	}
	if err != nil {
		return Purchase{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, purchase_id, line_order, product_id, description, quantity, unit_cost,
		unit_cost_net, discount_pct, tax_rate, discount, base, tax, printed_tax, importe
		FROM purchase_lines WHERE purchase_id = $1 ORDER BY line_order`, id)
	if err != nil {
		return Purchase{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l PurchaseLine
		if err := rows.Scan(&l.ID, &l.PurchaseID, &l.LineOrder, &l.ProductID, &l.Description, &l.Quantity, &l.UnitCost,
			&l.UnitCostNet, &l.DiscountPct, &l.TaxRate, &l.Discount, &l.Base, &l.Tax, &l.PrintedTax, &l.Importe); err != nil {
			return Purchase{}, err
		}
		p.Lines = append(p.Lines, l)
	}
	return p, rows.Err()
}

// ListPayables returns open purchases, oldest due date first.
func (r *Repository) ListPayables(ctx context.Context) ([]Payable, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.number, p.supplier_id, s.name, p.supplier_invoice, p.due_date, p.total, p.balance
		FROM purchases p
		JOIN suppliers s ON s.id = p.supplier_id
		WHERE p.status = 'OPEN' AND p.balance > 0
		ORDER BY p.due_date NULLS LAST, p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payable
	for rows.Next() {
		var p Payable
		if err := rows.Scan(&p.PurchaseID, &p.Number, &p.SupplierID, &p.SupplierName, &p.SupplierInvoice,
			&p.DueDate, &p.Total, &p.Balance); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (t *txRepo) CreateSupplier(ctx context.Context, s Supplier) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO suppliers (name, tax_id, credit_days, created_at)
		VALUES ($1, $2, $3, NOW()) RETURNING id`, s.Name, s.TaxID, s.CreditDays).Scan(&id)
	return id, err
}

func (t *txRepo) NextNumber(ctx context.Context) (string, error) {
	return db.NextNumber(ctx, t.tx, "purchases", "COM")
}

func (t *txRepo) CreatePurchase(ctx context.Context, p Purchase) (int64, error) {
	const query = `INSERT INTO purchases (number, supplier_id, supplier_invoice, tax_included, payment_type,
		purchase_date, due_date, subtotal, discount, tax, printed_tax, total, balance, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		RETURNING id`
	var id int64
	err := t.tx.QueryRow(ctx, query, p.Number, p.SupplierID, p.SupplierInvoice, p.TaxIncluded, string(p.PaymentType),
		p.PurchaseDate, p.DueDate, p.Subtotal, p.Discount, p.Tax, p.PrintedTax, p.Total, p.Balance, string(p.Status)).Scan(&id)
	return id, err
}

func (t *txRepo) InsertLine(ctx context.Context, l PurchaseLine) (int64, error) {
	const query = `INSERT INTO purchase_lines (purchase_id, line_order, product_id, description, quantity, unit_cost,
		unit_cost_net, discount_pct, tax_rate, discount, base, tax, printed_tax, importe)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	var id int64
	err := t.tx.QueryRow(ctx, query, l.PurchaseID, l.LineOrder, l.ProductID, l.Description, l.Quantity, l.UnitCost,
		l.UnitCostNet, l.DiscountPct, l.TaxRate, l.Discount, l.Base, l.Tax, l.PrintedTax, l.Importe).Scan(&id)
	return id, err
}

func (t *txRepo) LockPurchase(ctx context.Context, id int64) (Purchase, error) {
	p, err := scanPurchase(t.tx.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, ErrNotFound
	}
	return p, err
}

func (t *txRepo) CountPayments(ctx context.Context, purchaseID int64) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_payments WHERE purchase_id = $1`, purchaseID).Scan(&n)
	return n, err
}

func (t *txRepo) CreatePayment(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO purchase_payments (purchase_id, amount, reference, paid_at)
		VALUES ($1, $2, $3, $4) RETURNING id`, p.PurchaseID, p.Amount, p.Reference, p.PaidAt).Scan(&id)
	return id, err
}

func (t *txRepo) UpdateSettlement(ctx context.Context, id int64, balance decimal.Decimal, status PurchaseStatus) error {
	tag, err := t.tx.Exec(ctx, `UPDATE purchases SET balance = $1, status = $2 WHERE id = $3`, balance, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPurchase(row pgx.Row) (Purchase, error) {
	var (
		p       Purchase
		payment string
		status  string
	)
	err := row.Scan(&p.ID, &p.Number, &p.SupplierID, &p.SupplierInvoice, &p.TaxIncluded, &payment, &p.PurchaseDate,
		&p.DueDate, &p.Subtotal, &p.Discount, &p.Tax, &p.PrintedTax, &p.Total, &p.Balance, &status, &p.CreatedAt)
	p.PaymentType = pricing.PaymentType(payment)
	p.Status = PurchaseStatus(status)
	return p, err
}
