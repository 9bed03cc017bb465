package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

var (
	ErrNotFound      = fmt.Errorf("customer %w", httpx.ErrNotFound)
	ErrAlreadyExists = fmt.Errorf("customer %w", httpx.ErrDuplicate)
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Customer, error)
	GetByCode(ctx context.Context, code string) (*Customer, error)
	List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error)
	Create(ctx context.Context, customer Customer) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
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

const customerColumns = `id, code, name, tax_id, phone, email, price_tier, credit_authorized,
	credit_days, is_active, notes, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE code = $1`, code)
}

func (r *repository) getOne(ctx context.Context, query string, arg any) (*Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if req.IsActive != nil {
		args = append(args, *req.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if req.Search != nil && *req.Search != "" {
		args = append(args, "%"+*req.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d OR tax_id ILIKE $%d)", len(args), len(args), len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM customers WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, req.Offset)
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE %s ORDER BY name
		LIMIT $%d OFFSET $%d`, customerColumns, clause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Customer) (int64, error) {
	const query = `INSERT INTO customers (code, name, tax_id, phone, email, price_tier,
		credit_authorized, credit_days, is_active, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query, c.Code, c.Name, c.TaxID, c.Phone, c.Email, int(c.PriceTier),
		c.CreditAuthorized, c.CreditDays, c.IsActive, c.Notes).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

// updatableColumns lists the columns Update accepts, in statement order.
var updatableColumns = []string{
	"name", "tax_id", "phone", "email", "price_tier",
	"credit_authorized", "credit_days", "is_active", "notes",
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE customers SET updated_at = NOW()"
	args := []any{}
	for _, col := range updatableColumns {
		v, ok := updates[col]
		if !ok {
			continue
		}
		args = append(args, v)
		query += fmt.Sprintf(", %s = $%d", col, len(args))
	}
	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var (
		c    Customer
		tier int
	)
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.TaxID, &c.Phone, &c.Email, &tier,
		&c.CreditAuthorized, &c.CreditDays, &c.IsActive, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	c.PriceTier = pricing.Tier(tier)
	return c, err
}
