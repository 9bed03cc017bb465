package products

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

// Repository persists products and their presentations.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	FindCatalogItem(ctx context.Context, presentationID int64) (pricing.CatalogItem, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	CreateProduct(ctx context.Context, product Product) (int64, error)
	UpdateProduct(ctx context.Context, id int64, product Product) error
	ReplacePresentations(ctx context.Context, productID int64, presentations []Presentation) error
	DeleteProduct(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

type txRepo struct {
	q db.Querier
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx})
	})
}

const productColumns = `id, code, name, tax_pct, is_active, created_at, updated_at`

const presentationColumns = `id, product_id, name, barcode, price1, price2, price3,
	auto_price2, auto_price3, auto_pct2, auto_pct3, discount_pct, cost`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR code ILIKE $` + n + `)`
	}
	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		where += ` AND is_active = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		args = append(args, filters.Limit, filters.Offset())
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+presentationColumns+` FROM product_presentations WHERE product_id = $1 ORDER BY id`, id)
	if err != nil {
		return Product{}, err
	}
	defer rows.Close()
	for rows.Next() {
		pres, err := scanPresentation(rows)
		if err != nil {
			return Product{}, err
		}
		p.Presentations = append(p.Presentations, pres)
	}
	return p, rows.Err()
}

func (r *repository) FindCatalogItem(ctx context.Context, presentationID int64) (pricing.CatalogItem, error) {
	const query = `SELECT p.id, p.code, p.name, p.tax_pct,
		pp.id, pp.name, pp.price1, pp.price2, pp.price3, pp.auto_price2, pp.auto_price3,
		pp.discount_pct, pp.cost
		FROM product_presentations pp
		JOIN products p ON p.id = pp.product_id
		WHERE pp.id = $1 AND p.is_active`
	var (
		prod Product
		pres Presentation
	)
	err := r.pool.QueryRow(ctx, query, presentationID).Scan(
		&prod.ID, &prod.Code, &prod.Name, &prod.TaxPct,
		&pres.ID, &pres.Name, &pres.Price1, &pres.Price2, &pres.Price3, &pres.AutoPrice2, &pres.AutoPrice3,
		&pres.DiscountPct, &pres.Cost,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.CatalogItem{}, shared.ErrNotFound
		}
		return pricing.CatalogItem{}, err
	}
	return prod.CatalogItem(pres), nil
}

func (t *txRepo) CreateProduct(ctx context.Context, product Product) (int64, error) {
	const query = `INSERT INTO products (code, name, tax_pct, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id`
	var id int64
	err := t.q.QueryRow(ctx, query, product.Code, product.Name, product.TaxPct, product.IsActive).Scan(&id)
	return id, err
}

func (t *txRepo) UpdateProduct(ctx context.Context, id int64, product Product) error {
	const query = `UPDATE products SET code = $1, name = $2, tax_pct = $3, is_active = $4, updated_at = NOW() WHERE id = $5`
	tag, err := t.q.Exec(ctx, query, product.Code, product.Name, product.TaxPct, product.IsActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepo) ReplacePresentations(ctx context.Context, productID int64, presentations []Presentation) error {
	if _, err := t.q.Exec(ctx, `DELETE FROM product_presentations WHERE product_id = $1`, productID); err != nil {
		return err
	}
	const insert = `INSERT INTO product_presentations (product_id, name, barcode, price1, price2, price3,
		auto_price2, auto_price3, auto_pct2, auto_pct3, discount_pct, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, p := range presentations {
		if _, err := t.q.Exec(ctx, insert, productID, p.Name, p.Barcode, p.Price1, p.Price2, p.Price3,
			p.AutoPrice2, p.AutoPrice3, p.AutoPct2, p.AutoPct3, p.DiscountPct, p.Cost); err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepo) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := t.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.TaxPct, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanPresentation(row pgx.Row) (Presentation, error) {
	var p Presentation
	err := row.Scan(&p.ID, &p.ProductID, &p.Name, &p.Barcode, &p.Price1, &p.Price2, &p.Price3,
		&p.AutoPrice2, &p.AutoPrice3, &p.AutoPct2, &p.AutoPct3, &p.DiscountPct, &p.Cost)
	return p, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "name":
		return "name " + dir
	default:
		return "id " + dir
	}
}
