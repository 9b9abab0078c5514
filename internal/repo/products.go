package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRow mirrors the products relation.
type ProductRow struct {
	ID                uuid.UUID
	Name              string
	SKU               string
	CategoryID        uuid.UUID
	PricingType       string
	BaseRate          *float64
	DiscountThreshold float64
	DiscountRate      float64
	Unit              string
	Description       string
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TierRow mirrors the product_tiers relation.
type TierRow struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Threshold float64
	Rate      float64
}

// CategoryRow mirrors the categories relation.
type CategoryRow struct {
	ID          uuid.UUID
	Name        string
	Label       string
	Description string
}

// Products provides access to the product catalog tables.
type Products struct {
	db DBTX
}

// NewProducts constructs a Products repository.
func NewProducts(db DBTX) Products {
	return Products{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r Products) WithTx(tx DBTX) Products {
	return Products{db: tx}
}

const productColumns = `id, name, sku, category_id, pricing_type, base_rate,
	discount_threshold, discount_rate, unit, description, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (ProductRow, error) {
	var p ProductRow
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.CategoryID, &p.PricingType, &p.BaseRate,
		&p.DiscountThreshold, &p.DiscountRate, &p.Unit, &p.Description, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts a product and returns the stored row.
func (r Products) Create(ctx context.Context, p ProductRow) (ProductRow, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, sku, category_id, pricing_type, base_rate,
			discount_threshold, discount_rate, unit, description, is_active)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+productColumns,
		p.Name, p.SKU, p.CategoryID, p.PricingType, p.BaseRate,
		p.DiscountThreshold, p.DiscountRate, p.Unit, p.Description, p.IsActive)
	return scanProduct(row)
}

// Update overwrites a product's mutable fields.
func (r Products) Update(ctx context.Context, p ProductRow) (ProductRow, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET name = $2, sku = $3, category_id = $4, pricing_type = $5, base_rate = $6,
			discount_threshold = $7, discount_rate = $8, unit = $9, description = $10,
			is_active = $11, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		p.ID, p.Name, p.SKU, p.CategoryID, p.PricingType, p.BaseRate,
		p.DiscountThreshold, p.DiscountRate, p.Unit, p.Description, p.IsActive)
	return scanProduct(row)
}

// Get fetches a single product by id.
func (r Products) Get(ctx context.Context, id uuid.UUID) (ProductRow, error) {
	return scanProduct(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

// List returns products ordered by creation time, optionally only active ones.
func (r Products) List(ctx context.Context, onlyActive bool) ([]ProductRow, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ProductRow
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a product and, through cascade, its tiers.
func (r Products) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ReplaceTiers swaps the tier list for a product.
func (r Products) ReplaceTiers(ctx context.Context, productID uuid.UUID, tiers []TierRow) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM product_tiers WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for _, t := range tiers {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO product_tiers (id, product_id, threshold, rate)
			VALUES (gen_random_uuid(), $1, $2, $3)`,
			productID, t.Threshold, t.Rate); err != nil {
			return err
		}
	}
	return nil
}

// ListTiers returns a product's tiers ascending by threshold.
func (r Products) ListTiers(ctx context.Context, productID uuid.UUID) ([]TierRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, threshold, rate
		FROM product_tiers WHERE product_id = $1 ORDER BY threshold`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TierRow
	for rows.Next() {
		var t TierRow
		if err := rows.Scan(&t.ID, &t.ProductID, &t.Threshold, &t.Rate); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListCategories returns all categories ordered by name.
func (r Products) ListCategories(ctx context.Context) ([]CategoryRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, label, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategoryRow
	for rows.Next() {
		var c CategoryRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Label, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCategoryByID fetches a category by primary key.
func (r Products) GetCategoryByID(ctx context.Context, id uuid.UUID) (CategoryRow, error) {
	var c CategoryRow
	err := r.db.QueryRow(ctx,
		`SELECT id, name, label, description FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Label, &c.Description)
	return c, err
}

// GetCategoryByName fetches a category by its canonical name.
func (r Products) GetCategoryByName(ctx context.Context, name string) (CategoryRow, error) {
	var c CategoryRow
	err := r.db.QueryRow(ctx,
		`SELECT id, name, label, description FROM categories WHERE name = $1`, name).
		Scan(&c.ID, &c.Name, &c.Label, &c.Description)
	return c, err
}
