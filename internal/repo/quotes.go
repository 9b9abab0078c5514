package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// QuoteRow mirrors the quotes relation.
type QuoteRow struct {
	ID            uuid.UUID
	QuoteNumber   string
	UserID        uuid.UUID
	ClientID      uuid.UUID
	ClientName    string
	Status        string
	Subtotal      float64
	TotalDiscount float64
	TotalCharge   float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// QuoteItemRow mirrors the quote_items relation. The calculation snapshot is
// denormalised so history renders without recomputation.
type QuoteItemRow struct {
	ID             uuid.UUID
	QuoteID        uuid.UUID
	ProductID      uuid.UUID
	ProductName    string
	Quantity       float64
	Speed          *float64
	FlowRate       *float64
	SprayWidth     *float64
	AppRate        *float64
	AppliedRate    float64
	Subtotal       float64
	DiscountAmount float64
	Total          float64
}

// Quotes provides access to the quotes tables.
type Quotes struct {
	db DBTX
}

// NewQuotes constructs a Quotes repository.
func NewQuotes(db DBTX) Quotes {
	return Quotes{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r Quotes) WithTx(tx DBTX) Quotes {
	return Quotes{db: tx}
}

const quoteColumns = `q.id, q.quote_number, q.user_id, q.client_id, c.name,
	q.status, q.subtotal, q.total_discount, q.total_charge, q.created_at, q.updated_at`

func scanQuote(row pgx.Row) (QuoteRow, error) {
	var q QuoteRow
	err := row.Scan(&q.ID, &q.QuoteNumber, &q.UserID, &q.ClientID, &q.ClientName,
		&q.Status, &q.Subtotal, &q.TotalDiscount, &q.TotalCharge, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

// Create inserts a quote header with zero totals.
func (r Quotes) Create(ctx context.Context, quoteNumber string, userID, clientID uuid.UUID, status string) (QuoteRow, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotes (id, quote_number, user_id, client_id, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id`, quoteNumber, userID, clientID, status).Scan(&id)
	if err != nil {
		return QuoteRow{}, err
	}
	return r.Get(ctx, id)
}

// Get fetches a quote with its client name.
func (r Quotes) Get(ctx context.Context, id uuid.UUID) (QuoteRow, error) {
	return scanQuote(r.db.QueryRow(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes q JOIN clients c ON c.id = q.client_id
		WHERE q.id = $1`, id))
}

// List returns quotes newest first.
func (r Quotes) List(ctx context.Context, limit, offset int32) ([]QuoteRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes q JOIN clients c ON c.id = q.client_id
		ORDER BY q.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []QuoteRow
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Count returns the total number of quotes.
func (r Quotes) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM quotes`).Scan(&total)
	return total, err
}

// NumbersForYear returns all quote numbers created in the given year.
func (r Quotes) NumbersForYear(ctx context.Context, year int) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT quote_number FROM quotes
		WHERE EXTRACT(YEAR FROM created_at) = $1
		ORDER BY quote_number`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// InsertItem appends a computed line item to a quote.
func (r Quotes) InsertItem(ctx context.Context, it QuoteItemRow) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO quote_items (id, quote_id, product_id, quantity, speed, flow_rate,
			spray_width, app_rate, applied_rate, subtotal, discount_amount, total)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		it.QuoteID, it.ProductID, it.Quantity, it.Speed, it.FlowRate,
		it.SprayWidth, it.AppRate, it.AppliedRate, it.Subtotal, it.DiscountAmount, it.Total)
	return err
}

// DeleteItems removes all line items for a quote.
func (r Quotes) DeleteItems(ctx context.Context, quoteID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM quote_items WHERE quote_id = $1`, quoteID)
	return err
}

// ListItems returns a quote's line items with product names.
func (r Quotes) ListItems(ctx context.Context, quoteID uuid.UUID) ([]QuoteItemRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT i.id, i.quote_id, i.product_id, p.name, i.quantity, i.speed, i.flow_rate,
			i.spray_width, i.app_rate, i.applied_rate, i.subtotal, i.discount_amount, i.total
		FROM quote_items i JOIN products p ON p.id = i.product_id
		WHERE i.quote_id = $1
		ORDER BY p.name`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []QuoteItemRow
	for rows.Next() {
		var it QuoteItemRow
		if err := rows.Scan(&it.ID, &it.QuoteID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.Speed, &it.FlowRate, &it.SprayWidth, &it.AppRate,
			&it.AppliedRate, &it.Subtotal, &it.DiscountAmount, &it.Total); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateTotals stores the aggregated quote totals.
func (r Quotes) UpdateTotals(ctx context.Context, id uuid.UUID, subtotal, totalDiscount, totalCharge float64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE quotes
		SET subtotal = $2, total_discount = $3, total_charge = $4, updated_at = now()
		WHERE id = $1`, id, subtotal, totalDiscount, totalCharge)
	return err
}

// UpdateStatus moves a quote to a new status.
func (r Quotes) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE quotes SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a quote and, through cascade, its items.
func (r Quotes) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
