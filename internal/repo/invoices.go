package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InvoiceRow mirrors the invoices relation. Totals are snapshots copied from
// the quote at issue time.
type InvoiceRow struct {
	ID            uuid.UUID
	InvoiceNumber string
	QuoteID       uuid.UUID
	ClientID      uuid.UUID
	ClientName    string
	IssueDate     time.Time
	DueDate       time.Time
	Status        string
	Subtotal      float64
	TotalDiscount float64
	TotalCharge   float64
	CreatedAt     time.Time
}

// Invoices provides access to the invoices table.
type Invoices struct {
	db DBTX
}

// NewInvoices constructs an Invoices repository.
func NewInvoices(db DBTX) Invoices {
	return Invoices{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r Invoices) WithTx(tx DBTX) Invoices {
	return Invoices{db: tx}
}

const invoiceColumns = `i.id, i.invoice_number, i.quote_id, i.client_id, c.name,
	i.issue_date, i.due_date, i.status, i.subtotal, i.total_discount, i.total_charge, i.created_at`

func scanInvoice(row pgx.Row) (InvoiceRow, error) {
	var v InvoiceRow
	err := row.Scan(&v.ID, &v.InvoiceNumber, &v.QuoteID, &v.ClientID, &v.ClientName,
		&v.IssueDate, &v.DueDate, &v.Status, &v.Subtotal, &v.TotalDiscount, &v.TotalCharge,
		&v.CreatedAt)
	return v, err
}

// Create inserts an invoice snapshot.
func (r Invoices) Create(ctx context.Context, v InvoiceRow) (InvoiceRow, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		INSERT INTO invoices (id, invoice_number, quote_id, client_id, issue_date, due_date,
			status, subtotal, total_discount, total_charge)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		v.InvoiceNumber, v.QuoteID, v.ClientID, v.IssueDate, v.DueDate,
		v.Status, v.Subtotal, v.TotalDiscount, v.TotalCharge).Scan(&id)
	if err != nil {
		return InvoiceRow{}, err
	}
	return r.Get(ctx, id)
}

// Get fetches an invoice with its client name.
func (r Invoices) Get(ctx context.Context, id uuid.UUID) (InvoiceRow, error) {
	return scanInvoice(r.db.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices i JOIN clients c ON c.id = i.client_id
		WHERE i.id = $1`, id))
}

// List returns invoices newest first.
func (r Invoices) List(ctx context.Context, limit, offset int32) ([]InvoiceRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices i JOIN clients c ON c.id = i.client_id
		ORDER BY i.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []InvoiceRow
	for rows.Next() {
		v, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Count returns the total number of invoices.
func (r Invoices) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM invoices`).Scan(&total)
	return total, err
}

// NumbersForYear returns all invoice numbers created in the given year.
func (r Invoices) NumbersForYear(ctx context.Context, year int) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT invoice_number FROM invoices
		WHERE EXTRACT(YEAR FROM created_at) = $1
		ORDER BY invoice_number`, year)
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

// UpdateStatus moves an invoice to a new status.
func (r Invoices) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE invoices SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an invoice.
func (r Invoices) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
