package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ClientRow mirrors the clients relation.
type ClientRow struct {
	ID            uuid.UUID
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	FarmSizeHa    *float64
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clients provides access to the clients table.
type Clients struct {
	db DBTX
}

// NewClients constructs a Clients repository.
func NewClients(db DBTX) Clients {
	return Clients{db: db}
}

const clientColumns = `id, name, contact_person, email, phone, address, farm_size_ha, notes, created_at, updated_at`

func scanClient(row pgx.Row) (ClientRow, error) {
	var c ClientRow
	err := row.Scan(&c.ID, &c.Name, &c.ContactPerson, &c.Email, &c.Phone, &c.Address,
		&c.FarmSizeHa, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a client.
func (r Clients) Create(ctx context.Context, c ClientRow) (ClientRow, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO clients (id, name, contact_person, email, phone, address, farm_size_ha, notes)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING `+clientColumns,
		c.Name, c.ContactPerson, c.Email, c.Phone, c.Address, c.FarmSizeHa, c.Notes)
	return scanClient(row)
}

// Update overwrites a client's fields.
func (r Clients) Update(ctx context.Context, c ClientRow) (ClientRow, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE clients
		SET name = $2, contact_person = $3, email = $4, phone = $5, address = $6,
			farm_size_ha = $7, notes = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+clientColumns,
		c.ID, c.Name, c.ContactPerson, c.Email, c.Phone, c.Address, c.FarmSizeHa, c.Notes)
	return scanClient(row)
}

// Get fetches a client by id.
func (r Clients) Get(ctx context.Context, id uuid.UUID) (ClientRow, error) {
	return scanClient(r.db.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
}

// List returns clients matching an optional case-insensitive name search.
func (r Clients) List(ctx context.Context, search string, limit, offset int32) ([]ClientRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR contact_person ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2 OFFSET $3`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ClientRow
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Count returns the number of clients matching the search filter.
func (r Clients) Count(ctx context.Context, search string) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM clients
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR contact_person ILIKE '%' || $1 || '%')`,
		search).Scan(&total)
	return total, err
}

// Delete removes a client.
func (r Clients) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
