package quote

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrihover/backend-quote/internal/repo"
)

// PGStore implements Store on postgres. Multi-row writes run inside a single
// transaction so a quote is never visible with half its lines.
type PGStore struct {
	pool   *pgxpool.Pool
	quotes repo.Quotes
}

// NewPGStore constructs a postgres-backed quote store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, quotes: repo.NewQuotes(pool)}
}

// CreateWithItems inserts the quote header and its lines atomically.
func (s *PGStore) CreateWithItems(ctx context.Context, q repo.QuoteRow, items []repo.QuoteItemRow) (repo.QuoteRow, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return repo.QuoteRow{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	qtx := s.quotes.WithTx(tx)
	created, err := qtx.Create(ctx, q.QuoteNumber, q.UserID, q.ClientID, q.Status)
	if err != nil {
		return repo.QuoteRow{}, err
	}
	for _, it := range items {
		it.QuoteID = created.ID
		if err := qtx.InsertItem(ctx, it); err != nil {
			return repo.QuoteRow{}, err
		}
	}
	if err := qtx.UpdateTotals(ctx, created.ID, q.Subtotal, q.TotalDiscount, q.TotalCharge); err != nil {
		return repo.QuoteRow{}, err
	}
	created, err = qtx.Get(ctx, created.ID)
	if err != nil {
		return repo.QuoteRow{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return repo.QuoteRow{}, err
	}
	return created, nil
}

// ReplaceItems swaps a quote's lines and totals atomically.
func (s *PGStore) ReplaceItems(ctx context.Context, id uuid.UUID, items []repo.QuoteItemRow, subtotal, totalDiscount, totalCharge float64) (repo.QuoteRow, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return repo.QuoteRow{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	qtx := s.quotes.WithTx(tx)
	if err := qtx.DeleteItems(ctx, id); err != nil {
		return repo.QuoteRow{}, err
	}
	for _, it := range items {
		it.QuoteID = id
		if err := qtx.InsertItem(ctx, it); err != nil {
			return repo.QuoteRow{}, err
		}
	}
	if err := qtx.UpdateTotals(ctx, id, subtotal, totalDiscount, totalCharge); err != nil {
		return repo.QuoteRow{}, err
	}
	updated, err := qtx.Get(ctx, id)
	if err != nil {
		return repo.QuoteRow{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return repo.QuoteRow{}, err
	}
	return updated, nil
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (repo.QuoteRow, error) {
	return s.quotes.Get(ctx, id)
}

func (s *PGStore) ListItems(ctx context.Context, quoteID uuid.UUID) ([]repo.QuoteItemRow, error) {
	return s.quotes.ListItems(ctx, quoteID)
}

func (s *PGStore) List(ctx context.Context, limit, offset int32) ([]repo.QuoteRow, error) {
	return s.quotes.List(ctx, limit, offset)
}

func (s *PGStore) Count(ctx context.Context) (int64, error) {
	return s.quotes.Count(ctx)
}

func (s *PGStore) NumbersForYear(ctx context.Context, year int) ([]string, error) {
	return s.quotes.NumbersForYear(ctx, year)
}

func (s *PGStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return s.quotes.UpdateStatus(ctx, id, status)
}

func (s *PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.quotes.Delete(ctx, id)
}
