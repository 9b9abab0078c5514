package invoice

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agrihover/backend-quote/internal/common"
	"github.com/agrihover/backend-quote/internal/obs"
	"github.com/agrihover/backend-quote/internal/repo"
)

// Statuses an invoice can hold. Overdue is never stored: it is derived from
// the due date whenever an unpaid invoice is read.
const (
	StatusDraft   = "draft"
	StatusSent    = "sent"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

var storable = map[string]bool{StatusDraft: true, StatusSent: true, StatusPaid: true}

// Store defines the persistence operations the invoice service relies on.
type Store interface {
	Create(ctx context.Context, v repo.InvoiceRow) (repo.InvoiceRow, error)
	Get(ctx context.Context, id uuid.UUID) (repo.InvoiceRow, error)
	List(ctx context.Context, limit, offset int32) ([]repo.InvoiceRow, error)
	Count(ctx context.Context) (int64, error)
	NumbersForYear(ctx context.Context, year int) ([]string, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuoteSource resolves the quote an invoice snapshots.
type QuoteSource interface {
	Get(ctx context.Context, id uuid.UUID) (repo.QuoteRow, error)
}

// Invoice is the API representation of an issued invoice.
type Invoice struct {
	ID            string    `json:"id"`
	InvoiceNumber string    `json:"invoiceNumber"`
	QuoteID       string    `json:"quoteId"`
	ClientID      string    `json:"clientId"`
	ClientName    string    `json:"clientName"`
	IssueDate     time.Time `json:"issueDate"`
	DueDate       time.Time `json:"dueDate"`
	Status        string    `json:"status"`
	Subtotal      float64   `json:"subtotal"`
	TotalDiscount float64   `json:"totalDiscount"`
	TotalCharge   float64   `json:"totalCharge"`
	CreatedAt     time.Time `json:"createdAt"`
}

// IssueInput captures the POST invoice payload.
type IssueInput struct {
	QuoteID   string     `json:"quoteId"`
	IssueDate *time.Time `json:"issueDate"`
	DueDate   *time.Time `json:"dueDate"`
}

// Service orchestrates invoice issuing and lifecycle.
type Service struct {
	store   Store
	quotes  QuoteSource
	dueDays int
	now     func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store   Store
	Quotes  QuoteSource
	DueDays int
	Now     func() time.Time
}

// NewService constructs an invoice service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil || cfg.Quotes == nil {
		return nil, errors.New("invoice: store and quotes are required")
	}
	dueDays := cfg.DueDays
	if dueDays <= 0 {
		dueDays = 30
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{store: cfg.Store, quotes: cfg.Quotes, dueDays: dueDays, now: now}, nil
}

// Issue creates an invoice from a quote, snapshotting its totals so later
// quote edits never change what was billed.
func (s *Service) Issue(ctx context.Context, in IssueInput) (Invoice, error) {
	quoteID, err := uuid.Parse(in.QuoteID)
	if err != nil {
		return Invoice{}, common.NewAppError("VALIDATION_ERROR", "invalid quoteId", http.StatusUnprocessableEntity, err)
	}
	q, err := s.quotes.Get(ctx, quoteID)
	if err != nil {
		if repo.IsNotFound(err) {
			return Invoice{}, common.NewAppError("QUOTE_NOT_FOUND", "quote not found", http.StatusNotFound, err)
		}
		return Invoice{}, err
	}

	issueDate := s.now()
	if in.IssueDate != nil {
		issueDate = *in.IssueDate
	}
	dueDate := issueDate.AddDate(0, 0, s.dueDays)
	if in.DueDate != nil {
		dueDate = *in.DueDate
	}
	if dueDate.Before(issueDate) {
		return Invoice{}, common.NewAppError("VALIDATION_ERROR", "dueDate must not be before issueDate", http.StatusUnprocessableEntity, nil)
	}

	year := issueDate.Year()
	numbers, err := s.store.NumbersForYear(ctx, year)
	if err != nil {
		return Invoice{}, err
	}
	created, err := s.store.Create(ctx, repo.InvoiceRow{
		InvoiceNumber: common.NextDocNumber("INV", year, numbers),
		QuoteID:       q.ID,
		ClientID:      q.ClientID,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Status:        StatusDraft,
		Subtotal:      q.Subtotal,
		TotalDiscount: q.TotalDiscount,
		TotalCharge:   q.TotalCharge,
	})
	if err != nil {
		return Invoice{}, err
	}
	obs.InvoiceIssuedTotal.WithLabelValues(created.Status).Inc()
	return s.convert(created), nil
}

// Get returns a single invoice.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Invoice, error) {
	row, err := s.store.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return Invoice{}, common.NewAppError("INVOICE_NOT_FOUND", "invoice not found", http.StatusNotFound, err)
		}
		return Invoice{}, err
	}
	return s.convert(row), nil
}

// List returns invoices newest first, with total count.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Invoice, int64, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	rows, err := s.store.List(ctx, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	out := make([]Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.convert(row))
	}
	return out, total, nil
}

// UpdateStatus stores a new invoice status. Overdue cannot be set directly.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Invoice, error) {
	if !storable[status] {
		return Invoice{}, common.NewAppError("VALIDATION_ERROR", "status must be draft, sent, or paid", http.StatusUnprocessableEntity, nil)
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		if repo.IsNotFound(err) {
			return Invoice{}, common.NewAppError("INVOICE_NOT_FOUND", "invoice not found", http.StatusNotFound, err)
		}
		return Invoice{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes an invoice.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return common.NewAppError("INVOICE_NOT_FOUND", "invoice not found", http.StatusNotFound, err)
		}
		return err
	}
	return nil
}

func (s *Service) convert(row repo.InvoiceRow) Invoice {
	status := row.Status
	if status == StatusSent && s.now().After(row.DueDate) {
		status = StatusOverdue
	}
	return Invoice{
		ID:            row.ID.String(),
		InvoiceNumber: row.InvoiceNumber,
		QuoteID:       row.QuoteID.String(),
		ClientID:      row.ClientID.String(),
		ClientName:    row.ClientName,
		IssueDate:     row.IssueDate,
		DueDate:       row.DueDate,
		Status:        status,
		Subtotal:      row.Subtotal,
		TotalDiscount: row.TotalDiscount,
		TotalCharge:   row.TotalCharge,
		CreatedAt:     row.CreatedAt,
	}
}
