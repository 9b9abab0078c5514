package invoice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/agrihover/backend-quote/internal/common"
	"github.com/agrihover/backend-quote/internal/invoice"
	"github.com/agrihover/backend-quote/internal/obs"
	"github.com/agrihover/backend-quote/internal/repo"
)

type fakeStore struct {
	invoices map[uuid.UUID]repo.InvoiceRow
}

func newFakeStore() *fakeStore {
	return &fakeStore{invoices: map[uuid.UUID]repo.InvoiceRow{}}
}

func (s *fakeStore) Create(_ context.Context, v repo.InvoiceRow) (repo.InvoiceRow, error) {
	v.ID = uuid.New()
	v.CreatedAt = time.Now()
	s.invoices[v.ID] = v
	return v, nil
}

func (s *fakeStore) Get(_ context.Context, id uuid.UUID) (repo.InvoiceRow, error) {
	v, ok := s.invoices[id]
	if !ok {
		return repo.InvoiceRow{}, pgx.ErrNoRows
	}
	return v, nil
}

func (s *fakeStore) List(context.Context, int32, int32) ([]repo.InvoiceRow, error) {
	var out []repo.InvoiceRow
	for _, v := range s.invoices {
		out = append(out, v)
	}
	return out, nil
}

func (s *fakeStore) Count(context.Context) (int64, error) {
	return int64(len(s.invoices)), nil
}

func (s *fakeStore) NumbersForYear(_ context.Context, year int) ([]string, error) {
	var out []string
	for _, v := range s.invoices {
		out = append(out, v.InvoiceNumber)
	}
	return out, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	v, ok := s.invoices[id]
	if !ok {
		return pgx.ErrNoRows
	}
	v.Status = status
	s.invoices[id] = v
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.invoices[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.invoices, id)
	return nil
}

type fakeQuotes struct {
	quotes map[uuid.UUID]repo.QuoteRow
}

func (q *fakeQuotes) Get(_ context.Context, id uuid.UUID) (repo.QuoteRow, error) {
	row, ok := q.quotes[id]
	if !ok {
		return repo.QuoteRow{}, pgx.ErrNoRows
	}
	return row, nil
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) (*invoice.Service, *fakeStore, uuid.UUID) {
	t.Helper()
	obs.MustRegisterDomainMetrics("agriquote_test", prometheus.NewRegistry())

	store := newFakeStore()
	quoteID := uuid.New()
	quotes := &fakeQuotes{quotes: map[uuid.UUID]repo.QuoteRow{
		quoteID: {
			ID:            quoteID,
			QuoteNumber:   "Q2026-0001",
			ClientID:      uuid.New(),
			Status:        "sent",
			Subtotal:      1200,
			TotalDiscount: 30,
			TotalCharge:   1170,
		},
	}}
	svc, err := invoice.NewService(invoice.ServiceConfig{
		Store:   store,
		Quotes:  quotes,
		DueDays: 30,
		Now:     func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return svc, store, quoteID
}

func TestIssueSnapshotsQuoteTotals(t *testing.T) {
	svc, _, quoteID := newFixture(t)

	created, err := svc.Issue(context.Background(), invoice.IssueInput{QuoteID: quoteID.String()})
	require.NoError(t, err)

	require.Equal(t, "INV2026-0001", created.InvoiceNumber)
	require.Equal(t, invoice.StatusDraft, created.Status)
	require.Equal(t, 1200.0, created.Subtotal)
	require.Equal(t, 30.0, created.TotalDiscount)
	require.Equal(t, 1170.0, created.TotalCharge)
	require.Equal(t, testNow, created.IssueDate)
	require.Equal(t, testNow.AddDate(0, 0, 30), created.DueDate)
}

func TestIssueUnknownQuote(t *testing.T) {
	svc, _, _ := newFixture(t)

	_, err := svc.Issue(context.Background(), invoice.IssueInput{QuoteID: uuid.NewString()})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "QUOTE_NOT_FOUND", appErr.Code)
}

func TestIssueRejectsDueBeforeIssue(t *testing.T) {
	svc, _, quoteID := newFixture(t)

	due := testNow.AddDate(0, 0, -1)
	_, err := svc.Issue(context.Background(), invoice.IssueInput{QuoteID: quoteID.String(), DueDate: &due})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestOverdueIsDerivedNotStored(t *testing.T) {
	svc, store, quoteID := newFixture(t)

	created, err := svc.Issue(context.Background(), invoice.IssueInput{QuoteID: quoteID.String()})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	sent, err := svc.UpdateStatus(context.Background(), id, invoice.StatusSent)
	require.NoError(t, err)
	require.Equal(t, invoice.StatusSent, sent.Status)

	// Push the due date into the past; the stored status stays "sent" but
	// reads report overdue.
	row := store.invoices[id]
	row.DueDate = testNow.AddDate(0, 0, -1)
	store.invoices[id] = row

	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, invoice.StatusOverdue, got.Status)
	require.Equal(t, invoice.StatusSent, store.invoices[id].Status)

	// Paying clears the derived overdue.
	paid, err := svc.UpdateStatus(context.Background(), id, invoice.StatusPaid)
	require.NoError(t, err)
	require.Equal(t, invoice.StatusPaid, paid.Status)
}

func TestUpdateStatusRejectsOverdue(t *testing.T) {
	svc, _, quoteID := newFixture(t)

	created, err := svc.Issue(context.Background(), invoice.IssueInput{QuoteID: quoteID.String()})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), uuid.MustParse(created.ID), invoice.StatusOverdue)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestIssueNumbersFillGaps(t *testing.T) {
	svc, store, quoteID := newFixture(t)

	for _, n := range []string{"INV2026-0001", "INV2026-0003"} {
		id := uuid.New()
		store.invoices[id] = repo.InvoiceRow{ID: id, InvoiceNumber: n}
	}
	created, err := svc.Issue(context.Background(), invoice.IssueInput{QuoteID: quoteID.String()})
	require.NoError(t, err)
	require.Equal(t, "INV2026-0002", created.InvoiceNumber)
}
