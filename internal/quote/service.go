package quote

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agrihover/backend-quote/internal/common"
	"github.com/agrihover/backend-quote/internal/obs"
	"github.com/agrihover/backend-quote/internal/pricing"
	"github.com/agrihover/backend-quote/internal/repo"
)

// Statuses a quote moves through, in order.
const (
	StatusDraft = "draft"
	StatusSent  = "sent"
	StatusPaid  = "paid"
)

var statusRank = map[string]int{StatusDraft: 0, StatusSent: 1, StatusPaid: 2}

// Store defines the persistence operations the quote service relies on.
// Multi-row writes are transactional behind this interface.
type Store interface {
	CreateWithItems(ctx context.Context, q repo.QuoteRow, items []repo.QuoteItemRow) (repo.QuoteRow, error)
	ReplaceItems(ctx context.Context, id uuid.UUID, items []repo.QuoteItemRow, subtotal, totalDiscount, totalCharge float64) (repo.QuoteRow, error)
	Get(ctx context.Context, id uuid.UUID) (repo.QuoteRow, error)
	ListItems(ctx context.Context, quoteID uuid.UUID) ([]repo.QuoteItemRow, error)
	List(ctx context.Context, limit, offset int32) ([]repo.QuoteRow, error)
	Count(ctx context.Context) (int64, error)
	NumbersForYear(ctx context.Context, year int) ([]string, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductSource resolves product pricing configuration for line recomputation.
type ProductSource interface {
	PricingConfig(ctx context.Context, id uuid.UUID) (pricing.ProductConfig, repo.ProductRow, error)
}

// ClientSource verifies the quoted client exists.
type ClientSource interface {
	Get(ctx context.Context, id uuid.UUID) (repo.ClientRow, error)
}

// ItemInput is one requested quote line. Any client-side calculation is
// ignored; the server recomputes every line from the catalog.
type ItemInput struct {
	ProductID  string   `json:"productId" validate:"required,uuid"`
	Quantity   float64  `json:"quantity" validate:"gt=0"`
	Selected   *bool    `json:"selected"`
	Speed      *float64 `json:"speed" validate:"omitempty,gt=0"`
	FlowRate   *float64 `json:"flowRate" validate:"omitempty,gt=0"`
	SprayWidth *float64 `json:"sprayWidth" validate:"omitempty,gt=0"`
}

// CreateInput captures the POST quote payload.
type CreateInput struct {
	ClientID string      `json:"clientId" validate:"required,uuid"`
	Items    []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateInput captures the PUT quote payload: a full item replacement.
type UpdateInput struct {
	Items []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// Item is the API representation of a priced quote line.
type Item struct {
	ID             string   `json:"id,omitempty"`
	ProductID      string   `json:"productId"`
	ProductName    string   `json:"productName,omitempty"`
	Quantity       float64  `json:"quantity"`
	Speed          *float64 `json:"speed,omitempty"`
	FlowRate       *float64 `json:"flowRate,omitempty"`
	SprayWidth     *float64 `json:"sprayWidth,omitempty"`
	AppRate        *float64 `json:"appRate,omitempty"`
	AppliedRate    float64  `json:"appliedRate"`
	Subtotal       float64  `json:"subtotal"`
	DiscountAmount float64  `json:"discountAmount"`
	Total          float64  `json:"total"`
}

// Quote is the API representation of a quote with its lines and totals.
type Quote struct {
	ID            string    `json:"id"`
	QuoteNumber   string    `json:"quoteNumber"`
	ClientID      string    `json:"clientId"`
	ClientName    string    `json:"clientName"`
	Status        string    `json:"status"`
	Items         []Item    `json:"items,omitempty"`
	Subtotal      float64   `json:"subtotal"`
	TotalDiscount float64   `json:"totalDiscount"`
	TotalCharge   float64   `json:"totalCharge"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Service orchestrates quote creation, recomputation, and lifecycle.
type Service struct {
	store    Store
	products ProductSource
	clients  ClientSource
	validate *validator.Validate
	now      func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store    Store
	Products ProductSource
	Clients  ClientSource
	Now      func() time.Time
}

// NewService constructs a quote service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil || cfg.Products == nil || cfg.Clients == nil {
		return nil, errors.New("quote: store, products, and clients are required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    cfg.Store,
		products: cfg.Products,
		clients:  cfg.Clients,
		validate: validator.New(),
		now:      now,
	}, nil
}

// Create prices the requested lines and persists the quote atomically.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (Quote, error) {
	if err := s.validate.Struct(in); err != nil {
		return Quote{}, common.NewAppError("VALIDATION_ERROR", "invalid quote payload", http.StatusUnprocessableEntity, err)
	}
	clientID, err := uuid.Parse(in.ClientID)
	if err != nil {
		return Quote{}, common.NewAppError("VALIDATION_ERROR", "invalid clientId", http.StatusUnprocessableEntity, err)
	}
	if _, err := s.clients.Get(ctx, clientID); err != nil {
		if repo.IsNotFound(err) {
			return Quote{}, common.NewAppError("CLIENT_NOT_FOUND", "client not found", http.StatusNotFound, err)
		}
		return Quote{}, err
	}

	rows, totals, err := s.priceItems(ctx, in.Items)
	if err != nil {
		return Quote{}, err
	}

	year := s.now().Year()
	numbers, err := s.store.NumbersForYear(ctx, year)
	if err != nil {
		return Quote{}, err
	}
	header := repo.QuoteRow{
		QuoteNumber:   common.NextDocNumber("Q", year, numbers),
		UserID:        userID,
		ClientID:      clientID,
		Status:        StatusDraft,
		Subtotal:      totals.Subtotal,
		TotalDiscount: totals.TotalDiscount,
		TotalCharge:   totals.TotalCharge,
	}
	created, err := s.store.CreateWithItems(ctx, header, rows)
	if err != nil {
		return Quote{}, err
	}
	obs.QuoteCreatedTotal.WithLabelValues(created.Status).Inc()
	return s.withItems(ctx, created)
}

// Update replaces a quote's lines, reprices them, and re-aggregates totals.
// Only draft quotes may be edited.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Quote, error) {
	if err := s.validate.Struct(in); err != nil {
		return Quote{}, common.NewAppError("VALIDATION_ERROR", "invalid quote payload", http.StatusUnprocessableEntity, err)
	}
	existing, err := s.get(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	if existing.Status != StatusDraft {
		return Quote{}, common.NewAppError("QUOTE_LOCKED", "only draft quotes can be edited", http.StatusConflict, nil)
	}

	rows, totals, err := s.priceItems(ctx, in.Items)
	if err != nil {
		return Quote{}, err
	}
	updated, err := s.store.ReplaceItems(ctx, id, rows, totals.Subtotal, totals.TotalDiscount, totals.TotalCharge)
	if err != nil {
		return Quote{}, err
	}
	return s.withItems(ctx, updated)
}

// Get returns a quote with its lines.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Quote, error) {
	row, err := s.get(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	return s.withItems(ctx, row)
}

// List returns quote headers newest first, with total count.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Quote, int64, error) {
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
	out := make([]Quote, 0, len(rows))
	for _, row := range rows {
		out = append(out, convertHeader(row))
	}
	return out, total, nil
}

// UpdateStatus advances a quote through draft, sent, paid. Moving backwards is
// rejected.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Quote, error) {
	rank, ok := statusRank[status]
	if !ok {
		return Quote{}, common.NewAppError("VALIDATION_ERROR", "status must be draft, sent, or paid", http.StatusUnprocessableEntity, nil)
	}
	existing, err := s.get(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	if rank < statusRank[existing.Status] {
		return Quote{}, common.NewAppError("INVALID_STATUS", "quote status cannot move backwards", http.StatusConflict, nil)
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		if repo.IsNotFound(err) {
			return Quote{}, common.NewAppError("QUOTE_NOT_FOUND", "quote not found", http.StatusNotFound, err)
		}
		return Quote{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a quote and its lines.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return common.NewAppError("QUOTE_NOT_FOUND", "quote not found", http.StatusNotFound, err)
		}
		return err
	}
	return nil
}

// priceItems recomputes every requested line with the pricing engine and
// aggregates totals. Unselected lines count for nothing and are not persisted.
func (s *Service) priceItems(ctx context.Context, items []ItemInput) ([]repo.QuoteItemRow, pricing.QuoteTotals, error) {
	var rows []repo.QuoteItemRow
	var agg []pricing.QuoteItem
	for _, in := range items {
		selected := in.Selected == nil || *in.Selected
		if !selected {
			agg = append(agg, pricing.QuoteItem{Selected: false, Quantity: in.Quantity})
			continue
		}
		productID, err := uuid.Parse(in.ProductID)
		if err != nil {
			return nil, pricing.QuoteTotals{}, common.NewAppError("VALIDATION_ERROR", "invalid productId", http.StatusUnprocessableEntity, err)
		}
		cfg, product, err := s.products.PricingConfig(ctx, productID)
		if err != nil {
			return nil, pricing.QuoteTotals{}, err
		}
		if !product.IsActive {
			return nil, pricing.QuoteTotals{}, common.NewAppError("PRODUCT_INACTIVE", "product is no longer offered: "+product.Name, http.StatusUnprocessableEntity, nil)
		}

		var params *pricing.SprayParams
		if in.Speed != nil && in.FlowRate != nil && in.SprayWidth != nil {
			params = &pricing.SprayParams{Speed: *in.Speed, FlowRate: *in.FlowRate, SprayWidth: *in.SprayWidth}
		}
		calc := pricing.CalculateProductCost(cfg, in.Quantity, params)
		obs.PricingCalcTotal.WithLabelValues(string(cfg.PricingType), "ok").Inc()

		rows = append(rows, repo.QuoteItemRow{
			ProductID:      productID,
			Quantity:       in.Quantity,
			Speed:          in.Speed,
			FlowRate:       in.FlowRate,
			SprayWidth:     in.SprayWidth,
			AppRate:        calc.AppRate,
			AppliedRate:    calc.AppliedRate,
			Subtotal:       calc.Subtotal,
			DiscountAmount: calc.DiscountAmount,
			Total:          calc.Total,
		})
		agg = append(agg, pricing.QuoteItem{Selected: true, Quantity: in.Quantity, Calculation: &calc})
	}
	return rows, pricing.AggregateQuote(agg), nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (repo.QuoteRow, error) {
	row, err := s.store.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return repo.QuoteRow{}, common.NewAppError("QUOTE_NOT_FOUND", "quote not found", http.StatusNotFound, err)
		}
		return repo.QuoteRow{}, err
	}
	return row, nil
}

func (s *Service) withItems(ctx context.Context, row repo.QuoteRow) (Quote, error) {
	items, err := s.store.ListItems(ctx, row.ID)
	if err != nil {
		return Quote{}, err
	}
	out := convertHeader(row)
	out.Items = make([]Item, 0, len(items))
	for _, it := range items {
		out.Items = append(out.Items, Item{
			ID:             it.ID.String(),
			ProductID:      it.ProductID.String(),
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			Speed:          it.Speed,
			FlowRate:       it.FlowRate,
			SprayWidth:     it.SprayWidth,
			AppRate:        it.AppRate,
			AppliedRate:    it.AppliedRate,
			Subtotal:       it.Subtotal,
			DiscountAmount: it.DiscountAmount,
			Total:          it.Total,
		})
	}
	return out, nil
}

func convertHeader(row repo.QuoteRow) Quote {
	return Quote{
		ID:            row.ID.String(),
		QuoteNumber:   row.QuoteNumber,
		ClientID:      row.ClientID.String(),
		ClientName:    row.ClientName,
		Status:        row.Status,
		Subtotal:      row.Subtotal,
		TotalDiscount: row.TotalDiscount,
		TotalCharge:   row.TotalCharge,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
