package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agrihover/backend-quote/internal/common"
	"github.com/agrihover/backend-quote/internal/pricing"
	"github.com/agrihover/backend-quote/internal/repo"
)

// Store defines the persistence operations the catalog service relies on.
type Store interface {
	Create(ctx context.Context, p repo.ProductRow) (repo.ProductRow, error)
	Update(ctx context.Context, p repo.ProductRow) (repo.ProductRow, error)
	Get(ctx context.Context, id uuid.UUID) (repo.ProductRow, error)
	List(ctx context.Context, onlyActive bool) ([]repo.ProductRow, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceTiers(ctx context.Context, productID uuid.UUID, tiers []repo.TierRow) error
	ListTiers(ctx context.Context, productID uuid.UUID) ([]repo.TierRow, error)
	ListCategories(ctx context.Context) ([]repo.CategoryRow, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (repo.CategoryRow, error)
	GetCategoryByName(ctx context.Context, name string) (repo.CategoryRow, error)
}

// Service orchestrates product catalog authoring and lookup.
type Service struct {
	store    Store
	cache    *Cache
	validate *validator.Validate
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store Store
	Cache *Cache
}

// Product is the API representation of a catalog product.
type Product struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	SKU               string              `json:"sku"`
	Category          string              `json:"category"`
	CategoryID        string              `json:"categoryId"`
	PricingType       string              `json:"pricingType"`
	BaseRate          *float64            `json:"baseRate,omitempty"`
	Tiers             []pricing.TierPoint `json:"tiers,omitempty"`
	DiscountThreshold float64             `json:"discountThreshold"`
	DiscountRate      float64             `json:"discountRate"`
	Unit              string              `json:"unit"`
	Description       string              `json:"description,omitempty"`
	IsActive          bool                `json:"isActive"`
	CreatedAt         time.Time           `json:"createdAt"`
}

// ProductInput captures the payload for creating or updating a product.
// Category accepts either the canonical name or a category id; it is
// normalised once here so downstream code only sees the resolved row.
type ProductInput struct {
	Name              string              `json:"name" validate:"required"`
	SKU               string              `json:"sku"`
	Category          string              `json:"category" validate:"required"`
	PricingType       string              `json:"pricingType" validate:"required,oneof=flat per_km tiered"`
	BaseRate          *float64            `json:"baseRate" validate:"omitempty,gte=0"`
	Tiers             []pricing.TierPoint `json:"tiers"`
	DiscountThreshold float64             `json:"discountThreshold" validate:"gte=0"`
	DiscountRate      float64             `json:"discountRate" validate:"gte=0,lte=1"`
	Unit              string              `json:"unit"`
	Description       string              `json:"description"`
	IsActive          *bool               `json:"isActive"`
}

// Category is the public category payload.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	return &Service{
		store:    cfg.Store,
		cache:    cfg.Cache,
		validate: validator.New(),
	}, nil
}

// CategoryRef is a category reference that may arrive as a canonical name or
// as a category id, depending on which client produced it.
type CategoryRef struct {
	Name string
	ID   uuid.UUID
	ByID bool
}

// ParseCategoryRef classifies a raw category reference.
func ParseCategoryRef(raw string) (CategoryRef, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return CategoryRef{}, errors.New("catalog: empty category reference")
	}
	if id, err := uuid.Parse(trimmed); err == nil {
		return CategoryRef{ID: id, ByID: true}, nil
	}
	return CategoryRef{Name: strings.ToLower(trimmed)}, nil
}

// ResolveCategoryRef normalises a category reference against the store.
func (s *Service) ResolveCategoryRef(ctx context.Context, raw string) (repo.CategoryRow, error) {
	ref, err := ParseCategoryRef(raw)
	if err != nil {
		return repo.CategoryRow{}, common.NewAppError("VALIDATION_ERROR", "category is required", http.StatusUnprocessableEntity, err)
	}
	var row repo.CategoryRow
	if ref.ByID {
		row, err = s.store.GetCategoryByID(ctx, ref.ID)
	} else {
		row, err = s.store.GetCategoryByName(ctx, ref.Name)
	}
	if err != nil {
		if repo.IsNotFound(err) {
			return repo.CategoryRow{}, common.NewAppError("CATEGORY_NOT_FOUND", "unknown category", http.StatusUnprocessableEntity, err)
		}
		return repo.CategoryRow{}, err
	}
	return row, nil
}

// CreateProduct validates and persists a new product with its tiers.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	normalized, category, err := s.normalizeInput(ctx, in)
	if err != nil {
		return Product{}, err
	}
	row, err := s.store.Create(ctx, normalized)
	if err != nil {
		if repo.IsUniqueViolation(err) {
			return Product{}, common.NewAppError("SKU_TAKEN", "a product with this SKU already exists", http.StatusConflict, err)
		}
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	if len(in.Tiers) > 0 {
		if err := s.store.ReplaceTiers(ctx, row.ID, tierRows(row.ID, in.Tiers)); err != nil {
			return Product{}, fmt.Errorf("store tiers: %w", err)
		}
	}
	s.invalidate(ctx, row.ID)
	return s.assemble(ctx, row, category)
}

// UpdateProduct validates and overwrites an existing product.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (Product, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return Product{}, common.NewAppError("PRODUCT_NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return Product{}, err
	}
	normalized, category, err := s.normalizeInput(ctx, in)
	if err != nil {
		return Product{}, err
	}
	normalized.ID = id
	row, err := s.store.Update(ctx, normalized)
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	if err := s.store.ReplaceTiers(ctx, row.ID, tierRows(row.ID, in.Tiers)); err != nil {
		return Product{}, fmt.Errorf("store tiers: %w", err)
	}
	s.invalidate(ctx, row.ID)
	return s.assemble(ctx, row, category)
}

// GetProduct returns a single product with tiers, via cache when available.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	key := productDetailKey(id.String())
	var cached Product
	if ok, _ := s.cache.GetJSON(ctx, key, &cached); ok {
		return cached, nil
	}
	row, err := s.store.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return Product{}, common.NewAppError("PRODUCT_NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return Product{}, err
	}
	category, err := s.store.GetCategoryByID(ctx, row.CategoryID)
	if err != nil {
		return Product{}, err
	}
	product, err := s.assemble(ctx, row, category)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.SetJSON(ctx, key, product)
	return product, nil
}

// ListProducts returns the catalog, via cache when available.
func (s *Service) ListProducts(ctx context.Context, onlyActive bool) ([]Product, error) {
	key := productListKey(onlyActive)
	var cached []Product
	if ok, _ := s.cache.GetJSON(ctx, key, &cached); ok {
		return cached, nil
	}
	rows, err := s.store.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoriesByID(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		product, err := s.assemble(ctx, row, categories[row.CategoryID])
		if err != nil {
			return nil, err
		}
		out = append(out, product)
	}
	_ = s.cache.SetJSON(ctx, key, out)
	return out, nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return common.NewAppError("PRODUCT_NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, Category{
			ID:          row.ID.String(),
			Name:        row.Name,
			Label:       row.Label,
			Description: row.Description,
		})
	}
	return out, nil
}

// PricingConfig loads a product's pricing configuration for the engine.
func (s *Service) PricingConfig(ctx context.Context, id uuid.UUID) (pricing.ProductConfig, repo.ProductRow, error) {
	row, err := s.store.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return pricing.ProductConfig{}, repo.ProductRow{}, common.NewAppError("PRODUCT_NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return pricing.ProductConfig{}, repo.ProductRow{}, err
	}
	category, err := s.store.GetCategoryByID(ctx, row.CategoryID)
	if err != nil {
		return pricing.ProductConfig{}, repo.ProductRow{}, err
	}
	tiers, err := s.store.ListTiers(ctx, row.ID)
	if err != nil {
		return pricing.ProductConfig{}, repo.ProductRow{}, err
	}
	cfg := pricing.ProductConfig{
		Category:          pricing.Category(category.Name),
		PricingType:       pricing.PricingType(row.PricingType),
		Tiers:             tierPoints(tiers),
		DiscountThreshold: row.DiscountThreshold,
		DiscountRate:      row.DiscountRate,
	}
	if row.BaseRate != nil {
		cfg.BaseRate = *row.BaseRate
	}
	return cfg, row, nil
}

func (s *Service) normalizeInput(ctx context.Context, in ProductInput) (repo.ProductRow, repo.CategoryRow, error) {
	if err := s.validate.Struct(in); err != nil {
		return repo.ProductRow{}, repo.CategoryRow{}, common.NewAppError("VALIDATION_ERROR", "invalid product payload", http.StatusUnprocessableEntity, err)
	}
	category, err := s.ResolveCategoryRef(ctx, in.Category)
	if err != nil {
		return repo.ProductRow{}, repo.CategoryRow{}, err
	}
	cat := pricing.Category(category.Name)
	pt := pricing.PricingType(in.PricingType)
	if err := validatePricingShape(cat, pt, in); err != nil {
		return repo.ProductRow{}, repo.CategoryRow{}, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	row := repo.ProductRow{
		Name:              strings.TrimSpace(in.Name),
		SKU:               strings.ToUpper(strings.TrimSpace(in.SKU)),
		CategoryID:        category.ID,
		PricingType:       string(pt),
		BaseRate:          in.BaseRate,
		DiscountThreshold: in.DiscountThreshold,
		DiscountRate:      in.DiscountRate,
		Unit:              strings.TrimSpace(in.Unit),
		Description:       strings.TrimSpace(in.Description),
		IsActive:          active,
	}
	if row.SKU == "" {
		row.SKU = GenerateSKU(cat, row.Name)
	}
	if row.Unit == "" {
		row.Unit = UnitForCategory(cat, pt)
	}
	return row, category, nil
}

// validatePricingShape enforces the authoring rules that the pricing engine
// itself deliberately degrades on instead of rejecting.
func validatePricingShape(cat pricing.Category, pt pricing.PricingType, in ProductInput) error {
	if !cat.Valid() {
		return common.NewAppError("VALIDATION_ERROR", "unknown category", http.StatusUnprocessableEntity, nil)
	}
	switch pt {
	case pricing.PricingFlat, pricing.PricingPerKm:
		if in.BaseRate == nil {
			return common.NewAppError("VALIDATION_ERROR", "baseRate is required for flat and per_km pricing", http.StatusUnprocessableEntity, nil)
		}
	case pricing.PricingTiered:
		if len(in.Tiers) == 0 {
			return common.NewAppError("VALIDATION_ERROR", "at least one tier is required for tiered pricing", http.StatusUnprocessableEntity, nil)
		}
		for i, t := range in.Tiers {
			if t.Threshold <= 0 {
				return common.NewAppError("VALIDATION_ERROR", "tier thresholds must be positive", http.StatusUnprocessableEntity, nil)
			}
			if i > 0 && t.Threshold <= in.Tiers[i-1].Threshold {
				return common.NewAppError("VALIDATION_ERROR", "tier thresholds must be strictly ascending", http.StatusUnprocessableEntity, nil)
			}
		}
	}
	return nil
}

func (s *Service) assemble(ctx context.Context, row repo.ProductRow, category repo.CategoryRow) (Product, error) {
	tiers, err := s.store.ListTiers(ctx, row.ID)
	if err != nil {
		return Product{}, err
	}
	return Product{
		ID:                row.ID.String(),
		Name:              row.Name,
		SKU:               row.SKU,
		Category:          category.Name,
		CategoryID:        category.ID.String(),
		PricingType:       row.PricingType,
		BaseRate:          row.BaseRate,
		Tiers:             tierPoints(tiers),
		DiscountThreshold: row.DiscountThreshold,
		DiscountRate:      row.DiscountRate,
		Unit:              row.Unit,
		Description:       row.Description,
		IsActive:          row.IsActive,
		CreatedAt:         row.CreatedAt,
	}, nil
}

func (s *Service) categoriesByID(ctx context.Context) (map[uuid.UUID]repo.CategoryRow, error) {
	rows, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]repo.CategoryRow, len(rows))
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	_ = s.cache.Delete(ctx,
		productListKey(true), productListKey(false), productDetailKey(id.String()))
}

func tierRows(productID uuid.UUID, tiers []pricing.TierPoint) []repo.TierRow {
	out := make([]repo.TierRow, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, repo.TierRow{ProductID: productID, Threshold: t.Threshold, Rate: t.Rate})
	}
	return out
}

func tierPoints(rows []repo.TierRow) []pricing.TierPoint {
	if len(rows) == 0 {
		return nil
	}
	out := make([]pricing.TierPoint, 0, len(rows))
	for _, row := range rows {
		out = append(out, pricing.TierPoint{Threshold: row.Threshold, Rate: row.Rate})
	}
	return out
}
