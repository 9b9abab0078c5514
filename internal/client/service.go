package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agrihover/backend-quote/internal/common"
	"github.com/agrihover/backend-quote/internal/repo"
)

// Store defines the persistence operations the client service relies on.
type Store interface {
	Create(ctx context.Context, c repo.ClientRow) (repo.ClientRow, error)
	Update(ctx context.Context, c repo.ClientRow) (repo.ClientRow, error)
	Get(ctx context.Context, id uuid.UUID) (repo.ClientRow, error)
	List(ctx context.Context, search string, limit, offset int32) ([]repo.ClientRow, error)
	Count(ctx context.Context, search string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Client is the API representation of a farm client.
type Client struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	FarmSizeHa    *float64  `json:"farmSizeHa,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Input captures payload for creating or updating a client.
type Input struct {
	Name          string   `json:"name" validate:"required"`
	ContactPerson string   `json:"contactPerson"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	FarmSizeHa    *float64 `json:"farmSizeHa" validate:"omitempty,gt=0"`
	Notes         string   `json:"notes"`
}

// ListParams captures filters for client listing.
type ListParams struct {
	Search string
	Page   int
	Limit  int
}

// Service orchestrates client book operations.
type Service struct {
	store    Store
	validate *validator.Validate
}

// NewService constructs a client service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("client: store is required")
	}
	return &Service{store: store, validate: validator.New()}, nil
}

// Create inserts a new client.
func (s *Service) Create(ctx context.Context, in Input) (Client, error) {
	row, err := s.normalize(in)
	if err != nil {
		return Client{}, err
	}
	created, err := s.store.Create(ctx, row)
	if err != nil {
		return Client{}, err
	}
	return convert(created), nil
}

// Update overwrites an existing client.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (Client, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return Client{}, common.NewAppError("CLIENT_NOT_FOUND", "client not found", http.StatusNotFound, err)
		}
		return Client{}, err
	}
	row, err := s.normalize(in)
	if err != nil {
		return Client{}, err
	}
	row.ID = id
	updated, err := s.store.Update(ctx, row)
	if err != nil {
		return Client{}, err
	}
	return convert(updated), nil
}

// Get fetches a single client.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Client, error) {
	row, err := s.store.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return Client{}, common.NewAppError("CLIENT_NOT_FOUND", "client not found", http.StatusNotFound, err)
		}
		return Client{}, err
	}
	return convert(row), nil
}

// List returns clients matching the search filter, with total count.
func (s *Service) List(ctx context.Context, p ListParams) ([]Client, int64, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	search := strings.TrimSpace(p.Search)
	rows, err := s.store.List(ctx, search, int32(p.Limit), int32((p.Page-1)*p.Limit))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Count(ctx, search)
	if err != nil {
		return nil, 0, err
	}
	out := make([]Client, 0, len(rows))
	for _, row := range rows {
		out = append(out, convert(row))
	}
	return out, total, nil
}

// Delete removes a client. Clients referenced by quotes keep their foreign
// key, so the database rejects the delete and we surface a conflict.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.Delete(ctx, id)
	if err == nil {
		return nil
	}
	if repo.IsNotFound(err) {
		return common.NewAppError("CLIENT_NOT_FOUND", "client not found", http.StatusNotFound, err)
	}
	if repo.IsForeignKeyViolation(err) {
		return common.NewAppError("CLIENT_IN_USE", "client has quotes or invoices and cannot be deleted", http.StatusConflict, err)
	}
	return err
}

func (s *Service) normalize(in Input) (repo.ClientRow, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return repo.ClientRow{}, common.NewAppError("VALIDATION_ERROR", "invalid client payload", http.StatusUnprocessableEntity, err)
	}
	return repo.ClientRow{
		Name:          in.Name,
		ContactPerson: strings.TrimSpace(in.ContactPerson),
		Email:         in.Email,
		Phone:         strings.TrimSpace(in.Phone),
		Address:       strings.TrimSpace(in.Address),
		FarmSizeHa:    in.FarmSizeHa,
		Notes:         strings.TrimSpace(in.Notes),
	}, nil
}

func convert(row repo.ClientRow) Client {
	return Client{
		ID:            row.ID.String(),
		Name:          row.Name,
		ContactPerson: row.ContactPerson,
		Email:         row.Email,
		Phone:         row.Phone,
		Address:       row.Address,
		FarmSizeHa:    row.FarmSizeHa,
		Notes:         row.Notes,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
