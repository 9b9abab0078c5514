package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/agrihover/backend-quote/internal/client"
	"github.com/agrihover/backend-quote/internal/common"
	"github.com/agrihover/backend-quote/internal/repo"
)

type fakeStore struct {
	clients map[uuid.UUID]repo.ClientRow
}

func newFakeStore() *fakeStore {
	return &fakeStore{clients: map[uuid.UUID]repo.ClientRow{}}
}

func (s *fakeStore) Create(_ context.Context, c repo.ClientRow) (repo.ClientRow, error) {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	s.clients[c.ID] = c
	return c, nil
}

func (s *fakeStore) Update(_ context.Context, c repo.ClientRow) (repo.ClientRow, error) {
	existing, ok := s.clients[c.ID]
	if !ok {
		return repo.ClientRow{}, pgx.ErrNoRows
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	s.clients[c.ID] = c
	return c, nil
}

func (s *fakeStore) Get(_ context.Context, id uuid.UUID) (repo.ClientRow, error) {
	c, ok := s.clients[id]
	if !ok {
		return repo.ClientRow{}, pgx.ErrNoRows
	}
	return c, nil
}

func (s *fakeStore) matches(c repo.ClientRow, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(c.Name), needle) ||
		strings.Contains(strings.ToLower(c.ContactPerson), needle)
}

func (s *fakeStore) List(_ context.Context, search string, limit, offset int32) ([]repo.ClientRow, error) {
	var all []repo.ClientRow
	for _, c := range s.clients {
		if s.matches(c, search) {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	if int(offset) >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if int(limit) < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *fakeStore) Count(_ context.Context, search string) (int64, error) {
	var n int64
	for _, c := range s.clients {
		if s.matches(c, search) {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.clients[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.clients, id)
	return nil
}

type clientResponse struct {
	Data client.Client `json:"data"`
}

type clientsResponse struct {
	Data       []client.Client   `json:"data"`
	Pagination common.Pagination `json:"pagination"`
}

func newTestHandler(t *testing.T) (*client.Handler, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc, err := client.NewService(store)
	require.NoError(t, err)
	return client.NewHandler(svc), store
}

func doJSON(t *testing.T, h http.HandlerFunc, method, target string, body any, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateClient(t *testing.T) {
	handler, _ := newTestHandler(t)

	farm := 120.0
	in := client.Input{
		Name:          "Môrester Boerdery",
		ContactPerson: "P. van Wyk",
		Email:         "ADMIN@morester.co.za",
		FarmSizeHa:    &farm,
	}
	rec := doJSON(t, handler.Create, http.MethodPost, "/api/v1/clients", in, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp clientResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Môrester Boerdery", resp.Data.Name)
	require.Equal(t, "admin@morester.co.za", resp.Data.Email)
	require.NotNil(t, resp.Data.FarmSizeHa)
	require.Equal(t, 120.0, *resp.Data.FarmSizeHa)
}

func TestCreateClientRequiresName(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.Create, http.MethodPost, "/api/v1/clients", client.Input{Name: "  "}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateClientRejectsBadEmail(t *testing.T) {
	handler, _ := newTestHandler(t)

	in := client.Input{Name: "Farm", Email: "not-an-email"}
	rec := doJSON(t, handler.Create, http.MethodPost, "/api/v1/clients", in, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListClientsSearch(t *testing.T) {
	handler, _ := newTestHandler(t)

	for _, name := range []string{"Môrester Boerdery", "Sunnyside Farms", "Karoo Agri"} {
		rec := doJSON(t, handler.Create, http.MethodPost, "/api/v1/clients", client.Input{Name: name}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, handler.List, http.MethodGet, "/api/v1/clients?search=karoo", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp clientsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "Karoo Agri", resp.Data[0].Name)
	require.Equal(t, 1, resp.Pagination.TotalItems)
}

func TestUpdateClientNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	id := uuid.NewString()
	rec := doJSON(t, handler.Update, http.MethodPut, "/api/v1/clients/"+id,
		client.Input{Name: "Ghost"}, map[string]string{"id": id})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteClient(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.Create, http.MethodPost, "/api/v1/clients", client.Input{Name: "Farm"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created clientResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, handler.Delete, http.MethodDelete, "/api/v1/clients/"+created.Data.ID, nil,
		map[string]string{"id": created.Data.ID})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler.Get, http.MethodGet, "/api/v1/clients/"+created.Data.ID, nil,
		map[string]string{"id": created.Data.ID})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
