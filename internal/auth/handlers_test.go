package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agrihover/backend-quote/internal/common"
)

func newTestHandler(t *testing.T) (*Handler, *fakeStore) {
	t.Helper()
	svc, store := newTestService(t)
	return &Handler{
		Service:           svc,
		AccessCookieName:  "access_token",
		RefreshCookieName: "refresh_token",
		CookieSameSite:    http.SameSiteLaxMode,
	}, store
}

func TestRegisterAndLoginHandlers(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"name":"Jane Farmer","email":"Jane@Example.com","password":"password123"}`))
	h.Register(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"jane@example.com","password":"password123"}`))
	h.Login(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if payload.Data.AccessToken == "" {
		t.Fatal("expected access token in response")
	}

	var refreshCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			refreshCookie = c
		}
	}
	if refreshCookie == nil || refreshCookie.Value == "" {
		t.Fatal("expected refresh token cookie")
	}
	if !refreshCookie.HttpOnly {
		t.Fatal("refresh cookie must be http-only")
	}
}

func TestLoginHandlerRejectsBadPassword(t *testing.T) {
	h, _ := newTestHandler(t)
	if _, err := h.Service.Register(httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		"Jane Farmer", "jane@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"jane@example.com","password":"wrong-password"}`))
	h.Login(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", rec.Code)
	}
}

func TestRegisterHandlerDuplicateEmail(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"name":"Jane Farmer","email":"jane@example.com","password":"password123"}`
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second register status = %d, want 409", rec.Code)
	}
}

func TestRefreshHandlerUsesCookieAndRotates(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	if _, err := h.Service.Register(ctx, "Jane Farmer", "jane@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := h.Service.Login(ctx, "jane@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: login.RefreshToken})
	h.Refresh(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rec.Code, rec.Body.String())
	}

	var rotated string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			rotated = c.Value
		}
	}
	if rotated == "" || rotated == login.RefreshToken {
		t.Fatal("expected rotated refresh cookie")
	}
}

func TestRefreshHandlerClearsCookiesOnInvalidToken(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "not-a-real-token"})
	h.Refresh(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh status = %d, want 401", rec.Code)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected refresh cookie to be cleared")
	}
}

func TestLogoutHandlerRevokesAndClears(t *testing.T) {
	h, store := newTestHandler(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	if _, err := h.Service.Register(ctx, "Jane Farmer", "jane@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := h.Service.Login(ctx, "jane@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: login.RefreshToken})
	h.Logout(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d, want 204", rec.Code)
	}
	if got := store.activeSessionCount(); got != 0 {
		t.Fatalf("active sessions = %d, want 0", got)
	}
}

func TestMeHandler(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	user, err := h.Service.Register(ctx, "Jane Farmer", "jane@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(common.WithUserID(req.Context(), user.ID))
	h.Me(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "jane@example.com") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without user status = %d, want 401", rec.Code)
	}
}
