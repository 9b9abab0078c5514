package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":       "postgres://localhost/agrihover",
		"JWT_SECRET":         "test-secret",
		"PORT":               "",
		"APP_ENV":            "",
		"REDIS_URL":          "",
		"ACCESS_TOKEN_TTL":   "",
		"REFRESH_TOKEN_TTL":  "",
		"CATALOG_CACHE_TTL":  "",
		"INVOICE_DUE_DAYS":   "",
		"JWT_ISSUER":         "",
		"JWT_AUDIENCE":       "",
		"CORS_ALLOWED_ORIGINS": "",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port default = %q", cfg.Port)
	}
	if cfg.AppEnv != "development" {
		t.Fatalf("app env default = %q", cfg.AppEnv)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("access ttl default = %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 720*time.Hour {
		t.Fatalf("refresh ttl default = %v", cfg.RefreshTokenTTL)
	}
	if cfg.InvoiceDueDays != 30 {
		t.Fatalf("due days default = %d", cfg.InvoiceDueDays)
	}
	if cfg.JWTIssuer != "backend-quote" || cfg.JWTAudience != "agrihover-frontend" {
		t.Fatalf("jwt claims defaults = %q %q", cfg.JWTIssuer, cfg.JWTAudience)
	}
	if got := cfg.HTTPAddr(); got != ":8080" {
		t.Fatalf("http addr = %q", got)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	if _, err := LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"JWT_SECRET":   "test-secret",
	}); err == nil {
		t.Fatal("expected missing DATABASE_URL error")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":         "postgres://localhost/agrihover",
		"JWT_SECRET":           "test-secret",
		"PORT":                 "9000",
		"ACCESS_TOKEN_TTL":     "5m",
		"INVOICE_DUE_DAYS":     "14",
		"CORS_ALLOWED_ORIGINS": "https://app.example.com, https://staging.example.com",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr() != ":9000" {
		t.Fatalf("http addr = %q", cfg.HTTPAddr())
	}
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("access ttl = %v", cfg.AccessTokenTTL)
	}
	if cfg.InvoiceDueDays != 14 {
		t.Fatalf("due days = %d", cfg.InvoiceDueDays)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://staging.example.com" {
		t.Fatalf("cors origins = %#v", cfg.CORSAllowedOrigins)
	}
}
