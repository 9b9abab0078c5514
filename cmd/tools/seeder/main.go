package main

import (
	"context"
	"log"
	"os"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/agrihover/backend-quote/internal/catalog"
	"github.com/agrihover/backend-quote/internal/pricing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedUsers(ctx, pool)
	seedCatalog(ctx, pool)
	seedClients(ctx, pool)
	seedSettings(ctx, pool)

	log.Println("Seeding completed successfully!")
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("Seeding Users...")

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	users := []struct {
		Name  string
		Email string
		Role  string
	}{
		{"AgriHover Admin", "admin@agrihover.example", "admin"},
		{"Operations", "ops@agrihover.example", "user"},
	}
	for _, u := range users {
		_, err := pool.Exec(ctx, `
			INSERT INTO users (name, email, password_hash, role)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO NOTHING;
		`, u.Name, u.Email, hash, u.Role)
		if err != nil {
			log.Printf("Failed to seed user %s: %v", u.Email, err)
		}
	}
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("Seeding Categories...")

	catIDs := make(map[string]string)
	for _, c := range catalog.DefaultCategories() {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO categories (name, label)
			VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET label = EXCLUDED.label
			RETURNING id;
		`, c.Name, c.Label).Scan(&id)
		if err != nil {
			log.Printf("Failed to upsert category %s: %v", c.Name, err)
			continue
		}
		catIDs[c.Name] = id
	}

	log.Println("Seeding Products...")
	for _, p := range catalog.DefaultProducts() {
		catID, ok := catIDs[p.Category]
		if !ok {
			log.Printf("Missing category ID for %s", p.Category)
			continue
		}

		// Products carry no unique name constraint, so skip ones already present.
		var existing string
		err := pool.QueryRow(ctx, `SELECT id FROM products WHERE name = $1`, p.Name).Scan(&existing)
		if err == nil {
			continue
		}

		sku := catalog.GenerateSKU(pricing.Category(p.Category), p.Name)
		var prodID string
		err = pool.QueryRow(ctx, `
			INSERT INTO products (name, sku, category_id, pricing_type, base_rate,
				discount_threshold, discount_rate, unit, description, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true)
			RETURNING id;
		`, p.Name, sku, catID, p.PricingType, p.BaseRate,
			p.DiscountThreshold, p.DiscountRate, p.Unit, p.Description).Scan(&prodID)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Name, err)
			continue
		}

		for _, tier := range p.Tiers {
			_, err := pool.Exec(ctx, `
				INSERT INTO product_tiers (product_id, threshold, rate)
				VALUES ($1, $2, $3)
				ON CONFLICT (product_id, threshold) DO UPDATE SET rate = EXCLUDED.rate;
			`, prodID, tier.Threshold, tier.Rate)
			if err != nil {
				log.Printf("Failed to seed tier for %s: %v", p.Name, err)
			}
		}
	}
}

func seedClients(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("Seeding Clients...")

	clients := []struct {
		Name          string
		ContactPerson string
		Email         string
		Phone         string
		Address       string
		FarmSizeHa    float64
	}{
		{"Riverbend Estates", "Pieter van der Merwe", "pieter@riverbend.example", "+27 82 555 0101", "R44, Stellenbosch", 340},
		{"Karoo Grain Co-op", "Thandi Nkosi", "thandi@karoograin.example", "+27 83 555 0102", "N1, Beaufort West", 1250},
	}
	for _, c := range clients {
		var existing string
		err := pool.QueryRow(ctx, `SELECT id FROM clients WHERE email = $1`, c.Email).Scan(&existing)
		if err == nil {
			continue
		}
		_, err = pool.Exec(ctx, `
			INSERT INTO clients (name, contact_person, email, phone, address, farm_size_ha)
			VALUES ($1, $2, $3, $4, $5, $6);
		`, c.Name, c.ContactPerson, c.Email, c.Phone, c.Address, c.FarmSizeHa)
		if err != nil {
			log.Printf("Failed to seed client %s: %v", c.Name, err)
		}
	}
}

func seedSettings(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("Seeding Settings...")

	_, err := pool.Exec(ctx, `
		INSERT INTO settings (id, company_name, company_email, currency)
		VALUES (1, 'AgriHover', 'accounts@agrihover.example', 'ZAR')
		ON CONFLICT (id) DO NOTHING;
	`)
	if err != nil {
		log.Printf("Failed to seed settings: %v", err)
	}
}
