package main

import (
	"context"
	"log"
	"os"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
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

	seedOperators(ctx, pool)
	seedProducts(ctx, pool)
	seedSettings(ctx, pool)

	log.Println("Seeding completed successfully!")
}

func seedOperators(ctx context.Context, pool *pgxpool.Pool) {
	operators := []struct {
		Username string
		Name     string
		Role     string
		Password string
	}{
		{"admin", "Store Admin", "admin", "admin-change-me"},
		{"maria", "Maria Santos", "cashier", "cashier-change-me"},
		{"juan", "Juan Dela Cruz", "cashier", "cashier-change-me"},
	}

	log.Println("Seeding operators...")
	for _, op := range operators {
		hash, err := argon2id.CreateHash(op.Password, argon2id.DefaultParams)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", op.Username, err)
		}
		_, err = pool.Exec(ctx, `
			INSERT INTO users (id, username, name, role, password_hash)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (username) DO NOTHING`,
			uuid.NewString(), op.Username, op.Name, op.Role, hash)
		if err != nil {
			log.Fatalf("Failed to seed operator %s: %v", op.Username, err)
		}
	}
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) {
	products := []struct {
		Barcode   string
		Name      string
		UnitPrice int64
		Stock     int32
	}{
		{"4800016644931", "Coffee Beans 500g", 7500, 40},
		{"4800016001234", "Fresh Milk 1L", 5000, 60},
		{"4809999112223", "Rice 5kg", 28000, 25},
		{"4801111222333", "Cooking Oil 1L", 9500, 30},
		{"4802222333444", "Sugar 1kg", 6200, 50},
		{"4803333444555", "Instant Noodles", 1500, 200},
		{"4804444555666", "Canned Sardines", 2800, 120},
		{"4805555666777", "Laundry Soap Bar", 1900, 80},
	}

	log.Println("Seeding products...")
	for _, p := range products {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (id, barcode, name, unit_price, stock, active)
			VALUES ($1, $2, $3, $4, $5, TRUE)
			ON CONFLICT DO NOTHING`,
			uuid.NewString(), p.Barcode, p.Name, p.UnitPrice, p.Stock)
		if err != nil {
			log.Fatalf("Failed to seed product %s: %v", p.Name, err)
		}
	}
}

func seedSettings(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("Seeding settings...")
	_, err := pool.Exec(ctx, `
		INSERT INTO settings (id, store_name, currency_code, tax_bps, pwd_bps, senior_bps)
		VALUES (1, 'Kasir POS', 'PHP', 1200, 2000, 2000)
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		log.Fatalf("Failed to seed settings: %v", err)
	}
}
