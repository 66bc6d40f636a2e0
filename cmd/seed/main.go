package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/palitra-app/palitra/config"
	"github.com/palitra-app/palitra/pkg/helpers"
)

// Seeds the first administrator account. Admins cannot be created
// through the public API, so a fresh install runs this once.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := envOr("SEED_ADMIN_EMAIL", "admin@palitra.local")
	password := envOr("SEED_ADMIN_PASSWORD", "changeme123")
	name := envOr("SEED_ADMIN_NAME", "Administrator")

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, role, status)
		VALUES ($1, $2, $3, 'admin', 'active')
		ON CONFLICT (email) DO UPDATE SET role='admin', status='active'
		RETURNING id
	`, email, hash, name).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s\n", id, email)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
