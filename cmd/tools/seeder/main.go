package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/quotelab/backend-quotes/internal/ratetable"
)

// Publishes the built-in rate table as the first snapshot so a fresh
// environment can serve calculations immediately. Running it again against a
// database that already has snapshots is a no-op.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT count(*) FROM rate_tables").Scan(&count); err != nil {
		log.Fatalf("Failed to inspect rate_tables: %v", err)
	}
	if count > 0 {
		log.Printf("Found %d published snapshot(s), nothing to seed", count)
		return
	}

	table := ratetable.DefaultTable()
	payload, err := json.Marshal(table)
	if err != nil {
		log.Fatalf("Failed to encode rate table: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO rate_tables (version, payload, published_by)
		VALUES ($1, $2, 'seeder')
		ON CONFLICT (version) DO NOTHING;
	`, table.Version, payload)
	if err != nil {
		log.Fatalf("Failed to publish default rate table: %v", err)
	}

	log.Printf("Published rate table version %d", table.Version)
	log.Println("Seeding completed successfully!")
}
