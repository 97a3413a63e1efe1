package main

import (
	"database/sql"
	"log"
	"os"
	"strings"

	"separation-route-service/internal/adapters/repositories"
	"separation-route-service/internal/config"
	"separation-route-service/internal/platform/db"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// dbtool initializes the schema and loads an optimizer manifest. Safe
// to re-run: seeding replaces existing rows.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	store, dialect, err := openStore()
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/manifest.json")
	initAndSeed(store, dialect, seedPath)
}

func openStore() (*sql.DB, repositories.Dialect, error) {
	if databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); databaseURL != "" {
		store, err := db.OpenPostgres(databaseURL)
		return store, repositories.Postgres, err
	}
	store, err := db.OpenSQLite(config.Get("DB_PATH", "data/app.db"))
	return store, repositories.SQLite, err
}

func initAndSeed(store *sql.DB, dialect repositories.Dialect, seedPath string) {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(store); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := repositories.SeedFromJSON(store, dialect, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
