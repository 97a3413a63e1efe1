package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"separation-route-service/internal/adapters/cache"
	"separation-route-service/internal/adapters/dispatch"
	"separation-route-service/internal/adapters/repositories"
	"separation-route-service/internal/api"
	"separation-route-service/internal/config"
	"separation-route-service/internal/platform/db"
	"separation-route-service/internal/ports"
	"separation-route-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (Postgres/SQLite, Redis, RabbitMQ) behind
// ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	amqpURL := config.MustGet("AMQP_URL")

	store, dialect, err := openStore()
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	if err := repositories.InitSchema(store); err != nil {
		log.Fatal(err)
	}

	// Seed routes and the package index on startup for local runs.
	if seedPath := os.Getenv("SEED_PATH"); strings.TrimSpace(seedPath) != "" {
		if err := repositories.SeedFromJSON(store, dialect, seedPath); err != nil {
			log.Fatal(err)
		}
		log.Printf("seeded manifest path=%s", seedPath)
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		log.Fatalf("connect to rabbitmq: %v", err)
	}
	defer conn.Close()

	dispatcher, err := dispatch.NewRabbitDispatcher(conn)
	if err != nil {
		log.Fatal(err)
	}
	defer dispatcher.Close()

	routeRepo := repositories.NewSQLRouteRepository(store, dialect)

	separation := &services.SeparationService{
		Sessions: repositories.NewSQLSessionRepository(store, dialect),
		Routes:   routeRepo,
		Index:    repositories.NewSQLAssignmentIndex(store, dialect),
		Scans:    repositories.NewSQLScanStore(store, dialect),
	}
	lifecycle := &services.LifecycleService{
		Routes: routeRepo,
		Cache:  openStatusCache(),
	}
	assignment := &services.AssignmentService{
		Routes:     routeRepo,
		Dispatcher: dispatcher,
	}

	router := api.NewRouter(separation, lifecycle, assignment)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openStore prefers Postgres when DATABASE_URL is set and falls back to
// a local SQLite file for dev runs. The dialect travels with the handle
// so the repositories emit matching placeholders.
func openStore() (*sql.DB, repositories.Dialect, error) {
	if databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); databaseURL != "" {
		store, err := db.OpenPostgres(databaseURL)
		return store, repositories.Postgres, err
	}
	store, err := db.OpenSQLite(config.Get("DB_PATH", "data/app.db"))
	return store, repositories.SQLite, err
}

// openStatusCache returns nil when REDIS_ADDR is unset; the lifecycle
// service then serves every poll straight from the store.
func openStatusCache() ports.StatusCache {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	log.Printf("status cache enabled addr=%s", addr)
	return cache.NewRedisStatusCache(client, 3*time.Second)
}
