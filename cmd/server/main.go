/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the inventory ledger server: configuration,
  store, catalog, router, graceful shutdown.

CONFIGURATION:
  Flags, with environment-variable defaults (a .env file is loaded if
  present):
    -port     PORT           HTTP server port (default: 8080)
    -db       DB_PATH        SQLite database path (default: db.sqlite;
                             use ":memory:" for in-memory)
    -catalog  CATALOG_PATH   Catalog workbook path (default: db.xlsx)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the database.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/coimpex/inventory-ledger/api"
	"github.com/coimpex/inventory-ledger/catalog"
	"github.com/coimpex/inventory-ledger/store/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using flags and environment")
	}

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envString("DB_PATH", "db.sqlite"), "SQLite database path")
	catalogPath := flag.String("catalog", envString("CATALOG_PATH", "db.xlsx"), "Catalog workbook path")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// A missing catalog only degrades display names, never the ledger.
	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		log.Printf("Warning: failed to load catalog from %s: %v", *catalogPath, err)
		cat = nil
	}

	handler := api.NewHandler(store, cat)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
