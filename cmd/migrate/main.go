package main

import (
	"os" // Log output

	"bookkeeping/internal/config" // Custom import path (Config)
	"bookkeeping/internal/db"     // Custom import path (Database)
	"bookkeeping/internal/logger" // Logger construction
)

// Main entry point for migration
func main() {
	cfg := config.MustLoadConfig() // Load configuration, panics on invalid settings
	log := logger.New(os.Stdout, cfg.IsProd, cfg.LogLevel)

	conn, err := db.Open(cfg.DB, log) // Connect using DB_DRIVER and DB_URL
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("%v", err)
	}
	log.WithField("driver", cfg.DB.Driver).Info("migration completed")
}
