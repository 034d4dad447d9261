package db

import (
	"fmt" // Error wrapping

	"gorm.io/gorm" // GORM ORM library

	"bookkeeping/internal/domain" // Importing domain models
)

// Models lists every table the service owns
func Models() []any {
	return []any{&domain.User{}, &domain.Account{}, &domain.Order{}}
}

// Migrate performs automatic migration for the database schema
func Migrate(conn *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
