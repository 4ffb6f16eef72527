package database

import (
	"fmt"
	"log"

	"kanban-board-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the SQLite database file (created if missing) and runs migrations.
// glebarez/sqlite is a pure Go driver, so no CGO is required.
func Open(path string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Printf("Database %s connected and migrated", path)
	return db, nil
}

// Migrate creates or updates the tables backing the document store.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Notification{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
