package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/classtimer/internal/models"
)

var DB *gorm.DB

// Initialize sets up the database connection at dbPath and runs migrations.
// An empty dbPath selects the default location under the home directory.
func Initialize(dbPath string) error {
	if dbPath == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to get database path: %w", err)
		}
		dbPath = defaultPath
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create classtimer directory: %w", err)
	}

	db, err := Open(dbPath)
	if err != nil {
		return err
	}

	DB = db
	return nil
}

// Open connects to the SQLite database at dsn and migrates the schema.
// Tests pass ":memory:".
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection keeps in-memory databases shared and writes serialized
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// DefaultPath returns the path to the SQLite database file
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".classtimer", "classtimer.db"), nil
}

// runMigrations creates/updates the database schema
func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Entry{},
	)
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
