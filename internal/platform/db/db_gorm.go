// Package db provides the embedded SQLite database used as the user store.
package db

import (
	"log"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"malnutrition_backend/internal/feature/auth/domain/entity"
)

// defaultPath is the database file created next to the binary when DB_PATH is unset.
const defaultPath = "./malnutrition_users.db"

// OpenDB opens the SQLite database file and migrates the users table.
// The schema is auto-created on first start. Any failure is fatal; the
// process must not serve without its store.
func OpenDB() *gorm.DB {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = defaultPath
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open database %s: %v", path, err)
	}
	abs, _ := filepath.Abs(path)
	log.Println("USING_SQLITE:", abs)

	// マイグレーション（users）
	if err := db.AutoMigrate(&entity.User{}); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	return db
}
