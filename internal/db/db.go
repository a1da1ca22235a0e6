package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adelmas/galerie/internal/models"
)

// Connect opens the database selected by the DSN shape: postgres:// URLs
// use the Postgres driver, anything else is treated as a SQLite path.
func Connect(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	conn, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return conn, nil
}

// Migrate applies the schema for all models.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Media{},
		&models.Album{},
		&models.AlbumFile{},
		&models.Carousel{},
		&models.Log{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
