package db

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adelmas/galerie/internal/models"
)

// Seed inserts the bootstrap superadmin account if it is absent, so a
// fresh database is immediately usable. Credentials can be overridden via
// SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD.
func Seed(conn *gorm.DB) error {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = "test@example.com"
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "password123"
	}

	var existing models.User
	err := conn.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("seed lookup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed hash: %w", err)
	}
	admin := models.User{
		ID:       uuid.NewString(),
		Name:     "Test User",
		Email:    email,
		Password: string(hash),
		Role:     models.RoleSuperadmin,
	}
	if err := conn.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed create: %w", err)
	}
	log.Printf("seeded superadmin account %s", email)
	return nil
}
