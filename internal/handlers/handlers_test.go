package handlers

import (
	"context"
	"net/http"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/adelmas/galerie/auth"
	"github.com/adelmas/galerie/internal/db"
	"github.com/adelmas/galerie/internal/models"
	"github.com/adelmas/galerie/internal/store"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

// asUser attaches session claims for u to the request, the way
// auth.Middleware would after verifying a token.
func asUser(r *http.Request, u *models.User) *http.Request {
	claims := &auth.Claims{Name: u.Name, Email: u.Email, Role: u.Role}
	claims.Subject = u.ID
	return r.WithContext(auth.WithClaims(context.Background(), claims))
}

func mustCreateUser(t *testing.T, users *store.Users, name string, role models.Role) *models.User {
	t.Helper()
	u, err := users.Create(name, name+"@example.com", "secret1", role)
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}
