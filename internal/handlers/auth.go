package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adelmas/galerie/auth"
	"github.com/adelmas/galerie/httpx"
	"github.com/adelmas/galerie/internal/models"
	"github.com/adelmas/galerie/internal/store"
	"github.com/adelmas/galerie/validation"
)

type AuthHandler struct {
	users *store.Users
}

func NewAuthHandler(users *store.Users) *AuthHandler {
	return &AuthHandler{users: users}
}

// sessionPayload is what the client sees of its own session.
type sessionPayload struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// Login verifies credentials and mints a session cookie. Every failure
// (unknown email, wrong password, banned account) yields the same generic
// 401 so the response never reveals which check failed; server logs keep
// the distinction.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("email", input.Email, v)
	validation.Required("password", input.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	user, err := h.users.FindByEmail(input.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("login lookup failed for %s: %v", input.Email, err)
		}
		rejectLogin(w)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		rejectLogin(w)
		return
	}
	if user.IsBanned() {
		log.Printf("login rejected for banned account %s", user.ID)
		rejectLogin(w)
		return
	}

	if err := auth.CreateSession(w, user); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "session_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": sessionPayload{
		ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role,
	}})
}

func rejectLogin(w http.ResponseWriter) {
	httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
}

// Logout clears the session cookie. There is no server-side revocation:
// an already-issued token stays valid until expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Session returns the resolved claims of the current session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "no_session", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": sessionPayload{
		ID: claims.UserID(), Name: claims.Name, Email: claims.Email, Role: claims.Role,
	}})
}
