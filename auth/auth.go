// Package auth implements cookie/JWT sessions for the back office.
// A signed token embeds the identity claims {id, name, email, role}; the
// role is read back from the token, not re-fetched per request, so a role
// change only takes effect once the session is reissued. An optional
// verifier callback re-checks the user row on each request so deleted or
// banned accounts are cut off before token expiry.
package auth

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adelmas/galerie/internal/models"
)

type ctxKey string

const (
	// SessionCookieName is the cookie carrying the signed session token.
	SessionCookieName = "session"

	claimsCtxKey = ctxKey("sessionClaims")
)

// Claims are the identity claims embedded in the session token.
// The user id travels in the registered Subject field.
type Claims struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the authenticated user's id.
func (c *Claims) UserID() string { return c.Subject }

// UserVerifier is an optional callback to validate that a session's user
// still exists and is allowed in. Set it during app bootstrap via
// SetUserVerifier. If nil, no extra verification is performed.
type UserVerifier func(ctx context.Context, userID string) bool

var verifier UserVerifier

// SetUserVerifier configures the global verifier used by RequireAuth.
func SetUserVerifier(v UserVerifier) { verifier = v }

// Secret returns SESSION_SECRET or a default dev value.
func Secret() string {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

// TTL returns the session lifetime (SESSION_TTL_HOURS, default 24h).
func TTL() time.Duration {
	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Hour
		}
	}
	return 24 * time.Hour
}

// IssueToken mints a signed session token for the given user.
func IssueToken(u *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL())),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(Secret()))
}

// ParseToken verifies signature and expiry and returns the claims.
func ParseToken(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(Secret()), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// CreateSession mints a token for u and sets it as an HttpOnly cookie.
func CreateSession(w http.ResponseWriter, u *models.User) error {
	token, err := IssueToken(u)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(TTL()),
	})
	return nil
}

// ClearSession deletes the session cookie. The server keeps no session
// table, so logout is purely a client-side token discard.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// SessionFromRequest extracts claims from the session cookie or, failing
// that, from an Authorization: Bearer header.
func SessionFromRequest(r *http.Request) (*Claims, bool) {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		if claims, err := ParseToken(c.Value); err == nil {
			return claims, true
		}
	}
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := ParseToken(parts[1]); err == nil {
				return claims, true
			}
		}
	}
	return nil, false
}

// WithClaims stores session claims in context.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, c)
}

// ClaimsFromContext extracts the session claims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey).(*Claims)
	return c, ok && c != nil
}

// Middleware attaches session claims to the request context if a valid
// token is present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := SessionFromRequest(r); ok {
			r = r.WithContext(WithClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without a valid session with a 401 JSON
// body. When a verifier is configured and the session's user no longer
// passes it, the cookie is cleared and the request rejected.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if verifier != nil && !verifier(r.Context(), claims.UserID()) {
			// Session refers to a deleted or banned user: clear and reject.
			ClearSession(w)
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
