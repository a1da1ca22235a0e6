package policy

import (
	"net/http"

	"github.com/adelmas/galerie/auth"
	"github.com/adelmas/galerie/httpx"
	"github.com/adelmas/galerie/internal/models"
)

// RequireRole gates a route group to sessions whose role is in the allowed
// set. It assumes auth.Middleware ran earlier in the chain.
func RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	set := make(map[models.Role]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if _, ok := set[claims.Role]; !ok {
				httpx.JSONError(w, http.StatusForbidden, "insufficient_permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireManager is the admin-console gate: admin or superadmin.
func RequireManager() func(http.Handler) http.Handler {
	return RequireRole(models.RoleAdmin, models.RoleSuperadmin)
}
