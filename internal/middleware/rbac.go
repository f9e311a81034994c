package middleware

import (
	"net/http"
	"slices"

	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/service"
)

// RBACMiddleware handles role-based access control
type RBACMiddleware struct {
	authorizer service.Authorizer
}

// NewRBACMiddleware creates a new RBAC middleware
func NewRBACMiddleware(authorizer service.Authorizer) *RBACMiddleware {
	return &RBACMiddleware{authorizer: authorizer}
}

// RequirePermission checks if the caller's role grants the permission
func (m *RBACMiddleware) RequirePermission(permission models.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			if err := m.authorizer.Authorize(actor, permission); err != nil {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole checks if the caller holds any of the roles
func (m *RBACMiddleware) RequireAnyRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			if !slices.Contains(roles, actor.Role) {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
