package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AhmedTrying/malaysiasafd/internal/auth"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
)

type contextKey string

const ActorKey contextKey = "actor"

// UserLoader reloads the account behind a token
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware validates JWT tokens
type AuthMiddleware struct {
	authService *auth.Service
	users       UserLoader
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService *auth.Service, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		users:       users,
	}
}

// Authenticate validates the JWT token and adds the caller to the context.
// The account is re-read on every request so role changes and deactivation
// apply without waiting for the token to expire.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := m.users.GetByID(r.Context(), claims.UserID)
		if errors.Is(err, repository.ErrUserNotFound) {
			respondWithError(w, http.StatusUnauthorized, "User no longer exists")
			return
		}
		if err != nil {
			slog.Error("Failed to load user for token", "user_id", claims.UserID, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to load user")
			return
		}
		if !user.IsActive {
			respondWithError(w, http.StatusUnauthorized, "User account is inactive")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actorOf(user))))
	})
}

// OptionalAuth adds the caller to the context when a valid token is present
// but lets anonymous requests through
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
			if claims, err := m.authService.ValidateToken(token); err == nil {
				if user, err := m.users.GetByID(r.Context(), claims.UserID); err == nil && user.IsActive {
					r = r.WithContext(WithActor(r.Context(), actorOf(user)))
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func actorOf(user *models.User) models.Actor {
	return models.Actor{UserID: user.ID, Username: user.Username, Role: user.Role}
}

// WithActor stores the authenticated caller in ctx
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// GetActor retrieves the authenticated caller from the request context
func GetActor(r *http.Request) (models.Actor, bool) {
	actor, ok := r.Context().Value(ActorKey).(models.Actor)
	return actor, ok
}

// GetUserID retrieves the user ID from the request context
func GetUserID(r *http.Request) (uint, bool) {
	actor, ok := GetActor(r)
	if !ok {
		return 0, false
	}
	return actor.UserID, true
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
