package handlers

import (
	"log/slog"
	"net/http"

	"github.com/AhmedTrying/malaysiasafd/internal/middleware"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MeResponse is the current identity with its effective permissions
type MeResponse struct {
	User        *models.User        `json:"user"`
	Permissions []models.Permission `json:"permissions"`
}

// Register handles self-service registration
// @Summary Register a new account
// @Description Create a viewer account. Disabled when ENABLE_REGISTRATION is false.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration details"
// @Success 201 {object} models.User "Created account"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Registration disabled"
// @Failure 409 {object} map[string]string "Username or email taken"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, user)
}

// Login handles user login
// @Summary Log in
// @Description Authenticate with username and password and receive a bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} service.LoginResult "Token and user"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials or inactive account"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		slog.Warn("Login failed", "username", req.Username, "error", err)
		respondWithServiceError(w, err)
		return
	}

	middleware.SetAuditUser(r, result.User.ID)
	respondWithJSON(w, http.StatusOK, result)
}

// Me returns the authenticated user
// @Summary Current user
// @Description Get the authenticated user's account and permissions
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse "Current user"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Get(r.Context(), actor.UserID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	var permissions []models.Permission
	for _, info := range h.userService.Roles() {
		if info.ID == user.Role {
			permissions = info.Permissions
		}
	}

	respondWithJSON(w, http.StatusOK, MeResponse{User: user, Permissions: permissions})
}
