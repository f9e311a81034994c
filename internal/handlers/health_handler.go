package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck() error
}

// VaultHealth reports whether the notes vault is reachable
type VaultHealth interface {
	Health(ctx context.Context) error
}

// HealthHandler serves the liveness probe
type HealthHandler struct {
	db      HealthChecker
	vault   VaultHealth
	version string
}

// NewHealthHandler creates a new health handler. vault may be nil.
func NewHealthHandler(db HealthChecker, vault VaultHealth, version string) *HealthHandler {
	return &HealthHandler{db: db, vault: vault, version: version}
}

// Check reports database and vault health
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Healthy"
// @Failure 503 {object} map[string]string "Unhealthy"
// @Router /health [get]
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(); err != nil {
		slog.Error("Health check failed", "component", "database", "error", err)
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "error"})
		return
	}

	if h.vault != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := h.vault.Health(ctx); err != nil {
			slog.Error("Health check failed", "component", "vault", "error", err)
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "vault": "error"})
			return
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": h.version})
}
