package handlers

import (
	"net/http"

	"github.com/AhmedTrying/malaysiasafd/internal/service"
)

// LookupHandler serves the state and scam type catalogs
type LookupHandler struct {
	lookupService *service.LookupService
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(lookupService *service.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

// GetLookup returns one catalog
// @Summary Lookup catalogs
// @Description Get the states or scam types used to fill form dropdowns
// @Tags Lookup
// @Produce json
// @Security BearerAuth
// @Param type query string true "Catalog" Enums(states, scam_types)
// @Success 200 {array} models.State "States or scam types"
// @Failure 400 {object} map[string]string "Unknown catalog"
// @Router /lookup [get]
func (h *LookupHandler) GetLookup(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("type") {
	case LookupTypeStates:
		states, err := h.lookupService.States(r.Context())
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, states)
	case LookupTypeScamTypes:
		h.ListScamTypes(w, r)
	default:
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidLookupType)
	}
}

// ListScamTypes lists the scam type catalog
// @Summary List scam types
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ScamType "Scam types"
// @Router /admin/scam-types [get]
func (h *LookupHandler) ListScamTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.lookupService.ScamTypes(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, types)
}

// CreateScamType adds a scam type
// @Summary Create scam type
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ScamTypeInput true "Scam type"
// @Success 201 {object} models.ScamType "Created scam type"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Name taken"
// @Router /admin/scam-types [post]
func (h *LookupHandler) CreateScamType(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req service.ScamTypeInput
	if !decodeJSON(w, r, &req) {
		return
	}

	st, err := h.lookupService.CreateScamType(r.Context(), actor, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, st)
}

// UpdateScamType edits a scam type
// @Summary Update scam type
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Scam type ID"
// @Param request body service.ScamTypeInput true "Scam type"
// @Success 200 {object} models.ScamType "Updated scam type"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 409 {object} map[string]string "Name taken"
// @Router /admin/scam-types/{id} [put]
func (h *LookupHandler) UpdateScamType(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req service.ScamTypeInput
	if !decodeJSON(w, r, &req) {
		return
	}

	st, err := h.lookupService.UpdateScamType(r.Context(), actor, id, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, st)
}

// DeleteScamType removes an unused scam type
// @Summary Delete scam type
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Scam type ID"
// @Success 200 {object} map[string]string "Deleted"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 409 {object} map[string]string "Still referenced by reports"
// @Router /admin/scam-types/{id} [delete]
func (h *LookupHandler) DeleteScamType(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.lookupService.DeleteScamType(r.Context(), actor, id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Scam type deleted successfully"})
}
