package handlers

import (
	"net/http"

	"github.com/AhmedTrying/malaysiasafd/internal/service"
)

// ReviewHandler handles the admin review queue
type ReviewHandler struct {
	reviewService *service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ListPending lists reports awaiting a decision
// @Summary List pending reports
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.PendingReport "Pending reports, newest first"
// @Failure 403 {object} map[string]string "Forbidden - admin only"
// @Router /admin/reports/pending [get]
func (h *ReviewHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	reports, err := h.reviewService.ListPending(r.Context(), actor)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reports)
}

// GetPending returns a pending report in any status
// @Summary Get pending report
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param caseId path string true "Case ID, e.g. P2000"
// @Success 200 {object} models.PendingReport "Report"
// @Failure 404 {object} map[string]string "Not found"
// @Router /admin/reports/pending/{caseId} [get]
func (h *ReviewHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	report, err := h.reviewService.Get(r.Context(), actor, caseIDParam(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// Decide approves or rejects a pending report
// @Summary Decide on a report
// @Description Approve promotes the report into the canonical dataset with a new # case id. A report that was already decided yields 404.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.Decision true "Decision"
// @Success 200 {object} service.DecisionResult "Outcome"
// @Failure 400 {object} map[string]string "Invalid decision"
// @Failure 404 {object} map[string]string "Unknown or already decided"
// @Router /admin/reports/decide [post]
func (h *ReviewHandler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req service.Decision
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.reviewService.Decide(r.Context(), actor, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
