package handlers

import (
	"net/http"

	"github.com/AhmedTrying/malaysiasafd/internal/service"
)

// FeedbackHandler handles user feedback
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// SubmitFeedback stores a rating
// @Summary Submit feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.FeedbackInput true "Feedback"
// @Success 201 {object} models.Feedback "Stored feedback"
// @Failure 400 {object} map[string]string "Invalid feedback"
// @Router /feedback [post]
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req service.FeedbackInput
	if !decodeJSON(w, r, &req) {
		return
	}

	fb, err := h.feedbackService.Submit(r.Context(), actor, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, fb)
}

// ListFeedback lists all feedback
// @Summary List feedback
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Feedback "Feedback, newest first"
// @Failure 403 {object} map[string]string "Forbidden - admin only"
// @Router /admin/feedback [get]
func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	entries, err := h.feedbackService.List(r.Context(), actor)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}
