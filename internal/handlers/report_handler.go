package handlers

import (
	"net/http"

	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/service"
)

// MessageSubmitted is returned once a report joins the review queue
const MessageSubmitted = "Report submitted and awaiting admin review."

// ReportHandler handles report submission and canonical report reads
type ReportHandler struct {
	submissionService *service.SubmissionService
	reportService     *service.ReportService
	statsService      *service.StatsService
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	submissionService *service.SubmissionService,
	reportService *service.ReportService,
	statsService *service.StatsService,
) *ReportHandler {
	return &ReportHandler{
		submissionService: submissionService,
		reportService:     reportService,
		statsService:      statsService,
	}
}

// SubmitResponse describes a freshly queued report
type SubmitResponse struct {
	Message string                `json:"message"`
	Report  *models.PendingReport `json:"report"`
}

// Predict classifies a report without storing it
// @Summary Predict
// @Description Ask the prediction service whether a report looks like a scam. Nothing is stored.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SubmitInput true "Report"
// @Success 200 {object} models.Prediction "Prediction"
// @Failure 400 {object} map[string]string "Invalid report"
// @Failure 502 {object} map[string]string "Prediction service unavailable"
// @Router /predict [post]
func (h *ReportHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitInput
	if !decodeJSON(w, r, &req) {
		return
	}

	prediction, err := h.submissionService.Predict(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, prediction)
}

// SubmitPending classifies a report and queues it for review
// @Summary Submit report
// @Description Classify a report and store it as pending with a #P case id
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SubmitInput true "Report"
// @Success 201 {object} SubmitResponse "Queued report"
// @Failure 400 {object} map[string]string "Invalid report"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 502 {object} map[string]string "Prediction service unavailable, nothing stored"
// @Router /reports/pending [post]
func (h *ReportHandler) SubmitPending(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req service.SubmitInput
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.submissionService.Submit(r.Context(), actor, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, SubmitResponse{Message: MessageSubmitted, Report: report})
}

// ListRecent returns the newest canonical reports
// @Summary Recent reports
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of reports" default(5)
// @Success 200 {array} models.FraudReport "Recent reports"
// @Router /reports/recent [get]
func (h *ReportHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	reports, err := h.statsService.RecentReports(r.Context(), queryInt(r, "limit", service.DefaultRecentLimit))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reports)
}

// GetReport returns one canonical report
// @Summary Get report
// @Description The leading '#' of the case id may be omitted
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param caseId path string true "Case ID, e.g. 1000"
// @Success 200 {object} models.FraudReport "Report"
// @Failure 404 {object} map[string]string "Not found"
// @Router /reports/{caseId} [get]
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.GetReport(r.Context(), caseIDParam(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// CreateReport adds a canonical report without review
// @Summary Create canonical report
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateReportInput true "Report"
// @Success 201 {object} models.FraudReport "Created report"
// @Failure 400 {object} map[string]string "Invalid report"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /admin/reports [post]
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req service.CreateReportInput
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.reportService.CreateReport(r.Context(), actor, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, report)
}
