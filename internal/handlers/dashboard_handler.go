package handlers

import (
	"net/http"

	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/service"
)

// DashboardHandler serves the aggregate statistics
type DashboardHandler struct {
	statsService *service.StatsService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(statsService *service.StatsService) *DashboardHandler {
	return &DashboardHandler{statsService: statsService}
}

func statsFilter(w http.ResponseWriter, r *http.Request) (models.StatsFilter, bool) {
	q := r.URL.Query()
	filter, err := service.ParseStatsFilter(
		q.Get("start_date"), q.Get("end_date"), q.Get("state_filter"), q.Get("scam_type_filter"))
	if err != nil {
		respondWithServiceError(w, err)
		return filter, false
	}
	return filter, true
}

// GetStats computes the dashboard statistics
// @Summary Dashboard statistics
// @Description Aggregate the canonical reports. Empty filters and "all" mean no filter.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "From date, YYYY-MM-DD"
// @Param end_date query string false "To date, YYYY-MM-DD"
// @Param state_filter query string false "State ID or all"
// @Param scam_type_filter query string false "Scam type ID or all"
// @Success 200 {object} models.DashboardStats "Statistics"
// @Failure 400 {object} map[string]string "Invalid filter"
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	filter, ok := statsFilter(w, r)
	if !ok {
		return
	}

	stats, err := h.statsService.Compute(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// GetDashboard returns the statistics together with the recent reports
// @Summary Dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "From date, YYYY-MM-DD"
// @Param end_date query string false "To date, YYYY-MM-DD"
// @Param state_filter query string false "State ID or all"
// @Param scam_type_filter query string false "Scam type ID or all"
// @Param limit query int false "Number of recent reports" default(5)
// @Success 200 {object} service.Dashboard "Dashboard"
// @Failure 400 {object} map[string]string "Invalid filter"
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	filter, ok := statsFilter(w, r)
	if !ok {
		return
	}

	dashboard, err := h.statsService.Dashboard(r.Context(), filter, queryInt(r, "limit", service.DefaultRecentLimit))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dashboard)
}
