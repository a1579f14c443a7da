package handlers

import (
	"net/http"

	"expensetracker/backend/middleware"
	"expensetracker/backend/services"
)

// StatsHandler serves the dashboard endpoints.
type StatsHandler struct {
	stats *services.StatsService
}

func NewStatsHandler(stats *services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetStats handles GET /stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	stats, err := h.stats.Stats(r.Context(), middleware.GetUserIDFromContext(r), query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetRecentTransactions handles GET /stats/recent
func (h *StatsHandler) GetRecentTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}

	query := r.URL.Query()
	items, err := h.stats.ListRecent(r.Context(), middleware.GetUserIDFromContext(r),
		query.Get("startDate"), query.Get("endDate"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// GetMonthlySummary handles GET /stats/monthly
func (h *StatsHandler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	summary, err := h.stats.MonthlySummary(r.Context(), middleware.GetUserIDFromContext(r),
		query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
