package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"expensetracker/backend/middleware"
	"expensetracker/backend/services"
)

// FilterHandler serves saved filter presets.
type FilterHandler struct {
	filters *services.FilterService
}

func NewFilterHandler(filters *services.FilterService) *FilterHandler {
	return &FilterHandler{filters: filters}
}

// GetSavedFilters returns all saved filters for the current user
func (h *FilterHandler) GetSavedFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := h.filters.List(r.Context(), middleware.GetUserIDFromContext(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, filters)
}

// GetDefaultFilter returns the preset applied when the transactions page opens
func (h *FilterHandler) GetDefaultFilter(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filters.Default(r.Context(), middleware.GetUserIDFromContext(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, filter)
}

// GetSavedFilter returns a specific saved filter
func (h *FilterHandler) GetSavedFilter(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filters.Get(r.Context(), middleware.GetUserIDFromContext(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, filter)
}

// CreateSavedFilter creates a new saved filter
func (h *FilterHandler) CreateSavedFilter(w http.ResponseWriter, r *http.Request) {
	var in services.SavedFilterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	filter, err := h.filters.Create(r.Context(), middleware.GetUserIDFromContext(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, filter)
}

// UpdateSavedFilter updates a saved filter
func (h *FilterHandler) UpdateSavedFilter(w http.ResponseWriter, r *http.Request) {
	var in services.SavedFilterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	filter, err := h.filters.Update(r.Context(), middleware.GetUserIDFromContext(r), mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, filter)
}

// DeleteSavedFilter deletes a saved filter
func (h *FilterHandler) DeleteSavedFilter(w http.ResponseWriter, r *http.Request) {
	if err := h.filters.Delete(r.Context(), middleware.GetUserIDFromContext(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
