package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"expensetracker/backend/middleware"
	"expensetracker/backend/models"
	"expensetracker/backend/services"
)

// TransactionHandler serves the transaction endpoints.
type TransactionHandler struct {
	transactions *services.TransactionService
}

func NewTransactionHandler(transactions *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// GetTransactions handles GET /transactions
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	criteria := models.FilterCriteria{
		Search:    query.Get("search"),
		Type:      query.Get("type"),
		Date:      query.Get("date"),
		StartDate: query.Get("startDate"),
		EndDate:   query.Get("endDate"),
	}

	page, err := queryInt(r, "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryInt(r, "pageSize")
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.transactions.List(r.Context(), middleware.GetUserIDFromContext(r), criteria, models.PageRequest{
		Page:     page,
		Cursor:   query.Get("cursor"),
		PageSize: pageSize,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// AddTransaction handles POST /transactions
func (h *TransactionHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var in models.TransactionInput
	if !decodeJSON(w, r, &in) {
		return
	}

	t, err := h.transactions.Create(r.Context(), middleware.GetUserIDFromContext(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

// GetTransaction handles GET /transactions/{id}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := h.transactions.Get(r.Context(), middleware.GetUserIDFromContext(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// UpdateTransaction handles PUT /transactions/{id}
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var in models.TransactionInput
	if !decodeJSON(w, r, &in) {
		return
	}

	t, err := h.transactions.Update(r.Context(), middleware.GetUserIDFromContext(r), mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// DeleteTransaction handles DELETE /transactions/{id}
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := h.transactions.Delete(r.Context(), middleware.GetUserIDFromContext(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
