package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"expensetracker/backend/models"
	"expensetracker/backend/services"
	"expensetracker/backend/validation"
)

const genericErrorMessage = "Something went wrong. Please try again."

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// writeError maps service errors to HTTP responses. Anything unrecognized is
// logged and reported as a generic retryable failure.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErr *validation.FieldError
	var storageErr *services.StorageError

	switch {
	case errors.As(err, &fieldErr):
		respondJSON(w, http.StatusUnprocessableEntity, fieldErr)
	case errors.Is(err, services.ErrUnauthenticated):
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error":    "unauthenticated",
			"redirect": "/sign-in",
		})
	case errors.Is(err, services.ErrNotFound):
		respondMessage(w, http.StatusNotFound, "not_found")
	case errors.Is(err, services.ErrInvalidCursor):
		respondMessage(w, http.StatusBadRequest, "invalid_cursor")
	case errors.Is(err, services.ErrInvalidCredentials):
		respondMessage(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrInvalidCode):
		respondMessage(w, http.StatusUnauthorized, "Invalid or expired code")
	case errors.Is(err, services.ErrEmailTaken):
		respondMessage(w, http.StatusConflict, "An account with this email already exists")
	case errors.Is(err, services.ErrProviderUnavailable):
		respondMessage(w, http.StatusServiceUnavailable, "This sign-in method is not available")
	case errors.As(err, &storageErr):
		log.Printf("Storage error on %s %s: %v", r.Method, r.URL.Path, err)
		respondMessage(w, http.StatusInternalServerError, genericErrorMessage)
	default:
		log.Printf("Error on %s %s: %v", r.Method, r.URL.Path, err)
		respondMessage(w, http.StatusInternalServerError, genericErrorMessage)
	}
}

// decodeJSON reads the request body into v. A malformed amount is reported
// against the amount field like any other invalid amount.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if err == nil {
		return true
	}

	var amountErr *models.InvalidAmountError
	if errors.As(err, &amountErr) {
		writeError(w, r, &validation.FieldError{Field: "amount", Message: "Amount must be at least 1"})
		return false
	}
	respondMessage(w, http.StatusBadRequest, "Invalid request body")
	return false
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &validation.FieldError{Field: name, Message: "Must be a whole number"}
	}
	return n, nil
}
