package handlers

import (
	"net/http"

	"expensetracker/backend/middleware"
	"expensetracker/backend/services"
)

// UserHandler serves the signed-in user's profile.
type UserHandler struct {
	auth *services.AuthService
}

func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// GetCurrentUser handles GET /me
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.CurrentUser(r.Context(), middleware.GetUserIDFromContext(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
	})
}
