package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers groups every endpoint handler together with the middleware that
// guards them.
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	Users        *UserHandler
	Transactions *TransactionHandler
	Stats        *StatsHandler
	Filters      *FilterHandler

	RequireAuth func(http.Handler) http.Handler
	RateLimit   func(http.Handler) http.Handler
}

// RegisterRoutes sets up all API routes on r.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Public routes (no auth required)
	r.HandleFunc("/health", h.Health.HealthCheck).Methods("GET", "OPTIONS")

	authRouter := r.PathPrefix("/auth").Subrouter()
	if h.RateLimit != nil {
		authRouter.Use(h.RateLimit)
	}
	authRouter.HandleFunc("/signup", h.Auth.SignUp).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/signin", h.Auth.SignIn).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/code", h.Auth.SendCode).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/code/verify", h.Auth.VerifyCode).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/firebase", h.Auth.SignInWithFirebase).Methods("POST", "OPTIONS")
	authRouter.Handle("/signout", h.RequireAuth(http.HandlerFunc(h.Auth.SignOut))).Methods("POST", "OPTIONS")

	// Create a subrouter for authenticated routes
	protectedRouter := r.PathPrefix("").Subrouter()
	protectedRouter.Use(h.RequireAuth)

	protectedRouter.HandleFunc("/me", h.Users.GetCurrentUser).Methods("GET")

	// Protected transaction routes
	protectedRouter.HandleFunc("/transactions", h.Transactions.GetTransactions).Methods("GET")
	protectedRouter.HandleFunc("/transactions", h.Transactions.AddTransaction).Methods("POST")
	protectedRouter.HandleFunc("/transactions/{id}", h.Transactions.GetTransaction).Methods("GET")
	protectedRouter.HandleFunc("/transactions/{id}", h.Transactions.UpdateTransaction).Methods("PUT")
	protectedRouter.HandleFunc("/transactions/{id}", h.Transactions.DeleteTransaction).Methods("DELETE")

	// Dashboard routes
	protectedRouter.HandleFunc("/stats", h.Stats.GetStats).Methods("GET")
	protectedRouter.HandleFunc("/stats/recent", h.Stats.GetRecentTransactions).Methods("GET")
	protectedRouter.HandleFunc("/stats/monthly", h.Stats.GetMonthlySummary).Methods("GET")

	// Saved filters routes
	protectedRouter.HandleFunc("/filters", h.Filters.GetSavedFilters).Methods("GET")
	protectedRouter.HandleFunc("/filters", h.Filters.CreateSavedFilter).Methods("POST")
	protectedRouter.HandleFunc("/filters/default", h.Filters.GetDefaultFilter).Methods("GET")
	protectedRouter.HandleFunc("/filters/{id}", h.Filters.GetSavedFilter).Methods("GET")
	protectedRouter.HandleFunc("/filters/{id}", h.Filters.UpdateSavedFilter).Methods("PUT")
	protectedRouter.HandleFunc("/filters/{id}", h.Filters.DeleteSavedFilter).Methods("DELETE")
}
