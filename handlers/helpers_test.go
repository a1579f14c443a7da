package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"expensetracker/backend/config"
	"expensetracker/backend/database"
	"expensetracker/backend/middleware"
	"expensetracker/backend/migrations"
	"expensetracker/backend/models"
	"expensetracker/backend/security"
	"expensetracker/backend/services"
)

type testServer struct {
	router http.Handler
	db     *database.DB
}

func newTestServer(t *testing.T, mode string) *testServer {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite3", Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.RunMigrations(db.DB, db.Driver))

	sealer, err := security.NewSealer("test-key")
	require.NoError(t, err)
	tokens, err := security.NewTokenIssuer("test-secret")
	require.NoError(t, err)

	txStore := database.NewTransactionStore(db)
	composer := services.NewComposer(time.UTC)
	paginator := services.NewPaginator(config.PaginationConfig{Mode: mode, DefaultPageSize: 10, MaxPageSize: 100}, txStore, sealer)
	authService := services.NewAuthService(database.NewUserStore(db), database.NewSessionStore(db), database.NewCodeStore(db),
		tokens, services.AuthOptions{})

	h := &Handlers{
		Health:       NewHealthHandler(db),
		Auth:         NewAuthHandler(authService),
		Users:        NewUserHandler(authService),
		Transactions: NewTransactionHandler(services.NewTransactionService(txStore, composer, paginator)),
		Stats:        NewStatsHandler(services.NewStatsService(txStore, composer)),
		Filters:      NewFilterHandler(services.NewFilterService(database.NewFilterStore(db), composer)),
		RequireAuth:  middleware.NewAuth(authService, "").Middleware,
		RateLimit:    middleware.NewRateLimiter(600, 100).Middleware,
	}

	r := mux.NewRouter()
	h.RegisterRoutes(r)
	h.RegisterRoutes(r.PathPrefix("/api").Subrouter())
	return &testServer{router: r, db: db}
}

// do sends a JSON request, authenticated when token is not empty.
func (s *testServer) do(t *testing.T, method, url, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewBuffer(buf))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

// signUp creates an account and returns its session token.
func (s *testServer) signUp(t *testing.T, email string) string {
	t.Helper()
	rr := s.do(t, "POST", "/auth/signup", "", map[string]string{
		"name": "Test User", "email": email, "password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var res models.AuthResult
	decode(t, rr, &res)
	return res.Token
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}
