package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"expensetracker/backend/config"
	"expensetracker/backend/database"
	"expensetracker/backend/handlers"
	"expensetracker/backend/middleware"
	"expensetracker/backend/migrations"
	"expensetracker/backend/security"
	"expensetracker/backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := migrations.RunMigrations(db.DB, db.Driver); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if cfg.Security.EncryptionKey == "" {
		log.Println("Warning: ENCRYPTION_KEY not set, cursors will not survive a restart")
	}
	sealer, err := security.NewSealer(cfg.Security.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize encryption: %v", err)
	}

	tokens, err := security.NewTokenIssuer(cfg.Auth.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to initialize session tokens: %v", err)
	}

	// Initialize Firebase Admin SDK
	log.Println("Initializing Firebase Admin SDK...")
	firebaseAuth, err := middleware.InitializeFirebase(ctx, cfg.Firebase)
	if err != nil {
		log.Printf("Warning: Failed to initialize Firebase: %v", err)
		log.Println("Firebase sign-in will be disabled!")
	}

	authOptions := services.AuthOptions{
		Mailer:     services.LogMailer{},
		SessionTTL: cfg.Auth.SessionTTL,
		CodeTTL:    cfg.Auth.OTPTTL,
	}
	devUser := cfg.Auth.DevUser
	if firebaseAuth != nil {
		authOptions.Firebase = firebaseAuth
		devUser = ""
	}

	loc := cfg.App.Location()
	txStore := database.NewTransactionStore(db)
	sessions := database.NewSessionStore(db)
	codes := database.NewCodeStore(db)
	composer := services.NewComposer(loc)
	authService := services.NewAuthService(database.NewUserStore(db), sessions, codes, tokens, authOptions)

	log.Printf("Listing transactions with %s pagination", cfg.Pagination.Mode)
	paginator := services.NewPaginator(cfg.Pagination, txStore, sealer)

	h := &handlers.Handlers{
		Health:       handlers.NewHealthHandler(db),
		Auth:         handlers.NewAuthHandler(authService),
		Users:        handlers.NewUserHandler(authService),
		Transactions: handlers.NewTransactionHandler(services.NewTransactionService(txStore, composer, paginator)),
		Stats:        handlers.NewStatsHandler(services.NewStatsService(txStore, composer)),
		Filters:      handlers.NewFilterHandler(services.NewFilterService(database.NewFilterStore(db), composer)),
		RequireAuth:  middleware.NewAuth(authService, devUser).Middleware,
		RateLimit:    middleware.NewRateLimiter(20, 10, cfg.Server.TrustedProxies...).Middleware,
	}

	// Create router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)

	// Register routes with both direct paths and /api prefix to maintain compatibility
	h.RegisterRoutes(r)
	h.RegisterRoutes(r.PathPrefix("/api").Subrouter())

	services.NewScheduler(sessions, codes, cfg.Scheduler.CleanupInterval).Start(ctx)

	srv := &http.Server{
		// CORS wraps the router so preflights for any route are answered
		Handler:      middleware.CORS(cfg.CORS.AllowedOrigins)(r),
		Addr:         ":" + cfg.Server.Port,
		WriteTimeout: cfg.Server.WriteTimeout,
		ReadTimeout:  cfg.Server.ReadTimeout,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	// Start the server
	log.Printf("Starting server on port %s...", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
