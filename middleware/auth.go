package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"expensetracker/backend/config"
	"expensetracker/backend/services"
)

// Define context keys
type contextKey string

const UserIDKey contextKey = "user_id"
const SessionIDKey contextKey = "session_id"

// Authenticator resolves a session token to its user and session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (userID, sessionID string, err error)
}

// InitializeFirebase creates a Firebase Auth client from the configured service
// account. It returns a nil client when no credentials are configured.
func InitializeFirebase(ctx context.Context, cfg config.FirebaseConfig) (*auth.Client, error) {
	log.Println("Starting Firebase initialization...")

	var credentials []byte
	switch {
	case cfg.CredentialsJSON != "":
		log.Println("Using JSON Firebase credentials from configuration")
		credentials = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsBase64 != "":
		log.Println("Using base64-encoded Firebase credentials from configuration")
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsBase64)
		if err != nil {
			log.Printf("Error decoding base64 Firebase credentials: %v", err)
			return nil, err
		}
		credentials = decoded
	default:
		log.Println("No Firebase credentials configured, third-party sign-in disabled")
		return nil, nil
	}

	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsJSON(credentials))
	if err != nil {
		log.Printf("Error initializing Firebase app: %v", err)
		return nil, err
	}

	client, err := app.Auth(ctx)
	if err != nil {
		log.Printf("Error getting Firebase Auth client: %v", err)
		return nil, err
	}

	log.Println("Firebase Admin SDK initialized successfully")
	return client, nil
}

// Auth resolves the session token of each request into the request context.
type Auth struct {
	authenticator Authenticator
	devUser       string
}

// NewAuth creates the middleware. When devUser is set, requests without an
// Authorization header run as that user; this is for local development only.
func NewAuth(authenticator Authenticator, devUser string) *Auth {
	if devUser != "" {
		log.Printf("Warning: unauthenticated requests will run as development user %s", devUser)
	}
	return &Auth{authenticator: authenticator, devUser: devUser}
}

// Middleware rejects requests without a valid session with 401.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for OPTIONS requests (CORS preflight)
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" && a.devUser != "" {
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), a.devUser)))
			return
		}

		token := extractToken(authHeader)
		if token == "" {
			writeUnauthenticated(w)
			return
		}

		userID, sessionID, err := a.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				log.Printf("Error verifying session token: %v", err)
			}
			writeUnauthenticated(w)
			return
		}

		ctx := WithUserID(r.Context(), userID)
		ctx = context.WithValue(ctx, SessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeUnauthenticated sends the client back to the sign-in page.
func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":    "unauthenticated",
		"redirect": "/sign-in",
	})
}

// extractToken gets the token from the Authorization header
func extractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, "Bearer ")
	if len(parts) != 2 {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// WithUserID stores the authenticated user ID in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserIDFromContext retrieves the user ID from the request context
func GetUserIDFromContext(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetSessionIDFromContext retrieves the session ID from the request context.
// It is empty for the development user.
func GetSessionIDFromContext(r *http.Request) string {
	sessionID, _ := r.Context().Value(SessionIDKey).(string)
	return sessionID
}
