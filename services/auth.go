package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"

	"expensetracker/backend/database"
	"expensetracker/backend/models"
	"expensetracker/backend/security"
	"expensetracker/backend/validation"
)

// MaxCodeAttempts is how many wrong guesses invalidate a pending code.
const MaxCodeAttempts = 5

type userStore interface {
	Create(ctx context.Context, u models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByFirebaseUID(ctx context.Context, uid string) (models.User, error)
	LinkFirebase(ctx context.Context, userID, uid string) error
}

type sessionStore interface {
	Create(ctx context.Context, sess models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
}

type codeStore interface {
	Put(ctx context.Context, c models.VerificationCode) error
	Get(ctx context.Context, email string) (models.VerificationCode, error)
	RecordAttempt(ctx context.Context, email string) error
	Delete(ctx context.Context, email string) error
}

// FirebaseVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthService runs the sign-in flows and issues session tokens.
type AuthService struct {
	users      userStore
	sessions   sessionStore
	codes      codeStore
	tokens     *security.TokenIssuer
	mailer     Mailer
	firebase   FirebaseVerifier
	sessionTTL time.Duration
	codeTTL    time.Duration
	now        func() time.Time
}

// AuthOptions configures an AuthService. Firebase may be nil, which disables
// third-party sign-in.
type AuthOptions struct {
	Mailer     Mailer
	Firebase   FirebaseVerifier
	SessionTTL time.Duration
	CodeTTL    time.Duration
}

func NewAuthService(users userStore, sessions sessionStore, codes codeStore, tokens *security.TokenIssuer, opts AuthOptions) *AuthService {
	if opts.Mailer == nil {
		opts.Mailer = LogMailer{}
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = 5 * time.Minute
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		codes:      codes,
		tokens:     tokens,
		mailer:     opts.Mailer,
		firebase:   opts.Firebase,
		sessionTTL: opts.SessionTTL,
		codeTTL:    opts.CodeTTL,
		now:        database.Now,
	}
}

// SignUp creates a password account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (models.AuthResult, error) {
	if err := validation.SignUp(name, email, password); err != nil {
		return models.AuthResult{}, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	u := models.User{
		ID:           uuid.NewString(),
		Email:        validation.NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return models.AuthResult{}, ErrEmailTaken
		}
		return models.AuthResult{}, storageErr("create user", err)
	}
	return s.startSession(ctx, u)
}

// SignIn checks an email and password.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (models.AuthResult, error) {
	if err := validation.SignIn(email, password); err != nil {
		return models.AuthResult{}, err
	}

	u, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.AuthResult{}, ErrInvalidCredentials
		}
		return models.AuthResult{}, storageErr("get user", err)
	}
	// Accounts created by code or Firebase sign-in have no password
	if u.PasswordHash == "" || !security.CheckPassword(u.PasswordHash, password) {
		return models.AuthResult{}, ErrInvalidCredentials
	}
	return s.startSession(ctx, u)
}

// SendCode issues a one-time sign-in code for email, replacing any pending one.
func (s *AuthService) SendCode(ctx context.Context, email string) error {
	if err := validation.Email(email); err != nil {
		return err
	}
	email = validation.NormalizeEmail(email)

	code, err := security.GenerateCode(validation.CodeLength)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	err = s.codes.Put(ctx, models.VerificationCode{
		Email:     email,
		CodeHash:  security.HashCode(email, code),
		ExpiresAt: s.now().Add(s.codeTTL),
	})
	if err != nil {
		return storageErr("store code", err)
	}

	if err := s.mailer.SendCode(ctx, email, code); err != nil {
		return fmt.Errorf("send code: %w", err)
	}
	return nil
}

// VerifyCode signs in with an emailed code, creating the account on first use.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (models.AuthResult, error) {
	if err := validation.Code(email, code); err != nil {
		return models.AuthResult{}, err
	}
	email = validation.NormalizeEmail(email)
	code = strings.TrimSpace(code)

	pending, err := s.codes.Get(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.AuthResult{}, ErrInvalidCode
		}
		return models.AuthResult{}, storageErr("get code", err)
	}

	if !s.now().Before(pending.ExpiresAt) || pending.Attempts >= MaxCodeAttempts {
		if err := s.codes.Delete(ctx, email); err != nil {
			return models.AuthResult{}, storageErr("delete code", err)
		}
		return models.AuthResult{}, ErrInvalidCode
	}

	if !security.CodeMatches(pending.CodeHash, email, code) {
		if err := s.codes.RecordAttempt(ctx, email); err != nil {
			return models.AuthResult{}, storageErr("record attempt", err)
		}
		return models.AuthResult{}, ErrInvalidCode
	}

	// Single use
	if err := s.codes.Delete(ctx, email); err != nil {
		return models.AuthResult{}, storageErr("delete code", err)
	}

	u, err := s.findOrCreate(ctx, email, nameFromEmail(email), "")
	if err != nil {
		return models.AuthResult{}, err
	}
	return s.startSession(ctx, u)
}

// SignInWithFirebase signs in with a Firebase ID token. Accounts are matched by
// Firebase UID, then by verified email, and created otherwise.
func (s *AuthService) SignInWithFirebase(ctx context.Context, idToken string) (models.AuthResult, error) {
	if s.firebase == nil {
		return models.AuthResult{}, ErrProviderUnavailable
	}
	if strings.TrimSpace(idToken) == "" {
		return models.AuthResult{}, &validation.FieldError{Field: "idToken", Message: "ID token is required"}
	}

	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		log.Printf("Error verifying Firebase ID token: %v", err)
		return models.AuthResult{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByFirebaseUID(ctx, token.UID)
	if err == nil {
		return s.startSession(ctx, u)
	}
	if !errors.Is(err, database.ErrNotFound) {
		return models.AuthResult{}, storageErr("get user", err)
	}

	// Unverified addresses never match or create an account
	email, _ := token.Claims["email"].(string)
	email = validation.NormalizeEmail(email)
	verified, _ := token.Claims["email_verified"].(bool)
	if email == "" || !verified {
		return models.AuthResult{}, ErrInvalidCredentials
	}
	name, _ := token.Claims["name"].(string)
	if strings.TrimSpace(name) == "" {
		name = nameFromEmail(email)
	}

	u, err = s.findOrCreate(ctx, email, name, token.UID)
	if err != nil {
		return models.AuthResult{}, err
	}
	if u.FirebaseUID == "" {
		if err := s.users.LinkFirebase(ctx, u.ID, token.UID); err != nil {
			return models.AuthResult{}, storageErr("link firebase account", err)
		}
		u.FirebaseUID = token.UID
	}
	return s.startSession(ctx, u)
}

// SignOut revokes a session. The token that referenced it stops working.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrUnauthenticated
	}
	if err := s.sessions.Revoke(ctx, sessionID, s.now()); err != nil {
		return storageErr("revoke session", err)
	}
	return nil
}

// Authenticate resolves a session token to its user and session IDs.
func (s *AuthService) Authenticate(ctx context.Context, token string) (userID, sessionID string, err error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return "", "", ErrUnauthenticated
	}

	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", "", ErrUnauthenticated
		}
		return "", "", storageErr("get session", err)
	}
	if sess.RevokedAt != nil || !s.now().Before(sess.ExpiresAt) || sess.UserID != claims.Subject {
		return "", "", ErrUnauthenticated
	}
	return sess.UserID, sess.ID, nil
}

// CurrentUser returns the account of an authenticated user.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, storageErr("get user", err)
	}
	return u, nil
}

func (s *AuthService) findOrCreate(ctx context.Context, email, name, firebaseUID string) (models.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return models.User{}, storageErr("get user", err)
	}

	u = models.User{
		ID:          uuid.NewString(),
		Email:       email,
		Name:        name,
		FirebaseUID: firebaseUID,
		CreatedAt:   s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, database.ErrConflict) {
			// Lost a race with another first sign-in for the same address
			u, err = s.users.GetByEmail(ctx, email)
			if err != nil {
				return models.User{}, storageErr("get user", err)
			}
			return u, nil
		}
		return models.User{}, storageErr("create user", err)
	}
	return u, nil
}

func (s *AuthService) startSession(ctx context.Context, u models.User) (models.AuthResult, error) {
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return models.AuthResult{}, storageErr("create session", err)
	}

	token, err := s.tokens.Issue(u.ID, sess.ID, sess.ExpiresAt)
	if err != nil {
		return models.AuthResult{}, err
	}
	return models.AuthResult{Token: token, ExpiresAt: sess.ExpiresAt, User: u}, nil
}

func nameFromEmail(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
