package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/require"

	"expensetracker/backend/config"
	"expensetracker/backend/models"
	"expensetracker/backend/security"
	"expensetracker/backend/validation"
)

func TestSignUpAndSignIn(t *testing.T) {
	env := newTestEnv(t, config.PaginationOffset)
	ctx := context.Background()

	res, err := env.auth.SignUp(ctx, "Alice", "Alice@Example.com ", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, "alice@example.com", res.User.Email)

	userID, sessionID, err := env.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, userID)
	require.NotEmpty(t, sessionID)

	_, err = env.auth.SignUp(ctx, "Alice Again", "alice@example.com", "another password")
	require.ErrorIs(t, err, ErrEmailTaken)

	signedIn, err := env.auth.SignIn(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, res.User.ID, signedIn.User.ID)

	_, err = env.auth.SignIn(ctx, "alice@example.com", "wrong password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.SignIn(ctx, "nobody@example.com", "whatever123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	me, err := env.auth.CurrentUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "Alice", me.Name)
}

func TestPasswordsKeepSurroundingSpaces(t *testing.T) {
	env := newTestEnv(t, config.PaginationOffset)
	ctx := context.Background()

	res, err := env.auth.SignUp(ctx, "Alice", "alice@example.com", "  padded pass  ")
	require.NoError(t, err)

	_, err = env.auth.SignIn(ctx, "alice@example.com", "padded pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	signedIn, err := env.auth.SignIn(ctx, "alice@example.com", "  padded pass  ")
	require.NoError(t, err)
	require.Equal(t, res.User.ID, signedIn.User.ID)
}

func TestSignUpValidation(t *testing.T) {
	env := newTestEnv(t, config.PaginationOffset)
	ctx := context.Background()

	testCases := []struct {
		name, userName, email, password, field string
	}{
		{"short name", "Al", "a@example.com", "password1", "name"},
		{"bad email", "Alice", "not-an-email", "password1", "email"},
		{"short password", "Alice", "a@example.com", "short", "password"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.auth.SignUp(ctx, tc.userName, tc.email, tc.password)
			var fe *validation.FieldError
			require.ErrorAs(t, err, &fe)
			require.Equal(t, tc.field, fe.Field)
		})
	}
}

func TestSignOutRevokesSession(t *testing.T) {
	env := newTestEnv(t, config.PaginationOffset)
	ctx := context.Background()

	res, err := env.auth.SignUp(ctx, "Alice", "alice@example.com", "correct horse")
	require.NoError(t, err)
	_, sessionID, err := env.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, env.auth.SignOut(ctx, sessionID))
	_, _, err = env.auth.Authenticate(ctx, res.Token)
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, _, err = env.auth.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticateRejectsExpiredSession(t *testing.T) {
	env := newTestEnv(t, config.PaginationOffset)
	ctx := context.Background()

	res, err := env.auth.SignUp(ctx, "Alice", "alice@example.com", "correct horse")
	require.NoError(t, err)

	env.auth.now = func() time.Time { return res.ExpiresAt.Add(time.Second) }
	_, _, err = env.auth.Authenticate(ctx, res.Token)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCodeSignIn(t *testing.T) {
	env := newTestEnv(t, config.PaginationOffset)
	ctx := context.Background()

	require.NoError(t, env.auth.SendCode(ctx, "New.User@example.com"))
	code := env.mailer.codes["new.user@example.com"]
	require.Len(t, code, validation.CodeLength)

	res, err := env.auth.VerifyCode(ctx, "new.user@example.com", code)
	require.NoError(t, err)
	require.Equal(t, "new.user@example.com", res.User.Email)
	require.Equal(t, "new.user", res.User.Name)

	// single use
	_, err = env.auth.VerifyCode(ctx, "new.user@example.com", code)
	require.ErrorIs(t, err, ErrInvalidCode)

	// a second sign-in reuses the account
	require.NoError(t, env.auth.SendCode(ctx, "new.user@example.com"))
	again, err := env.auth.VerifyCode(ctx, "new.user@example.com", env.mailer.codes["new.user@example.com"])
	require.NoError(t, err)
	require.Equal(t, res.User.ID, again.User.ID)
}

func TestCodeAttemptsAndExpiry(t *testing.T) {
	env := newTestEnv(t, config.PaginationOffset)
	ctx := context.Background()
	email := "a@example.com"

	require.NoError(t, env.auth.SendCode(ctx, email))
	code := env.mailer.codes[email]
	wrong := "00000000"
	if code == wrong {
		wrong = "11111111"
	}

	for i := 0; i < MaxCodeAttempts; i++ {
		_, err := env.auth.VerifyCode(ctx, email, wrong)
		require.ErrorIs(t, err, ErrInvalidCode)
	}
	_, err := env.auth.VerifyCode(ctx, email, code)
	require.ErrorIs(t, err, ErrInvalidCode)

	require.NoError(t, env.auth.SendCode(ctx, email))
	code = env.mailer.codes[email]
	env.auth.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	_, err = env.auth.VerifyCode(ctx, email, code)
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = env.auth.VerifyCode(ctx, email, "123")
	var fe *validation.FieldError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "Code must be 8 digits long", fe.Message)
}

type fakeFirebase struct {
	tokens map[string]*auth.Token
}

func (f fakeFirebase) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	tok, ok := f.tokens[idToken]
	if !ok {
		return nil, errors.New("token rejected")
	}
	return tok, nil
}

func TestSignInWithFirebase(t *testing.T) {
	env := newTestEnv(t, config.PaginationOffset)
	ctx := context.Background()

	_, err := env.auth.SignInWithFirebase(ctx, "anything")
	require.ErrorIs(t, err, ErrProviderUnavailable)

	existing, err := env.auth.SignUp(ctx, "Alice", "alice@example.com", "correct horse")
	require.NoError(t, err)

	env.auth.firebase = fakeFirebase{tokens: map[string]*auth.Token{
		"alice-token": {UID: "fb-alice", Claims: map[string]interface{}{"email": "Alice@example.com", "email_verified": true, "name": "Alice G"}},
		"bob-token":   {UID: "fb-bob", Claims: map[string]interface{}{"email": "bob@example.com", "email_verified": true, "name": "Bob"}},
		"unverified":  {UID: "fb-other", Claims: map[string]interface{}{"email": "alice@example.com", "email_verified": false}},
		"no-claim":    {UID: "fb-other2", Claims: map[string]interface{}{"email": "alice@example.com"}},
	}}

	// an unverified address must not take over the password account
	_, err = env.auth.SignInWithFirebase(ctx, "unverified")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.SignInWithFirebase(ctx, "no-claim")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	u, err := env.auth.users.GetByID(ctx, existing.User.ID)
	require.NoError(t, err)
	require.Empty(t, u.FirebaseUID)

	res, err := env.auth.SignInWithFirebase(ctx, "alice-token")
	require.NoError(t, err)
	require.Equal(t, existing.User.ID, res.User.ID)

	// matched by UID from now on
	res, err = env.auth.SignInWithFirebase(ctx, "alice-token")
	require.NoError(t, err)
	require.Equal(t, existing.User.ID, res.User.ID)

	bob, err := env.auth.SignInWithFirebase(ctx, "bob-token")
	require.NoError(t, err)
	require.Equal(t, "Bob", bob.User.Name)
	require.NotEqual(t, existing.User.ID, bob.User.ID)

	_, err = env.auth.SignInWithFirebase(ctx, "forged")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSeedDemoData(t *testing.T) {
	env := newTestEnv(t, config.PaginationOffset)
	ctx := context.Background()

	n, err := SeedDemoData(ctx, env.auth.users, env.transactions, "demo@example.com")
	require.NoError(t, err)
	require.Equal(t, len(demoTransactions), n)

	u, err := env.auth.users.GetByEmail(ctx, "demo@example.com")
	require.NoError(t, err)

	page, err := env.transactions.List(ctx, u.ID, models.FilterCriteria{}, models.PageRequest{PageSize: 100})
	require.NoError(t, err)
	require.Equal(t, len(demoTransactions), *page.Total)
}

func TestTokenForUnknownSession(t *testing.T) {
	env := newTestEnv(t, config.PaginationOffset)

	tokens, err := security.NewTokenIssuer("test-secret")
	require.NoError(t, err)
	token, err := tokens.Issue("user", "no-such-session", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, _, err = env.auth.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrUnauthenticated)
}
