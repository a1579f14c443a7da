package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"expensetracker/backend/config"
	"expensetracker/backend/database"
	"expensetracker/backend/migrations"
	"expensetracker/backend/models"
	"expensetracker/backend/security"
)

type testEnv struct {
	db           *database.DB
	composer     *Composer
	transactions *TransactionService
	stats        *StatsService
	filters      *FilterService
	auth         *AuthService
	mailer       *captureMailer
}

type captureMailer struct {
	codes map[string]string
}

func (m *captureMailer) SendCode(ctx context.Context, email, code string) error {
	m.codes[email] = code
	return nil
}

func newTestEnv(t *testing.T, mode string) *testEnv {
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
	composer := NewComposer(time.UTC)
	paginator := NewPaginator(config.PaginationConfig{Mode: mode, DefaultPageSize: 10, MaxPageSize: 100}, txStore, sealer)
	mailer := &captureMailer{codes: map[string]string{}}

	return &testEnv{
		db:           db,
		composer:     composer,
		transactions: NewTransactionService(txStore, composer, paginator),
		stats:        NewStatsService(txStore, composer),
		filters:      NewFilterService(database.NewFilterStore(db), composer),
		auth: NewAuthService(database.NewUserStore(db), database.NewSessionStore(db), database.NewCodeStore(db), tokens,
			AuthOptions{Mailer: mailer}),
		mailer: mailer,
	}
}

func description(s string) *string { return &s }

func input(name string, amount float64, typ, date string) models.TransactionInput {
	return models.TransactionInput{Name: name, Amount: models.Amount(amount), Type: typ, Date: date}
}

func mustCreate(t *testing.T, s *TransactionService, owner string, in models.TransactionInput) models.Transaction {
	t.Helper()
	tx, err := s.Create(context.Background(), owner, in)
	require.NoError(t, err)
	return tx
}

func transactionIDs(ts []models.Transaction) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}
