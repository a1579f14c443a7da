package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"expensetracker/backend/models"
)

// CodeStore persists pending email verification codes, one per address.
type CodeStore struct {
	db *DB
}

func NewCodeStore(db *DB) *CodeStore { return &CodeStore{db: db} }

// Put stores a fresh code for the email, replacing any pending one.
func (s *CodeStore) Put(ctx context.Context, c models.VerificationCode) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO verification_codes (email, code_hash, expires_at, attempts)
		VALUES (?, ?, ?, 0)
		ON CONFLICT (email) DO UPDATE
		SET code_hash = excluded.code_hash, expires_at = excluded.expires_at, attempts = 0
	`), c.Email, c.CodeHash, micros(c.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	return nil
}

func (s *CodeStore) Get(ctx context.Context, email string) (models.VerificationCode, error) {
	var c models.VerificationCode
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT email, code_hash, expires_at, attempts FROM verification_codes WHERE email = ?
	`), email).Scan(&c.Email, &c.CodeHash, &expiresAt, &c.Attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.VerificationCode{}, ErrNotFound
		}
		return models.VerificationCode{}, fmt.Errorf("failed to query verification code: %w", err)
	}
	c.ExpiresAt = fromMicros(expiresAt)
	return c, nil
}

// RecordAttempt counts a failed verification attempt.
func (s *CodeStore) RecordAttempt(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE verification_codes SET attempts = attempts + 1 WHERE email = ?
	`), email)
	if err != nil {
		return fmt.Errorf("failed to record verification attempt: %w", err)
	}
	return nil
}

// Delete consumes the code for the email.
func (s *CodeStore) Delete(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM verification_codes WHERE email = ?
	`), email)
	if err != nil {
		return fmt.Errorf("failed to delete verification code: %w", err)
	}
	return nil
}

func (s *CodeStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM verification_codes WHERE expires_at < ?
	`), micros(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired verification codes: %w", err)
	}
	return result.RowsAffected()
}
