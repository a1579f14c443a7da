package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"expensetracker/backend/models"
)

// SessionStore persists signed-in sessions.
type SessionStore struct {
	db *DB
}

func NewSessionStore(db *DB) *SessionStore { return &SessionStore{db: db} }

func (s *SessionStore) Create(ctx context.Context, sess models.Session) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)
	`), sess.ID, sess.UserID, micros(sess.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (models.Session, error) {
	var sess models.Session
	var expiresAt int64
	var revokedAt sql.NullInt64
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT id, user_id, expires_at, revoked_at FROM sessions WHERE id = ?
	`), id).Scan(&sess.ID, &sess.UserID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, ErrNotFound
		}
		return models.Session{}, fmt.Errorf("failed to query session: %w", err)
	}

	sess.ExpiresAt = fromMicros(expiresAt)
	if revokedAt.Valid {
		t := fromMicros(revokedAt.Int64)
		sess.RevokedAt = &t
	}
	return sess, nil
}

// Revoke marks a session as signed out. Revoking twice is not an error.
func (s *SessionStore) Revoke(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL
	`), micros(at), id)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions that expired before now and returns how many were removed.
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM sessions WHERE expires_at < ?
	`), micros(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
