package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"expensetracker/backend/models"
)

// UserStore persists user accounts.
type UserStore struct {
	db *DB
}

func NewUserStore(db *DB) *UserStore { return &UserStore{db: db} }

const userColumns = `id, email, name, password_hash, COALESCE(firebase_uid, ''), created_at`

// Create inserts a user. A duplicate email or Firebase UID yields ErrConflict.
func (s *UserStore) Create(ctx context.Context, u models.User) error {
	var firebaseUID any
	if u.FirebaseUID != "" {
		firebaseUID = u.FirebaseUID
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO users (id, email, name, password_hash, firebase_uid, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), u.ID, u.Email, u.Name, u.PasswordHash, firebaseUID, micros(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.getBy(ctx, "id", id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.getBy(ctx, "email", email)
}

func (s *UserStore) GetByFirebaseUID(ctx context.Context, uid string) (models.User, error) {
	return s.getBy(ctx, "firebase_uid", uid)
}

// LinkFirebase attaches a Firebase UID to an existing account.
func (s *UserStore) LinkFirebase(ctx context.Context, userID, uid string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE users SET firebase_uid = ? WHERE id = ?
	`), uid, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to link firebase account: %w", err)
	}
	return expectOneRow(result)
}

// column is always one of the literals above, never user input.
func (s *UserStore) getBy(ctx context.Context, column, value string) (models.User, error) {
	var u models.User
	var createdAt int64
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT `+userColumns+` FROM users WHERE `+column+` = ?
	`), value).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.FirebaseUID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	u.CreatedAt = fromMicros(createdAt)
	return u, nil
}
