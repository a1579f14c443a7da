package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"expensetracker/backend/models"
)

// FilterStore persists saved filter presets. Each user has at most one default.
type FilterStore struct {
	db *DB
}

func NewFilterStore(db *DB) *FilterStore { return &FilterStore{db: db} }

const filterColumns = `id, name, user_id, criteria, is_default, created_at, updated_at`

func (s *FilterStore) Create(ctx context.Context, f models.SavedFilter) error {
	criteria, err := json.Marshal(f.Criteria)
	if err != nil {
		return fmt.Errorf("failed to encode filter criteria: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if f.IsDefault {
			if err := s.clearDefault(ctx, tx, f.UserID); err != nil {
				return err
			}
		}

		_, err := tx.ExecContext(ctx, s.db.Rebind(`
			INSERT INTO saved_filters (`+filterColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`), f.ID, f.Name, f.UserID, string(criteria), f.IsDefault, micros(f.CreatedAt), micros(f.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert saved filter: %w", err)
		}
		return nil
	})
}

// List returns a user's saved filters, defaults first.
func (s *FilterStore) List(ctx context.Context, userID string) ([]models.SavedFilter, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT `+filterColumns+`
		FROM saved_filters
		WHERE user_id = ?
		ORDER BY is_default DESC, name ASC
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved filters: %w", err)
	}
	defer rows.Close()

	filters := []models.SavedFilter{}
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved filter: %w", err)
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

func (s *FilterStore) Get(ctx context.Context, userID, id string) (models.SavedFilter, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT `+filterColumns+` FROM saved_filters WHERE id = ? AND user_id = ?
	`), id, userID)

	f, err := scanFilter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SavedFilter{}, ErrNotFound
		}
		return models.SavedFilter{}, fmt.Errorf("failed to query saved filter: %w", err)
	}
	return f, nil
}

func (s *FilterStore) Update(ctx context.Context, f models.SavedFilter) error {
	criteria, err := json.Marshal(f.Criteria)
	if err != nil {
		return fmt.Errorf("failed to encode filter criteria: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if f.IsDefault {
			if err := s.clearDefault(ctx, tx, f.UserID); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, s.db.Rebind(`
			UPDATE saved_filters
			SET name = ?, criteria = ?, is_default = ?, updated_at = ?
			WHERE id = ? AND user_id = ?
		`), f.Name, string(criteria), f.IsDefault, micros(f.UpdatedAt), f.ID, f.UserID)
		if err != nil {
			return fmt.Errorf("failed to update saved filter: %w", err)
		}
		return expectOneRow(result)
	})
}

func (s *FilterStore) Delete(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM saved_filters WHERE id = ? AND user_id = ?
	`), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete saved filter: %w", err)
	}
	return expectOneRow(result)
}

func (s *FilterStore) clearDefault(ctx context.Context, tx *sql.Tx, userID string) error {
	_, err := tx.ExecContext(ctx, s.db.Rebind(`
		UPDATE saved_filters SET is_default = ? WHERE user_id = ? AND is_default = ?
	`), false, userID, true)
	if err != nil {
		return fmt.Errorf("failed to update existing default filters: %w", err)
	}
	return nil
}

// inTx runs fn in a transaction, rolling back when it returns an error.
func (s *FilterStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func scanFilter(row rowScanner) (models.SavedFilter, error) {
	var f models.SavedFilter
	var criteria string
	var createdAt, updatedAt int64
	if err := row.Scan(&f.ID, &f.Name, &f.UserID, &criteria, &f.IsDefault, &createdAt, &updatedAt); err != nil {
		return models.SavedFilter{}, err
	}
	if err := json.Unmarshal([]byte(criteria), &f.Criteria); err != nil {
		return models.SavedFilter{}, fmt.Errorf("failed to decode filter criteria: %w", err)
	}
	f.CreatedAt = fromMicros(createdAt)
	f.UpdatedAt = fromMicros(updatedAt)
	return f, nil
}
