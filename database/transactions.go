package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"expensetracker/backend/models"
)

// Owner-leading listing indexes from the schema.
const (
	IndexOwnerDate     = "idx_transactions_owner_date"
	IndexOwnerTypeDate = "idx_transactions_owner_type_date"
)

// TransactionQuery is a compiled listing request: every field but OwnerID is optional.
type TransactionQuery struct {
	OwnerID string
	Type    string
	Search  string // lower-cased substring matched against search_blob
	From    string // inclusive lower bound on occurred_at
	Before  string // exclusive upper bound on occurred_at
	// Index pins the scan to one of the listing indexes on sqlite. Postgres plans on its own.
	Index string `json:"-"`
}

// Position is the keyset of a row in listing order.
type Position struct {
	OccurredAt string `json:"o"`
	CreatedAt  int64  `json:"c"`
	ID         string `json:"i"`
}

// PositionOf returns the keyset position of t.
func PositionOf(t models.Transaction) Position {
	return Position{OccurredAt: t.OccurredAt, CreatedAt: micros(t.CreatedAt), ID: t.ID}
}

// TransactionStore persists transactions.
type TransactionStore struct {
	db *DB
}

func NewTransactionStore(db *DB) *TransactionStore { return &TransactionStore{db: db} }

const transactionColumns = `id, owner_id, name, amount, type, date, occurred_at, description, search_blob, created_at, updated_at`

const listingOrder = ` ORDER BY occurred_at DESC, created_at DESC, id DESC`

// source is the FROM target for q, with an index hint where sqlite supports one.
func (s *TransactionStore) source(q TransactionQuery) string {
	if s.db.Driver == "sqlite3" && (q.Index == IndexOwnerDate || q.Index == IndexOwnerTypeDate) {
		return `transactions INDEXED BY ` + q.Index
	}
	return `transactions`
}

func (s *TransactionStore) Insert(ctx context.Context, t models.Transaction) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), t.ID, t.OwnerID, t.Name, t.Amount, t.Type, t.Date, t.OccurredAt, t.Description, t.SearchBlob,
		micros(t.CreatedAt), micros(t.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// Get returns the transaction with id owned by ownerID.
func (s *TransactionStore) Get(ctx context.Context, ownerID, id string) (models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ? AND owner_id = ?
	`), id, ownerID)

	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transaction{}, ErrNotFound
		}
		return models.Transaction{}, fmt.Errorf("failed to query transaction: %w", err)
	}
	return t, nil
}

// Update replaces the mutable fields of a transaction owned by t.OwnerID.
func (s *TransactionStore) Update(ctx context.Context, t models.Transaction) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE transactions
		SET name = ?, amount = ?, type = ?, date = ?, occurred_at = ?, description = ?, search_blob = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`), t.Name, t.Amount, t.Type, t.Date, t.OccurredAt, t.Description, t.SearchBlob, micros(t.UpdatedAt),
		t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return expectOneRow(result)
}

// Delete removes a transaction owned by ownerID.
func (s *TransactionStore) Delete(ctx context.Context, ownerID, id string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM transactions WHERE id = ? AND owner_id = ?
	`), id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return expectOneRow(result)
}

// Count returns the number of transactions matching q.
func (s *TransactionStore) Count(ctx context.Context, q TransactionQuery) (int, error) {
	where, args := q.where()

	var n int
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT COUNT(*) FROM `+s.source(q)+` WHERE `+where), args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

// List returns up to limit transactions matching q, newest first. Rows start
// after the keyset position when after is set, otherwise after skipping offset rows.
func (s *TransactionStore) List(ctx context.Context, q TransactionQuery, after *Position, offset, limit int) ([]models.Transaction, error) {
	where, args := q.where()
	if after != nil {
		where += ` AND (occurred_at < ? OR (occurred_at = ? AND (created_at < ? OR (created_at = ? AND id < ?))))`
		args = append(args, after.OccurredAt, after.OccurredAt, after.CreatedAt, after.CreatedAt, after.ID)
	}

	query := `SELECT ` + transactionColumns + ` FROM ` + s.source(q) + ` WHERE ` + where + listingOrder + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return transactions, nil
}

// TotalsByType sums amounts per type for transactions matching q.
func (s *TransactionStore) TotalsByType(ctx context.Context, q TransactionQuery) ([]models.TypeTotal, error) {
	where, args := q.where()

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT type, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE `+where+`
		GROUP BY type
	`), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions: %w", err)
	}
	defer rows.Close()

	var totals []models.TypeTotal
	for rows.Next() {
		var tt models.TypeTotal
		if err := rows.Scan(&tt.Type, &tt.Total); err != nil {
			return nil, fmt.Errorf("failed to scan total: %w", err)
		}
		totals = append(totals, tt)
	}
	return totals, rows.Err()
}

// AmountRow is the slice of a transaction needed for time-bucketed reports.
type AmountRow struct {
	OccurredAt string
	Type       string
	Amount     float64
}

// Amounts returns the date, type and amount of every transaction matching q, oldest first.
func (s *TransactionStore) Amounts(ctx context.Context, q TransactionQuery) ([]AmountRow, error) {
	where, args := q.where()

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT occurred_at, type, amount
		FROM transactions
		WHERE `+where+`
		ORDER BY occurred_at ASC
	`), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query amounts: %w", err)
	}
	defer rows.Close()

	var out []AmountRow
	for rows.Next() {
		var r AmountRow
		if err := rows.Scan(&r.OccurredAt, &r.Type, &r.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan amount: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q TransactionQuery) where() (string, []any) {
	clauses := []string{"owner_id = ?"}
	args := []any{q.OwnerID}

	if q.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, q.Type)
	}
	if q.Search != "" {
		clauses = append(clauses, `search_blob LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(q.Search)+"%")
	}
	if q.From != "" {
		clauses = append(clauses, "occurred_at >= ?")
		args = append(args, q.From)
	}
	if q.Before != "" {
		clauses = append(clauses, "occurred_at < ?")
		args = append(args, q.Before)
	}
	return strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var t models.Transaction
	var createdAt, updatedAt int64
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Amount, &t.Type, &t.Date, &t.OccurredAt,
		&t.Description, &t.SearchBlob, &createdAt, &updatedAt)
	if err != nil {
		return models.Transaction{}, err
	}
	t.CreatedAt = fromMicros(createdAt)
	t.UpdatedAt = fromMicros(updatedAt)
	return t, nil
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Now returns the current UTC time at the microsecond precision the database stores.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
