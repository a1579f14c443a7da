package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"expensetracker/backend/database"
	"expensetracker/backend/models"
	"expensetracker/backend/validation"
)

type transactionStore interface {
	transactionLister
	Insert(ctx context.Context, t models.Transaction) error
	Get(ctx context.Context, ownerID, id string) (models.Transaction, error)
	Update(ctx context.Context, t models.Transaction) error
	Delete(ctx context.Context, ownerID, id string) error
}

// TransactionService implements the transaction lifecycle and listing. Every
// operation takes the authenticated owner explicitly and never touches
// another owner's rows.
type TransactionService struct {
	store     transactionStore
	composer  *Composer
	paginator Paginator
	loc       *time.Location
	now       func() time.Time
}

func NewTransactionService(store transactionStore, composer *Composer, paginator Paginator) *TransactionService {
	return &TransactionService{
		store:     store,
		composer:  composer,
		paginator: paginator,
		loc:       composer.loc,
		now:       database.Now,
	}
}

// Create validates in and stores it as a new transaction of ownerID.
func (s *TransactionService) Create(ctx context.Context, ownerID string, in models.TransactionInput) (models.Transaction, error) {
	if ownerID == "" {
		return models.Transaction{}, ErrUnauthenticated
	}

	v, err := validation.Transaction(in)
	if err != nil {
		return models.Transaction{}, err
	}

	now := s.now()
	t := models.Transaction{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: now,
	}
	if err := s.apply(&t, v, now); err != nil {
		return models.Transaction{}, err
	}

	if err := s.store.Insert(ctx, t); err != nil {
		return models.Transaction{}, storageErr("create transaction", err)
	}
	return t, nil
}

// Update replaces the mutable fields of a transaction owned by ownerID.
func (s *TransactionService) Update(ctx context.Context, ownerID, id string, in models.TransactionInput) (models.Transaction, error) {
	if ownerID == "" {
		return models.Transaction{}, ErrUnauthenticated
	}

	v, err := validation.Transaction(in)
	if err != nil {
		return models.Transaction{}, err
	}

	t, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return models.Transaction{}, storageErr("get transaction", err)
	}
	if err := s.apply(&t, v, s.now()); err != nil {
		return models.Transaction{}, err
	}

	// A concurrent delete surfaces here as not found
	if err := s.store.Update(ctx, t); err != nil {
		return models.Transaction{}, storageErr("update transaction", err)
	}
	return t, nil
}

// Delete removes a transaction owned by ownerID. Deleting a missing or
// already deleted transaction returns ErrNotFound.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return ErrUnauthenticated
	}
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return storageErr("delete transaction", err)
	}
	return nil
}

// Get returns a transaction owned by ownerID.
func (s *TransactionService) Get(ctx context.Context, ownerID, id string) (models.Transaction, error) {
	if ownerID == "" {
		return models.Transaction{}, ErrUnauthenticated
	}
	t, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return models.Transaction{}, storageErr("get transaction", err)
	}
	return t, nil
}

// List returns one page of ownerID's transactions matching criteria, newest first.
func (s *TransactionService) List(ctx context.Context, ownerID string, criteria models.FilterCriteria, req models.PageRequest) (models.Page, error) {
	plan, err := s.composer.Resolve(ownerID, criteria)
	if err != nil {
		return models.Page{}, err
	}
	return s.paginator.Paginate(ctx, plan, req)
}

func (s *TransactionService) apply(t *models.Transaction, v validation.ValidTransaction, now time.Time) error {
	occurredAt, err := normalizeDate(v.Date, s.loc)
	if err != nil {
		return invalidDate("date")
	}

	t.Name = v.Name
	t.Amount = v.Amount
	t.Type = v.Type
	t.Date = v.Date
	t.Description = v.Description
	t.OccurredAt = occurredAt
	t.SearchBlob = searchBlob(v.Name, v.Description, v.Amount)
	t.UpdatedAt = now
	return nil
}

// searchBlob is the lower-cased text a search term is matched against.
func searchBlob(name, description string, amount float64) string {
	return strings.ToLower(name + " " + description + " " + strconv.FormatFloat(amount, 'f', -1, 64))
}
