package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"expensetracker/backend/database"
	"expensetracker/backend/models"
	"expensetracker/backend/validation"
)

type filterStore interface {
	Create(ctx context.Context, f models.SavedFilter) error
	List(ctx context.Context, userID string) ([]models.SavedFilter, error)
	Get(ctx context.Context, userID, id string) (models.SavedFilter, error)
	Update(ctx context.Context, f models.SavedFilter) error
	Delete(ctx context.Context, userID, id string) error
}

// SavedFilterInput is a named filter preset as submitted by a client.
type SavedFilterInput struct {
	Name      string                `json:"name"`
	Criteria  models.FilterCriteria `json:"criteria"`
	IsDefault bool                  `json:"isDefault"`
}

// FilterService manages a user's saved filter presets.
type FilterService struct {
	store filterStore
	loc   *time.Location
	now   func() time.Time
}

func NewFilterService(store filterStore, composer *Composer) *FilterService {
	return &FilterService{store: store, loc: composer.loc, now: database.Now}
}

// Create saves a new preset. Marking it default clears the user's previous default.
func (s *FilterService) Create(ctx context.Context, userID string, in SavedFilterInput) (models.SavedFilter, error) {
	if userID == "" {
		return models.SavedFilter{}, ErrUnauthenticated
	}
	if err := s.validate(&in); err != nil {
		return models.SavedFilter{}, err
	}

	now := s.now()
	f := models.SavedFilter{
		ID:        uuid.NewString(),
		Name:      in.Name,
		UserID:    userID,
		Criteria:  in.Criteria,
		IsDefault: in.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, f); err != nil {
		return models.SavedFilter{}, storageErr("create saved filter", err)
	}
	return f, nil
}

// List returns the user's presets, the default first.
func (s *FilterService) List(ctx context.Context, userID string) ([]models.SavedFilter, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	filters, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, storageErr("list saved filters", err)
	}
	return filters, nil
}

// Default returns the user's default preset, or ErrNotFound when none is set.
func (s *FilterService) Default(ctx context.Context, userID string) (models.SavedFilter, error) {
	filters, err := s.List(ctx, userID)
	if err != nil {
		return models.SavedFilter{}, err
	}
	for _, f := range filters {
		if f.IsDefault {
			return f, nil
		}
	}
	return models.SavedFilter{}, ErrNotFound
}

func (s *FilterService) Get(ctx context.Context, userID, id string) (models.SavedFilter, error) {
	if userID == "" {
		return models.SavedFilter{}, ErrUnauthenticated
	}
	f, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return models.SavedFilter{}, storageErr("get saved filter", err)
	}
	return f, nil
}

func (s *FilterService) Update(ctx context.Context, userID, id string, in SavedFilterInput) (models.SavedFilter, error) {
	if userID == "" {
		return models.SavedFilter{}, ErrUnauthenticated
	}
	if err := s.validate(&in); err != nil {
		return models.SavedFilter{}, err
	}

	f, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return models.SavedFilter{}, storageErr("get saved filter", err)
	}
	f.Name = in.Name
	f.Criteria = in.Criteria
	f.IsDefault = in.IsDefault
	f.UpdatedAt = s.now()

	if err := s.store.Update(ctx, f); err != nil {
		return models.SavedFilter{}, storageErr("update saved filter", err)
	}
	return f, nil
}

func (s *FilterService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return storageErr("delete saved filter", err)
	}
	return nil
}

// validate trims the name and checks the criteria parse the same way a listing would.
func (s *FilterService) validate(in *SavedFilterInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return &validation.FieldError{Field: "name", Message: "Name is required"}
	}
	if _, err := ParseCriteria(in.Criteria, s.loc); err != nil {
		var fe *validation.FieldError
		if errors.As(err, &fe) {
			return &validation.FieldError{Field: "criteria." + fe.Field, Message: fe.Message}
		}
		return err
	}
	return nil
}
