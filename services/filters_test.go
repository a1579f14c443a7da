package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"expensetracker/backend/config"
	"expensetracker/backend/models"
	"expensetracker/backend/validation"
)

func TestSavedFilters(t *testing.T) {
	env := newTestEnv(t, config.PaginationOffset)
	ctx := context.Background()

	alice, err := env.auth.SignUp(ctx, "Alice", "alice@example.com", "correct horse")
	require.NoError(t, err)
	bob, err := env.auth.SignUp(ctx, "Bobby", "bob@example.com", "correct horse")
	require.NoError(t, err)
	aliceID, bobID := alice.User.ID, bob.User.ID

	_, err = env.filters.Default(ctx, aliceID)
	require.ErrorIs(t, err, ErrNotFound)

	groceries, err := env.filters.Create(ctx, aliceID, SavedFilterInput{
		Name:      " Groceries ",
		Criteria:  models.FilterCriteria{Search: "grocer", Type: models.TypeExpense},
		IsDefault: true,
	})
	require.NoError(t, err)
	require.Equal(t, "Groceries", groceries.Name)

	march, err := env.filters.Create(ctx, aliceID, SavedFilterInput{
		Name:     "March",
		Criteria: models.FilterCriteria{StartDate: "2024-03-01", EndDate: "2024-03-31"},
	})
	require.NoError(t, err)

	def, err := env.filters.Default(ctx, aliceID)
	require.NoError(t, err)
	require.Equal(t, groceries.ID, def.ID)

	// switching the default clears the old one
	_, err = env.filters.Update(ctx, aliceID, march.ID, SavedFilterInput{Name: "March", Criteria: march.Criteria, IsDefault: true})
	require.NoError(t, err)
	def, err = env.filters.Default(ctx, aliceID)
	require.NoError(t, err)
	require.Equal(t, march.ID, def.ID)

	list, err := env.filters.List(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = env.filters.List(ctx, bobID)
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = env.filters.Get(ctx, bobID, march.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, env.filters.Delete(ctx, bobID, march.ID), ErrNotFound)

	require.NoError(t, env.filters.Delete(ctx, aliceID, march.ID))
	require.ErrorIs(t, env.filters.Delete(ctx, aliceID, march.ID), ErrNotFound)
}

func TestSavedFilterValidation(t *testing.T) {
	env := newTestEnv(t, config.PaginationOffset)
	ctx := context.Background()

	_, err := env.filters.Create(ctx, "", SavedFilterInput{Name: "x"})
	require.ErrorIs(t, err, ErrUnauthenticated)

	var fe *validation.FieldError
	_, err = env.filters.Create(ctx, "alice", SavedFilterInput{Name: "  "})
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "name", fe.Field)

	_, err = env.filters.Create(ctx, "alice", SavedFilterInput{Name: "Bad", Criteria: models.FilterCriteria{Type: "gift"}})
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "criteria.type", fe.Field)
}
