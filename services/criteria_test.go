package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"expensetracker/backend/models"
)

func TestResolveChoosesStrategy(t *testing.T) {
	c := NewComposer(time.UTC)

	testCases := []struct {
		name     string
		criteria models.FilterCriteria
		strategy Strategy
		index    string
	}{
		{"empty", models.FilterCriteria{}, StrategyIndexScan, IndexOwnerDate},
		{"all types", models.FilterCriteria{Type: models.TypeFilterAll}, StrategyIndexScan, IndexOwnerDate},
		{"one type", models.FilterCriteria{Type: models.TypeIncome}, StrategyIndexScan, IndexOwnerTypeDate},
		{"date range", models.FilterCriteria{StartDate: "2024-01-01"}, StrategyIndexScan, IndexOwnerDate},
		{"search", models.FilterCriteria{Search: "Coffee", Type: models.TypeExpense}, StrategySearch, ""},
		{"blank search", models.FilterCriteria{Search: "  "}, StrategyIndexScan, IndexOwnerDate},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := c.Resolve("alice", tc.criteria)
			require.NoError(t, err)
			require.Equal(t, tc.strategy, plan.Strategy)
			require.Equal(t, tc.index, plan.Index)
			require.Equal(t, tc.index, plan.Query.Index)
			require.Equal(t, "alice", plan.Query.OwnerID)
		})
	}
}

func TestResolveDateBounds(t *testing.T) {
	c := NewComposer(time.UTC)

	plan, err := c.Resolve("alice", models.FilterCriteria{Date: "2024-03-15"})
	require.NoError(t, err)
	require.Equal(t, "2024-03-15T00:00:00.000Z", plan.Query.From)
	require.Equal(t, "2024-03-16T00:00:00.000Z", plan.Query.Before)

	plan, err = c.Resolve("alice", models.FilterCriteria{StartDate: "2024-03-01", EndDate: "2024-03-31"})
	require.NoError(t, err)
	require.Equal(t, "2024-03-01T00:00:00.000Z", plan.Query.From)
	require.Equal(t, "2024-04-01T00:00:00.000Z", plan.Query.Before)

	plan, err = c.Resolve("alice", models.FilterCriteria{EndDate: "2024-03-31T10:00:00Z"})
	require.NoError(t, err)
	require.Empty(t, plan.Query.From)
	require.Equal(t, "2024-03-31T10:00:00.001Z", plan.Query.Before)

	_, err = c.Resolve("alice", models.FilterCriteria{Date: "2024-03-15", StartDate: "2024-03-01"})
	require.Error(t, err)
}

func TestResolveDayUsesTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	c := NewComposer(loc)

	plan, err := c.Resolve("alice", models.FilterCriteria{Date: "2024-07-04"})
	require.NoError(t, err)
	require.Equal(t, "2024-07-04T04:00:00.000Z", plan.Query.From)
	require.Equal(t, "2024-07-05T04:00:00.000Z", plan.Query.Before)
}

func TestResolveRequiresOwner(t *testing.T) {
	_, err := NewComposer(time.UTC).Resolve("", models.FilterCriteria{})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestFingerprintTracksOwnerAndCriteria(t *testing.T) {
	c := NewComposer(time.UTC)

	a, err := c.Resolve("alice", models.FilterCriteria{Search: "Coffee"})
	require.NoError(t, err)
	same, err := c.Resolve("alice", models.FilterCriteria{Search: " coffee "})
	require.NoError(t, err)
	otherOwner, err := c.Resolve("bob", models.FilterCriteria{Search: "Coffee"})
	require.NoError(t, err)
	otherType, err := c.Resolve("alice", models.FilterCriteria{Search: "Coffee", Type: models.TypeIncome})
	require.NoError(t, err)

	require.Equal(t, a.Fingerprint(), same.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), otherOwner.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), otherType.Fingerprint())
}
