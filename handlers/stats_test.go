package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"expensetracker/backend/config"
	"expensetracker/backend/models"
	"expensetracker/backend/services"
)

func TestStatsEndpoints(t *testing.T) {
	s := newTestServer(t, config.PaginationOffset)
	token := s.signUp(t, "alice@example.com")

	for _, body := range []map[string]any{
		{"name": "Salary", "amount": 100, "type": "income", "date": "2024-03-01"},
		{"name": "Groceries", "amount": 40, "type": "expense", "date": "2024-03-05"},
		{"name": "Refund", "amount": 60, "type": "income", "date": "2024-03-20"},
	} {
		require.Equal(t, http.StatusCreated, s.do(t, "POST", "/transactions", token, body).Code)
	}

	rr := s.do(t, "GET", "/stats?startDate=2024-03-01&endDate=2024-03-31", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stats models.Stats
	decode(t, rr, &stats)
	require.Equal(t, 160.0, stats.TotalIncome)
	require.Equal(t, 40.0, stats.TotalExpense)
	require.Equal(t, 120.0, stats.Balance)
	require.Equal(t, 80.0, stats.IncomePercentage)
	require.Equal(t, 20.0, stats.ExpensePercentage)

	rr = s.do(t, "GET", "/stats/recent?startDate=2024-03-01&endDate=2024-03-31&limit=2", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var recent []models.Transaction
	decode(t, rr, &recent)
	require.Len(t, recent, 2)
	require.Equal(t, "Refund", recent[0].Name)

	rr = s.do(t, "GET", "/stats/monthly?startDate=2024-02-01&endDate=2024-03-31", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var monthly []models.MonthlyTotal
	decode(t, rr, &monthly)
	require.Equal(t, []models.MonthlyTotal{
		{Month: "2024-02"},
		{Month: "2024-03", Income: 160, Expense: 40},
	}, monthly)

	rr = s.do(t, "GET", "/stats?startDate=someday", token, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestSavedFilterEndpoints(t *testing.T) {
	s := newTestServer(t, config.PaginationOffset)
	alice := s.signUp(t, "alice@example.com")
	bob := s.signUp(t, "bob@example.com")

	rr := s.do(t, "POST", "/filters", alice, services.SavedFilterInput{
		Name:      "Groceries",
		Criteria:  models.FilterCriteria{Search: "grocer", Type: "expense"},
		IsDefault: true,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created models.SavedFilter
	decode(t, rr, &created)

	rr = s.do(t, "GET", "/filters", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []models.SavedFilter
	decode(t, rr, &list)
	require.Len(t, list, 1)
	require.Equal(t, "grocer", list[0].Criteria.Search)

	rr = s.do(t, "GET", "/filters/"+created.ID, bob, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, "GET", "/api/filters/default", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var def models.SavedFilter
	decode(t, rr, &def)
	require.Equal(t, created.ID, def.ID)

	rr = s.do(t, "GET", "/filters/default", bob, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, "PUT", "/filters/"+created.ID, alice, services.SavedFilterInput{Name: "Food", Criteria: created.Criteria})
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &created)
	require.Equal(t, "Food", created.Name)
	require.False(t, created.IsDefault)

	rr = s.do(t, "POST", "/filters", alice, services.SavedFilterInput{Name: "Bad", Criteria: models.FilterCriteria{Date: "nope"}})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = s.do(t, "DELETE", "/filters/"+created.ID, alice, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = s.do(t, "DELETE", "/filters/"+created.ID, alice, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}
