package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/backend/database"
	"expensetracker/backend/models"
	"expensetracker/backend/validation"
)

// DefaultRecentLimit is how many transactions the dashboard lists.
const DefaultRecentLimit = 5

const maxRecentLimit = 100

// maxSummaryMonths bounds the monthly summary to ten years of buckets.
const maxSummaryMonths = 120

type statsStore interface {
	List(ctx context.Context, q database.TransactionQuery, after *database.Position, offset, limit int) ([]models.Transaction, error)
	TotalsByType(ctx context.Context, q database.TransactionQuery) ([]models.TypeTotal, error)
	Amounts(ctx context.Context, q database.TransactionQuery) ([]database.AmountRow, error)
}

// StatsService computes dashboard figures for one owner.
type StatsService struct {
	store    statsStore
	composer *Composer
	now      func() time.Time
}

func NewStatsService(store statsStore, composer *Composer) *StatsService {
	return &StatsService{store: store, composer: composer, now: database.Now}
}

// Stats sums income and expense between startDate and endDate, both
// inclusive. Empty dates default to the current month so far.
func (s *StatsService) Stats(ctx context.Context, ownerID, startDate, endDate string) (models.Stats, error) {
	now := s.now()
	q, err := s.composer.window(ownerID, startDate, endDate, startOfMonth(now, s.composer.loc), now)
	if err != nil {
		return models.Stats{}, err
	}

	totals, err := s.store.TotalsByType(ctx, q)
	if err != nil {
		return models.Stats{}, storageErr("sum transactions", err)
	}

	income, expense := decimal.Zero, decimal.Zero
	for _, t := range totals {
		switch t.Type {
		case models.TypeIncome:
			income = income.Add(decimal.NewFromFloat(t.Total))
		case models.TypeExpense:
			expense = expense.Add(decimal.NewFromFloat(t.Total))
		}
	}

	stats := models.Stats{
		StartDate:    q.From,
		EndDate:      q.Before,
		TotalIncome:  income.InexactFloat64(),
		TotalExpense: expense.InexactFloat64(),
		Balance:      income.Sub(expense).InexactFloat64(),
	}
	if sum := income.Add(expense); !sum.IsZero() {
		hundred := decimal.NewFromInt(100)
		stats.IncomePercentage = income.Div(sum).Mul(hundred).Round(2).InexactFloat64()
		stats.ExpensePercentage = expense.Div(sum).Mul(hundred).Round(2).InexactFloat64()
	}
	return stats, nil
}

// ListRecent returns the newest limit transactions between startDate and endDate.
func (s *StatsService) ListRecent(ctx context.Context, ownerID, startDate, endDate string, limit int) ([]models.Transaction, error) {
	now := s.now()
	q, err := s.composer.window(ownerID, startDate, endDate, startOfMonth(now, s.composer.loc), now)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	items, err := s.store.List(ctx, q, nil, 0, limit)
	if err != nil {
		return nil, storageErr("list recent transactions", err)
	}
	return items, nil
}

// MonthlySummary totals income and expense per calendar month between
// startDate and endDate. Empty dates default to the last three months.
// Months without transactions are included with zero totals.
func (s *StatsService) MonthlySummary(ctx context.Context, ownerID, startDate, endDate string) ([]models.MonthlyTotal, error) {
	loc := s.composer.loc
	now := s.now()
	q, err := s.composer.window(ownerID, startDate, endDate, startOfMonth(now, loc).AddDate(0, -2, 0), now)
	if err != nil {
		return nil, err
	}

	first, err := parseOccurredAt(q.From)
	if err != nil {
		return nil, invalidDate("startDate")
	}
	// Fails past year 9999, where the exclusive bound no longer fits the layout
	last, err := parseOccurredAt(q.Before)
	if err != nil {
		return nil, invalidDate("endDate")
	}
	// Before is exclusive
	last = last.Add(-time.Millisecond)
	if monthsBetween(first.In(loc), last.In(loc)) >= maxSummaryMonths {
		return nil, &validation.FieldError{Field: "endDate", Message: "Date range must be at most 10 years"}
	}

	rows, err := s.store.Amounts(ctx, q)
	if err != nil {
		return nil, storageErr("list monthly amounts", err)
	}

	type sums struct{ income, expense decimal.Decimal }
	byMonth := map[string]*sums{}
	for _, r := range rows {
		t, err := parseOccurredAt(r.OccurredAt)
		if err != nil {
			continue
		}
		key := t.In(loc).Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &sums{income: decimal.Zero, expense: decimal.Zero}
			byMonth[key] = m
		}
		amount := decimal.NewFromFloat(r.Amount)
		if r.Type == models.TypeIncome {
			m.income = m.income.Add(amount)
		} else {
			m.expense = m.expense.Add(amount)
		}
	}

	out := []models.MonthlyTotal{}
	for month := startOfMonth(first, loc); !month.After(last); month = month.AddDate(0, 1, 0) {
		key := month.Format("2006-01")
		total := models.MonthlyTotal{Month: key}
		if m, ok := byMonth[key]; ok {
			total.Income = m.income.InexactFloat64()
			total.Expense = m.expense.InexactFloat64()
		}
		out = append(out, total)
	}
	return out, nil
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
