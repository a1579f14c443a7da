package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"expensetracker/backend/database"
	"expensetracker/backend/models"
	"expensetracker/backend/validation"
)

type demoTransaction struct {
	name        string
	amount      float64
	typ         string
	monthsAgo   int
	day         int
	description string
}

var demoTransactions = []demoTransaction{
	{"Salary", 4200, models.TypeIncome, 0, 1, "Monthly salary"},
	{"Groceries", 86.4, models.TypeExpense, 0, 3, "Weekly shop"},
	{"Rent", 1450, models.TypeExpense, 0, 1, ""},
	{"Coffee beans", 18.5, models.TypeExpense, 0, 6, "Local roaster"},
	{"Salary", 4200, models.TypeIncome, 1, 1, "Monthly salary"},
	{"Freelance invoice", 650, models.TypeIncome, 1, 14, "Website fixes"},
	{"Groceries", 102.15, models.TypeExpense, 1, 10, "Weekly shop"},
	{"Rent", 1450, models.TypeExpense, 1, 1, ""},
	{"Electricity", 74.3, models.TypeExpense, 1, 20, "Utility bill"},
	{"Salary", 4200, models.TypeIncome, 2, 1, "Monthly salary"},
	{"Rent", 1450, models.TypeExpense, 2, 1, ""},
	{"Train pass", 120, models.TypeExpense, 2, 4, "Monthly commute"},
}

// SeedDemoData creates the account for email if needed and fills it with
// sample transactions over the last three months. It returns how many
// transactions were created.
func SeedDemoData(ctx context.Context, users userStore, transactions *TransactionService, email string) (int, error) {
	if err := validation.Email(email); err != nil {
		return 0, err
	}
	email = validation.NormalizeEmail(email)

	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		u = models.User{ID: uuid.NewString(), Email: email, Name: nameFromEmail(email), CreatedAt: transactions.now()}
		err = users.Create(ctx, u)
		if err == nil {
			log.Printf("Created demo user %s", u.Email)
		}
	}
	if err != nil {
		return 0, fmt.Errorf("resolve demo user: %w", err)
	}

	month := startOfMonth(transactions.now(), transactions.loc)
	for i, d := range demoTransactions {
		date := month.AddDate(0, -d.monthsAgo, d.day-1).Format("2006-01-02")
		description := d.description
		_, err := transactions.Create(ctx, u.ID, models.TransactionInput{
			Name:        d.name,
			Amount:      models.Amount(d.amount),
			Type:        d.typ,
			Date:        date,
			Description: &description,
		})
		if err != nil {
			return i, fmt.Errorf("seed transaction %q: %w", d.name, err)
		}
	}
	return len(demoTransactions), nil
}
