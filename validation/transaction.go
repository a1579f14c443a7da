package validation

import (
	"strings"

	"expensetracker/backend/models"
)

// ValidTransaction is a TransactionInput that passed every rule, with the
// name trimmed and the description defaulted.
type ValidTransaction struct {
	Name        string
	Amount      float64
	Type        string
	Date        string
	Description string
}

type transactionRules struct {
	Name   string  `json:"name" validate:"min=3"`
	Amount float64 `json:"amount" validate:"gte=1"`
	Type   string  `json:"type" validate:"oneof=income expense"`
	Date   string  `json:"date" validate:"required,datestring"`
}

var transactionMessages = map[string]string{
	"name":            "Name must be at least 3 characters long",
	"amount":          "Amount must be at least 1",
	"type":            "Type must be income or expense",
	"date.required":   "Date is required",
	"date.datestring": "Date must be a valid date",
}

// Transaction validates a submitted transaction.
func Transaction(in models.TransactionInput) (ValidTransaction, error) {
	rules := transactionRules{
		Name:   strings.TrimSpace(in.Name),
		Amount: float64(in.Amount),
		Type:   in.Type,
		Date:   strings.TrimSpace(in.Date),
	}
	if err := firstError(rules, transactionMessages); err != nil {
		return ValidTransaction{}, err
	}

	v := ValidTransaction{
		Name:   rules.Name,
		Amount: rules.Amount,
		Type:   rules.Type,
		Date:   rules.Date,
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	return v, nil
}
