package models

import "time"

// Transaction types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction is a single income or expense entry owned by one user.
type Transaction struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	SearchBlob  string    `json:"-"`
	OccurredAt  string    `json:"-"` // normalized Date, used for ordering and range bounds
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TransactionInput carries the mutable fields of a transaction as submitted by a client.
type TransactionInput struct {
	Name        string  `json:"name"`
	Amount      Amount  `json:"amount"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
	Description *string `json:"description,omitempty"`
}
