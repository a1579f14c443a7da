package models

// Stats summarizes income and expense within a date window. StartDate and
// EndDate are the normalized window bounds; EndDate is exclusive.
type Stats struct {
	StartDate         string  `json:"startDate"`
	EndDate           string  `json:"endDate"`
	TotalIncome       float64 `json:"totalIncome"`
	TotalExpense      float64 `json:"totalExpense"`
	Balance           float64 `json:"balance"`
	IncomePercentage  float64 `json:"incomePercentage"`
	ExpensePercentage float64 `json:"expensePercentage"`
}

// TypeTotal is the summed amount of one transaction type.
type TypeTotal struct {
	Type  string  `json:"type"`
	Total float64 `json:"total"`
}

// MonthlyTotal holds the income and expense of one calendar month (YYYY-MM).
type MonthlyTotal struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}
