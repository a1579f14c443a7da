package models

import "time"

// Type filter values; "all" disables type filtering.
const (
	TypeFilterAll = "all"
)

// FilterCriteria describes a transaction listing request. Every part is optional;
// Date (a single calendar day) and StartDate/EndDate (a range) are mutually exclusive.
type FilterCriteria struct {
	Search    string `json:"search,omitempty"`
	Type      string `json:"type,omitempty"`
	Date      string `json:"date,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// PageRequest selects a page: Page for offset pagination, Cursor for cursor pagination.
type PageRequest struct {
	Page     int    `json:"page,omitempty"`
	Cursor   string `json:"cursor,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
}

// Page is one page of listed transactions. Offset pagination fills Total and Page,
// cursor pagination fills Cursor and IsDone.
type Page struct {
	Items    []Transaction `json:"items"`
	Total    *int          `json:"total,omitempty"`
	Page     int           `json:"page,omitempty"`
	PageSize int           `json:"pageSize"`
	Cursor   string        `json:"cursor,omitempty"`
	IsDone   *bool         `json:"isDone,omitempty"`
}

// SavedFilter is a named FilterCriteria preset owned by a user.
type SavedFilter struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	UserID    string         `json:"userId"`
	Criteria  FilterCriteria `json:"criteria"`
	IsDefault bool           `json:"isDefault"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
