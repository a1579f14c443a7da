package services

import (
	"time"

	"expensetracker/backend/validation"
)

// occurredAtLayout sorts lexicographically in time order, which lets the
// database compare and order occurred_at as plain text.
const occurredAtLayout = "2006-01-02T15:04:05.000Z"

func formatOccurredAt(t time.Time) string {
	return t.UTC().Format(occurredAtLayout)
}

func parseOccurredAt(s string) (time.Time, error) {
	return time.Parse(occurredAtLayout, s)
}

// normalizeDate converts a client date string to its occurred_at form.
// Date-only values are midnight in loc.
func normalizeDate(s string, loc *time.Location) (string, error) {
	t, _, err := validation.ParseDate(s, loc)
	if err != nil {
		return "", err
	}
	return formatOccurredAt(t), nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func startOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}
