package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"expensetracker/backend/database"
	"expensetracker/backend/models"
	"expensetracker/backend/validation"
)

// DateFilter restricts a listing to a window of transaction dates.
type DateFilter interface {
	// window returns the inclusive lower and exclusive upper occurred_at bounds,
	// either of which may be empty.
	window(loc *time.Location) (from, before string)
}

// DayFilter matches one calendar day.
type DayFilter struct {
	Day time.Time
}

func (f DayFilter) window(loc *time.Location) (string, string) {
	start := startOfDay(f.Day, loc)
	return formatOccurredAt(start), formatOccurredAt(start.AddDate(0, 0, 1))
}

// RangeFilter matches Start <= date <= End. A nil bound is open. When End had
// no time of day the whole end day is included.
type RangeFilter struct {
	Start     *time.Time
	End       *time.Time
	EndIsDate bool
}

func (f RangeFilter) window(loc *time.Location) (from, before string) {
	if f.Start != nil {
		from = formatOccurredAt(*f.Start)
	}
	if f.End != nil {
		end := *f.End
		if f.EndIsDate {
			end = startOfDay(end, loc).AddDate(0, 0, 1)
		} else {
			end = end.Truncate(time.Millisecond).Add(time.Millisecond)
		}
		before = formatOccurredAt(end)
	}
	return from, before
}

// Criteria is a parsed FilterCriteria. Type is empty for all types and Dates
// is nil when no date filter applies.
type Criteria struct {
	Search string
	Type   string
	Dates  DateFilter
}

// ParseCriteria checks the client's filter values and converts them to Criteria.
func ParseCriteria(fc models.FilterCriteria, loc *time.Location) (Criteria, error) {
	var c Criteria
	c.Search = strings.ToLower(strings.TrimSpace(fc.Search))

	switch t := strings.TrimSpace(fc.Type); t {
	case "", models.TypeFilterAll:
	case models.TypeIncome, models.TypeExpense:
		c.Type = t
	default:
		return Criteria{}, &validation.FieldError{Field: "type", Message: "Type must be all, income or expense"}
	}

	date := strings.TrimSpace(fc.Date)
	start := strings.TrimSpace(fc.StartDate)
	end := strings.TrimSpace(fc.EndDate)

	if date != "" {
		if start != "" || end != "" {
			return Criteria{}, &validation.FieldError{Field: "date", Message: "Use either a date or a date range"}
		}
		day, _, err := validation.ParseDate(date, loc)
		if err != nil {
			return Criteria{}, invalidDate("date")
		}
		c.Dates = DayFilter{Day: day}
		return c, nil
	}

	if start == "" && end == "" {
		return c, nil
	}
	var r RangeFilter
	if start != "" {
		t, _, err := validation.ParseDate(start, loc)
		if err != nil {
			return Criteria{}, invalidDate("startDate")
		}
		r.Start = &t
	}
	if end != "" {
		t, dateOnly, err := validation.ParseDate(end, loc)
		if err != nil {
			return Criteria{}, invalidDate("endDate")
		}
		r.End = &t
		r.EndIsDate = dateOnly
	}
	c.Dates = r
	return c, nil
}

func invalidDate(field string) error {
	return &validation.FieldError{Field: field, Message: "Date must be a valid date"}
}

// Strategy is how a listing is answered.
type Strategy string

const (
	// StrategyIndexScan walks an owner-leading date index.
	StrategyIndexScan Strategy = "index_scan"
	// StrategySearch matches the search blob, with type and dates as post-filters.
	StrategySearch Strategy = "search"
)

// Index names from the schema.
const (
	IndexOwnerDate     = database.IndexOwnerDate
	IndexOwnerTypeDate = database.IndexOwnerTypeDate
)

// RetrievalPlan is the resolved strategy and store query for a listing. Index
// is carried into the query so the store scans the chosen index; search plans
// leave it empty.
type RetrievalPlan struct {
	Strategy Strategy
	Index    string
	Query    database.TransactionQuery
}

// Fingerprint identifies the owner and criteria the plan was built from.
// Cursors carry it so they cannot be replayed against another listing.
func (p RetrievalPlan) Fingerprint() string {
	b, _ := json.Marshal(p.Query)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:16])
}

// Composer turns filter criteria into retrieval plans.
type Composer struct {
	loc *time.Location
}

func NewComposer(loc *time.Location) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{loc: loc}
}

// Resolve builds the plan for listing ownerID's transactions matching fc.
func (c *Composer) Resolve(ownerID string, fc models.FilterCriteria) (RetrievalPlan, error) {
	if ownerID == "" {
		return RetrievalPlan{}, ErrUnauthenticated
	}

	criteria, err := ParseCriteria(fc, c.loc)
	if err != nil {
		return RetrievalPlan{}, err
	}
	return c.plan(ownerID, criteria), nil
}

func (c *Composer) plan(ownerID string, criteria Criteria) RetrievalPlan {
	q := database.TransactionQuery{
		OwnerID: ownerID,
		Type:    criteria.Type,
		Search:  criteria.Search,
	}
	if criteria.Dates != nil {
		q.From, q.Before = criteria.Dates.window(c.loc)
	}

	p := RetrievalPlan{Query: q}
	switch {
	case q.Search != "":
		p.Strategy = StrategySearch
	case q.Type != "":
		p.Strategy = StrategyIndexScan
		p.Index = IndexOwnerTypeDate
	default:
		p.Strategy = StrategyIndexScan
		p.Index = IndexOwnerDate
	}
	p.Query.Index = p.Index
	return p
}

// window resolves a report date range, defaulting the start to defaultStart
// and the end to now.
func (c *Composer) window(ownerID, startDate, endDate string, defaultStart, now time.Time) (database.TransactionQuery, error) {
	if ownerID == "" {
		return database.TransactionQuery{}, ErrUnauthenticated
	}

	r := RangeFilter{}
	if s := strings.TrimSpace(startDate); s != "" {
		t, _, err := validation.ParseDate(s, c.loc)
		if err != nil {
			return database.TransactionQuery{}, invalidDate("startDate")
		}
		r.Start = &t
	} else {
		r.Start = &defaultStart
	}
	if e := strings.TrimSpace(endDate); e != "" {
		t, dateOnly, err := validation.ParseDate(e, c.loc)
		if err != nil {
			return database.TransactionQuery{}, invalidDate("endDate")
		}
		r.End = &t
		r.EndIsDate = dateOnly
	} else {
		r.End = &now
	}

	q := database.TransactionQuery{OwnerID: ownerID}
	q.From, q.Before = r.window(c.loc)
	return q, nil
}
