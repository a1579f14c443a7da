package services

import (
	"context"
	"encoding/json"

	"expensetracker/backend/config"
	"expensetracker/backend/database"
	"expensetracker/backend/models"
	"expensetracker/backend/security"
)

// transactionLister is the part of the transaction store pagination reads from.
type transactionLister interface {
	Count(ctx context.Context, q database.TransactionQuery) (int, error)
	List(ctx context.Context, q database.TransactionQuery, after *database.Position, offset, limit int) ([]models.Transaction, error)
}

// Paginator executes a retrieval plan one page at a time.
type Paginator interface {
	Paginate(ctx context.Context, plan RetrievalPlan, req models.PageRequest) (models.Page, error)
}

// NewPaginator returns the strategy selected by cfg.Mode.
func NewPaginator(cfg config.PaginationConfig, store transactionLister, sealer *security.Sealer) Paginator {
	sizes := pageSizes{def: cfg.DefaultPageSize, max: cfg.MaxPageSize}
	if cfg.Mode == config.PaginationCursor {
		return &CursorPaginator{store: store, sealer: sealer, sizes: sizes}
	}
	return &OffsetPaginator{store: store, sizes: sizes}
}

type pageSizes struct {
	def, max int
}

func (s pageSizes) resolve(requested int) int {
	def, max := s.def, s.max
	if def <= 0 {
		def = 10
	}
	if max <= 0 {
		max = 100
	}
	switch {
	case requested <= 0:
		return def
	case requested > max:
		return max
	default:
		return requested
	}
}

// OffsetPaginator serves 1-based page numbers with a total count. Pages past
// the end are empty.
type OffsetPaginator struct {
	store transactionLister
	sizes pageSizes
}

func (p *OffsetPaginator) Paginate(ctx context.Context, plan RetrievalPlan, req models.PageRequest) (models.Page, error) {
	size := p.sizes.resolve(req.PageSize)
	page := req.Page
	if page < 1 {
		page = 1
	}

	total, err := p.store.Count(ctx, plan.Query)
	if err != nil {
		return models.Page{}, storageErr("count transactions", err)
	}

	items := []models.Transaction{}
	// Compare in pages so huge page numbers cannot overflow the offset.
	if total > 0 && page-1 <= (total-1)/size {
		items, err = p.store.List(ctx, plan.Query, nil, (page-1)*size, size)
		if err != nil {
			return models.Page{}, storageErr("list transactions", err)
		}
	}

	return models.Page{
		Items:    items,
		Total:    &total,
		Page:     page,
		PageSize: size,
	}, nil
}

// CursorPaginator serves keyset pages resumed from an opaque sealed cursor.
type CursorPaginator struct {
	store  transactionLister
	sealer *security.Sealer
	sizes  pageSizes
}

type cursorToken struct {
	Position    database.Position `json:"p"`
	Fingerprint string            `json:"f"`
}

func (p *CursorPaginator) Paginate(ctx context.Context, plan RetrievalPlan, req models.PageRequest) (models.Page, error) {
	size := p.sizes.resolve(req.PageSize)

	var after *database.Position
	if req.Cursor != "" {
		pos, err := p.open(req.Cursor, plan.Fingerprint())
		if err != nil {
			return models.Page{}, err
		}
		after = &pos
	}

	// One extra row tells whether another page exists
	items, err := p.store.List(ctx, plan.Query, after, 0, size+1)
	if err != nil {
		return models.Page{}, storageErr("list transactions", err)
	}

	done := len(items) <= size
	page := models.Page{PageSize: size, IsDone: &done}
	if !done {
		items = items[:size]
		page.Cursor, err = p.seal(database.PositionOf(items[size-1]), plan.Fingerprint())
		if err != nil {
			return models.Page{}, err
		}
	}
	page.Items = items
	return page, nil
}

func (p *CursorPaginator) seal(pos database.Position, fingerprint string) (string, error) {
	b, err := json.Marshal(cursorToken{Position: pos, Fingerprint: fingerprint})
	if err != nil {
		return "", err
	}
	return p.sealer.Seal(b)
}

func (p *CursorPaginator) open(cursor, fingerprint string) (database.Position, error) {
	b, err := p.sealer.Open(cursor)
	if err != nil {
		return database.Position{}, ErrInvalidCursor
	}
	var tok cursorToken
	if err := json.Unmarshal(b, &tok); err != nil {
		return database.Position{}, ErrInvalidCursor
	}
	if tok.Fingerprint != fingerprint {
		return database.Position{}, ErrInvalidCursor
	}
	return tok.Position, nil
}
