package repo

import (
	"context"

	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Scope applies list filters to a fresh query.
type Scope func(*gorm.DB) *gorm.DB

// PageQuery describes one paginated list read.
type PageQuery struct {
	Scope    Scope
	Order    string
	Preloads []string
	// Load customises the page query only, e.g. preloads with conditions.
	Load   Scope
	Params pagination.Params
}

// Page runs the count and the page query concurrently against the same
// filters and returns the rows with the unpaged total.
func Page[T any](ctx context.Context, b Base, q PageQuery) ([]T, int64, error) {
	params := q.Params.Normalize()
	scope := q.Scope
	if scope == nil {
		scope = func(db *gorm.DB) *gorm.DB { return db }
	}

	var (
		rows  []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scope(b.DB(gctx).Model(new(T))).Count(&total).Error
	})
	g.Go(func() error {
		query := scope(b.DB(gctx).Model(new(T)))
		for _, p := range q.Preloads {
			query = query.Preload(p)
		}
		if q.Load != nil {
			query = q.Load(query)
		}
		if q.Order != "" {
			query = query.Order(q.Order)
		}
		return query.Offset(params.Offset()).Limit(params.Limit).Find(&rows).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
