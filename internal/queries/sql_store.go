// internal/queries/sql_store.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"restaurant-agent/internal/models"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

const (
	queryCheapestItem      = `SELECT name, price, category FROM menu_items ORDER BY price ASC, name ASC LIMIT 1`
	queryMostExpensiveItem = `SELECT name, price, category FROM menu_items ORDER BY price DESC, name ASC LIMIT 1`
	queryItemsByCategory   = `SELECT name, price, category FROM menu_items WHERE LOWER(category) LIKE ? ORDER BY price ASC, name ASC`
	queryPendingOrderCount = `SELECT COUNT(*) FROM orders WHERE status = ?`
	queryTodayRevenue      = `SELECT COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS order_count FROM orders WHERE status = ? AND created_at >= ? AND created_at < ?`
	queryCategories        = `SELECT DISTINCT category FROM menu_items WHERE category <> '' ORDER BY category`
)

// SQLStore implements Store over the menu_items and orders tables. Queries are written
// with '?' placeholders and rebound for the connection's driver.
type SQLStore struct {
	db       *sqlx.DB
	now      func() time.Time
	location *time.Location
}

type SQLStoreOption func(*SQLStore)

// WithNow overrides the clock used to compute "today".
func WithNow(now func() time.Time) SQLStoreOption {
	return func(s *SQLStore) { s.now = now }
}

// WithLocation sets the time zone whose calendar day counts as "today".
func WithLocation(loc *time.Location) SQLStoreOption {
	return func(s *SQLStore) {
		if loc != nil {
			s.location = loc
		}
	}
}

func NewSQLStore(db *sqlx.DB, opts ...SQLStoreOption) *SQLStore {
	s := &SQLStore{db: db, now: time.Now, location: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) CheapestItem(ctx context.Context) (*models.MenuItem, error) {
	return s.singleItem(ctx, queryCheapestItem)
}

func (s *SQLStore) MostExpensiveItem(ctx context.Context) (*models.MenuItem, error) {
	return s.singleItem(ctx, queryMostExpensiveItem)
}

func (s *SQLStore) singleItem(ctx context.Context, query string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.GetContext(ctx, &item, s.db.Rebind(query)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoMenuItems
		}
		return nil, err
	}
	return &item, nil
}

func (s *SQLStore) ItemsByCategory(ctx context.Context, category string) ([]models.MenuItem, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(category)) + "%"
	items := []models.MenuItem{}
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(queryItemsByCategory), pattern); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *SQLStore) PendingOrderCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, s.db.Rebind(queryPendingOrderCount), OrderStatusPending); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *SQLStore) TodayRevenue(ctx context.Context) (*models.Revenue, error) {
	start, end := s.today()
	var rev models.Revenue
	err := s.db.GetContext(ctx, &rev, s.db.Rebind(queryTodayRevenue), OrderStatusCompleted, start, end)
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (s *SQLStore) Categories(ctx context.Context) ([]string, error) {
	cats := []string{}
	if err := s.db.SelectContext(ctx, &cats, s.db.Rebind(queryCategories)); err != nil {
		return nil, err
	}
	return cats, nil
}

// today returns the [start, end) bounds of the current calendar day.
func (s *SQLStore) today() (time.Time, time.Time) {
	now := s.now().In(s.location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	return start, start.AddDate(0, 0, 1)
}
