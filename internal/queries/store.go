// Package queries holds the fixed set of read-only restaurant data accessors the agent
// can dispatch to, and the stores that back them.
package queries

import (
	"context"

	"restaurant-agent/internal/models"
)

// Store is the external restaurant data collaborator.
type Store interface {
	CheapestItem(ctx context.Context) (*models.MenuItem, error)
	MostExpensiveItem(ctx context.Context) (*models.MenuItem, error)
	ItemsByCategory(ctx context.Context, category string) ([]models.MenuItem, error)
	PendingOrderCount(ctx context.Context) (int, error)
	TodayRevenue(ctx context.Context) (*models.Revenue, error)
	Categories(ctx context.Context) ([]string, error)
}
