// internal/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apperrors "restaurant-agent/internal/common/errors"
	"restaurant-agent/internal/models"
)

var ErrNoMenuItems = errors.New("no menu items found")

// Accessor runs one named data operation. argument is only meaningful for
// category_items.
type Accessor func(ctx context.Context, store Store, argument string) (any, error)

// Registry maps every data intent to its accessor. general has no entry.
var Registry = map[models.IntentType]Accessor{
	models.IntentCheapestItem:  CheapestItem,
	models.IntentExpensiveItem: MostExpensiveItem,
	models.IntentCategoryItems: CategoryItems,
	models.IntentPendingOrders: PendingOrders,
	models.IntentRevenue:       TodayRevenue,
	models.IntentCategories:    Categories,
}

func CheapestItem(ctx context.Context, store Store, _ string) (any, error) {
	item, err := store.CheapestItem(ctx)
	if err != nil {
		return nil, err
	}
	return *item, nil
}

func MostExpensiveItem(ctx context.Context, store Store, _ string) (any, error) {
	item, err := store.MostExpensiveItem(ctx)
	if err != nil {
		return nil, err
	}
	return *item, nil
}

// CategoryItems short-circuits to an empty list when no category was given.
func CategoryItems(ctx context.Context, store Store, category string) (any, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return []models.MenuItem{}, nil
	}
	items, err := store.ItemsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	return items, nil
}

func PendingOrders(ctx context.Context, store Store, _ string) (any, error) {
	count, err := store.PendingOrderCount(ctx)
	if err != nil {
		return nil, err
	}
	return models.PendingOrders{Count: count}, nil
}

func TodayRevenue(ctx context.Context, store Store, _ string) (any, error) {
	rev, err := store.TodayRevenue(ctx)
	if err != nil {
		return nil, err
	}
	return *rev, nil
}

func Categories(ctx context.Context, store Store, _ string) (any, error) {
	cats, err := store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

// Execute runs the accessor registered for intent. ok is false when the intent has no
// accessor (general or unknown). Store errors, malformed data and panics all become a
// failed QueryResult.
func Execute(ctx context.Context, store Store, intent models.Intent) (result models.QueryResult, ok bool) {
	accessor, exists := Registry[intent.Type]
	if !exists {
		return models.QueryResult{}, false
	}

	defer func() {
		if r := recover(); r != nil {
			result = models.Fail(fmt.Sprintf("failed to fetch %s: %v", describe(intent.Type), r))
			ok = true
		}
	}()

	data, err := accessor(ctx, store, intent.Argument)
	if err != nil {
		return models.Fail(failureMessage(ctx, intent.Type, err)), true
	}
	if err := ValidateResult(intent.Type, data); err != nil {
		return models.Fail(failureMessage(ctx, intent.Type, err)), true
	}
	return models.Ok(data), true
}

// Classify wraps a raw accessor error with the matching error code.
func Classify(ctx context.Context, intent models.IntentType, err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.CodeOf(err) != "":
		return err
	case errors.Is(err, ErrNoMenuItems), errors.Is(err, sql.ErrNoRows):
		return apperrors.Wrap(apperrors.ErrCodeNotFound, "no data for "+describe(intent), err)
	case errors.Is(err, context.DeadlineExceeded), ctx.Err() == context.DeadlineExceeded:
		return apperrors.Wrap(apperrors.ErrCodeQueryTimeout, "query timed out", err)
	default:
		return apperrors.NewQueryExecutionFailedError(string(intent), err)
	}
}

func failureMessage(ctx context.Context, intent models.IntentType, err error) string {
	classified := Classify(ctx, intent, err)
	switch apperrors.CodeOf(classified) {
	case apperrors.ErrCodeNotFound:
		return fmt.Sprintf("no data found for %s", describe(intent))
	case apperrors.ErrCodeQueryTimeout:
		return fmt.Sprintf("timed out fetching %s", describe(intent))
	case apperrors.ErrCodeMalformedData:
		return fmt.Sprintf("malformed data for %s", describe(intent))
	default:
		return fmt.Sprintf("failed to fetch %s: %v", describe(intent), err)
	}
}

func describe(intent models.IntentType) string {
	switch intent {
	case models.IntentCheapestItem:
		return "cheapest item"
	case models.IntentExpensiveItem:
		return "most expensive item"
	case models.IntentCategoryItems:
		return "category items"
	case models.IntentPendingOrders:
		return "pending orders"
	case models.IntentRevenue:
		return "today's revenue"
	case models.IntentCategories:
		return "categories"
	default:
		return string(intent)
	}
}
