package response

import (
	"fmt"
	"strings"

	"restaurant-agent/internal/models"
)

// TemplateFunc renders a fallback answer. ok is false when data has the wrong shape.
type TemplateFunc func(data any) (msg string, ok bool)

var Templates = map[models.IntentType]TemplateFunc{
	models.IntentCheapestItem:  itemTemplate("The cheapest item on our menu is %s priced at $%.2f in the %s category."),
	models.IntentExpensiveItem: itemTemplate("The most expensive item on our menu is %s priced at $%.2f in the %s category."),
	models.IntentCategoryItems: categoryItemsTemplate,
	models.IntentPendingOrders: pendingOrdersTemplate,
	models.IntentRevenue:       revenueTemplate,
	models.IntentCategories:    categoriesTemplate,
}

// Render applies the template registered for intent.
func Render(intent models.IntentType, data any) (string, bool) {
	tmpl, ok := Templates[intent]
	if !ok {
		return "", false
	}
	return tmpl(data)
}

func itemTemplate(format string) TemplateFunc {
	return func(data any) (string, bool) {
		var item models.MenuItem
		switch v := data.(type) {
		case models.MenuItem:
			item = v
		case *models.MenuItem:
			if v == nil {
				return "", false
			}
			item = *v
		default:
			return "", false
		}
		return fmt.Sprintf(format, item.Name, item.Price, item.Category), true
	}
}

func categoryItemsTemplate(data any) (string, bool) {
	items, ok := data.([]models.MenuItem)
	if !ok {
		return "", false
	}
	if len(items) == 0 {
		return "No items found in that category.", true
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s ($%.2f)", item.Name, item.Price)
	}
	return "Here are the items in that category: " + strings.Join(parts, ", ") + ".", true
}

func pendingOrdersTemplate(data any) (string, bool) {
	pending, ok := data.(models.PendingOrders)
	if !ok {
		return "", false
	}
	if pending.Count == 1 {
		return "There is currently 1 pending order.", true
	}
	return fmt.Sprintf("There are currently %d pending orders.", pending.Count), true
}

func revenueTemplate(data any) (string, bool) {
	rev, ok := data.(models.Revenue)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("Today's revenue is $%.2f from %d completed orders.", rev.Revenue, rev.OrderCount), true
}

func categoriesTemplate(data any) (string, bool) {
	cats, ok := data.([]string)
	if !ok {
		return "", false
	}
	if len(cats) == 0 {
		return "We don't have any menu categories yet.", true
	}
	return "Our menu categories are: " + strings.Join(cats, ", ") + ".", true
}
