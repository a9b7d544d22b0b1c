// internal/models/query_types.go
package models

import "strings"

// IntentType is the classified purpose of a user question.
type IntentType string

const (
	IntentCheapestItem  IntentType = "cheapest_item"
	IntentExpensiveItem IntentType = "expensive_item"
	IntentCategoryItems IntentType = "category_items"
	IntentPendingOrders IntentType = "pending_orders"
	IntentRevenue       IntentType = "revenue"
	IntentCategories    IntentType = "categories"
	IntentGeneral       IntentType = "general"
)

// TagSeparator splits an intent type from its argument, e.g. "category_items|dessert".
const TagSeparator = "|"

// AllIntents lists the closed set of intent types in prompt order.
var AllIntents = []IntentType{
	IntentCheapestItem,
	IntentExpensiveItem,
	IntentCategoryItems,
	IntentPendingOrders,
	IntentRevenue,
	IntentCategories,
	IntentGeneral,
}

// IsKnown reports whether t belongs to the closed intent set.
func (t IntentType) IsKnown() bool {
	for _, known := range AllIntents {
		if t == known {
			return true
		}
	}
	return false
}

// Intent is a classified intent with its optional free-text argument.
type Intent struct {
	Type     IntentType `json:"type"`
	Argument string     `json:"argument,omitempty"`
}

// Tag renders the intent in its wire form.
func (i Intent) Tag() string {
	if i.Argument == "" {
		return string(i.Type)
	}
	return string(i.Type) + TagSeparator + i.Argument
}

// ParseIntentTag splits "type|argument" on the first separator.
func ParseIntentTag(tag string) Intent {
	typ, arg, _ := strings.Cut(strings.TrimSpace(tag), TagSeparator)
	return Intent{
		Type:     IntentType(strings.TrimSpace(typ)),
		Argument: strings.TrimSpace(arg),
	}
}
