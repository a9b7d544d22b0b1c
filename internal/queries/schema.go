package queries

import (
	apperrors "restaurant-agent/internal/common/errors"
	"restaurant-agent/internal/common/validation"
	"restaurant-agent/internal/models"
)

const menuItemSchema = `{
	"type": "object",
	"required": ["name", "price", "category"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"price": {"type": "number", "minimum": 0},
		"category": {"type": "string"}
	}
}`

var resultSchemas = map[models.IntentType]string{
	models.IntentCheapestItem:  menuItemSchema,
	models.IntentExpensiveItem: menuItemSchema,
	models.IntentCategoryItems: `{"type": "array", "items": ` + menuItemSchema + `}`,
	models.IntentPendingOrders: `{
		"type": "object",
		"required": ["count"],
		"properties": {"count": {"type": "integer", "minimum": 0}}
	}`,
	models.IntentRevenue: `{
		"type": "object",
		"required": ["revenue", "orderCount"],
		"properties": {
			"revenue": {"type": "number", "minimum": 0},
			"orderCount": {"type": "integer", "minimum": 0}
		}
	}`,
	models.IntentCategories: `{"type": "array", "items": {"type": "string", "minLength": 1}}`,
}

var compiledSchemas = func() map[models.IntentType]*validation.Schema {
	out := make(map[models.IntentType]*validation.Schema, len(resultSchemas))
	for intent, src := range resultSchemas {
		out[intent] = validation.MustCompile(src)
	}
	return out
}()

// ValidateResult checks accessor output against the result shape of its intent.
func ValidateResult(intent models.IntentType, data any) error {
	schema, ok := compiledSchemas[intent]
	if !ok {
		return nil
	}
	if result := schema.Validate(data); !result.Valid {
		return apperrors.NewMalformedDataError(string(intent), result.Error())
	}
	return nil
}
