package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntentTag(t *testing.T) {
	tests := []struct {
		tag      string
		expected Intent
	}{
		{"cheapest_item", Intent{Type: IntentCheapestItem}},
		{"category_items|dessert", Intent{Type: IntentCategoryItems, Argument: "dessert"}},
		{" category_items | main course ", Intent{Type: IntentCategoryItems, Argument: "main course"}},
		{"category_items|", Intent{Type: IntentCategoryItems}},
		{"a|b|c", Intent{Type: "a", Argument: "b|c"}},
		{"", Intent{}},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseIntentTag(tt.tag))
		})
	}
}

func TestIntent_TagRoundTrip(t *testing.T) {
	in := Intent{Type: IntentCategoryItems, Argument: "drink"}
	assert.Equal(t, "category_items|drink", in.Tag())
	assert.Equal(t, in, ParseIntentTag(in.Tag()))
	assert.Equal(t, "revenue", Intent{Type: IntentRevenue}.Tag())
}

func TestIntentType_IsKnown(t *testing.T) {
	for _, it := range AllIntents {
		assert.True(t, it.IsKnown(), it)
	}
	assert.False(t, IntentType("weather").IsKnown())
	assert.False(t, IntentType("").IsKnown())
}

func TestQueryResult_JSON(t *testing.T) {
	data, err := json.Marshal(Ok([]MenuItem{}))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[]}`, string(data))

	data, err = json.Marshal(Fail("store unreachable"))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"store unreachable"}`, string(data))
}
