package intent

import (
	"regexp"
	"strings"

	"restaurant-agent/internal/models"
)

// KeywordRule matches when any keyword is a substring of the lowercased utterance, or
// when Pattern matches; the pattern's first group then becomes the intent argument.
type KeywordRule struct {
	Keywords []string
	Pattern  *regexp.Regexp
	Intent   models.Intent
}

// KeywordRules is evaluated in order and the first match wins. Price rules come before
// category rules so "cheapest dessert" is a price question, and "least expensive" sits
// in the cheapest rule ahead of the bare "expensive" keyword.
var KeywordRules = []KeywordRule{
	{
		Keywords: []string{"cheapest", "lowest price", "least expensive", "cheap", "most affordable", "lowest priced"},
		Intent:   models.Intent{Type: models.IntentCheapestItem},
	},
	{
		Keywords: []string{"most expensive", "expensive", "priciest", "highest price", "highest priced", "most costly"},
		Intent:   models.Intent{Type: models.IntentExpensiveItem},
	},
	{
		Pattern: categoryPattern,
		Intent:  models.Intent{Type: models.IntentCategoryItems},
	},
	{
		Keywords: []string{"dessert", "sweets"},
		Intent:   models.Intent{Type: models.IntentCategoryItems, Argument: "dessert"},
	},
	{
		Keywords: []string{"drink", "beverage"},
		Intent:   models.Intent{Type: models.IntentCategoryItems, Argument: "drink"},
	},
	{
		Keywords: []string{"appetizer", "starter"},
		Intent:   models.Intent{Type: models.IntentCategoryItems, Argument: "appetizer"},
	},
	{
		Keywords: []string{"main course", "main dish", "entree", "entrée"},
		Intent:   models.Intent{Type: models.IntentCategoryItems, Argument: "main"},
	},
	{
		Keywords: []string{"pending", "open orders", "outstanding orders", "orders waiting", "unfulfilled"},
		Intent:   models.Intent{Type: models.IntentPendingOrders},
	},
	{
		Keywords: []string{"revenue", "sales", "earned", "earnings", "income", "did we make", "made today"},
		Intent:   models.Intent{Type: models.IntentRevenue},
	},
	{
		Keywords: []string{"categories", "kinds of food", "types of food", "menu sections"},
		Intent:   models.Intent{Type: models.IntentCategories},
	},
}

// categoryPattern captures the word right before "category", as in
// "what's in the soup category".
var categoryPattern = regexp.MustCompile(`\b([a-z]+)\s+category\b`)

var categoryStopWords = map[string]bool{
	"a": true, "the": true, "this": true, "that": true, "which": true,
	"what": true, "each": true, "every": true, "any": true, "one": true, "same": true,
}

// MatchKeywords classifies without the LLM. Unmatched utterances are general.
func MatchKeywords(utterance string) models.Intent {
	text := strings.ToLower(utterance)
	for _, rule := range KeywordRules {
		if intent, ok := rule.match(text); ok {
			return intent
		}
	}
	return models.Intent{Type: models.IntentGeneral}
}

func (r KeywordRule) match(text string) (models.Intent, bool) {
	for _, kw := range r.Keywords {
		if strings.Contains(text, kw) {
			return r.Intent, true
		}
	}
	if r.Pattern == nil {
		return models.Intent{}, false
	}
	for _, m := range r.Pattern.FindAllStringSubmatch(text, -1) {
		if len(m) > 1 && !categoryStopWords[m[1]] {
			return models.Intent{Type: r.Intent.Type, Argument: m[1]}, true
		}
	}
	return models.Intent{}, false
}
