package response

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "restaurant-agent/internal/common/errors"
	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/llm"
	"restaurant-agent/internal/models"
)

var unavailable = llm.CompleterFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
	return "", apperrors.New(apperrors.ErrCodeLLMUnavailable, "provider down")
})

var rateLimited = llm.CompleterFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
	return "", apperrors.NewRateLimitedError(p.Operation, time.Second, nil)
})

func TestGenerate_UsesLLMAnswer(t *testing.T) {
	var seen llm.Prompt
	completer := llm.CompleterFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		seen = p
		return "We have 4 orders waiting.", nil
	})
	g := New(completer, logger.NewTestLogger(t))

	msg := g.Generate(context.Background(), "How many pending orders?", models.IntentPendingOrders, models.PendingOrders{Count: 4})

	assert.Equal(t, "We have 4 orders waiting.", msg)
	assert.Equal(t, llm.OperationGenerate, seen.Operation)
	assert.Equal(t, SystemPrompt, seen.System)
	assert.Contains(t, seen.User, "How many pending orders?")
	assert.Contains(t, seen.User, `{"count":4}`)
}

func TestGenerate_TemplateFallback(t *testing.T) {
	tests := []struct {
		name   string
		intent models.IntentType
		data   any
		want   string
	}{
		{
			name:   "cheapest",
			intent: models.IntentCheapestItem,
			data:   models.MenuItem{Name: "Garlic Bread", Price: 3.5, Category: "Appetizer"},
			want:   "The cheapest item on our menu is Garlic Bread priced at $3.50 in the Appetizer category.",
		},
		{
			name:   "expensive",
			intent: models.IntentExpensiveItem,
			data:   models.MenuItem{Name: "Ribeye Steak", Price: 32, Category: "Main Course"},
			want:   "The most expensive item on our menu is Ribeye Steak priced at $32.00 in the Main Course category.",
		},
		{
			name:   "category items",
			intent: models.IntentCategoryItems,
			data: []models.MenuItem{
				{Name: "Cheesecake", Price: 6.5, Category: "Dessert"},
				{Name: "Tiramisu", Price: 7.25, Category: "Dessert"},
			},
			want: "Here are the items in that category: Cheesecake ($6.50), Tiramisu ($7.25).",
		},
		{
			name:   "empty category",
			intent: models.IntentCategoryItems,
			data:   []models.MenuItem{},
			want:   "No items found in that category.",
		},
		{
			name:   "pending orders",
			intent: models.IntentPendingOrders,
			data:   models.PendingOrders{Count: 4},
			want:   "There are currently 4 pending orders.",
		},
		{
			name:   "single pending order",
			intent: models.IntentPendingOrders,
			data:   models.PendingOrders{Count: 1},
			want:   "There is currently 1 pending order.",
		},
		{
			name:   "revenue",
			intent: models.IntentRevenue,
			data:   models.Revenue{Revenue: 245.50, OrderCount: 12},
			want:   "Today's revenue is $245.50 from 12 completed orders.",
		},
		{
			name:   "categories",
			intent: models.IntentCategories,
			data:   []string{"Appetizer", "Dessert", "Main Course"},
			want:   "Our menu categories are: Appetizer, Dessert, Main Course.",
		},
		{
			name:   "no categories",
			intent: models.IntentCategories,
			data:   []string{},
			want:   "We don't have any menu categories yet.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(unavailable, logger.NewTestLogger(t))
			assert.Equal(t, tt.want, g.Generate(context.Background(), "question", tt.intent, tt.data))
		})
	}
}

func TestGenerate_RateLimitedWithDataStillUsesTemplate(t *testing.T) {
	g := New(rateLimited, logger.NewTestLogger(t))
	msg := g.Generate(context.Background(), "What's today's revenue?", models.IntentRevenue, models.Revenue{Revenue: 10, OrderCount: 1})
	assert.Equal(t, "Today's revenue is $10.00 from 1 completed orders.", msg)
}

func TestGenerate_NoDataMessages(t *testing.T) {
	ctx := context.Background()

	g := New(rateLimited, logger.NewTestLogger(t))
	assert.Equal(t, RateLimitedMessage, g.Generate(ctx, "Hi!", models.IntentGeneral, nil))
	assert.Equal(t, RateLimitedMessage, g.Generate(ctx, "Revenue?", models.IntentRevenue, nil))

	g = New(unavailable, logger.NewTestLogger(t))
	assert.Equal(t, ApologyMessage, g.Generate(ctx, "Hi!", models.IntentGeneral, nil))

	g = New(nil, logger.NewNoOpLogger())
	assert.Equal(t, ApologyMessage, g.Generate(ctx, "Hi!", models.IntentGeneral, nil))
}

func TestGenerate_WrongDataShapeApologizes(t *testing.T) {
	g := New(unavailable, logger.NewTestLogger(t))
	assert.Equal(t, ApologyMessage, g.Generate(context.Background(), "q", models.IntentRevenue, "245.50"))
}

func TestGenerate_AppliesCallTimeout(t *testing.T) {
	slow := llm.CompleterFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		<-ctx.Done()
		return "", llm.ClassifyError(ctx, p.Operation, ctx.Err())
	})
	g := New(slow, logger.NewTestLogger(t), WithCallTimeout(20*time.Millisecond))

	start := time.Now()
	msg := g.Generate(context.Background(), "q", models.IntentPendingOrders, models.PendingOrders{Count: 0})

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, "There are currently 0 pending orders.", msg)
}

func TestBuildUserPrompt(t *testing.T) {
	general, err := BuildUserPrompt("Hello there", models.IntentGeneral, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello there", general)

	failed, err := BuildUserPrompt("What's today's revenue?", models.IntentRevenue, nil)
	require.NoError(t, err)
	assert.Contains(t, failed, "What's today's revenue?")
	assert.Contains(t, failed, "lookup for this question failed")

	grounded, err := BuildUserPrompt("What's today's revenue?", models.IntentRevenue, models.Revenue{Revenue: 245.5, OrderCount: 12})
	require.NoError(t, err)
	assert.Contains(t, grounded, `{"revenue":245.5,"orderCount":12}`)

	_, err = BuildUserPrompt("q", models.IntentRevenue, make(chan int))
	assert.Error(t, err)
}

func TestRender_UnknownIntent(t *testing.T) {
	_, ok := Render(models.IntentGeneral, "anything")
	assert.False(t, ok)

	_, ok = Render(models.IntentCheapestItem, (*models.MenuItem)(nil))
	assert.False(t, ok)
}

func TestGenerate_EncodeErrorFallsBack(t *testing.T) {
	called := false
	completer := llm.CompleterFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		called = true
		return "", errors.New("unreachable")
	})
	g := New(completer, logger.NewTestLogger(t))

	assert.Equal(t, ApologyMessage, g.Generate(context.Background(), "q", models.IntentRevenue, make(chan int)))
	assert.False(t, called)
}
