package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-agent/internal/intent"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassify_KeywordsOffline(t *testing.T) {
	tests := []struct {
		question string
		tag      string
	}{
		{"What's the cheapest thing on the menu?", "cheapest_item"},
		{"How many orders are pending?", "pending_orders"},
		{"show me the dessert options", "category_items|dessert"},
		{"hello there", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			out, err := runCLI(t, "classify", tt.question)
			require.NoError(t, err)

			var got intent.Result
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, tt.tag, got.Tag)
			assert.Equal(t, intent.SourceKeywords, got.Source)
		})
	}
}

func TestClassify_JoinsArguments(t *testing.T) {
	out, err := runCLI(t, "classify", "most", "expensive", "item")
	require.NoError(t, err)
	assert.Contains(t, out, `"expensive_item"`)
}

func TestAsk_RequiresQuestion(t *testing.T) {
	_, err := runCLI(t, "ask")
	assert.Error(t, err)
}
