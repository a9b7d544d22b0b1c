package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"restaurant-agent/internal/common/config"
	"restaurant-agent/internal/llm"
)

func TestNewCompleter(t *testing.T) {
	assert.Nil(t, NewCompleter(config.LLMConfig{Enabled: false}))

	c := NewCompleter(config.LLMConfig{Enabled: true, APIKey: "sk-test", Model: "gpt-4o-mini"})
	_, ok := c.(*llm.OpenAIClient)
	assert.True(t, ok)
}

func TestAgentConfig(t *testing.T) {
	got := AgentConfig(config.AgentConfig{
		OverallTimeout: 15000,
		CallTimeout:    8000,
		RateLimit:      config.RateLimitConfig{MaxRequests: 10, Window: 60000},
	})
	assert.Equal(t, 15*time.Second, got.OverallTimeout)
	assert.Equal(t, 8*time.Second, got.CallTimeout)
	assert.Equal(t, 10, got.MaxRequests)
	assert.Equal(t, time.Minute, got.Window)
}
