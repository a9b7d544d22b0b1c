package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "restaurant-agent/internal/common/errors"
	"restaurant-agent/internal/ratelimit"
)

func TestLimited_RejectsWithoutCallingUpstream(t *testing.T) {
	calls := 0
	upstream := CompleterFunc(func(ctx context.Context, prompt Prompt) (string, error) {
		calls++
		return "general", nil
	})

	var rejected []string
	window := ratelimit.New(2, time.Minute)
	c := Limited(upstream, window, func(op string) { rejected = append(rejected, op) })

	for i := 0; i < 2; i++ {
		out, err := c.Complete(context.Background(), Prompt{Operation: "classify"})
		require.NoError(t, err)
		assert.Equal(t, "general", out)
	}

	_, err := c.Complete(context.Background(), Prompt{Operation: "generate"})
	require.Error(t, err)
	assert.True(t, apperrors.IsRateLimited(err))
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"generate"}, rejected)

	var stdErr *apperrors.StandardError
	require.True(t, apperrors.As(err, &stdErr))
	assert.Greater(t, stdErr.RetryAfter, time.Duration(0))
}
