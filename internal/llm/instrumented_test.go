package llm

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	apperrors "restaurant-agent/internal/common/errors"
	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/common/metrics"
)

func TestInstrumented_CountsByCode(t *testing.T) {
	ok := metrics.AgentLLMCalls.WithLabelValues(OperationGenerate, codeOK)
	limited := metrics.AgentLLMCalls.WithLabelValues(OperationGenerate, string(apperrors.ErrCodeLLMRateLimited))
	okBefore := testutil.ToFloat64(ok)
	limitedBefore := testutil.ToFloat64(limited)

	answer := Instrumented(CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
		return "fine", nil
	}), logger.NewTestLogger(t))
	out, err := answer.Complete(context.Background(), Prompt{Operation: OperationGenerate})
	assert.NoError(t, err)
	assert.Equal(t, "fine", out)

	refuse := Instrumented(CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
		return "", apperrors.NewRateLimitedError(p.Operation, time.Second, nil)
	}), logger.NewTestLogger(t))
	_, err = refuse.Complete(context.Background(), Prompt{Operation: OperationGenerate})
	assert.True(t, apperrors.IsRateLimited(err))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, limitedBefore+1, testutil.ToFloat64(limited))
}
