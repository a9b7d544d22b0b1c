package llm

import (
	"context"
	"time"

	apperrors "restaurant-agent/internal/common/errors"
	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/common/metrics"
)

const (
	OperationClassify = "classify"
	OperationGenerate = "generate"
)

const codeOK = "OK"

type instrumentedCompleter struct {
	next   Completer
	logger logger.Logger
}

// Instrumented counts every call in agent_llm_calls_total by operation and result code
// and logs failures at debug level.
func Instrumented(next Completer, log logger.Logger) Completer {
	return &instrumentedCompleter{next: next, logger: log}
}

func (c *instrumentedCompleter) Complete(ctx context.Context, prompt Prompt) (string, error) {
	start := time.Now()
	out, err := c.next.Complete(ctx, prompt)

	code := codeOK
	if err != nil {
		code = string(apperrors.CodeOf(err))
		if code == "" {
			code = string(apperrors.ErrCodeLLMRequestFailed)
		}
		c.logger.Debug("llm call failed", map[string]interface{}{
			"operation":   prompt.Operation,
			"code":        code,
			"duration_ms": time.Since(start).Milliseconds(),
			"error":       err.Error(),
		})
	}
	metrics.AgentLLMCalls.WithLabelValues(prompt.Operation, code).Inc()
	return out, err
}
