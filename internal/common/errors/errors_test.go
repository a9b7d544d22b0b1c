package errors

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf_WrappedChain(t *testing.T) {
	base := NewRateLimitedError("classify", 2*time.Second, nil)
	wrapped := fmt.Errorf("classifier: %w", base)

	assert.Equal(t, ErrCodeLLMRateLimited, CodeOf(wrapped))
	assert.True(t, IsRateLimited(wrapped))
	assert.False(t, IsTimeout(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(fmt.Errorf("plain")))
	assert.False(t, IsRateLimited(nil))
}

func TestWrap_PreservesCause(t *testing.T) {
	err := Wrap(ErrCodeLLMUnavailable, "provider error", context.DeadlineExceeded)

	assert.True(t, Is(err, context.DeadlineExceeded))
	assert.True(t, err.Retryable)
	assert.Contains(t, err.Error(), "LLM_UNAVAILABLE")
	assert.Nil(t, Wrap(ErrCodeInternal, "nothing", nil))
}

func TestNewLLMTimeoutError(t *testing.T) {
	err := NewLLMTimeoutError("generate", context.DeadlineExceeded)

	assert.True(t, IsTimeout(err))
	assert.True(t, Is(err, context.DeadlineExceeded))
	assert.Equal(t, "UPSTREAM", GetErrorCategory(err.Code))
}

func TestRetryableAndCategory(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
		category  string
	}{
		{ErrCodeLLMTimeout, true, "UPSTREAM"},
		{ErrCodeLLMAuthFailed, false, "UPSTREAM"},
		{ErrCodeQueryExecutionFailed, true, "DATA"},
		{ErrCodeMalformedData, false, "DATA"},
		{ErrCodeAlreadyProcessing, false, "POLICY"},
		{ErrCodeInternal, false, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryableErrorCode(tt.code))
			assert.Equal(t, tt.category, GetErrorCategory(tt.code))
		})
	}
}
