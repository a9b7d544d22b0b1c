// Package llm wraps the chat-completion provider behind the two logical operations
// the agent needs and maps provider failures onto the shared error taxonomy.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	apperrors "restaurant-agent/internal/common/errors"
)

// Prompt is a single system+user exchange.
type Prompt struct {
	Operation string // OperationClassify or OperationGenerate
	System    string
	User      string
}

// Completer issues one request/response exchange with a model.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// OpenAIClient implements Completer against any OpenAI-compatible endpoint.
type OpenAIClient struct {
	client *openai.Client
	config Config
}

func NewOpenAIClient(cfg Config) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		config: cfg,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", ClassifyError(ctx, prompt.Operation, err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.ErrCodeLLMEmptyResponse, "LLM returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", apperrors.New(apperrors.ErrCodeLLMEmptyResponse, "LLM returned empty content")
	}
	return content, nil
}

// ClassifyError maps a provider or transport error onto an ErrorCode. Only this
// function knows about provider status codes.
func ClassifyError(ctx context.Context, operation string, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return apperrors.NewLLMTimeoutError(operation, err)
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(apperrors.ErrCodeLLMRequestFailed, "LLM "+operation+" canceled", err)
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusTooManyRequests:
		return apperrors.NewRateLimitedError(operation, 0, err)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.Wrap(apperrors.ErrCodeLLMAuthFailed, "LLM "+operation+" authentication failed", err)
	case status >= http.StatusInternalServerError:
		return apperrors.Wrap(apperrors.ErrCodeLLMUnavailable, "LLM "+operation+" provider unavailable", err)
	default:
		return apperrors.Wrap(apperrors.ErrCodeLLMRequestFailed, "LLM "+operation+" request failed", err)
	}
}
