// Package response turns a question and its looked-up data into the user-facing answer.
package response

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "restaurant-agent/internal/common/errors"
	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/llm"
	"restaurant-agent/internal/models"
	"restaurant-agent/internal/queries"
)

const DefaultCallTimeout = 8 * time.Second

const (
	RateLimitedMessage = "I'm experiencing high demand right now. Please try again in a moment."
	ApologyMessage     = "I'm sorry, I couldn't process your question right now. Please try again."
)

const SystemPrompt = `You are a friendly restaurant assistant. Answer the customer's question in one or two short, conversational sentences.
When data is provided, base your answer only on that data and format prices with two decimals.
Never invent menu items, prices, counts or revenue figures.`

type Generator struct {
	llm         llm.Completer
	callTimeout time.Duration
	logger      logger.Logger
}

type Option func(*Generator)

func WithCallTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.callTimeout = d
		}
	}
}

// New builds a Generator. A nil completer always renders templates.
func New(completer llm.Completer, log logger.Logger, opts ...Option) *Generator {
	g := &Generator{
		llm:         completer,
		callTimeout: DefaultCallTimeout,
		logger:      log.With(map[string]interface{}{"component": "response-generator"}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate never fails. data is nil when no lookup was made or the lookup failed.
func (g *Generator) Generate(ctx context.Context, utterance string, intent models.IntentType, data any) string {
	var err error
	if g.llm != nil {
		var answer string
		answer, err = g.generateWithLLM(ctx, utterance, intent, data)
		if err == nil {
			return answer
		}
	}

	if data != nil {
		if msg, ok := Render(intent, data); ok {
			g.logFallback("template", intent, err)
			return msg
		}
	}
	if apperrors.IsRateLimited(err) {
		g.logFallback("rate_limited", intent, err)
		return RateLimitedMessage
	}
	g.logFallback("apology", intent, err)
	return ApologyMessage
}

func (g *Generator) generateWithLLM(ctx context.Context, utterance string, intent models.IntentType, data any) (string, error) {
	user, err := BuildUserPrompt(utterance, intent, data)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	return g.llm.Complete(callCtx, llm.Prompt{
		Operation: llm.OperationGenerate,
		System:    SystemPrompt,
		User:      user,
	})
}

func (g *Generator) logFallback(kind string, intent models.IntentType, err error) {
	fields := map[string]interface{}{"fallback": kind, "intent": string(intent)}
	if err != nil {
		fields["code"] = string(apperrors.CodeOf(err))
		fields["error"] = err.Error()
	}
	g.logger.Info("using fallback response", fields)
}

// BuildUserPrompt renders the user turn: the bare question when no lookup applies, the
// question plus JSON data when it succeeded, or a note that the lookup failed.
func BuildUserPrompt(utterance string, intent models.IntentType, data any) (string, error) {
	if data == nil {
		if _, isData := queries.Registry[intent]; isData {
			return fmt.Sprintf("Question: %s\n\nThe data lookup for this question failed. Apologize briefly and do not guess any figures.", utterance), nil
		}
		return utterance, nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode %s data: %w", intent, err)
	}
	return fmt.Sprintf("Question: %s\n\nData (%s): %s", utterance, intent, payload), nil
}
