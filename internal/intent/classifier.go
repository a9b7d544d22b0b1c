// Package intent maps a free-text question onto one tag from the closed intent set,
// using the LLM when it is available and a keyword table otherwise.
package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apperrors "restaurant-agent/internal/common/errors"
	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/common/metrics"
	"restaurant-agent/internal/llm"
	"restaurant-agent/internal/models"
)

const (
	SourceLLM      = "llm"
	SourceKeywords = "keywords"

	DefaultCallTimeout = 8 * time.Second
)

var (
	ErrEmptyOutput   = errors.New("classifier returned no tag")
	ErrUnknownIntent = errors.New("classifier returned a tag outside the intent set")
)

// Result is a classified tag, e.g. "category_items|dessert", and where it came from.
type Result struct {
	Tag    string `json:"tag"`
	Source string `json:"source"`
}

func (r Result) Intent() models.Intent {
	return models.ParseIntentTag(r.Tag)
}

type Classifier struct {
	llm         llm.Completer
	callTimeout time.Duration
	logger      logger.Logger
}

type Option func(*Classifier)

func WithCallTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

// New builds a Classifier. A nil completer classifies with keywords only.
func New(completer llm.Completer, log logger.Logger, opts ...Option) *Classifier {
	c := &Classifier{
		llm:         completer,
		callTimeout: DefaultCallTimeout,
		logger:      log.With(map[string]interface{}{"component": "intent-classifier"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify never fails: any problem with the LLM path yields the keyword result.
func (c *Classifier) Classify(ctx context.Context, utterance string) Result {
	result := c.classify(ctx, utterance)
	metrics.AgentIntents.WithLabelValues(string(result.Intent().Type), result.Source).Inc()
	return result
}

func (c *Classifier) classify(ctx context.Context, utterance string) Result {
	if c.llm == nil {
		return Result{Tag: MatchKeywords(utterance).Tag(), Source: SourceKeywords}
	}

	tag, err := c.classifyWithLLM(ctx, utterance)
	if err == nil {
		return Result{Tag: tag, Source: SourceLLM}
	}

	fallback := MatchKeywords(utterance).Tag()
	fields := map[string]interface{}{
		"reason":   fallbackReason(err),
		"fallback": fallback,
	}
	if apperrors.IsRateLimited(err) {
		c.logger.Info("classifier rate limited, using keywords", fields)
	} else {
		fields["error"] = err.Error()
		c.logger.Warn("classifier LLM path failed, using keywords", fields)
	}
	return Result{Tag: fallback, Source: SourceKeywords}
}

func (c *Classifier) classifyWithLLM(ctx context.Context, utterance string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	raw, err := c.llm.Complete(callCtx, llm.Prompt{
		Operation: llm.OperationClassify,
		System:    SystemPrompt,
		User:      utterance,
	})
	if err != nil {
		return "", err
	}
	return NormalizeTag(raw)
}

func fallbackReason(err error) string {
	switch {
	case apperrors.IsRateLimited(err):
		return "rate_limited"
	case apperrors.IsTimeout(err):
		return "timeout"
	case errors.Is(err, ErrUnknownIntent), errors.Is(err, ErrEmptyOutput):
		return "unusable_output"
	default:
		return "error"
	}
}

// NormalizeTag turns raw model output into a canonical tag. It accepts a bare tag, a
// quoted or fenced tag, a "intent: tag" line, or a JSON object with "intent" and
// "argument" fields.
func NormalizeTag(raw string) (string, error) {
	s := stripDecorations(raw)
	if s == "" {
		return "", ErrEmptyOutput
	}

	var typ, arg string
	if strings.HasPrefix(s, "{") && gjson.Valid(s) {
		parsed := gjson.Parse(s)
		typ = parsed.Get("intent").String()
		arg = parsed.Get("argument").String()
		if typ == "" {
			typ = parsed.Get("tag").String()
		}
		if arg == "" {
			typ, arg, _ = strings.Cut(typ, models.TagSeparator)
		}
	} else {
		line, _, _ := strings.Cut(s, "\n")
		if label, rest, ok := strings.Cut(line, ":"); ok && strings.EqualFold(strings.TrimSpace(label), "intent") {
			line = rest
		}
		typ, arg, _ = strings.Cut(line, models.TagSeparator)
	}

	intent := models.Intent{
		Type:     models.IntentType(strings.ToLower(strings.Trim(strings.TrimSpace(typ), punctuation))),
		Argument: strings.Trim(strings.TrimSpace(arg), punctuation),
	}
	if !intent.Type.IsKnown() {
		return "", fmt.Errorf("%w: %q", ErrUnknownIntent, raw)
	}
	if intent.Type != models.IntentCategoryItems {
		intent.Argument = ""
	}
	return intent.Tag(), nil
}

const punctuation = "\"'`.,;!? "

func stripDecorations(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.Contains(s[:nl], "|") && !strings.Contains(s[:nl], "{") {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.Trim(strings.TrimSpace(s), punctuation)
}
