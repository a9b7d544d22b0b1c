package llm

import (
	"context"
	"time"

	apperrors "restaurant-agent/internal/common/errors"
)

// Admitter is the admission gate consulted before every upstream call.
type Admitter interface {
	TryAdmit() bool
	TimeUntilNextSlot() time.Duration
}

type limitedCompleter struct {
	next     Completer
	admitter Admitter
	onReject func(operation string)
}

// Limited returns a Completer that refuses calls the admitter rejects, without
// reaching the provider. onReject may be nil.
func Limited(next Completer, admitter Admitter, onReject func(operation string)) Completer {
	return &limitedCompleter{next: next, admitter: admitter, onReject: onReject}
}

func (l *limitedCompleter) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if !l.admitter.TryAdmit() {
		if l.onReject != nil {
			l.onReject(prompt.Operation)
		}
		return "", apperrors.NewRateLimitedError(prompt.Operation, l.admitter.TimeUntilNextSlot(), nil)
	}
	return l.next.Complete(ctx, prompt)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt Prompt) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return f(ctx, prompt)
}
