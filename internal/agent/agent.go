// Package agent sequences classification, data lookup and answer generation for one
// conversation under a single-flight guard and an overall deadline.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/atomic"

	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/common/metrics"
	"restaurant-agent/internal/common/observability"
	"restaurant-agent/internal/intent"
	"restaurant-agent/internal/llm"
	"restaurant-agent/internal/models"
	"restaurant-agent/internal/queries"
	"restaurant-agent/internal/ratelimit"
	"restaurant-agent/internal/response"
)

const DefaultOverallTimeout = 15 * time.Second

// Request outcomes, used as the agent_requests_total label.
const (
	OutcomeAnswered    = "answered"
	OutcomeQueryFailed = "query_failed"
	OutcomeBusy        = "busy"
	OutcomeTimeout     = "timeout"
	OutcomePanic       = "panic"
)

type Config struct {
	OverallTimeout time.Duration
	CallTimeout    time.Duration
	MaxRequests    int
	Window         time.Duration
}

func DefaultConfig() Config {
	return Config{
		OverallTimeout: DefaultOverallTimeout,
		CallTimeout:    intent.DefaultCallTimeout,
		MaxRequests:    ratelimit.DefaultMaxRequests,
		Window:         ratelimit.DefaultWindow,
	}
}

// Agent is one independent conversation. Its rate window, guard and stage are never
// shared with other agents.
type Agent struct {
	id         string
	config     Config
	window     *ratelimit.Window
	classifier *intent.Classifier
	generator  *response.Generator
	store      queries.Store
	obs        *observability.Observability
	logger     logger.Logger

	processing atomic.Bool
	stage      atomic.String
	lastActive atomic.Time
}

type Option func(*options)

type options struct {
	id        string
	windowOps []ratelimit.Option
	obs       *observability.Observability
}

func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithRateLimitClock sets the time source of the agent's rate window.
func WithRateLimitClock(c ratelimit.Clock) Option {
	return func(o *options) { o.windowOps = append(o.windowOps, ratelimit.WithClock(c)) }
}

func WithObservability(obs *observability.Observability) Option {
	return func(o *options) { o.obs = obs }
}

// New builds an agent around completer and store. A nil completer runs the keyword
// and template paths only.
func New(completer llm.Completer, store queries.Store, cfg Config, log logger.Logger, opts ...Option) *Agent {
	o := options{id: uuid.NewString()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.obs == nil {
		o.obs = observability.NewNoop()
	}
	if cfg.OverallTimeout <= 0 {
		cfg.OverallTimeout = DefaultOverallTimeout
	}

	a := &Agent{
		id:     o.id,
		config: cfg,
		window: ratelimit.New(cfg.MaxRequests, cfg.Window, o.windowOps...),
		store:  store,
		obs:    o.obs,
		logger: log.With(map[string]interface{}{"agent_id": o.id}),
	}

	var guarded llm.Completer
	if completer != nil {
		limited := llm.Limited(completer, a.window, func(operation string) {
			metrics.AgentRateLimitRejections.Inc()
		})
		guarded = llm.Instrumented(limited, a.logger)
	}
	a.classifier = intent.New(guarded, a.logger, intent.WithCallTimeout(cfg.CallTimeout))
	a.generator = response.New(guarded, a.logger, response.WithCallTimeout(cfg.CallTimeout))

	a.stage.Store(string(models.StageIdle))
	a.lastActive.Store(time.Now())
	return a
}

func (a *Agent) ID() string { return a.id }

func (a *Agent) Stage() models.Stage { return models.Stage(a.stage.Load()) }

// Busy reports whether a ProcessMessage call is in flight.
func (a *Agent) Busy() bool { return a.processing.Load() }

func (a *Agent) LastActive() time.Time { return a.lastActive.Load() }

func (a *Agent) Window() *ratelimit.Window { return a.window }

// ProcessMessage answers one question. It never returns an error and never blocks past
// the overall timeout. A call made while another is in flight is rejected, not queued.
func (a *Agent) ProcessMessage(ctx context.Context, text string) models.AgentResponse {
	if !a.processing.CompareAndSwap(false, true) {
		metrics.AgentRequests.WithLabelValues(OutcomeBusy).Inc()
		a.logger.Debug("rejecting overlapping question", map[string]interface{}{"stage": a.Stage()})
		return models.AgentResponse{Message: models.BusyMessage, Error: models.ErrorTagAlreadyProcessing}
	}
	defer a.processing.Store(false)

	start := time.Now()
	a.lastActive.Store(start)

	ctx, cancel := context.WithTimeout(ctx, a.config.OverallTimeout)
	defer cancel()

	ctx, span := a.obs.StartSpan(ctx, "agent.process_message", attribute.String("agent.id", a.id))
	defer span.End()

	done := make(chan models.AgentResponse, 1)
	go func() {
		done <- a.run(ctx, text)
	}()

	var resp models.AgentResponse
	var outcome string
	select {
	case resp = <-done:
		outcome = OutcomeAnswered
		if resp.Error == models.ErrorTagInternal {
			outcome = OutcomePanic
		} else if resp.Error != "" {
			outcome = OutcomeQueryFailed
		}
	case <-ctx.Done():
		a.stage.Store(string(models.StageTimedOut))
		outcome = OutcomeTimeout
		resp = models.AgentResponse{Message: models.TimeoutMessage, Error: models.ErrorTagTimeout}
		span.SetStatus(codes.Error, "deadline exceeded")
	}

	elapsed := time.Since(start)
	metrics.AgentRequests.WithLabelValues(outcome).Inc()
	a.obs.RecordRequest(ctx, outcome, elapsed)
	span.SetAttributes(attribute.String("agent.outcome", outcome), attribute.String("agent.intent", resp.Intent))

	a.logger.Info("question processed", map[string]interface{}{
		"outcome":     outcome,
		"intent":      resp.Intent,
		"error":       resp.Error,
		"duration_ms": elapsed.Milliseconds(),
	})
	a.lastActive.Store(time.Now())
	return resp
}

func (a *Agent) run(ctx context.Context, text string) (resp models.AgentResponse) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("pipeline panic", map[string]interface{}{"panic": fmt.Sprint(r)})
			resp = models.AgentResponse{Message: response.ApologyMessage, Error: models.ErrorTagInternal}
		}
	}()

	var classified intent.Result
	a.runStage(ctx, models.StageClassifying, func(ctx context.Context) []attribute.KeyValue {
		classified = a.classifier.Classify(ctx, text)
		return []attribute.KeyValue{
			attribute.String("intent.tag", classified.Tag),
			attribute.String("intent.source", classified.Source),
		}
	})

	in := classified.Intent()
	if !in.Type.IsKnown() {
		in = models.Intent{Type: models.IntentGeneral}
	}

	var data any
	var queryErr string
	a.runStage(ctx, models.StageQuerying, func(ctx context.Context) []attribute.KeyValue {
		result, ok := queries.Execute(ctx, a.store, in)
		if !ok {
			return []attribute.KeyValue{attribute.Bool("query.skipped", true)}
		}
		metrics.AgentQueryResults.WithLabelValues(string(in.Type), fmt.Sprint(result.Success)).Inc()
		if result.Success {
			data = result.Data
		} else {
			queryErr = result.Error
			a.logger.Warn("data lookup failed", map[string]interface{}{"intent": in.Tag(), "error": result.Error})
		}
		return []attribute.KeyValue{attribute.Bool("query.success", result.Success)}
	})

	var message string
	a.runStage(ctx, models.StageGenerating, func(ctx context.Context) []attribute.KeyValue {
		message = a.generator.Generate(ctx, text, in.Type, data)
		return nil
	})

	a.advance(ctx, models.StageDone)
	return models.AgentResponse{
		Message: message,
		Data:    data,
		Error:   queryErr,
		Intent:  in.Tag(),
	}
}

// runStage wraps one pipeline stage in a span and a duration observation.
func (a *Agent) runStage(ctx context.Context, stage models.Stage, fn func(ctx context.Context) []attribute.KeyValue) {
	a.advance(ctx, stage)
	ctx, span := a.obs.StartSpan(ctx, "agent."+string(stage))
	defer span.End()

	start := time.Now()
	attrs := fn(ctx)
	metrics.AgentStageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
	span.SetAttributes(attrs...)
}

// advance records the new stage unless the request has already timed out, so a
// straggling pipeline cannot overwrite the timed-out state.
func (a *Agent) advance(ctx context.Context, stage models.Stage) {
	if ctx.Err() == nil {
		a.stage.Store(string(stage))
	}
}
