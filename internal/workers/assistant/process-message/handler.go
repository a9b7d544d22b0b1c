package processmessage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/common/metrics"
	"restaurant-agent/internal/common/validation"
	"restaurant-agent/internal/models"
	"restaurant-agent/internal/session"
)

const (
	TaskType = "process-restaurant-question"
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
	ErrSessionBusy  = errors.New("SESSION_BUSY")
)

type Handler struct {
	config   *Config
	schema   *validation.Schema
	sessions *session.Manager
	logger   logger.Logger
}

func NewHandler(config *Config, sessions *session.Manager, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		schema:   GetInputSchema(config.MaxQuestion),
		sessions: sessions,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(client, job, err, 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		retries := int32(0)
		if errors.Is(err, ErrSessionBusy) {
			retries = job.Retries - 1
			if retries > h.config.BusyRetries {
				retries = h.config.BusyRetries
			}
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, fmt.Errorf("%w: parse input: %v", ErrInvalidInput, err)
	}
	if result := h.schema.Validate(variables); !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, result.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, fmt.Errorf("%w: parse input: %v", ErrInvalidInput, err)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	if h.config.MaxQuestion > 0 && len(question) > h.config.MaxQuestion {
		return nil, fmt.Errorf("%w: question longer than %d bytes", ErrInvalidInput, h.config.MaxQuestion)
	}

	sessionID, a := h.sessions.Get(input.SessionID)
	resp := a.ProcessMessage(ctx, question)
	if resp.Error == models.ErrorTagAlreadyProcessing {
		return nil, fmt.Errorf("%w: session %s", ErrSessionBusy, sessionID)
	}

	h.logger.Info("question answered", map[string]interface{}{
		"sessionId": sessionID,
		"intent":    resp.Intent,
		"error":     resp.Error,
	})

	return &Output{
		Answer:    resp.Message,
		Data:      resp.Data,
		Error:     resp.Error,
		Intent:    resp.Intent,
		SessionID: sessionID,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	if errors.Is(err, ErrInvalidInput) {
		errorCode = "INVALID_INPUT"
	} else if errors.Is(err, ErrSessionBusy) {
		errorCode = "SESSION_BUSY"
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
		"retries":   retries,
	})

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(errorCode + ": " + err.Error())
	if retries > 0 {
		cmd = cmd.RetryBackoff(h.config.BusyBackoff)
	}
	_, _ = cmd.Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
