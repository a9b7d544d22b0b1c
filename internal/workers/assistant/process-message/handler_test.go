package processmessage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-agent/internal/agent"
	"restaurant-agent/internal/common/config"
	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/models"
	"restaurant-agent/internal/queries"
	"restaurant-agent/internal/session"
)

type revenueStore struct {
	queries.Store
	gate chan struct{}
}

func (r revenueStore) TodayRevenue(ctx context.Context) (*models.Revenue, error) {
	if r.gate != nil {
		<-r.gate
	}
	return &models.Revenue{Revenue: 245.50, OrderCount: 12}, nil
}

func createTestConfig() *Config {
	return &Config{
		Timeout:     5 * time.Second,
		BusyRetries: 3,
		BusyBackoff: 10 * time.Millisecond,
		MaxQuestion: 200,
	}
}

func newTestHandler(t *testing.T, store queries.Store) (*Handler, *session.Manager) {
	log := logger.NewTestLogger(t)
	sessions := session.NewManager(func(id string) *agent.Agent {
		return agent.New(nil, store, agent.DefaultConfig(), log, agent.WithID(id))
	}, time.Minute, log)
	return NewHandler(createTestConfig(), sessions, log), sessions
}

func TestHandler_Execute_Success(t *testing.T) {
	h, sessions := newTestHandler(t, revenueStore{})

	out, err := h.Execute(context.Background(), &Input{Question: "What's today's revenue?", SessionID: "process-42"})
	require.NoError(t, err)

	assert.Equal(t, "Today's revenue is $245.50 from 12 completed orders.", out.Answer)
	assert.Equal(t, models.Revenue{Revenue: 245.50, OrderCount: 12}, out.Data)
	assert.Equal(t, "revenue", out.Intent)
	assert.Empty(t, out.Error)
	assert.Equal(t, "process-42", out.SessionID)
	assert.Equal(t, 1, sessions.Count())
}

func TestHandler_Execute_NewSessionWhenMissing(t *testing.T) {
	h, _ := newTestHandler(t, revenueStore{})

	out, err := h.Execute(context.Background(), &Input{Question: "Hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, "general", out.Intent)
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	h, _ := newTestHandler(t, revenueStore{})

	tests := []struct {
		name  string
		input Input
	}{
		{"empty question", Input{Question: "  "}},
		{"too long", Input{Question: strings.Repeat("a", 201)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), &tt.input)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestHandler_Execute_BusySession(t *testing.T) {
	gate := make(chan struct{})
	h, sessions := newTestHandler(t, revenueStore{gate: gate})
	_, a := sessions.Get("process-1")

	done := make(chan struct{})
	go func() {
		a.ProcessMessage(context.Background(), "What's today's revenue?")
		close(done)
	}()
	require.Eventually(t, a.Busy, time.Second, 5*time.Millisecond)

	_, err := h.Execute(context.Background(), &Input{Question: "What's today's revenue?", SessionID: "process-1"})
	assert.True(t, errors.Is(err, ErrSessionBusy))

	close(gate)
	<-done
}

func TestLoadConfig(t *testing.T) {
	cfg := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: true, Timeout: 20000, MaxRetries: 4},
	}}
	c := LoadConfig(cfg)
	assert.Equal(t, 20*time.Second, c.Timeout)
	assert.Equal(t, int32(4), c.BusyRetries)
}

func TestHandler_ParseInput(t *testing.T) {
	h, _ := newTestHandler(t, revenueStore{})
	job := func(vars string) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: vars}}
	}

	input, err := h.parseInput(job(`{"question": "How many orders are pending?", "sessionId": "s-1", "other": true}`))
	require.NoError(t, err)
	assert.Equal(t, "How many orders are pending?", input.Question)
	assert.Equal(t, "s-1", input.SessionID)

	for name, vars := range map[string]string{
		"missing question": `{"sessionId": "s-1"}`,
		"wrong type":       `{"question": 42}`,
		"too long":         `{"question": "` + strings.Repeat("a", 201) + `"}`,
		"not json":         `{`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.parseInput(job(vars))
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}
