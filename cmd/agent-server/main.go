// cmd/agent-server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"restaurant-agent/internal/agent"
	"restaurant-agent/internal/api"
	"restaurant-agent/internal/app"
	"restaurant-agent/internal/common/camunda"
	"restaurant-agent/internal/common/config"
	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/common/observability"
	"restaurant-agent/internal/session"
	processmessage "restaurant-agent/internal/workers/assistant/process-message"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	log.Info("starting agent server", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.Observability.ServiceName, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("dependency initialization failed", zap.Error(err))
	}
	defer deps.Close()

	if deps.Completer == nil {
		log.Warn("LLM disabled, using keyword classification and templates", nil)
	}

	agentCfg := app.AgentConfig(cfg.Agent)
	sessions := session.NewManager(func(id string) *agent.Agent {
		return agent.New(deps.Completer, deps.Store, agentCfg, log,
			agent.WithID(id),
			agent.WithObservability(obs),
		)
	}, config.GetDuration(cfg.Agent.SessionIdleTTL), log)
	go sessions.Run(ctx, config.GetDuration(cfg.Agent.SweepInterval))

	// --- Camunda worker (optional) ---
	var jobWorker *camunda.CamundaWorker
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled && config.IsWorkerEnabled(cfg, processmessage.TaskType) {
		zeebe, err = connectCamunda(ctx, cfg, log)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		deps.Checks = append(deps.Checks, api.Check{Name: "zeebe", Ping: zeebe.HealthCheck})

		wcfg := config.GetWorkerConfig(cfg, processmessage.TaskType)
		handler := processmessage.NewHandler(processmessage.LoadConfig(cfg), sessions, log)
		jobWorker = camunda.NewWorker(zeebe.GetClient(), processmessage.TaskType,
			wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), handler, log)
	}

	// --- HTTP ---
	router := api.NewRouter(
		api.NewChatHandler(sessions, log),
		api.NewHealthHandler(cfg.App.Version, deps.Checks...),
		cfg.Server.CORSOrigins,
		log,
	)
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		log.Info("http server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server failed", nil)
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http server shutdown failed", nil)
	}
	if jobWorker != nil {
		jobWorker.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			log.WithError(err).Error("error closing zeebe client", nil)
		}
	}

	log.Info("agent server stopped", map[string]interface{}{"sessions": sessions.Count()})
}

func connectCamunda(ctx context.Context, cfg *config.Config, log logger.Logger) (*camunda.Client, error) {
	var client *camunda.Client
	err := retry.Do(
		func() error {
			var err error
			client, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(cfg.Database.ConnectRetries)),
		retry.Delay(config.GetDuration(cfg.Database.RetryDelay)),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("zeebe client initialization failed, retrying", map[string]interface{}{
				"attempt": n + 1,
				"error":   err.Error(),
			})
		}),
	)
	if err != nil {
		return nil, err
	}
	log.Info("zeebe client connected", map[string]interface{}{"address": cfg.Camunda.BrokerAddress})
	return client, nil
}
