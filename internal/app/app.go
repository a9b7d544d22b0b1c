// Package app assembles the agent's dependencies from configuration. Both the server
// and the CLI build their agents through it.
package app

import (
	"context"
	"fmt"

	"restaurant-agent/internal/agent"
	"restaurant-agent/internal/api"
	"restaurant-agent/internal/common/config"
	"restaurant-agent/internal/common/database"
	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/llm"
	"restaurant-agent/internal/queries"
)

// Deps are the long-lived collaborators shared by every agent.
type Deps struct {
	Store     queries.Store
	Completer llm.Completer
	Checks    []api.Check

	closers []func() error
}

// Close releases connections in reverse order of creation.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i]()
	}
}

// Build connects to the database (and Redis when caching is on), waiting for each with
// retries, and creates the LLM client when enabled.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*Deps, error) {
	deps := &Deps{Completer: NewCompleter(cfg.LLM)}

	sqlClient, err := database.NewSQL(cfg.Database)
	if err != nil {
		return nil, err
	}
	deps.closers = append(deps.closers, sqlClient.Close)

	attempts := uint(cfg.Database.ConnectRetries)
	delay := config.GetDuration(cfg.Database.RetryDelay)
	if err := database.WaitFor(ctx, sqlClient.Driver, sqlClient, attempts, delay, log); err != nil {
		deps.Close()
		return nil, fmt.Errorf("%s unavailable: %w", sqlClient.Driver, err)
	}
	log.Info("database connected", map[string]interface{}{"driver": sqlClient.Driver})
	deps.Checks = append(deps.Checks, api.Check{Name: sqlClient.Driver, Ping: sqlClient.Ping})

	var store queries.Store = queries.NewSQLStore(sqlClient.DB, queries.WithLocation(cfg.Agent.Location()))

	if cfg.Cache.Enabled {
		redisClient := database.NewRedis(cfg.Database.Redis)
		deps.closers = append(deps.closers, redisClient.Close)
		if err := database.WaitFor(ctx, "redis", redisClient, attempts, delay, log); err != nil {
			deps.Close()
			return nil, fmt.Errorf("redis unavailable: %w", err)
		}
		log.Info("redis connected", map[string]interface{}{"address": cfg.Database.Redis.Address})
		deps.Checks = append(deps.Checks, api.Check{Name: "redis", Ping: redisClient.Ping})
		store = queries.NewCachedStore(store, redisClient.Client, config.GetDuration(cfg.Cache.TTL), log)
	}

	deps.Store = store
	return deps, nil
}

// NewCompleter returns nil when the LLM is disabled, which leaves agents on the keyword
// and template paths.
func NewCompleter(cfg config.LLMConfig) llm.Completer {
	if !cfg.Enabled {
		return nil
	}
	return llm.NewOpenAIClient(llm.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
}

// AgentConfig maps the agent section onto agent.Config.
func AgentConfig(cfg config.AgentConfig) agent.Config {
	return agent.Config{
		OverallTimeout: config.GetDuration(cfg.OverallTimeout),
		CallTimeout:    config.GetDuration(cfg.CallTimeout),
		MaxRequests:    cfg.RateLimit.MaxRequests,
		Window:         config.GetDuration(cfg.RateLimit.Window),
	}
}
