// internal/workers/assistant/process-message/config.go
package processmessage

import (
	"time"

	"restaurant-agent/internal/common/config"
)

type Config struct {
	Timeout     time.Duration
	BusyRetries int32
	BusyBackoff time.Duration
	MaxQuestion int
}

func LoadConfig(cfg *config.Config) *Config {
	worker := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:     config.GetDuration(worker.Timeout),
		BusyRetries: int32(worker.MaxRetries),
		BusyBackoff: 2 * time.Second,
		MaxQuestion: 1000,
	}
}
