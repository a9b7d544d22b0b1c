package database

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"

	"restaurant-agent/internal/common/logger"
)

// Pinger is anything whose connectivity can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitFor pings p until it answers, backing off exponentially from delay. It gives up
// after attempts tries or when ctx ends.
func WaitFor(ctx context.Context, name string, p Pinger, attempts uint, delay time.Duration, log logger.Logger) error {
	if attempts == 0 {
		attempts = 1
	}
	return retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return p.Ping(pingCtx)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("dependency not ready, retrying", map[string]interface{}{
				"dependency": name,
				"attempt":    n + 1,
				"error":      err.Error(),
			})
		}),
	)
}
