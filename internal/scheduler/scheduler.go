// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
)

// Job is one run of a periodic task.
type Job func(ctx context.Context) error

// Every runs job each interval until ctx is cancelled. The first run happens after one
// full interval. Job errors are logged; the loop keeps going.
func Every(ctx context.Context, name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		logger.Warn().Str("job", name).Msg("Job disabled, interval is not positive")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Str("job", name).Dur("interval", interval).Msg("Job scheduled")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Str("job", name).Msg("Job stopped")
			return nil
		case <-ticker.C:
			start := time.Now()
			if err := job(ctx); err != nil {
				logger.Error().Err(err).Str("job", name).Msg("Job failed")
				continue
			}
			logger.Debug().Str("job", name).Dur("latency", time.Since(start)).Msg("Job finished")
		}
	}
}
