// Package jobs holds the scheduled background work of the server.
package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Purger drops sessions idle for longer than maxIdle.
type Purger interface {
	PurgeIdle(maxIdle time.Duration) int
}

// StartSessionSweeper schedules the purge of idle report sessions. The
// caller owns the returned scheduler and must Stop it on shutdown.
func StartSessionSweeper(schedule string, ttl time.Duration, purger Purger, logger *zap.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		if n := purger.PurgeIdle(ttl); n > 0 {
			logger.Info("sessões ociosas removidas", zap.Int("count", n), zap.Duration("ttl", ttl))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("não foi possível agendar a limpeza de sessões: %w", err)
	}

	c.Start()
	logger.Info("limpeza de sessões agendada", zap.String("schedule", schedule))
	return c, nil
}
