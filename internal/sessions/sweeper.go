package sessions

import (
	"context"
	"time"

	"github.com/ndavydov/auth-sessions/internal/config"
	"go.uber.org/zap"
)

// StartSweep physically removes expired rows on a fixed schedule,
// independent of request traffic. A failed run is logged and left for the
// next tick; it never takes the process down.
func (m *Manager) StartSweep(ctx context.Context) {
	t := time.NewTicker(config.SweepInterval)
	defer t.Stop()

	zap.L().Info("session sweeper started", zap.Duration("interval", config.SweepInterval))

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("session sweeper stopped")
			return
		case <-t.C:
			deleted, err := m.DeleteExpired(ctx)
			if err != nil {
				zap.L().Warn("session sweep failed", zap.Error(err))
				continue
			}

			zap.L().Info("session sweep finished", zap.Int64("deleted", deleted))
		}
	}
}
