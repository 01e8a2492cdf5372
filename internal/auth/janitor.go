package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunRefreshTokenJanitor purges expired refresh tokens every interval until
// ctx is cancelled.
func RunRefreshTokenJanitor(ctx context.Context, service *Service, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := service.PurgeExpiredSessions(ctx)
			if err != nil {
				service.logger.Warn("purge expired refresh tokens", zap.Error(err))
				continue
			}
			if purged > 0 {
				service.logger.Info("purged expired refresh tokens", zap.Int64("count", purged))
			}
		}
	}
}
