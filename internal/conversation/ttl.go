package conversation

import (
	"context"
	"log/slog"
	"time"
)

const ttlWorkerInterval = 5 * time.Minute

// StartTTLWorker runs a background goroutine that periodically disposes
// sessions idle for longer than ttl.
func StartTTLWorker(ctx context.Context, svc *Service, ttl time.Duration) {
	if ttl <= 0 {
		slog.Info("TTL worker disabled", "ttl", ttl)
		return
	}
	ticker := time.NewTicker(ttlWorkerInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("TTL worker started", "interval", ttlWorkerInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				sweep(ctx, svc, ttl)
			case <-ctx.Done():
				slog.Info("TTL worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweep(ctx context.Context, svc *Service, ttl time.Duration) {
	deleted, err := svc.CleanupExpired(ctx, ttl)
	if err != nil {
		slog.Error("TTL worker failed to cleanup expired sessions", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("TTL worker cleaned up expired sessions", "count", deleted)
	}
}
