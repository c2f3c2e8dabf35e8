package wire

import (
	"context"
	"log/slog"
	"time"
)

// Purger deletes expired rows and reports how many were removed.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// startReaper purges expired idempotency keys every interval until ctx is
// cancelled. The first sweep runs immediately so keys left by a previous
// process do not wait a full interval.
func startReaper(ctx context.Context, p Purger, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			sweep(ctx, p)
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()
}

func sweep(ctx context.Context, p Purger) {
	n, err := p.Purge(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.ErrorContext(ctx, "reaper: purge failed", "error", err)
		}
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "reaper: purged expired idempotency keys", "count", n)
	}
}

// reapInterval sweeps a few times per TTL, between one minute and one hour.
func reapInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/4, time.Minute), time.Hour)
}
