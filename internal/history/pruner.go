package history

import (
	"context"
	"time"
)

// Logger defines the logging interface used by the pruner.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// RunPruner deletes entries older than retention every interval until ctx is
// cancelled. It always returns nil.
func RunPruner(ctx context.Context, repo *Repository, retention, interval time.Duration, logger Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := repo.Prune(ctx, retention)
			if err != nil {
				logger.Warn("history prune failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("history pruned", "rows", n, "retention", retention.String())
			}
		}
	}
}
