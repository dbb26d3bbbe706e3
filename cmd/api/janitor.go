package main

import (
	"context"
	"time"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/kvstore"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
)

type sweeper interface {
	Sweep(idle time.Duration) int
}

// runJanitor evicts idle visitor reconcilers and purges expired SQL guest rows.
func runJanitor(ctx context.Context, logg *logger.Logger, idle time.Duration, sqlStore *kvstore.SQL, targets ...sweeper) {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	interval := idle / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		evicted := 0
		for _, t := range targets {
			evicted += t.Sweep(idle)
		}
		fields := map[string]any{"evicted": evicted}
		if sqlStore != nil {
			purged, err := sqlStore.PurgeExpired(ctx)
			if err != nil {
				logg.Error(ctx, "guest state purge failed", err)
			}
			fields["purged"] = purged
		}
		logg.Debug(logg.WithFields(ctx, fields), "janitor.sweep")
	}
}
