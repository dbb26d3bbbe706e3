package migrate

import (
	"context"
	"fmt"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/config"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/db"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
)

// MaybeAutoRun applies pending migrations at startup when the SQL guest store is
// in use and either auto-migrate is enabled or the driver is sqlite.
func MaybeAutoRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil || !cfg.GuestStore.UsesSQL() {
		return nil
	}
	if !cfg.FeatureFlags.AutoMigrate && client.Driver() != "sqlite" {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Driver()})
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := Run(ctx, sqlDB, client.Driver(), "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
