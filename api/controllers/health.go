package controllers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bhargavsatvara/zyqora-storefront/api/responses"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/config"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is any dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Zyqora-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency in parallel. Nil pingers are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Zyqora-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		results := make(chan [2]string, len(deps))
		var g errgroup.Group
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			g.Go(func() error {
				if err := dep.Ping(ctx); err != nil {
					results <- [2]string{name, "down"}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unreachable")
				}
				results <- [2]string{name, "ok"}
				return nil
			})
		}
		err := g.Wait()
		close(results)
		for res := range results {
			checks[res[0]] = res[1]
		}

		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.As(err).WithDetails(map[string]any{"checks": checks}))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
