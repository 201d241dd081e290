package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/selimbouaziz/ateliera-backend/api/responses"
	"github.com/selimbouaziz/ateliera-backend/pkg/config"
	pkgerrors "github.com/selimbouaziz/ateliera-backend/pkg/errors"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
)

const readinessTimeout = 5 * time.Second

// Pinger is any dependency that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ateliera-Env", cfg.App.Env)
		responses.WriteSuccess(w, responses.Payload{"status": "live"})
	}
}

// HealthReady pings each wired dependency. A nil pinger is skipped so
// binaries without, say, object storage still report ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ateliera-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "skipped"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").WithDetails(checks))
				return
			}
			checks[name] = "up"
		}

		responses.WriteSuccess(w, responses.Payload{"status": "ready", "checks": checks})
	}
}
