package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/rentflow-backend/api/responses"
	"github.com/angelmondragon/rentflow-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

const (
	envHeader    = "X-RentFlow-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and Redis. Nil dependencies are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]Pinger{"database": dbP, "redis": redisP}
		status := map[string]string{}
		for name, dep := range checks {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				status[name] = "down"
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
			status[name] = "up"
		}
		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
