package controllers

import (
	"net/http"

	"github.com/jmtolibas/cafeline-backend/api/responses"
	"github.com/jmtolibas/cafeline-backend/pkg/config"
	"github.com/jmtolibas/cafeline-backend/pkg/db"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
	"github.com/jmtolibas/cafeline-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cafeline-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-Cafeline-Env", cfg.App.Env)

		checks := map[string]string{"database": "ok", "redis": "ok"}
		healthy := true

		if dbP == nil {
			checks["database"] = "not configured"
			healthy = false
		} else if err := dbP.Ping(ctx); err != nil {
			logg.Error(ctx, "database ping failed", err)
			checks["database"] = "unavailable"
			healthy = false
		}

		if redisP == nil {
			checks["redis"] = "not configured"
			healthy = false
		} else if err := redisP.Ping(ctx); err != nil {
			logg.Error(ctx, "redis ping failed", err)
			checks["redis"] = "unavailable"
			healthy = false
		}

		if !healthy {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "service dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
