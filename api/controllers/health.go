package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/icecream-backend/api/responses"
	"github.com/angelmondragon/icecream-backend/pkg/config"
	"github.com/angelmondragon/icecream-backend/pkg/logger"
	"github.com/angelmondragon/icecream-backend/pkg/types"
)

const readyTimeout = 2 * time.Second

// Pinger is anything the readiness probe can check.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Icecream-Env", cfg.App.Env)
		responses.WriteJSON(w, http.StatusOK, types.StatusResponse{Status: "live"})
	}
}

// HealthReady pings every named dependency. A nil pinger is skipped, which
// is how an unconfigured Redis stays out of the check.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Icecream-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(deps))
		for name, p := range deps {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				checks[name] = "down"
				if logg != nil {
					logg.WarnErr(logg.WithField(ctx, "dependency", name), "readiness check failed", err)
				}
				continue
			}
			checks[name] = "ok"
		}

		body := types.StatusResponse{Status: "ready", Checks: checks}
		if status != http.StatusOK {
			body.Status = "unavailable"
		}
		responses.WriteJSON(w, status, body)
	}
}
