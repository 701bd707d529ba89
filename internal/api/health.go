package api

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *pgxpool.Pool and *catalog.HTTPSource.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports on optional dependencies. A nil dependency is
// reported as "disabled" and does not affect readiness.
type HealthHandler struct {
	pg         Pinger
	redis      *redis.Client
	catalogAPI Pinger
	catalog    string
	env        string
	version    string
}

func NewHealthHandler(pg Pinger, redis *redis.Client, catalogAPI Pinger, catalogSource, env, version string) *HealthHandler {
	return &HealthHandler{
		pg:         pg,
		redis:      redis,
		catalogAPI: catalogAPI,
		catalog:    catalogSource,
		env:        env,
		version:    version,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Catalog      string            `json:"catalog,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	resp := LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	}
	writeJSON(w, http.StatusOK, resp)
}

// Readiness fails when Postgres is down. Redis only carries notifications and
// the catalog API was already read into memory at startup, so losing either
// degrades the service without taking it out of rotation.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{"postgres": "disabled", "redis": "disabled", "catalog_api": "disabled"}
	status := "ok"

	if h.pg != nil {
		pgCtx, pgCancel := context.WithTimeout(ctx, 1*time.Second)
		err := h.pg.Ping(pgCtx)
		pgCancel()
		if err != nil {
			deps["postgres"] = "down"
			status = "error"
		} else {
			deps["postgres"] = "ok"
		}
	}

	if h.redis != nil {
		redisCtx, redisCancel := context.WithTimeout(ctx, 1*time.Second)
		err := h.redis.Ping(redisCtx).Err()
		redisCancel()
		if err != nil {
			deps["redis"] = "down"
			if status == "ok" {
				status = "degraded"
			}
		} else {
			deps["redis"] = "ok"
		}
	}

	if h.catalogAPI != nil {
		apiCtx, apiCancel := context.WithTimeout(ctx, 1*time.Second)
		err := h.catalogAPI.Ping(apiCtx)
		apiCancel()
		if err != nil {
			deps["catalog_api"] = "down"
			if status == "ok" {
				status = "degraded"
			}
		} else {
			deps["catalog_api"] = "ok"
		}
	}

	resp := ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Catalog:      h.catalog,
		Dependencies: deps,
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, resp)
}
