package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/telehealth-scheduling/internal/booking"
	"github.com/hackgods/telehealth-scheduling/internal/catalog"
)

type RouterConfig struct {
	Service       *booking.Service
	Catalog       catalog.Catalog
	CatalogSource string
	Feed          NotificationFeed // nil hides /notifications
	Postgres      Pinger           // nil when the catalog is not read from Postgres
	Redis         *redis.Client
	CatalogAPI    Pinger       // nil unless the catalog comes from the partner API
	Metrics       http.Handler // defaults to the global Prometheus registry
	Logger        zerolog.Logger
	Env           string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.Postgres, cfg.Redis, cfg.CatalogAPI, cfg.CatalogSource, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Handle("/metrics", metrics)

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/doctors", catalogHandler(cfg.Catalog.Doctors))
		r.Get("/hospitals", catalogHandler(cfg.Catalog.Hospitals))
		r.Get("/labs", catalogHandler(cfg.Catalog.LabTests))
		r.Get("/lab-locations", catalogHandler(catalog.LabLocations))
	})

	r.Get("/calendar/{flow}", calendarHandler(cfg.Service, cfg.Catalog))
	r.Get("/slots/{flow}", slotsHandler(cfg.Service))

	r.Post("/appointments", createAppointmentHandler(cfg.Service, cfg.Catalog))
	r.Get("/appointments", listAppointmentsHandler(cfg.Service))
	r.Patch("/appointments/{id}/status", updateAppointmentStatusHandler(cfg.Service))

	r.Post("/lab-appointments", createLabAppointmentHandler(cfg.Service, cfg.Catalog))
	r.Get("/lab-appointments", listLabAppointmentsHandler(cfg.Service))
	r.Get("/lab-appointments/{id}/card", labCardHandler(cfg.Service))

	r.Post("/service-appointments", createServiceAppointmentHandler(cfg.Service, cfg.Catalog))
	r.Get("/service-appointments", listServiceAppointmentsHandler(cfg.Service))
	r.Get("/service-appointments/{id}/card", serviceCardHandler(cfg.Service))

	if cfg.Feed != nil {
		r.Get("/notifications", notificationsHandler(cfg.Feed))
	}

	return r
}
