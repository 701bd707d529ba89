package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/telehealth-scheduling/internal/api"
	"github.com/hackgods/telehealth-scheduling/internal/booking"
	"github.com/hackgods/telehealth-scheduling/internal/catalog"
	"github.com/hackgods/telehealth-scheduling/internal/config"
	"github.com/hackgods/telehealth-scheduling/internal/db"
	"github.com/hackgods/telehealth-scheduling/internal/logging"
	"github.com/hackgods/telehealth-scheduling/internal/metrics"
	redisclient "github.com/hackgods/telehealth-scheduling/internal/redis"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("dev", "info")
		fallback.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.New(cfg.Env, cfg.LogLevel).With().Str("service", "api-server").Logger()
	logger.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("catalog_source", cfg.CatalogSource).
		Str("timezone", cfg.Location.String()).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	var (
		pgPool  *pgxpool.Pool
		httpSrc *catalog.HTTPSource
	)
	src := catalog.Source(catalog.StaticSource{})
	switch cfg.CatalogSource {
	case config.CatalogSourceAPI:
		httpSrc = catalog.NewHTTPSource(cfg.CatalogAPIURL, cfg.CatalogAPIKey, cfg.CatalogTimeout).
			WithLocation(cfg.Location)
		src = httpSrc
	case config.CatalogSourcePostgres:
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		if err == nil {
			err = db.Migrate(pgCtx, pgPool)
		}
		cancelPg()
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres setup error")
		}
		defer pgPool.Close()
		logger.Info().Msg("connected to Postgres")
		src = catalog.NewPgSource(pgPool)
	}

	cat, err := catalog.Load(rootCtx, src, logger, m)
	if err != nil {
		logger.Fatal().Err(err).Msg("catalog load error")
	}
	logger.Info().
		Int("doctors", len(cat.Doctors)).
		Int("hospitals", len(cat.Hospitals)).
		Int("lab_tests", len(cat.LabTests)).
		Int("appointments", len(cat.Appointments)).
		Msg("catalog loaded")

	var (
		rdb      *redis.Client
		notifier booking.Notifier
		feed     api.NotificationFeed
	)
	if cfg.RedisAddr != "" {
		rdb, err = redisclient.NewRedisClient(rootCtx, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error().Err(err).Msg("error closing redis")
			}
		}()
		logger.Info().Str("channel", cfg.NotifyChannel).Msg("connected to Redis")

		n := redisclient.NewNotifier(rdb, cfg.NotifyChannel, cfg.NotifyHistory)
		notifier, feed = n, n
	}

	svc := booking.NewService(cfg.Slots, notifier, logger, m, cfg.Location)
	svc.LoadAppointments(cat.Appointments)
	go svc.RunSweeper(rootCtx, cfg.WorkerInterval)

	routerCfg := api.RouterConfig{
		Service:       svc,
		Catalog:       cat,
		CatalogSource: src.Name(),
		Feed:          feed,
		Redis:         rdb,
		Logger:        logger,
		Env:           cfg.Env,
		Version:       version,
	}
	// Nil pointers must stay nil interfaces or readiness would ping them.
	if pgPool != nil {
		routerCfg.Postgres = pgPool
	}
	if httpSrc != nil {
		routerCfg.CatalogAPI = httpSrc
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(routerCfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-rootCtx.Done()
	shutdown(srv, cfg.ShutdownTimeout, logger)
}

func shutdown(srv *http.Server, timeout time.Duration, logger zerolog.Logger) {
	logger.Info().Dur("timeout", timeout).Msg("shutting down api-server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
		os.Exit(1)
	}
	logger.Info().Msg("api-server stopped")
}
