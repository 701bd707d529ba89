package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/telehealth-scheduling/internal/booking"
	"github.com/hackgods/telehealth-scheduling/internal/config"
	"github.com/hackgods/telehealth-scheduling/internal/logging"
	redisclient "github.com/hackgods/telehealth-scheduling/internal/redis"
)

// subscriber is satisfied by *redisclient.Notifier.
type subscriber interface {
	Subscribe(ctx context.Context, fn func(booking.Notification), onErr func(error)) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("dev", "info")
		fallback.Fatal().Err(err).Msg("config load error")
	}
	logger := logging.New(cfg.Env, cfg.LogLevel).With().Str("service", "notify-worker").Logger()

	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("REDIS_ADDR or REDIS_URL is required")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := redisclient.NewRedisClient(rootCtx, redisclient.Options{
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

	logger.Info().Str("channel", cfg.NotifyChannel).Msg("notify-worker starting up")

	n := redisclient.NewNotifier(rdb, cfg.NotifyChannel, cfg.NotifyHistory)
	run(rootCtx, n, 5*time.Second, logger)

	logger.Info().Msg("notify-worker stopped")
}

// run delivers notifications until ctx is done, resubscribing after backoff
// whenever the subscription drops.
func run(ctx context.Context, sub subscriber, backoff time.Duration, logger zerolog.Logger) {
	deliver := func(n booking.Notification) {
		logger.Info().
			Str("title", n.Title).
			Str("type", n.Type).
			Time("timestamp", n.Timestamp).
			Msg(n.Message)
	}
	onErr := func(err error) {
		logger.Warn().Err(err).Msg("skipping notification")
	}

	for {
		err := sub.Subscribe(ctx, deliver, onErr)
		if ctx.Err() != nil {
			return
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Dur("backoff", backoff).Msg("subscription dropped")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}
