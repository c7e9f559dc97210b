// Command worker runs the match ingestion and rating pipeline: the
// ingestion loop pulls completed games from the replay source, the fast
// loop backfills ratings and fires the hourly and daily cycles.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/duelhub/duel-rating-hub/internal/infrastructure/external/replay"
	"github.com/duelhub/duel-rating-hub/internal/infrastructure/persistence/postgres"
	"github.com/duelhub/duel-rating-hub/internal/infrastructure/persistence/redis"
	"github.com/duelhub/duel-rating-hub/internal/infrastructure/scheduler"
	"github.com/duelhub/duel-rating-hub/internal/infrastructure/scheduler/jobs"
)

func main() {
	mode := flag.String("mode", "continuous", "run mode: continuous, hourly or daily")
	flag.Parse()

	if err := run(*mode); err != nil {
		slog.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(mode string) error {
	// Absent .env files are fine; containers inject the environment.
	_ = godotenv.Load()

	logger := newLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	databaseURL, err := requireEnv("DATABASE_URL")
	if err != nil {
		return err
	}
	replayURL, err := requireEnv("REPLAY_API_URL")
	if err != nil {
		return err
	}

	conn, err := postgres.NewConnection(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer conn.Close()

	if err := postgres.NewMigrator(conn, logger).Run(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	cache, err := redis.NewCache(ctx, redis.Config{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	})
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer cache.Close()

	checkpoints := redis.NewCheckpoints(cache)
	leaderboard := redis.NewLeaderboard(cache)

	source := replay.NewClient(replay.ClientConfig{
		BaseURL:   replayURL,
		APIKey:    getEnv("REPLAY_API_KEY", ""),
		BatchSize: getEnvInt("REPLAY_BATCH_SIZE", 0),
		Logger:    logger,
	})

	orch := scheduler.New(
		jobs.NewIngest(conn, checkpoints, source, logger),
		jobs.NewBackfill(conn, logger, getEnvInt("BACKFILL_BATCH_SIZE", 0)),
		jobs.NewHourly(conn, cache, leaderboard, logger),
		jobs.NewDaily(conn, cache, checkpoints, logger),
		checkpoints,
		logger,
	).WithIntervals(
		getEnvDuration("FAST_INTERVAL", 0),
		getEnvDuration("INGEST_INTERVAL", 0),
	)

	switch mode {
	case "continuous":
		logger.Info("worker starting", slog.String("mode", mode))
		return orch.Run(ctx)
	case "hourly":
		return orch.RunHourlyOnce(ctx)
	case "daily":
		return orch.RunDailyOnce(ctx)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// newLogger builds a JSON logger in production and a text logger
// elsewhere, with the level taken from LOG_LEVEL.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch getEnv("LOG_LEVEL", "info") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if getEnv("APP_ENV", "development") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// requireEnv returns an error instead of exiting so run's deferred
// connection shutdowns still fire.
func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("missing required environment variable %s", key)
	}
	return v, nil
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
