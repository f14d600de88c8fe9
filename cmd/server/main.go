package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mediandina/SGC/internal/account"
	"github.com/mediandina/SGC/internal/backup"
	"github.com/mediandina/SGC/internal/booking"
	"github.com/mediandina/SGC/internal/config"
	"github.com/mediandina/SGC/internal/events"
	"github.com/mediandina/SGC/internal/metrics"
	"github.com/mediandina/SGC/internal/server"
	"github.com/mediandina/SGC/internal/session"
	"github.com/mediandina/SGC/internal/store"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("SGC_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Redis.Address == "" {
		logger.Fatal().Msg("set redis.address in config")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	locker := store.NewLocker(cfg.LockTimeout())
	bookingResolver := store.NewResolver(cfg.Storage.Dir, cfg.Storage.BookingsFile, store.BookingSchema, logger)
	accountResolver := store.NewResolver(cfg.Storage.Dir, cfg.Storage.AccountsFile, store.AccountSchema, logger)

	metrics.Register()

	// Make sure both canonical tables exist before taking traffic.
	if _, err := bookingResolver.Resolve(); err != nil {
		logger.Fatal().Err(err).Msg("booking store unavailable")
	}
	if _, err := accountResolver.Resolve(); err != nil {
		logger.Fatal().Err(err).Msg("account store unavailable")
	}

	bookingStore := store.NewBookingStore(bookingResolver, locker, logger)
	accountStore := store.NewAccountStore(accountResolver, locker, logger)

	bus := events.NewBus()
	bus.Subscribe(events.BookingCreated, func(e events.Event) {
		logger.Info().Str("event", e.Type).Msg("domain event")
	})
	bus.Subscribe(events.AccountRegistered, func(e events.Event) {
		logger.Info().Str("event", e.Type).Msg("domain event")
	})

	sessions := session.NewManager(rdb, cfg.SessionTTL(), logger)
	accounts := account.NewService(accountStore, sessions, bus, logger)
	bookings := booking.NewService(bookingStore, bus, logger)

	srv := server.New(accounts, bookings, sessions, cfg.RateLimit.LoginPerMinute, cfg.RateLimit.Burst, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, cfg.Storage.Dir, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		sources := []string{
			filepath.Join(cfg.Storage.Dir, cfg.Storage.BookingsFile),
			filepath.Join(cfg.Storage.Dir, cfg.Storage.AccountsFile),
		}
		go backup.NewService(sources, *cfg, logger).Start(ctx)
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Handler(),
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("SGC server started")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("http server error")
	}
}

func startHealthServer(ctx context.Context, port int, storageDir string, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if _, err := os.Stat(storageDir); err != nil {
			http.Error(w, "storage not ready", http.StatusServiceUnavailable)
			return
		}
		if err := rdb.Ping(ctxPing).Err(); err != nil {
			http.Error(w, "redis not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
