package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/glizzus/softtimer/internal/config"
	"github.com/glizzus/softtimer/internal/metrics"
	"github.com/glizzus/softtimer/internal/schedule"
	"github.com/glizzus/softtimer/internal/worker"
)

func newJobHandler(ctx context.Context, cfg *config.RedisConfig) (worker.JobHandler, func(), error) {
	if !cfg.Enabled() {
		slog.Info("REDIS_ADDR is not set, due jobs will only be logged")
		return &worker.PrintingJobHandler{}, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	h, err := worker.NewRedisJobHandler(ctx, rdb, cfg.Stream)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create redis job handler: %w", err)
	}

	closeFn := func() {
		if err := rdb.Close(); err != nil {
			slog.Error("failed to close redis client", slog.Any("error", err))
		}
	}
	return h, closeFn, nil
}

func newHTTPHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "softtimer\n")
	})
	return mux
}

func runTimerForever() error {
	if err := config.LoadEnv(); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("No .env file found, continuing without it")
		} else {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg, err := config.NewTimerConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load timer config: %w", err)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	redisConfig, err := config.NewRedisConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load redis config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, closeHandler, err := newJobHandler(ctx, redisConfig)
	if err != nil {
		return err
	}
	defer closeHandler()

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return runTimer(ctx, cfg, handler, logger, reg)
}

// runTimer runs the heartbeat and cron jobs and the metrics listener until
// ctx is canceled, then stops the scheduler.
func runTimer(
	ctx context.Context,
	cfg *config.TimerConfig,
	handler worker.JobHandler,
	logger *slog.Logger,
	reg *prometheus.Registry,
) error {
	sched := schedule.New(schedule.Config{
		Logger:  logger,
		Metrics: schedule.NewMetrics(metrics.NewPrometheus(reg)),
	})

	if _, err := sched.Every(cfg.HeartbeatInterval, worker.JobWork(handler, "heartbeat")); err != nil {
		return fmt.Errorf("failed to schedule heartbeat: %w", err)
	}
	if cfg.Cron != "" {
		if _, err := sched.Cron(cfg.Cron, worker.JobWork(handler, "cron")); err != nil {
			return fmt.Errorf("failed to schedule cron job: %w", err)
		}
	}

	logger.Info(
		"timer started",
		slog.Duration("heartbeatInterval", cfg.HeartbeatInterval),
		slog.String("cron", cfg.Cron),
	)

	eg, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: newHTTPHandler(reg),
		}

		eg.Go(func() error {
			logger.Info("starting HTTP metrics listener", slog.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to serve HTTP: %w", err)
			}
			return nil
		})

		eg.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down timer")

		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return sched.Stop(stopCtx)
	})

	return eg.Wait()
}

func main() {
	if err := runTimerForever(); err != nil {
		slog.Error("Timer encountered an error", slog.Any("error", err))
		os.Exit(1)
	}
}
