package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"twitch-chat-overlay/colors"
	"twitch-chat-overlay/config"
	"twitch-chat-overlay/filter"
	"twitch-chat-overlay/metrics"
	"twitch-chat-overlay/parser"
	"twitch-chat-overlay/service"
	"twitch-chat-overlay/storage"
	"twitch-chat-overlay/twitch"
)

func main() {
	loader, err := config.NewLoader()
	if err != nil {
		log.WithError(err).Fatal("config init failed")
	}
	cfg, err := loader.Load()
	if err != nil {
		log.WithError(err).Fatal("config load failed")
	}
	setupLogging(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics.Init()
	if cfg.Metrics.Addr != "" {
		go serveMetrics(ctx, cfg.Metrics.Addr)
	}

	var sink service.Sink = service.LogSink{}
	var batcher *storage.Batcher
	if cfg.Postgres.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
		if err != nil {
			log.WithError(err).Fatal("pgxpool.New")
		}
		defer pool.Close()

		if err := storage.EnsureSchema(ctx, pool); err != nil {
			log.WithError(err).Fatal("schema")
		}

		batcher = storage.NewBatcher(ctx, pool, storage.BatchConfig{
			MaxBatch:      cfg.Batch.MaxBatch,
			FlushEvery:    cfg.Batch.FlushEvery,
			ChanBuffer:    cfg.Batch.ChanBuffer,
			StatsLogEvery: cfg.Batch.StatsLogEvery,
			FlushTimeout:  cfg.Batch.FlushTimeout,
		})
		sink = service.NewPostgresSink(batcher, pool, cfg.Batch.FlushTimeout)
	} else {
		log.Info("POSTGRES_HOST не задан, записи только логируются")
	}

	ignore, err := filter.NewIgnore(cfg.Overlay.IgnoreUsers)
	if err != nil {
		log.WithError(err).Fatal("ignore list")
	}

	// Таблица цветов живёт столько же, сколько процесс.
	p := parser.New(colors.NewManager(), nil, nil)
	handler := service.NewHandler(p, ignore, sink)
	client := twitch.NewClient(cfg.Twitch, handler)
	srv := service.New(client, ignore)

	loader.Watch(func(next config.Config) {
		setupLogging(next.Log)
		srv.Reload(next)
	})

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("service run failed")
	}

	if batcher != nil {
		<-batcher.Done()
	}
	log.Info("shutting down...")
}

func setupLogging(cfg config.LogConfig) {
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("metrics: слушаем /metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics server")
	}
}
