package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rosterd/rosterd/config"
	"github.com/rosterd/rosterd/internal/cache"
	"github.com/rosterd/rosterd/internal/dataservice"
	"github.com/rosterd/rosterd/internal/health"
	"github.com/rosterd/rosterd/internal/infrastructure/postgres"
	ctxlog "github.com/rosterd/rosterd/internal/log"
	"github.com/rosterd/rosterd/internal/metrics"
	"github.com/rosterd/rosterd/internal/scheduler"
	httptransport "github.com/rosterd/rosterd/internal/transport/http"
	"github.com/rosterd/rosterd/internal/transport/http/handler"
	"github.com/rosterd/rosterd/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	resultCache, err := cache.New(cfg.CacheURL, logger)
	if err != nil {
		stop()
		log.Fatalf("cache: %v", err)
	}
	defer resultCache.Close()

	jobRepo := postgres.NewJobRepository(pool)
	assignmentRepo := postgres.NewAssignmentRepository(pool)

	members := dataservice.NewClient(cfg.DataServiceURL)
	rules := scheduler.DefaultRules(cfg.MinDaysOffPerWeek, cfg.MaxDaysOffPerWeek, cfg.MaxDailyShiftDiff)
	generator := scheduler.NewGenerator(rules, logger)
	dispatcher := scheduler.NewDispatcher(cfg.QueueCapacity, jobRepo, assignmentRepo, members, generator, logger)
	reaper := scheduler.NewReaper(jobRepo, cfg.ReaperInterval(), cfg.StaleJobCutoff(), logger)

	scheduleUsecase := usecase.NewScheduleUsecase(jobRepo, assignmentRepo, dispatcher, resultCache, logger)
	scheduleHandler := handler.NewScheduleHandler(scheduleUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, resultCache, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: httptransport.NewSchedulingRouter(logger, scheduleHandler),
	}

	metricsSrv := metrics.NewServer(cfg.MetricsAddr(), checker)

	// The worker drains on queue close rather than context cancel, so
	// accepted jobs finish during shutdown.
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		dispatcher.Run(context.Background())
	}()

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	go reaper.Start(reaperCtx)

	go func() {
		logger.Info("scheduling service started", "addr", cfg.ListenAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "addr", cfg.MetricsAddr())
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	// Intake is stopped, drain the accepted jobs before exiting.
	dispatcher.Close()
	select {
	case <-workerDone:
	case <-time.After(30 * time.Second):
		logger.Warn("worker drain timed out")
	}
	stopReaper()
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
