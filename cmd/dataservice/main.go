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
	"github.com/rosterd/rosterd/internal/health"
	"github.com/rosterd/rosterd/internal/infrastructure/postgres"
	ctxlog "github.com/rosterd/rosterd/internal/log"
	"github.com/rosterd/rosterd/internal/metrics"
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

	memberCache, err := cache.New(cfg.CacheURL, logger)
	if err != nil {
		stop()
		log.Fatalf("cache: %v", err)
	}
	defer memberCache.Close()

	groupRepo := postgres.NewGroupRepository(pool)
	staffRepo := postgres.NewStaffRepository(pool)
	membershipRepo := postgres.NewMembershipRepository(pool)

	groupUsecase := usecase.NewGroupUsecase(groupRepo, memberCache, logger)
	staffUsecase := usecase.NewStaffUsecase(staffRepo, memberCache, logger)
	membershipUsecase := usecase.NewMembershipUsecase(membershipRepo, staffRepo, groupRepo, memberCache, logger)
	batchUsecase := usecase.NewBatchUsecase(staffRepo, groupRepo, membershipRepo, memberCache, logger)

	groupHandler := handler.NewGroupHandler(groupUsecase, membershipUsecase, logger)
	staffHandler := handler.NewStaffHandler(staffUsecase, batchUsecase, logger)
	membershipHandler := handler.NewMembershipHandler(membershipUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, memberCache, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: httptransport.NewDataServiceRouter(logger, groupHandler, staffHandler, membershipHandler),
	}

	metricsSrv := metrics.NewServer(cfg.MetricsAddr(), checker)

	go func() {
		logger.Info("data service started", "addr", cfg.ListenAddr())
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
