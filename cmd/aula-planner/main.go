package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/aula-planner/api/swagger"
	"github.com/noah-isme/aula-planner/internal/handler"
	internalmiddleware "github.com/noah-isme/aula-planner/internal/middleware"
	"github.com/noah-isme/aula-planner/internal/repository"
	"github.com/noah-isme/aula-planner/internal/service"
	"github.com/noah-isme/aula-planner/internal/solver"
	"github.com/noah-isme/aula-planner/pkg/cache"
	"github.com/noah-isme/aula-planner/pkg/config"
	"github.com/noah-isme/aula-planner/pkg/jobs"
	"github.com/noah-isme/aula-planner/pkg/logger"
	corsmiddleware "github.com/noah-isme/aula-planner/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/aula-planner/pkg/middleware/requestid"
)

const shutdownTimeout = 15 * time.Second

// @title Aula Planner API
// @version 0.1.0
// @description Classroom assignment form backed by an external optimization service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logger.Named(logr, "cache"))
	} else {
		cacheRepo = repository.NewMemoryCacheRepository()
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Results.TTL, logger.Named(logr, "cache"), true)
	resultSvc := service.NewResultService(cacheSvc, cfg.Results.TTL, logger.Named(logr, "results"))

	solverClient := solver.NewClient(cfg.Solver.URL,
		solver.WithLogger(logger.Named(logr, "solver")),
		solver.WithMetrics(metricsSvc),
	)

	queue := jobs.NewQueue("submissions", nil, jobs.QueueConfig{
		Workers:    cfg.Submit.Workers,
		BufferSize: cfg.Submit.BufferSize,
		Logger:     logger.Named(logr, "jobs"),
	})
	queue.Start(context.Background())

	validate := validator.New()
	sessionSvc := service.NewSessionService(service.SessionConfig{
		DefaultFloors: cfg.Form.DefaultFloors,
		DefaultDelta:  cfg.Form.DefaultDelta,
		DefaultLambda: cfg.Form.DefaultLambda,
		TTL:           cfg.Sessions.TTL,
	}, service.SubmissionDeps{
		Builder: service.NewRequestBuilder(service.NewExtractor(validate)),
		Solver:  solverClient,
		Runner:  queue,
		Archive: resultSvc,
		Metrics: metricsSvc,
	}, logger.Named(logr, "sessions"))
	go sessionSvc.RunSweeper(ctx, cfg.Sessions.SweepInterval)

	exportSvc := service.NewExportService(resultSvc, logger.Named(logr, "export"), nil, nil)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, readinessChecks(redisClient))
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix),
		handler.NewFormHandler(sessionSvc, validate),
		handler.NewExportHandler(exportSvc),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "solver", solverClient.Endpoint())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	queue.Stop()
	logr.Info("server stopped")
}

func readinessChecks(client *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}
