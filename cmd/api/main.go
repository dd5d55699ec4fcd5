package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suraksha/crowd-safety/internal/crowd"
	"github.com/suraksha/crowd-safety/internal/emergency"
	"github.com/suraksha/crowd-safety/internal/routing"
	"github.com/suraksha/crowd-safety/internal/scheduler"
	"github.com/suraksha/crowd-safety/pkg/cache"
	"github.com/suraksha/crowd-safety/pkg/config"
	"github.com/suraksha/crowd-safety/pkg/database"
	"github.com/suraksha/crowd-safety/pkg/errors"
	"github.com/suraksha/crowd-safety/pkg/eventbus"
	"github.com/suraksha/crowd-safety/pkg/health"
	"github.com/suraksha/crowd-safety/pkg/logger"
	"github.com/suraksha/crowd-safety/pkg/middleware"
	redisClient "github.com/suraksha/crowd-safety/pkg/redis"
	"github.com/suraksha/crowd-safety/pkg/resilience"
	"go.uber.org/zap"
)

const (
	serviceName = "crowd-safety-api"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting crowd safety service",
		zap.String("service", serviceName),
		zap.String("version", version),
	)

	sentryConfig := errors.DefaultSentryConfig()
	sentryConfig.ServerName = serviceName
	if sentryConfig.Release == "" {
		sentryConfig.Release = version
	}
	if err := errors.InitSentry(sentryConfig); err != nil {
		logger.Warn("failed to initialize Sentry, continuing without error tracking", zap.Error(err))
	} else {
		defer errors.Flush(2 * time.Second)
	}

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	redis, err := redisClient.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redis.Close() }()
	logger.Info("connected to Redis")

	var bus *eventbus.Bus
	if cfg.NATS.Enabled {
		busCfg := eventbus.DefaultConfig()
		busCfg.URL = cfg.NATS.URL
		busCfg.Name = serviceName
		bus, err = eventbus.New(busCfg)
		if err != nil {
			logger.Warn("failed to connect to NATS, continuing without event bus", zap.Error(err))
			bus = nil
		} else {
			defer bus.Close()
			logger.Info("connected to NATS")
		}
	}

	// Domain services
	crowdService := crowd.NewService(crowd.NewRepository(db), bus)

	notifier := emergency.NewGatewayNotifier(cfg.Broadcast.GatewayURL,
		time.Duration(cfg.Broadcast.TimeoutSeconds)*time.Second)
	var emergencyNotifier emergency.Notifier
	if notifier != nil {
		emergencyNotifier = notifier
		logger.Info("broadcast gateway configured", zap.String("url", cfg.Broadcast.GatewayURL))
	}
	emergencyService := emergency.NewService(emergency.NewRepository(db), crowdService, bus, emergencyNotifier)

	var mapsBreaker *resilience.CircuitBreaker
	if cfg.Resilience.CircuitBreaker.Enabled {
		mapsBreaker = resilience.NewCircuitBreaker(resilience.Settings{
			Name:             "google-directions",
			Interval:         time.Duration(cfg.Resilience.CircuitBreaker.IntervalSeconds) * time.Second,
			Timeout:          time.Duration(cfg.Resilience.CircuitBreaker.TimeoutSeconds) * time.Second,
			FailureThreshold: uint32(cfg.Resilience.CircuitBreaker.FailureThreshold),
			SuccessThreshold: uint32(cfg.Resilience.CircuitBreaker.SuccessThreshold),
		}, nil)
	}
	var routeCache *cache.Manager
	if cfg.Maps.CacheEnabled {
		routeCache = cache.NewManager(redis)
	}
	routeProvider := routing.NewGoogleProvider(routing.GoogleProviderConfig{
		APIKey:   cfg.Maps.GoogleAPIKey,
		BaseURL:  cfg.Maps.BaseURL,
		Timeout:  time.Duration(cfg.Maps.TimeoutSeconds) * time.Second,
		Cache:    routeCache,
		CacheTTL: time.Duration(cfg.Maps.CacheTTLSecs) * time.Second,
		Breaker:  mapsBreaker,
	})
	routingService := routing.NewService(routeProvider, crowdService, emergencyService)

	if cfg.Scheduler.SeedSampleLocations {
		seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := crowdService.SeedSampleLocations(seedCtx); err != nil {
			logger.Warn("failed to seed sample locations", zap.Error(err))
		}
		cancel()
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithSentry())
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(time.Duration(cfg.Server.WriteTimeout) * time.Second))
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", health.Handler(serviceName, map[string]health.Checker{
		"postgres": health.PostgresChecker(db),
		"redis":    health.RedisChecker(redis.Client),
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": serviceName, "version": version})
	})

	api := router.Group("/api/v1")
	crowd.NewHandler(crowdService).RegisterRoutes(api)
	emergency.NewHandler(emergencyService).RegisterRoutes(api)
	routing.NewHandler(routingService).RegisterRoutes(api)

	var worker *scheduler.Worker
	if cfg.Scheduler.Enabled {
		worker = scheduler.NewWorker(crowdService, emergencyService, cfg.Scheduler)
		worker.Start()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if worker != nil {
		worker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
