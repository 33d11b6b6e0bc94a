package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/bluesky/zoom/configs"
	"github.com/bluesky/zoom/internal/api"
	"github.com/bluesky/zoom/internal/app"
	"github.com/bluesky/zoom/internal/bus"
	"github.com/bluesky/zoom/internal/cachepolicy"
	"github.com/bluesky/zoom/internal/core"
	pkgapi "github.com/bluesky/zoom/pkg/api"
	"github.com/bluesky/zoom/pkg/messagequeue"
)

func main() {
	// .env is a development convenience; release deployments set the environment directly.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}

	configPath := configs.PathFromEnv(configs.DefaultPath)
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	logger, err := app.NewLogger(cfg.Server.GinMode)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("Application configuration loaded", zap.String("service", cfg.Service.Name), zap.String("path", configPath))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initCtx, cancelInit := context.WithTimeout(ctx, 15*time.Second)
	defer cancelInit()

	store, err := app.OpenStore(initCtx, cfg, logger)
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to open cache store", zap.String("store", cfg.Cache.Store), zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	manager, err := cachepolicy.Configure(store, cfg.Cache.DefaultTTL, cfg.Cache.TTLs,
		cachepolicy.WithLogger(logger),
		cachepolicy.WithErrorHandler(cachepolicy.NewLoggingErrorHandler(logger)),
		cachepolicy.WithMetrics(cachepolicy.NewMetrics(app.MetricsNamespace(cfg.Service.Name), registry)),
		cachepolicy.WithOperationTimeout(cfg.Cache.OperationTimeout),
	)
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to configure cache policy", zap.Error(err))
	}
	defer manager.Close()

	userRepo, err := app.OpenUserRepository(initCtx, cfg, logger)
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to open user repository", zap.String("store", cfg.Users.Store), zap.Error(err))
	}
	defer userRepo.Close()
	cancelInit()

	userService := core.NewUserService(userRepo, manager, cfg.Users.LookupDelay, logger)

	// The bus is optional; without it admin actions stay local to this instance.
	var publisher core.Publisher
	var eventBus *bus.Bus
	if cfg.RabbitMQ.URL != "" {
		mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: cfg.RabbitMQ.URL}, logger)
		if err != nil {
			logger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mq.Close()
		eventBus = bus.New(mq, cfg.RabbitMQ.Exchange, logger)
		publisher = eventBus
	} else {
		logger.Warn("RabbitMQ URL not configured; refresh and eviction events will not be broadcast")
	}

	adminService := core.NewAdminService(configs.NewHolder(configPath, cfg), manager, publisher, logger)

	if eventBus != nil {
		go func() {
			if err := eventBus.Listen(ctx, adminService); err != nil && ctx.Err() == nil {
				logger.Error("Bus listener stopped", zap.Error(err))
			}
		}()
	}

	router := api.NewRouter(cfg.Server.GinMode, cfg.Server.ClientURL, logger,
		api.NewConfigClientAPI(userService, adminService, registry, logger),
	)

	if err := pkgapi.Serve(ctx, cfg.Addr(), router, logger); err != nil {
		logger.Error("HTTP server failed", zap.Error(err))
		return
	}
	logger.Info("Server exiting gracefully.")
}
