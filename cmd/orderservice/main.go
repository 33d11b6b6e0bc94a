package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bluesky/zoom/configs"
	"github.com/bluesky/zoom/internal/api"
	"github.com/bluesky/zoom/internal/app"
	pkgapi "github.com/bluesky/zoom/pkg/api"
)

func main() {
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}

	configPath := configs.PathFromEnv(configs.OrderServicePath)
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

	router := api.NewRouter(cfg.Server.GinMode, cfg.Server.ClientURL, logger, api.NewOrderAPI())
	if err := pkgapi.Serve(ctx, cfg.Addr(), router, logger); err != nil {
		logger.Error("HTTP server failed", zap.Error(err))
		return
	}
	logger.Info("Server exiting gracefully.")
}
