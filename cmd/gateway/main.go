// BotForge gateway - thin server between the browser client and the
// platform API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/gateway"
	"github.com/botforge/botforge/internal/platform"
	"github.com/botforge/botforge/pkg/config"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}
	if cfg.Gateway.JWTSecret == "" {
		logger.Fatal("gateway.jwt_secret is not configured")
	}
	if cfg.Gateway.S3.Bucket == "" {
		logger.Fatal("gateway.s3.bucket is not configured")
	}

	objects, err := gateway.NewS3Store(context.Background(), cfg.Gateway.S3.Bucket, cfg.Gateway.S3.Region)
	if err != nil {
		logger.Fatal("Failed to initialize object store", zap.Error(err))
	}

	// The gateway forwards each caller's own token, so its platform
	// client starts without one.
	client := platform.NewClient(cfg.Platform.BaseURL, "", cfg.Platform.Timeout, logger)
	handler := gateway.NewHandler(client, objects, cfg.Gateway, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Gateway.Port,
		Handler:           handler.Routes(cfg.Gateway.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Gateway listening", zap.String("port", cfg.Gateway.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
}
