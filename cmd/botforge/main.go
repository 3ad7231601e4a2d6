package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/platform"
	"github.com/botforge/botforge/internal/storage"
	"github.com/botforge/botforge/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "chat":
		err = runChat(os.Args[2:], logger)
	case "train":
		err = runTrain(os.Args[2:], logger)
	case "telegram":
		err = runTelegram(os.Args[2:], logger)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: botforge <command> [flags]

Commands:
  train     Upload knowledge sources and create a bot
  chat      Talk to a trained bot
  telegram  Connect a trained bot to Telegram`)
}

// openStore selects the configured persistence backend. A broken
// file backend degrades to in-memory storage so a conversation can
// still happen; it just will not survive the process.
func openStore(cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "memory":
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStore(), nil
	case "postgres":
		logger.Info("Using PostgreSQL storage")
		return storage.NewPostgresStore(storage.DatabaseConfig{
			Host:     cfg.Storage.Database.Host,
			Port:     cfg.Storage.Database.Port,
			User:     cfg.Storage.Database.User,
			Password: cfg.Storage.Database.Password,
			DBName:   cfg.Storage.Database.DBName,
			SSLMode:  cfg.Storage.Database.SSLMode,
		})
	default:
		store, err := storage.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			logger.Warn("File storage unavailable, falling back to in-memory storage",
				zap.Error(err),
				zap.String("data_dir", cfg.Storage.DataDir))
			return storage.NewMemoryStore(), nil
		}
		return store, nil
	}
}

func newPlatformClient(cfg *config.Config, logger *zap.Logger) *platform.Client {
	return platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.AccessToken, cfg.Platform.Timeout, logger)
}

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}
