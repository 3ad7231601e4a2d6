package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/chat"
	"github.com/botforge/botforge/internal/session"
	"github.com/botforge/botforge/internal/telegram"
	"github.com/botforge/botforge/pkg/config"
)

func runTelegram(args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("telegram", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	botID := fs.String("bot", "", "bot id (defaults to telegram.bot_id)")
	kbID := fs.String("kb", "", "knowledge base id (defaults to telegram.kb_id)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *botID == "" {
		*botID = cfg.Telegram.BotID
	}
	if *kbID == "" {
		*kbID = cfg.Telegram.KBID
	}
	if cfg.Telegram.Token == "" {
		return errors.New("telegram.token is not configured")
	}
	if *botID == "" || *kbID == "" {
		return errors.New("telegram requires a bot id and kb id")
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	client := newPlatformClient(cfg, logger)

	bot, err := client.GetBot(context.Background(), *botID)
	if err != nil {
		return err
	}

	bridge, err := telegram.New(
		cfg.Telegram.Token,
		bot,
		*kbID,
		session.NewManager(store, logger),
		chat.NewOrchestrator(store, client, logger),
		store,
		logger,
	)
	if err != nil {
		return err
	}

	logger.Info("Telegram bridge started",
		zap.String("bot_id", bot.ID),
		zap.String("bot_name", bot.Name))
	return bridge.Start()
}
