package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/chat"
	"github.com/botforge/botforge/internal/models"
	"github.com/botforge/botforge/internal/platform"
	"github.com/botforge/botforge/internal/session"
	"github.com/botforge/botforge/pkg/config"
)

func runChat(args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	botID := fs.String("bot", "", "bot id")
	kbID := fs.String("kb", "", "knowledge base id")
	fresh := fs.Bool("new", false, "start a new session")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *botID == "" || *kbID == "" {
		return errors.New("chat requires -bot and -kb")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	client := newPlatformClient(cfg, logger)
	ctx := context.Background()

	bot, err := client.GetBot(ctx, *botID)
	if errors.Is(err, platform.ErrNotFound) {
		fmt.Println("Bot not found.")
		return nil
	}
	if err != nil {
		return err
	}

	if bot.Private {
		valid, err := client.ValidateToken(ctx)
		if err != nil || !valid {
			return errors.New("this bot is private: log in and set platform.access_token")
		}
	}

	sessions := session.NewManager(store, logger)
	var sess models.Session
	if *fresh {
		sess = sessions.Reset(ctx, bot.ID)
	} else {
		sess = sessions.GetOrCreate(ctx, bot.ID)
	}

	orchestrator := chat.NewOrchestrator(store, client, logger)

	// Replay the persisted transcript, or show the intro when the
	// conversation has not started yet.
	history, _ := store.Load(ctx, sess.ID)
	if len(history) == 0 {
		fmt.Printf("Say hello to %s (%s). Type /new for a fresh session, /quit to leave.\n", bot.Name, bot.Model)
	} else {
		for _, m := range history {
			if m.Pending {
				continue
			}
			printMessage(bot.Name, m)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case "":
			// Nothing to send.
		case "/quit", "/exit":
			return nil
		case "/new":
			sess = sessions.Reset(ctx, bot.ID)
			fmt.Println("Started a new session.")
		default:
			reply, err := orchestrator.Send(ctx, sess, *kbID, bot.OwnerID, line)
			if err == nil {
				printMessage(bot.Name, reply)
			}
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}

func printMessage(botName string, m models.Message) {
	who := "You"
	if m.FromBot {
		who = botName
	}
	fmt.Printf("%s: %s\n", who, m.Text)
}
