// Package telegram connects one trained bot to Telegram. It is a
// thin presentation surface: all conversation state lives in the
// chat orchestrator and the store.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/chat"
	"github.com/botforge/botforge/internal/models"
	"github.com/botforge/botforge/internal/session"
	"github.com/botforge/botforge/internal/storage"
)

type Bridge struct {
	api      *tgbotapi.BotAPI
	bot      *models.Bot
	kbID     string
	sessions *session.Manager
	chats    *chat.Orchestrator
	store    storage.Store
	logger   *zap.Logger
}

func New(token string, bot *models.Bot, kbID string, sessions *session.Manager, chats *chat.Orchestrator, store storage.Store, logger *zap.Logger) (*Bridge, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bridge{
		api:      api,
		bot:      bot,
		kbID:     kbID,
		sessions: sessions,
		chats:    chats,
		store:    store,
		logger:   logger,
	}, nil
}

func (b *Bridge) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		go b.handleMessage(update.Message)
	}

	return nil
}

// scope gives every Telegram chat its own conversation with the bot.
func (b *Bridge) scope(chatID int64) string {
	return fmt.Sprintf("%s/%d", b.bot.ID, chatID)
}

// chatSession resolves the session for one Telegram chat. The scope
// key carries the chat id; the query itself still addresses the real
// bot.
func (b *Bridge) chatSession(ctx context.Context, chatID int64) models.Session {
	sess := b.sessions.GetOrCreate(ctx, b.scope(chatID))
	return models.Session{BotID: b.bot.ID, ID: sess.ID}
}

func (b *Bridge) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	text := message.Text
	if text == "" {
		return
	}

	sess := b.chatSession(ctx, message.Chat.ID)
	reply, err := b.chats.Send(ctx, sess, b.kbID, b.bot.OwnerID, text)
	if err != nil {
		// Only blank input lands here; nothing to answer.
		return
	}

	b.sendMessage(message.Chat.ID, reply.Text)
}

func (b *Bridge) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "new":
		b.handleNewSession(ctx, message)
	case "history":
		b.handleHistory(ctx, message)
	case "help":
		b.handleHelp(message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bridge) handleStart(message *tgbotapi.Message) {
	welcome := fmt.Sprintf("You are chatting with %s.", b.bot.Name)
	if b.bot.Description != "" {
		welcome += "\n" + b.bot.Description
	}
	welcome += "\n\nJust send a message to ask a question. Use /help to see all available commands."

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bridge) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Show the bot you are talking to
/new - Start a new conversation
/history - Show your recent messages
/help - Show this help message`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bridge) handleNewSession(ctx context.Context, message *tgbotapi.Message) {
	b.sessions.Reset(ctx, b.scope(message.Chat.ID))
	b.sendMessage(message.Chat.ID, "Started a new conversation. Previous history is cleared.")
}

func (b *Bridge) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	sess := b.chatSession(ctx, message.Chat.ID)

	msgs, err := b.store.Load(ctx, sess.ID)
	if err != nil {
		b.logger.Error("Failed to load transcript",
			zap.Error(err),
			zap.String("session_id", sess.ID))
		b.sendMessage(message.Chat.ID, "Sorry, I couldn't retrieve your message history.")
		return
	}

	if len(msgs) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any messages yet.")
		return
	}

	const limit = 10
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	response := "Your recent messages:\n\n"
	for _, m := range msgs {
		who := "You"
		if m.FromBot {
			who = b.bot.Name
		}
		if m.Pending {
			continue
		}
		response += fmt.Sprintf("%s: %s\n", who, m.Text)
	}

	b.sendMessage(message.Chat.ID, response)
}

func (b *Bridge) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
