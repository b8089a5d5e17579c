package telegram

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ai-mentor/internal/generator"
	"ai-mentor/internal/memory"
	"ai-mentor/internal/storage"
)

// handleMessage is the per-message boundary: a panic anywhere below is
// logged and answered with a single apology.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	requestID := uuid.NewString()
	log := b.logger.With(
		zap.String("request_id", requestID),
		zap.Int64("user_id", msg.From.ID),
		zap.Int64("chat_id", msg.Chat.ID),
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while handling message",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			b.sendPlain(log, msg.Chat.ID, b.persona.Apology)
		}
	}()

	if msg.IsCommand() {
		b.handleCommand(ctx, log, msg)
		return
	}
	b.handleText(ctx, log, requestID, msg)
}

func (b *Bot) handleCommand(ctx context.Context, log *zap.Logger, msg *tgbotapi.Message) {
	log = log.With(zap.String("command", msg.Command()))
	log.Info("command received")

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, log, msg)
	case "help":
		b.sendPlain(log, msg.Chat.ID, b.persona.Help)
	case "status":
		b.handleStatus(log, msg)
	case "clear":
		b.memory.ResetHistory(msg.From.ID)
		b.sendPlain(log, msg.Chat.ID, b.persona.Cleared)
	case "channel":
		b.handleChannel(log, msg)
	default:
		b.sendPlain(log, msg.Chat.ID, b.persona.UnknownCommand)
	}
}

func (b *Bot) handleStart(ctx context.Context, log *zap.Logger, msg *tgbotapi.Message) {
	name := displayName(msg.From)
	if b.memory.EnsureUser(msg.From.ID, name, msg.From.UserName) {
		log.Info("new user", zap.String("username", msg.From.UserName))
	}
	b.sendPlain(log, msg.Chat.ID, b.persona.WelcomeFor(name))

	b.broadcast(log, fmt.Sprintf("🆕 New user joined: %s (@%s)", name, usernameOrUnknown(msg.From)))
}

func (b *Bot) handleStatus(log *zap.Logger, msg *tgbotapi.Message) {
	profile, ok := b.memory.Profile(msg.From.ID)
	if !ok {
		b.sendPlain(log, msg.Chat.ID, b.persona.StatusNoProfile)
		return
	}
	b.sendPlain(log, msg.Chat.ID, formatStatus(profile))
}

func (b *Bot) handleChannel(log *zap.Logger, msg *tgbotapi.Message) {
	link := b.resolveChannelLink()
	if link == "" {
		b.sendPlain(log, msg.Chat.ID, b.persona.ChannelUnavailable)
		return
	}
	b.sendFormatted(log, msg.Chat.ID, b.persona.ChannelFor(link), "Markdown")
}

func (b *Bot) handleText(ctx context.Context, log *zap.Logger, requestID string, msg *tgbotapi.Message) {
	userID := msg.From.ID
	text := msg.Text
	name := displayName(msg.From)

	b.memory.EnsureUser(userID, name, msg.From.UserName)
	prior := b.memory.RecentHistory(userID)

	topic := memory.DetectTopic(text)
	if err := b.memory.RecordTurn(userID, memory.RoleUser, text, topic); err != nil {
		b.fail(log, msg.Chat.ID, fmt.Errorf("record user turn: %w", err))
		return
	}
	b.memory.RegisterInteraction(userID, text, topic)
	summary := b.memory.BuildContextSummary(userID)

	log.Info("question received", zap.String("topic", topic), zap.Int("history", len(prior)))

	stopTyping := b.startTyping(ctx, log, msg.Chat.ID)
	defer stopTyping()
	started := time.Now()
	res := b.gen.Generate(ctx, generator.Request{Message: text, History: prior, Summary: summary})
	stopTyping()

	ev := storage.Event{
		Timestamp:         b.now(),
		RequestID:         requestID,
		UserID:            userID,
		Username:          msg.From.UserName,
		UserMessage:       text,
		AssistantResponse: res.Text,
		Topic:             topic,
		Model:             res.Model,
		TotalTokens:       res.TotalTokens,
	}

	if res.Failed() {
		ev.Failure = string(res.Err.Kind)
		log.Warn("generation failed",
			zap.String("kind", ev.Failure),
			zap.Duration("elapsed", time.Since(started)))
		b.sendPlain(log, msg.Chat.ID, res.Text)
	} else {
		if err := b.memory.RecordTurn(userID, memory.RoleAssistant, res.Text, topic); err != nil {
			b.fail(log, msg.Chat.ID, fmt.Errorf("record assistant turn: %w", err))
			return
		}
		chunks := b.sendChunks(ctx, log, msg.Chat.ID, res.Text)
		log.Info("reply sent",
			zap.String("model", res.Model),
			zap.Int("total_tokens", res.TotalTokens),
			zap.Int("chunks", chunks),
			zap.Duration("elapsed", time.Since(started)))
	}

	if err := b.recorder.AppendInteraction(ev); err != nil {
		log.Warn("append interaction log", zap.Error(err))
	}
	if !res.Failed() {
		b.broadcast(log, fmt.Sprintf("💬 Query: %s\nUser: %s", summarize(text, questionSummaryLength), name))
	}
}

// fail reports an internal error to the user as the generic apology.
func (b *Bot) fail(log *zap.Logger, chatID int64, err error) {
	log.Error("message handling failed", zap.Error(err))
	b.sendPlain(log, chatID, b.persona.Apology)
}

func displayName(u *tgbotapi.User) string {
	if u == nil || u.FirstName == "" {
		return memory.DefaultDisplayName
	}
	return u.FirstName
}

func usernameOrUnknown(u *tgbotapi.User) string {
	if u == nil || u.UserName == "" {
		return "unknown"
	}
	return u.UserName
}
