package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) sendPlain(log *zap.Logger, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Warn("send message", zap.Error(err))
	}
}

// sendFormatted sends text with parseMode and falls back to plain text when
// Telegram rejects the markup.
func (b *Bot) sendFormatted(log *zap.Logger, chatID int64, text, parseMode string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	if _, err := b.s.Send(msg); err != nil {
		if parseMode == "" {
			log.Warn("send message", zap.Error(err))
			return
		}
		log.Debug("formatted send failed, retrying as plain text", zap.Error(err))
		b.sendPlain(log, chatID, text)
	}
}

// sendChunks delivers text in order, pausing between chunks. It returns the
// number of chunks sent.
func (b *Bot) sendChunks(ctx context.Context, log *zap.Logger, chatID int64, text string) int {
	chunks := SplitMessage(text, MaxMessageLength)
	for i, chunk := range chunks {
		if i > 0 && b.chunkPause > 0 {
			t := time.NewTimer(b.chunkPause)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
			}
		}
		b.sendFormatted(log, chatID, chunk, b.parseMode)
	}
	return len(chunks)
}

// ErrNoChannel is returned by Announce when no broadcast channel is set.
var ErrNoChannel = errors.New("telegram: broadcast channel not configured")

// Announce posts text to the broadcast channel.
func (b *Bot) Announce(text string) error {
	if b.channelID == "" {
		return ErrNoChannel
	}
	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(b.channelID, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(b.channelID, text)
	}
	if _, err := b.s.Send(msg); err != nil {
		return fmt.Errorf("send to %s: %w", b.channelID, err)
	}
	return nil
}

// broadcast is the best-effort form of Announce.
func (b *Bot) broadcast(log *zap.Logger, text string) {
	if b.channelID == "" {
		return
	}
	if err := b.Announce(text); err != nil {
		log.Warn("channel notification failed", zap.Error(err))
	}
}

func (b *Bot) resolveChannelLink() string {
	if b.channelLink != "" {
		return b.channelLink
	}
	if strings.HasPrefix(b.channelID, "@") && len(b.channelID) > 1 {
		return "https://t.me/" + strings.TrimPrefix(b.channelID, "@")
	}
	return ""
}

// startTyping shows the typing indicator until the returned func is called.
// Telegram clears the indicator after about five seconds, so it is resent.
func (b *Bot) startTyping(ctx context.Context, log *zap.Logger, chatID int64) func() {
	done := make(chan struct{})
	finished := make(chan struct{})
	send := func() {
		if _, err := b.s.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
			log.Debug("typing indicator", zap.Error(err))
		}
	}

	go func() {
		defer close(finished)
		send()
		ticker := time.NewTicker(b.typingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				send()
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-finished
		})
	}
}
