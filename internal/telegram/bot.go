package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ai-mentor/internal/generator"
	"ai-mentor/internal/memory"
	"ai-mentor/internal/persona"
	"ai-mentor/internal/storage"
)

const (
	defaultChunkPause     = 500 * time.Millisecond
	defaultTypingInterval = 4 * time.Second
	questionSummaryLength = 50
)

// Responder produces a reply for one user message.
type Responder interface {
	Generate(ctx context.Context, req generator.Request) generator.Result
}

// Options carries the transport-level settings.
type Options struct {
	ParseMode      string
	ChannelID      string
	ChannelLink    string
	ChunkPause     time.Duration
	MaxConcurrency int
}

type Bot struct {
	api      *tgbotapi.BotAPI
	s        sender
	memory   memory.Store
	gen      Responder
	persona  *persona.Persona
	recorder storage.Recorder
	logger   *zap.Logger

	parseMode      string
	channelID      string
	channelLink    string
	chunkPause     time.Duration
	typingInterval time.Duration

	queue *userQueue
	now   func() time.Time
}

// New connects to the Bot API with token.
func New(token string, store memory.Store, gen Responder, p *persona.Persona, rec storage.Recorder, opts Options, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	b := newBot(botAPISender{api: api}, store, gen, p, rec, opts, logger)
	b.api = api
	b.logger.Info("authorized on telegram", zap.String("bot", api.Self.UserName))
	return b, nil
}

func newBot(s sender, store memory.Store, gen Responder, p *persona.Persona, rec storage.Recorder, opts Options, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	if p == nil {
		p = persona.Default()
	}
	if rec == nil {
		rec = storage.Nop{}
	}
	pause := opts.ChunkPause
	if pause < 0 {
		pause = defaultChunkPause
	}
	return &Bot{
		s:              s,
		memory:         store,
		gen:            gen,
		persona:        p,
		recorder:       rec,
		logger:         logger.Named("telegram"),
		parseMode:      opts.ParseMode,
		channelID:      strings.TrimSpace(opts.ChannelID),
		channelLink:    strings.TrimSpace(opts.ChannelLink),
		chunkPause:     pause,
		typingInterval: defaultTypingInterval,
		queue:          newUserQueue(opts.MaxConcurrency),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Start long-polls for updates until ctx is cancelled, then waits for
// messages already accepted to finish.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("polling for updates")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("stopping, waiting for in-flight messages", zap.Int("active_users", b.queue.Active()))
			b.queue.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.queue.Wait()
				return nil
			}
			b.Dispatch(ctx, update)
		}
	}
}

// Dispatch queues an update behind earlier updates from the same user.
// Work that is already queued survives cancellation of ctx.
func (b *Bot) Dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	if !msg.IsCommand() && strings.TrimSpace(msg.Text) == "" {
		return
	}
	b.queue.Enqueue(context.WithoutCancel(ctx), msg.From.ID, func(jobCtx context.Context) {
		b.handleMessage(jobCtx, msg)
	})
}

// Wait blocks until all dispatched messages are handled.
func (b *Bot) Wait() { b.queue.Wait() }
