package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ai-mentor/internal/analytics"
	"ai-mentor/internal/config"
	"ai-mentor/internal/generator"
	"ai-mentor/internal/health"
	"ai-mentor/internal/llm"
	"ai-mentor/internal/logging"
	"ai-mentor/internal/memory"
	"ai-mentor/internal/persona"
	"ai-mentor/internal/scheduler"
	"ai-mentor/internal/storage"
	"ai-mentor/internal/telegram"
)

func runBot(cmd *cobra.Command, _ []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Debug || debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := persona.Load(cfg.PersonaPath)
	if err != nil {
		return err
	}

	factory := llm.NewFactory(cfg)
	client, err := factory.CreateClient(ctx)
	if err != nil {
		return fmt.Errorf("create llm client: %w", err)
	}
	gen := generator.New(client, p.SystemPrompt, factory.Params(), logger.Named("generator"),
		generator.WithTimeout(cfg.LLMTimeout),
		generator.WithRetries(cfg.LLMRetries, time.Second))

	var rec storage.Recorder = storage.Nop{}
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			logger.Warn("interaction log disabled", zap.Error(err))
		} else {
			rec = fr
		}
	}

	mem := memory.NewManager()
	bot, err := telegram.New(cfg.TelegramBotToken, mem, gen, p, rec, telegram.Options{
		ParseMode:      cfg.MessageParseMode,
		ChannelID:      cfg.ChannelID,
		ChannelLink:    cfg.ChannelLink,
		ChunkPause:     cfg.ChunkPause,
		MaxConcurrency: cfg.MaxConcurrency,
	}, logger)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	logger.Info("starting",
		zap.String("provider", string(cfg.LLMProvider)),
		zap.String("model", cfg.ActiveModel()),
		zap.Bool("channel", cfg.ChannelID != ""),
		zap.Int("max_concurrency", cfg.MaxConcurrency))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Start(gctx) })

	if cfg.Port != "" {
		hs := health.NewServer(net.JoinHostPort("", cfg.Port), string(cfg.LLMProvider), mem, logger)
		g.Go(func() error { return hs.Run(gctx) })
	}

	if cfg.ReportCron != "" {
		if _, ok := rec.(storage.Nop); !ok {
			sched := scheduler.New(cfg.ReportCron, logger)
			sched.SetReportFunction(dailyReport(rec, bot, logger, time.Now))
			g.Go(func() error { return sched.Run(gctx) })
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("stopped")
	return nil
}

type announcer interface {
	Announce(text string) error
}

// dailyReport posts today's usage stats to the broadcast channel, or logs
// them when no channel is configured.
func dailyReport(rec storage.Recorder, out announcer, logger *zap.Logger, now func() time.Time) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		today := now().UTC()
		start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		events, err := rec.LoadSince(start)
		if err != nil {
			return fmt.Errorf("load interactions: %w", err)
		}
		stats := analytics.AnalyzeDailyLogs(events, today)
		summary := stats.GenerateReportSummary()

		err = out.Announce(summary)
		if errors.Is(err, telegram.ErrNoChannel) {
			logger.Info("daily report", zap.String("summary", summary))
			return nil
		}
		return err
	}
}
