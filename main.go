package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/example/wordquest/internal/ai"
	"github.com/example/wordquest/internal/bot"
	"github.com/example/wordquest/internal/config"
	"github.com/example/wordquest/internal/database"
	"github.com/example/wordquest/internal/scheduler"
	"github.com/example/wordquest/internal/server"
	"github.com/example/wordquest/internal/storage"
	"github.com/example/wordquest/internal/translate"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	kv, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStorage.Close()

	resolver := newResolver(cfg, logger)
	defer resolver.Close()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	log.Printf("Authorized on account %s", api.Self.UserName)

	b := bot.New(api, kv, resolver, &bot.BotConfig{
		ChoiceFeedbackDelay:   cfg.ChoiceFeedbackDelay,
		SpellingFeedbackDelay: cfg.SpellingFeedbackDelay,
		MaxWordsShown:         bot.DefaultConfig().MaxWordsShown,
		DownloadTimeout:       bot.DefaultConfig().DownloadTimeout,
		UpdateTimeout:         bot.DefaultConfig().UpdateTimeout,
	}, logger)
	defer b.Close()

	reminders := scheduler.New(b, b, cfg.ReminderHour, logger)
	b.SetReminder(reminders)
	if cfg.SchedulerEnabled {
		if err := reminders.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer reminders.Stop()
	}

	srv := server.New(resolver, logger)
	go func() {
		if err := srv.Run(ctx, ":"+cfg.HTTPPort); err != nil {
			logger.Error("http server stopped", "error", err)
		}
	}()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)
	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Run(ctx, updates); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Bot error: %v", err)
	}
	log.Println("Bot stopped successfully")
}

// openStorage connects the configured key-value backend
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.KV, io.Closer, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		db, err := database.Connect(database.DriverSQLite, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite storage", "path", cfg.DBPath)
		repo := database.NewKVRepository(db)
		return repo, repo, nil
	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required for the postgres backend")
		}
		db, err := database.Connect(database.DriverPostgres, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using postgres storage")
		repo := database.NewKVRepository(db)
		return repo, repo, nil
	case config.BackendRedis:
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		r, err := storage.NewRedis(connectCtx, cfg.RedisURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q (supported: sqlite, postgres, redis)", cfg.StorageBackend)
}

// newResolver sets up the translation tiers that have credentials
func newResolver(cfg *config.Config, logger *slog.Logger) *translate.Resolver {
	opts := []translate.Option{
		translate.WithLogger(logger),
		translate.WithTranslator(translate.NewMyMemory(cfg.MyMemoryURL), cfg.TranslationTimeout),
	}

	chatGPT, err := ai.New(cfg.OpenAIKey, cfg.OpenAIURL, cfg.OpenAIModel)
	if err != nil {
		log.Printf("Warning: generative translation disabled: %v", err)
	} else {
		opts = append(opts, translate.WithGenerator(chatGPT, cfg.GenerationTimeout))
		log.Printf("Using %s at %s for generative translation", cfg.OpenAIModel, cfg.OpenAIURL)
	}
	return translate.NewResolver(opts...)
}
