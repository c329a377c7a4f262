package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/pmp-prep-bot/internal/config"
	"github.com/aliskhannn/pmp-prep-bot/internal/delivery/telegram"
	"github.com/aliskhannn/pmp-prep-bot/internal/infra/postgres"
	"github.com/aliskhannn/pmp-prep-bot/internal/infra/redis"
	"github.com/aliskhannn/pmp-prep-bot/internal/infra/sqlite"
	"github.com/aliskhannn/pmp-prep-bot/internal/logger"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
	"github.com/aliskhannn/pmp-prep-bot/internal/service"
	"github.com/aliskhannn/pmp-prep-bot/internal/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	token, err := cfg.BotToken()
	if err != nil {
		return fmt.Errorf("telegram token: %w", err)
	}

	questions, issues, err := repository.LoadQuestionBank(cfg.QuestionsPath)
	if err != nil {
		return err
	}
	for _, issue := range issues {
		log.Warn("question skipped", zap.Error(issue))
	}

	cards, issues, err := repository.LoadFlashcardBank(cfg.FlashcardsPath)
	if err != nil {
		return err
	}
	for _, issue := range issues {
		log.Warn("flashcard skipped", zap.Error(issue))
	}

	log.Info("banks loaded",
		zap.Int("questions", questions.Len()),
		zap.Int("flashcards", cards.Len()),
	)

	kv, closeKV, err := openKV(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeKV()

	examRepo := repository.NewExamStateRepository(kv, time.Now)
	progressRepo := repository.NewProgressRepository(kv)
	profileRepo := repository.NewProfileRepository(kv)

	seed := cfg.Exam.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	selector := service.NewQuestionSelector(rand.New(rand.NewSource(seed)))

	examService := service.NewExamService(examRepo, questions, selector, cfg.Exam.Duration, log)
	flashcardService := service.NewFlashcardService(cards, progressRepo, rand.New(rand.NewSource(seed+1)), log)
	progressService := service.NewProgressService(progressRepo, examRepo, cards, log)
	profileService := service.NewProfileService(profileRepo)
	quizService := service.NewQuizService(questions, storage.NewQuizStorage(), progressService, selector, log)
	backupService := service.NewBackupService(progressRepo, profileRepo, log)
	resetService := service.NewResetService(examRepo, progressRepo, profileRepo)

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("init telegram bot: %w", err)
	}
	bot.Debug = cfg.Env == "local"
	log.Info("authorized on telegram", zap.String("username", bot.Self.UserName))

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(telegram.Commands...)); err != nil {
		log.Warn("failed to set bot commands", zap.Error(err))
	}

	handler := telegram.NewHandler(bot, log, telegram.Services{
		Exams:      examService,
		Flashcards: flashcardService,
		Progress:   progressService,
		Profiles:   profileService,
		Quiz:       quizService,
		Backup:     backupService,
		Reset:      resetService,
	})

	watcher := service.NewExamWatcher(examService, cfg.Exam.WatchSchedule, log)
	watcher.SetNotifier(handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer bot.StopReceivingUpdates()
		return handler.Run(gctx)
	})
	g.Go(func() error {
		return watcher.Start(gctx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	log.Info("shutdown complete")
	return err
}

// openKV connects the configured state store.
func openKV(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.KV, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory storage, state is lost on restart")
		return storage.NewMemoryKV(), func() {}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using sqlite storage", zap.String("path", cfg.Storage.SQLitePath))
		return sqlite.NewKV(db), func() { _ = db.Close() }, nil

	case config.DriverPostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, nil, err
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		kv := postgres.NewKV(pool)
		if err := kv.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("using postgres storage")
		return kv, pool.Close, nil

	case config.DriverRedis:
		client, err := redis.NewClient(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info("using redis storage", zap.String("addr", cfg.Redis.Addr))
		return redis.NewKV(client), func() { _ = client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
