package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/quiz-bridge/internal/config"
	"github.com/aliskhannn/quiz-bridge/internal/delivery/telegram"
	"github.com/aliskhannn/quiz-bridge/internal/delivery/ws"
	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
	"github.com/aliskhannn/quiz-bridge/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/quiz-bridge/internal/infra/postgres/repository"
	"github.com/aliskhannn/quiz-bridge/internal/infra/redis"
	"github.com/aliskhannn/quiz-bridge/internal/interop"
	"github.com/aliskhannn/quiz-bridge/internal/logger"
	"github.com/aliskhannn/quiz-bridge/internal/repository"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run wires the bridge and blocks until a shutdown signal or a fatal host error.
// Deferred cleanup always runs before run returns.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	lg, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, cleanup, err := newQuizRepository(ctx, cfg, lg)
	defer cleanup()
	if err != nil {
		return fmt.Errorf("failed to init quiz repository: %w", err)
	}

	shim := interop.NewShim(repo, lg)
	env := entities.Env{Name: cfg.Env}

	var handler *telegram.Handler
	if cfg.TelegramAPIToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
		if err != nil {
			return fmt.Errorf("failed to create telegram bot: %w", err)
		}
		lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

		_, err = bot.Request(tgbotapi.NewSetMyCommands(
			tgbotapi.BotCommand{Command: "quiz", Description: "Load a quiz (usage: /quiz ID)"},
			tgbotapi.BotCommand{Command: "help", Description: "Help"},
		))
		if err != nil {
			lg.Warn("failed to set bot commands", zap.Error(err))
		}

		handler = telegram.NewHandler(bot, lg, shim, env)
	}

	server := ws.NewServer(ws.Config{
		Addr:            cfg.HTTP.Addr,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		RateLimit:       cfg.HTTP.RateLimit,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
	}, shim, env, lg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	if handler != nil {
		g.Go(func() error { return handler.Run(gctx) })
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		lg.Error("bridge stopped", zap.Error(err))
		return err
	}
	lg.Info("shutdown signal received")
	return nil
}

// newQuizRepository builds the configured quiz store, optionally behind the redis cache.
func newQuizRepository(ctx context.Context, cfg *config.Config, lg *zap.Logger) (interop.QuizRepository, func(), error) {
	var (
		repo    interop.QuizRepository
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Quiz.Store {
	case config.StoreStatic:
		static, err := repository.NewStaticRepository(cfg.Quiz.SampleVariant)
		if err != nil {
			return nil, cleanup, err
		}
		lg.Info("serving sample quiz", zap.Int("variant", static.Variant()))
		repo = static

	case config.StoreFile:
		file, err := repository.NewFileRepository(cfg.Quiz.FilePath)
		if err != nil {
			return nil, cleanup, err
		}
		lg.Info("serving quizzes from file",
			zap.String("path", cfg.Quiz.FilePath),
			zap.Int("count", len(file.Records())),
		)
		repo = file

	case config.StorePostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, cleanup, err
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, pool.Close)

		if err := postgres.Migrate(ctx, pool); err != nil {
			return nil, cleanup, err
		}

		pg := pgrepo.NewQuizRepository(pool)
		if cfg.Quiz.SeedPath != "" {
			records, err := repository.ReadRecords(cfg.Quiz.SeedPath)
			if err != nil {
				return nil, cleanup, err
			}
			if err := pg.SaveAll(ctx, postgres.NewTransactor(pool), records); err != nil {
				return nil, cleanup, err
			}
			lg.Info("seeded quizzes", zap.Int("count", len(records)))
		}
		repo = pg

	default:
		return nil, cleanup, config.ErrUnknownStore
	}

	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = client.Close() })

		lg.Info("quiz cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
		repo = redis.NewQuizCache(client, repo, cfg.Redis.TTL, lg)
	}

	return repo, cleanup, nil
}
