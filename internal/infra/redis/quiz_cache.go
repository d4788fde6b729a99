// Package redis provides a Redis-backed read-through cache for quizzes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
	"github.com/aliskhannn/quiz-bridge/internal/metrics"
	"github.com/aliskhannn/quiz-bridge/internal/repository"
)

const keyPrefix = "quiz:"

// QuizSource is the repository the cache reads through to.
type QuizSource interface {
	Get(ctx context.Context, id string) (*entities.Quiz, error)
}

// Config holds Redis connection configuration.
type Config struct {
	Addr     string        // Redis server address (host:port)
	Password string        // Redis password (optional)
	DB       int           // Redis database number
	TTL      time.Duration // cached entry lifetime, zero keeps entries forever
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return client, nil
}

// QuizCache serves quizzes from Redis and falls back to the source on miss.
// Redis failures are logged and never fail a lookup on their own.
type QuizCache struct {
	client *redis.Client
	source QuizSource
	ttl    time.Duration
	logger *zap.Logger
}

// NewQuizCache creates a read-through cache in front of source.
func NewQuizCache(client *redis.Client, source QuizSource, ttl time.Duration, logger *zap.Logger) *QuizCache {
	return &QuizCache{
		client: client,
		source: source,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached quiz, loading and caching it from the source on miss.
func (c *QuizCache) Get(ctx context.Context, id string) (*entities.Quiz, error) {
	quiz, err := c.lookup(ctx, id)
	switch {
	case err == nil:
		metrics.RecordCacheLookup("hit")
		return quiz, nil
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookup("miss")
	default:
		metrics.RecordCacheLookup("error")
		c.logger.Warn("quiz cache lookup failed",
			zap.String("quiz_id", id),
			zap.Error(err),
		)
	}

	quiz, err = c.source.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.store(ctx, id, quiz); err != nil {
		c.logger.Warn("quiz cache store failed",
			zap.String("quiz_id", id),
			zap.Error(err),
		)
	}

	return quiz, nil
}

// Invalidate drops the cached entry for id.
func (c *QuizCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, keyPrefix+id).Err()
}

func (c *QuizCache) lookup(ctx context.Context, id string) (*entities.Quiz, error) {
	fields, err := c.client.HGetAll(ctx, keyPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, redis.Nil
	}

	rec := repository.Record{
		ID:   id,
		Kind: entities.Kind(fields["kind"]),
		Quiz: []byte(fields["payload"]),
	}
	return rec.Decode()
}

func (c *QuizCache) store(ctx context.Context, id string, quiz *entities.Quiz) error {
	rec, err := repository.NewRecord(id, quiz)
	if err != nil {
		return err
	}

	key := keyPrefix + id
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "kind", string(rec.Kind), "payload", string(rec.Quiz))
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	return err
}
