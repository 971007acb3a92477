package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"careermate/internal/ai"
)

const (
	conversationKeyPrefix = "conversation:"
	rateLimitKeyPrefix    = "rate_limit:"
)

// Store implements the conversation cache and the fixed-window rate limiter
// on a single redis client.
type Store struct {
	client *redis.Client
	log    *zap.Logger
}

func New(addr, password string, db int, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		log: log,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func conversationKey(id string) string { return conversationKeyPrefix + id }
func rateLimitKey(id string) string    { return rateLimitKeyPrefix + id }

func (s *Store) GetMessages(ctx context.Context, conversationID string) ([]ai.Message, bool, error) {
	raw, err := s.client.Get(ctx, conversationKey(conversationID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var msgs []ai.Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		// A corrupt entry is treated as a miss; the ledger repopulates it.
		s.log.Warn("corrupt conversation cache entry",
			zap.String("conversation_id", conversationID), zap.Error(err))
		return nil, false, nil
	}
	return msgs, true, nil
}

func (s *Store) SetMessages(ctx context.Context, conversationID string, messages []ai.Message, ttl time.Duration) error {
	b, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	return s.client.SetEx(ctx, conversationKey(conversationID), b, ttl).Err()
}

func (s *Store) DeleteMessages(ctx context.Context, conversationID string) error {
	return s.client.Del(ctx, conversationKey(conversationID)).Err()
}

// Allow applies fixed-window limiting: the first operation in a window
// creates the counter with the window as TTL, later ones increment it, and a
// counter at the limit denies without mutation. Transport errors are returned
// so the caller can fail closed.
func (s *Store) Allow(ctx context.Context, conversationID string, limit int, window time.Duration) (bool, error) {
	key := rateLimitKey(conversationID)

	current, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			if err := s.client.SetEx(ctx, key, 1, window).Err(); err != nil {
				return false, err
			}
			return true, nil
		}
		return false, err
	}

	n, err := strconv.Atoi(current)
	if err != nil {
		return false, fmt.Errorf("rate counter %s holds non-numeric value %q", key, current)
	}
	if n >= limit {
		return false, nil
	}
	if err := s.client.Incr(ctx, key).Err(); err != nil {
		return false, err
	}
	return true, nil
}
