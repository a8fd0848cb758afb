package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kislikjeka/finpanel/internal/platform/flash"
	"github.com/kislikjeka/finpanel/pkg/logger"
)

// KeyPrefix is the prefix for flash queue keys
const KeyPrefix = "flash:"

// FlashStore is a redis-backed flash.Store. Each session gets a list that
// expires when left unread.
type FlashStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewFlashStore creates a flash store with the default TTL
func NewFlashStore(client *redis.Client, log *logger.Logger) *FlashStore {
	return NewFlashStoreWithTTL(client, flash.DefaultTTL, log)
}

// NewFlashStoreWithTTL creates a flash store with a custom TTL
func NewFlashStoreWithTTL(client *redis.Client, ttl time.Duration, log *logger.Logger) *FlashStore {
	return &FlashStore{
		client: client,
		ttl:    ttl,
		logger: log.WithField("component", "flash_store"),
	}
}

func flashKey(sessionID string) string {
	return fmt.Sprintf("%s%s", KeyPrefix, sessionID)
}

// Push appends msg to the session queue and refreshes its TTL
func (s *FlashStore) Push(ctx context.Context, sessionID string, msg flash.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal flash message: %w", err)
	}

	key := flashKey(sessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		s.logger.WithError(err).Error("flash store error", "operation", "push")
		return fmt.Errorf("failed to push flash message: %w", err)
	}

	return nil
}

// Pop reads and clears the session queue atomically
func (s *FlashStore) Pop(ctx context.Context, sessionID string) ([]flash.Message, error) {
	key := flashKey(sessionID)

	var lrange *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		s.logger.WithError(err).Error("flash store error", "operation", "pop")
		return nil, fmt.Errorf("failed to pop flash messages: %w", err)
	}

	vals := lrange.Val()
	if len(vals) == 0 {
		return nil, nil
	}

	messages := make([]flash.Message, 0, len(vals))
	for _, val := range vals {
		var msg flash.Message
		if err := json.Unmarshal([]byte(val), &msg); err != nil {
			s.logger.WithError(err).Warn("skipping malformed flash message")
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// Ping reports whether redis is reachable
func (s *FlashStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var _ flash.Store = (*FlashStore)(nil)
