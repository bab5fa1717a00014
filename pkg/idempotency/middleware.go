package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewStore(rdb *redis.Client, ttl time.Duration, prefix string) *Store {
	if prefix == "" {
		prefix = "idem"
	}
	return &Store{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (s *Store) Key(topic string, partition int, offset int64) string {
	return fmt.Sprintf("%s:%s:%d:%d", s.prefix, topic, partition, offset)
}

// EventKey names the claim for one outbox event, whatever offset it arrives at.
func (s *Store) EventKey(topic, eventID string) string {
	return fmt.Sprintf("%s:%s:event:%s", s.prefix, topic, eventID)
}

// Seen claims key and reports whether it had already been claimed.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}

	return !ok, nil
}

// Forget drops a claim so a message whose handling failed can be redelivered.
func (s *Store) Forget(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
