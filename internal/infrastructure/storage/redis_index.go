package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"FinNewsAnalyzer/internal/ports"
)

const defaultProcessedKey = "finnews:processed"

// RedisIndex keeps processed article IDs in a Redis set.
type RedisIndex struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ ports.ProcessedIndex = (*RedisIndex)(nil)

// NewRedisIndex wraps a client. A positive ttl expires the whole set after
// the last write.
func NewRedisIndex(client *redis.Client, key string, ttl time.Duration) *RedisIndex {
	if key == "" {
		key = defaultProcessedKey
	}
	return &RedisIndex{client: client, key: key, ttl: ttl}
}

// AlreadyProcessed reports which IDs are members of the set.
func (r *RedisIndex) AlreadyProcessed(ctx context.Context, ids []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(ids) == 0 {
		return result, nil
	}

	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	found, err := r.client.SMIsMember(ctx, r.key, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smismember failure: %w", err)
	}

	for i, ok := range found {
		if ok {
			result[ids[i]] = true
		}
	}
	return result, nil
}

// MarkProcessed adds IDs to the set.
func (r *RedisIndex) MarkProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, r.key, members...)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis sadd failure: %w", err)
	}
	return nil
}
