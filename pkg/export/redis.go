package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/reddit-harvest/pkg/listing"
	"github.com/redis/go-redis/v9"
)

// RedisOptions parses REDIS_URL. Both redis:// URLs and bare host:port
// addresses are accepted.
func RedisOptions(raw string) (*redis.Options, error) {
	if strings.Contains(raw, "://") {
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: raw}, nil
}

// RedisSink stores the records of a run as a Redis list of JSON documents.
type RedisSink struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisSink creates a sink. A ttl of 0 leaves the key without expiry.
func NewRedisSink(redisClient *redis.Client, ttl time.Duration) *RedisSink {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisSink{redis: redisClient, ttl: ttl}
}

// Key returns the list key for a collection.
func Key(collection string) string {
	return fmt.Sprintf("harvest:%s:records", strings.Trim(collection, "/"))
}

// Write replaces the collection's list with records, in order.
func (s *RedisSink) Write(ctx context.Context, collection string, records []listing.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	values := make([]interface{}, len(records))
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return observe(SinkRedis, 0, fmt.Errorf("marshal record %s: %w", r.ID, err))
		}
		values[i] = data
	}

	key := Key(collection)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.RPush(ctx, key, values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return observe(SinkRedis, 0, fmt.Errorf("redis rpush %s: %w", key, err))
	}
	return observe(SinkRedis, len(records), nil)
}

// Records reads back the stored records of a collection.
func (s *RedisSink) Records(ctx context.Context, collection string) ([]listing.Record, error) {
	key := Key(collection)
	raw, err := s.redis.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange %s: %w", key, err)
	}

	records := make([]listing.Record, 0, len(raw))
	for i, item := range raw {
		var r listing.Record
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("decode %s[%d]: %w", key, i, err)
		}
		records = append(records, r)
	}
	return records, nil
}
